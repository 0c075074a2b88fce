package middleware

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"strings"

	"Local_Market/internal/pkg"
	"Local_Market/internal/repository/redis"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ContextActorKey = "actor"

// Actor 通过校验的调用方：id + 角色
type Actor struct {
	ID    uuid.UUID
	Role  pkg.Role
	Token string
}

// SessionChecker 校验 token 是否是该 actor 当前登记的会话
type SessionChecker interface {
	Check(ctx context.Context, role, actorID, token string) error
}

// BearerToken 取 Authorization: Bearer xxx
func BearerToken(c *gin.Context) (string, bool) {
	parts := strings.SplitN(c.GetHeader("Authorization"), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Authenticate 解析 token 并核对会话，不检查角色
func Authenticate(ctx context.Context, sessions SessionChecker, tokenStr string) (Actor, error) {
	claims, err := pkg.ParseAccess(tokenStr)
	if err != nil {
		return Actor{}, pkg.ErrUnauthorized
	}
	id, err := uuid.Parse(claims.ActorID)
	if err != nil {
		return Actor{}, pkg.ErrUnauthorized
	}
	// admin token 由运维命令签发，不登记会话
	if claims.Role != pkg.RoleAdmin {
		if err := sessions.Check(ctx, string(claims.Role), claims.ActorID, tokenStr); err != nil {
			if errors.Is(err, redis.ErrRedisUnavailable) {
				return Actor{}, err
			}
			return Actor{}, pkg.ErrUnauthorized
		}
	}
	return Actor{ID: id, Role: claims.Role, Token: tokenStr}, nil
}

// Gate 能力门：token -> Actor，角色不在 roles 内直接 401
func Gate(sessions SessionChecker, roles ...pkg.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, ok := BearerToken(c)
		if !ok {
			pkg.Respond(c, http.StatusUnauthorized, gin.H{"msg": "missing or invalid authorization header"})
			c.Abort()
			return
		}
		actor, err := Authenticate(c.Request.Context(), sessions, tokenStr)
		if err != nil {
			if errors.Is(err, pkg.ErrUnauthorized) {
				pkg.Respond(c, http.StatusUnauthorized, gin.H{"msg": "invalid or expired token"})
			} else {
				pkg.Fail(c, err)
			}
			c.Abort()
			return
		}
		if len(roles) > 0 && !slices.Contains(roles, actor.Role) {
			pkg.Respond(c, http.StatusUnauthorized, gin.H{"msg": "role not permitted"})
			c.Abort()
			return
		}

		c.Set(ContextActorKey, actor)
		c.Next()
	}
}

// ActorFrom 取出 Gate 注入的 actor
func ActorFrom(c *gin.Context) (Actor, bool) {
	v, ok := c.Get(ContextActorKey)
	if !ok {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}
