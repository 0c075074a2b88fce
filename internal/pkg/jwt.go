package pkg

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenExpired      = errors.New("token expired")
	ErrTokenInvalid      = errors.New("token invalid")
	ErrTokenParseFailure = errors.New("token parse failure")
)

type Role string

const (
	RoleOrganizer Role = "community-organizer"
	RoleVendor    Role = "vendor"
	RoleAdmin     Role = "admin"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

// 启动时由配置覆盖
var (
	AccessSecret = []byte("secret-key")
	AccessTTL    = DefaultTokenTTL
)

// SetSecret 用配置中的密钥和有效期替换默认值
func SetSecret(secret string, ttl time.Duration) {
	if secret != "" {
		AccessSecret = []byte(secret)
	}
	if ttl > 0 {
		AccessTTL = ttl
	}
}

type Claims struct {
	ActorID string `json:"id"`
	Role    Role   `json:"role"`
	jwt.RegisteredClaims
}

// Issue 签发访问 token
func Issue(actorID string, role Role) (string, error) {
	return IssueWithTTL(actorID, role, AccessTTL)
}

func IssueWithTTL(actorID string, role Role, ttl time.Duration) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		ActorID: actorID,
		Role:    role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			Subject:   "access",
		},
	})
	return token.SignedString(AccessSecret)
}

// ParseAccess 解析 access
func ParseAccess(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return AccessSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		default:
			return nil, ErrTokenInvalid
		}
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrTokenParseFailure
	}
	if claims.ActorID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}
