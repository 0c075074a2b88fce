package middleware

import (
	"context"
	"net/http"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const ContextCommunityKey = "community"

type CommunityLoader interface {
	FindWithEvents(ctx context.Context, id uuid.UUID) (*model.Community, error)
}

// LoadCommunity 必须挂在 Gate 之后：按组织者 id 加载社区及其活动
func LoadCommunity(loader CommunityLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok || actor.Role != pkg.RoleOrganizer {
			pkg.Respond(c, http.StatusUnauthorized, gin.H{"msg": "community organizer required"})
			c.Abort()
			return
		}
		community, err := loader.FindWithEvents(c.Request.Context(), actor.ID)
		if err != nil {
			pkg.Fail(c, err)
			c.Abort()
			return
		}
		c.Set(ContextCommunityKey, community)
		c.Next()
	}
}

func CommunityFrom(c *gin.Context) (*model.Community, bool) {
	v, ok := c.Get(ContextCommunityKey)
	if !ok {
		return nil, false
	}
	community, ok := v.(*model.Community)
	return community, ok
}
