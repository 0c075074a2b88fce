package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	WebhookSeenPrefix = "webhook:seen:"
	WebhookSeenTTL    = time.Hour
)

// ReplayGuard webhook 事件去重：同一个事件 id 在 TTL 内只处理一次
type ReplayGuard struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewReplayGuard(rdb *redis.Client) *ReplayGuard {
	return &ReplayGuard{RDB: rdb, TTL: WebhookSeenTTL}
}

// FirstSeen 首次出现返回 true
func (g *ReplayGuard) FirstSeen(ctx context.Context, source, eventID string) (bool, error) {
	return g.RDB.SetNX(ctx, WebhookSeenPrefix+source+":"+eventID, 1, g.TTL).Result()
}

// Forget 处理失败时删除标记，允许对方重投
func (g *ReplayGuard) Forget(ctx context.Context, source, eventID string) error {
	return g.RDB.Del(ctx, WebhookSeenPrefix+source+":"+eventID).Err()
}
