package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrTokenNotFound    = errors.New("token not found")
	ErrTokenMismatch    = errors.New("token mismatch")
	ErrRedisUnavailable = errors.New("redis unavailable")
	ErrTokenDeleted     = errors.New("token delete failed")
)

const SessionPrefix = "login:token"

// SessionRepository 每个 actor 只保留最近一次登录签发的 token，登出即删除
type SessionRepository struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewSessionRepository(rdb *redis.Client, ttl time.Duration) *SessionRepository {
	return &SessionRepository{RDB: rdb, TTL: ttl}
}

func sessionKey(role, actorID string) string {
	return fmt.Sprintf("%s:%s:%s", SessionPrefix, role, actorID)
}

func (r *SessionRepository) Add(ctx context.Context, role, actorID, token string) error {
	if err := r.RDB.Set(ctx, sessionKey(role, actorID), token, r.TTL).Err(); err != nil {
		return ErrRedisUnavailable
	}
	return nil
}

func (r *SessionRepository) Get(ctx context.Context, role, actorID string) (string, error) {
	token, err := r.RDB.Get(ctx, sessionKey(role, actorID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrTokenNotFound
	}
	if err != nil {
		return "", ErrRedisUnavailable
	}
	return token, nil
}

// Check token 必须与登记的一致
func (r *SessionRepository) Check(ctx context.Context, role, actorID, token string) error {
	stored, err := r.Get(ctx, role, actorID)
	if err != nil {
		return err
	}
	if stored != token {
		return ErrTokenMismatch
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, role, actorID string) error {
	if err := r.RDB.Del(ctx, sessionKey(role, actorID)).Err(); err != nil {
		return ErrTokenDeleted
	}
	return nil
}
