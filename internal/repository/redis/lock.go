package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const LockKeyPrefix = "lock:"

// 只有持有者（token 相同）才能删除锁
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`)

// 只有持有者才能续期
var extendScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("pexpire", KEYS[1], ARGV[2])
else
  return 0
end`)

type DistLock struct {
	RDB *redis.Client
}

// Acquire 请求加分布式锁
func (l *DistLock) Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	return l.RDB.SetNX(ctx, LockKeyPrefix+name, token, ttl).Result()
}

// Release 用lua保证原子性
func (l *DistLock) Release(ctx context.Context, name, token string) error {
	return releaseScript.Run(ctx, l.RDB, []string{LockKeyPrefix + name}, token).Err()
}

// Extend 续期；锁已过期或被他人持有时返回 false
func (l *DistLock) Extend(ctx context.Context, name, token string, ttl time.Duration) (bool, error) {
	n, err := extendScript.Run(ctx, l.RDB, []string{LockKeyPrefix + name}, token, ttl.Milliseconds()).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}
