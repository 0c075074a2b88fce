package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	Client *redis.Client
)

type Config struct {
	Addr     string
	Password string
	DB       int
}

// Init 初始化 Redis 客户端并做一次 Ping 健康检查。
func Init(cfg Config) error {
	Client = redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,     // 例如 "127.0.0.1:6379"
		Password:     cfg.Password, // 无密码则留空
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		PoolSize:     20,
		MinIdleConns: 2,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	return Client.Ping(ctx).Err()
}

// Close 关闭 Redis 客户端（在程序退出时调用）。
func Close() error {
	if Client == nil {
		return nil
	}
	return Client.Close()
}
