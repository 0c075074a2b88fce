package service

import (
	"context"
	"log/slog"
	"time"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"

	"github.com/google/uuid"
)

const relayLockName = "outbox:relay"

type Sender func(ctx context.Context, ob *model.MarketOutbox) error

type OutboxStore interface {
	List(ctx context.Context, batchSize int) ([]model.MarketOutbox, error)
	RetryUpdate(ctx context.Context, id uint64) error
	SuccessUpdate(ctx context.Context, id uint64) error
}

type Locker interface {
	Acquire(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, token string) error
	Extend(ctx context.Context, name, token string, ttl time.Duration) (bool, error)
}

// OutboxRelayer outbox表相关服务；多实例部署时由分布式锁保证同一时刻只有一个在投递
type OutboxRelayer struct {
	repo      OutboxStore
	lock      Locker
	sender    Sender
	batchSize int
	interval  time.Duration
	logger    *slog.Logger
}

func NewOutboxRelayer(repo OutboxStore, lock Locker, sender Sender, batchSize int, interval time.Duration, logger *slog.Logger) *OutboxRelayer {
	if batchSize <= 0 {
		batchSize = 100
	}
	if interval <= 0 {
		interval = time.Second
	}
	return &OutboxRelayer{repo: repo, lock: lock, sender: sender, batchSize: batchSize, interval: interval, logger: logger}
}

// KafkaSender 以聚合 id 作为 key，保证同一聚合的事件有序
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.MarketOutbox) error {
		return p.Send(ctx, ob.AggregateID, ob.EventType, []byte(ob.Payload))
	}
}

// Run outbox启动器
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) lockTTL() time.Duration {
	return r.interval * 5
}

// DrainOnce 拿到锁后投递一批；返回成功条数
func (r *OutboxRelayer) DrainOnce(ctx context.Context) int {
	token := uuid.NewString()
	ttl := r.lockTTL()
	got, err := r.lock.Acquire(ctx, relayLockName, token, ttl)
	if err != nil {
		r.logger.Warn("outbox lock failed", "error", err)
		return 0
	}
	if !got {
		return 0
	}
	defer func() {
		if err := r.lock.Release(context.WithoutCancel(ctx), relayLockName, token); err != nil {
			r.logger.Warn("outbox unlock failed", "error", err)
		}
	}()

	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		r.logger.Error("outbox query failed", "error", err)
		return 0
	}
	sent := 0
	for i := range rows {
		// 每条投递前续期；锁丢失说明可能已有其他实例接手，剩余的留给下一轮
		if i > 0 {
			held, err := r.lock.Extend(ctx, relayLockName, token, ttl)
			if err != nil || !held {
				r.logger.Warn("outbox lock lost, stop batch", "remaining", len(rows)-i, "error", err)
				break
			}
		}
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			r.logger.Warn("outbox send failed", "id", ob.ID, "event", ob.EventType, "retry", ob.Retry, "error", err)
			if err := r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				r.logger.Error("outbox retry update failed", "id", ob.ID, "error", err)
			}
			continue
		}
		if err := r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			r.logger.Warn("outbox mark sent failed", "id", ob.ID, "error", err)
			continue
		}
		sent++
	}
	return sent
}
