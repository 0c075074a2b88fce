package mysql

import (
	"context"
	"encoding/json"
	"time"

	"Local_Market/internal/model"

	"gorm.io/gorm"
)

const maxOutboxRetry = 10

type OutboxRepository struct {
	DB *gorm.DB
}

// insertOutbox 在业务事务内写入事件
func insertOutbox(tx *gorm.DB, aggregate, aggregateID, event string, data any) error {
	payload, err := json.Marshal(map[string]any{
		"event_time": time.Now().UTC().Format(time.RFC3339Nano),
		"event_type": event,
		"id":         aggregateID,
		"data":       data,
	})
	if err != nil {
		return err
	}
	return tx.Create(&model.MarketOutbox{
		Aggregate:   aggregate,
		AggregateID: aggregateID,
		EventType:   event,
		Payload:     string(payload),
		Status:      model.OutboxPending,
	}).Error
}

// List 待投递事件：pending 以及未超过重试上限的 failed
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.MarketOutbox, error) {
	var list []model.MarketOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, maxOutboxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate outbox记录消息失败重试
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.MarketOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate outbox成功记录消息更新
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.MarketOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
