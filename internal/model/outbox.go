package model

import "time"

const (
	EventProductCreated       = "product.created"
	EventProductUpdated       = "product.updated"
	EventProductStatusChanged = "product.status_changed"
	EventProductDeleted       = "product.deleted"

	EventCommunityRegistered = "community.registered"
	EventCommunityUpdated    = "community.updated"
	EventCommunityDeleted    = "community.deleted"

	EventOrderStatusChanged = "order.status_changed"
	EventVendorOnboarded    = "vendor.onboarding_updated"
)

const (
	OutboxPending = 0
	OutboxSent    = 1
	OutboxFailed  = 2
)

// MarketOutbox 领域事件发件箱，与业务写入同事务落库，由 relayer 投递到 kafka
type MarketOutbox struct {
	ID          uint64 `gorm:"primaryKey"`
	Aggregate   string `gorm:"size:32;not null"`
	AggregateID string `gorm:"size:36;not null;index"`
	EventType   string `gorm:"size:48;not null"`
	Payload     string `gorm:"type:json;not null"`
	Status      int8   `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry       int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (MarketOutbox) TableName() string { return "market_outbox" }
