package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OrderPending    = "pending"
	OrderProcessing = "processing"
	OrderShipped    = "shipped"
	OrderDelivered  = "delivered"
	OrderCancelled  = "cancelled"
)

type DeliveryInfo struct {
	Classification string `json:"classification"`
	Address        string `json:"address"`
	Instruction    string `json:"instruction"`
	IsSubstitute   bool   `json:"isSubstitute"`
}

type GiftInfo struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

type CustomerContact struct {
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type SubscriptionCycle struct {
	Total   int `json:"total"`
	Current int `json:"current"`
}

// ProductSnapshot 下单时的商品快照
type ProductSnapshot struct {
	Image    string `json:"image"`
	Name     string `json:"name"`
	Shipping struct {
		Service string          `json:"service"`
		Rate    decimal.Decimal `json:"rate"`
	} `json:"shipping"`
	Delivery struct {
		Fee decimal.Decimal `json:"fee"`
	} `json:"delivery"`
	Subscription *struct {
		Cycle   SubscriptionCycle `json:"cycle"`
		Status  string            `json:"status"`
		Payment string            `json:"payment"`
	} `json:"subscription,omitempty"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Discount decimal.Decimal `json:"discount"`
	Subtotal decimal.Decimal `json:"subtotal"`
}

type Order struct {
	ID              uuid.UUID                           `gorm:"type:char(36);primaryKey" json:"id"`
	Number          string                              `gorm:"size:16;index" json:"orderID"`
	VendorID        uuid.UUID                           `gorm:"type:char(36);not null;index" json:"vendorID"`
	CustomerID      uuid.UUID                           `gorm:"type:char(36);not null;index" json:"customerID"`
	DeliveryType    string                              `gorm:"size:64" json:"deliveryType"`
	DeliveryInfo    datatypes.JSONType[DeliveryInfo]    `gorm:"type:json;not null" json:"deliveryInfo"`
	Gift            datatypes.JSONType[GiftInfo]        `gorm:"type:json;not null" json:"gift"`
	Customer        datatypes.JSONType[CustomerContact] `gorm:"type:json;not null" json:"customer"`
	Personalization string                              `gorm:"type:text" json:"personalization"`
	Product         datatypes.JSONType[ProductSnapshot] `gorm:"type:json;not null" json:"product"`
	Status          string                              `gorm:"size:16;not null;index" json:"status"`
	OrderDate       time.Time                           `gorm:"index" json:"orderDate"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.Status == "" {
		o.Status = OrderPending
	}
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}
	return nil
}

// orderTransitions 允许的状态流转
var orderTransitions = map[string][]string{
	OrderProcessing: {OrderPending},
	OrderShipped:    {OrderProcessing},
	OrderDelivered:  {OrderShipped},
	OrderCancelled:  {OrderPending, OrderProcessing},
}

// AllowedFrom 返回可以流转到 to 的前置状态；to 非法时返回 nil
func AllowedFrom(to string) []string {
	return orderTransitions[to]
}
