package model

import (
	"bytes"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ProductActive   = "active"
	ProductInactive = "inactive"

	DeliveryLocalSubscriptions = "Local Subscriptions"
	DeliveryNearBy             = "Near By"

	TagSubscription = "Subscription"
	TagNearBy       = "Near By"

	SpecSKU = "sku"
)

// JSON 列统一 NOT NULL：缺省值用 JSON 字面量 null / {}，避免 SQL NULL 扫描失败
var (
	JSONNull   = datatypes.JSON("null")
	JSONObject = datatypes.JSON("{}")
)

// IsNullJSON 空值或 JSON null 都视为“未设置”
func IsNullJSON(j datatypes.JSON) bool {
	t := bytes.TrimSpace(j)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

// OrJSON j 为空时返回 def
func OrJSON(j, def datatypes.JSON) datatypes.JSON {
	if len(bytes.TrimSpace(j)) == 0 {
		return def
	}
	return j
}

type Product struct {
	ID             uuid.UUID                   `gorm:"type:char(36);primaryKey" json:"id"`
	Number         string                      `gorm:"size:16;uniqueIndex" json:"number"`
	VendorID       uuid.UUID                   `gorm:"type:char(36);not null;index" json:"vendor"`
	Name           string                      `gorm:"size:200;not null;index" json:"name"`
	Category       string                      `gorm:"size:64;index" json:"category"`
	ShortDesc      string                      `gorm:"size:512" json:"shortDesc"`
	LongDesc       string                      `gorm:"type:text" json:"longDesc"`
	Disclaimer     string                      `gorm:"type:text" json:"disclaimer"`
	DeliveryTypes  datatypes.JSONSlice[string] `gorm:"type:json;not null" json:"deliveryTypes"`
	Nutrition      string                      `gorm:"size:255" json:"nutrition"`
	Status         string                      `gorm:"size:16;not null;default:inactive;index" json:"status"`
	Customization  datatypes.JSON              `gorm:"type:json;not null" json:"customization"`
	Subscription   datatypes.JSON              `gorm:"type:json;not null" json:"subscription"`
	SoldByUnit     bool                        `gorm:"not null;default:false" json:"soldByUnit"`
	Tax            datatypes.JSON              `gorm:"type:json;not null" json:"tax"`
	Specifications []ProductSpecification      `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"specifications,omitempty"`
	Styles         []Style                     `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"styles,omitempty"`
	CreatedAt      time.Time                   `gorm:"index" json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.Status == "" {
		p.Status = ProductInactive
	}
	if p.DeliveryTypes == nil {
		p.DeliveryTypes = datatypes.JSONSlice[string]{}
	}
	p.Customization = OrJSON(p.Customization, JSONObject)
	p.Subscription = OrJSON(p.Subscription, JSONNull)
	p.Tax = OrJSON(p.Tax, JSONNull)
	return nil
}

// HasSubscription subscription 非 null
func (p *Product) HasSubscription() bool {
	return !IsNullJSON(p.Subscription)
}

// ProductSpecification 规格条目，Position 决定展示顺序
type ProductSpecification struct {
	ID        uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	ProductID uuid.UUID `gorm:"type:char(36);not null;uniqueIndex:idx_spec_product_pos,priority:1" json:"-"`
	Position  int       `gorm:"not null;default:0;uniqueIndex:idx_spec_product_pos,priority:2" json:"-"`
	Name      string    `gorm:"size:128;not null" json:"name"`
	Value     string    `gorm:"type:text" json:"value"`
}

func (s *ProductSpecification) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

type Style struct {
	ID          uuid.UUID   `gorm:"type:char(36);primaryKey" json:"id"`
	ProductID   uuid.UUID   `gorm:"type:char(36);not null;index" json:"productId"`
	Name        string      `gorm:"size:128" json:"name"`
	Inventories []Inventory `gorm:"foreignKey:StyleID;constraint:OnDelete:CASCADE" json:"inventories,omitempty"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

func (s *Style) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Inventory 可售卖的具体变体
type Inventory struct {
	ID        uuid.UUID         `gorm:"type:char(36);primaryKey" json:"id"`
	ProductID uuid.UUID         `gorm:"type:char(36);not null;index" json:"productId"`
	StyleID   *uuid.UUID        `gorm:"type:char(36);index" json:"styleId,omitempty"`
	Price     decimal.Decimal   `gorm:"type:decimal(16,2);not null;default:0" json:"price"`
	Image     *string           `gorm:"size:255" json:"image"`
	Attrs     datatypes.JSONMap `gorm:"type:json" json:"attrs"`
	CreatedAt time.Time         `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time         `json:"updatedAt"`
}

func (i *Inventory) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.Attrs == nil {
		i.Attrs = datatypes.JSONMap{}
	}
	return nil
}
