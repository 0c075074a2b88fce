package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	CommunityInactive = "inactive"
	CommunityActive   = "active"

	EventActive = "Active"
)

type CommunityImages struct {
	LogoURL       string `gorm:"size:255" json:"logoUrl"`
	BackgroundURL string `gorm:"size:255" json:"backgroundUrl"`
}

type Announcement struct {
	Text      string     `gorm:"type:text" json:"text"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Community slug/code 作为外部查询键，约定唯一但存储层不强制
type Community struct {
	ID           uuid.UUID        `gorm:"type:char(36);primaryKey" json:"id"`
	Name         string           `gorm:"size:128;not null" json:"name"`
	Slug         string           `gorm:"size:128;index" json:"slug"`
	Code         string           `gorm:"size:64;index" json:"code"`
	Email        string           `gorm:"size:128;index" json:"email,omitempty"`
	Phone        string           `gorm:"size:32" json:"phone,omitempty"`
	Password     string           `gorm:"size:255" json:"-"`
	ShortDesc    string           `gorm:"size:512" json:"shortDesc"`
	LongDesc     string           `gorm:"type:text" json:"longDesc"`
	Announcement Announcement     `gorm:"embedded;embeddedPrefix:announcement_" json:"announcement"`
	Images       CommunityImages  `gorm:"embedded;embeddedPrefix:image_" json:"images"`
	Status       string           `gorm:"size:16;not null;default:inactive;index" json:"status"`
	SignupAt     time.Time        `gorm:"index" json:"signup_at"`
	Events       []CommunityEvent `gorm:"foreignKey:CommunityID;constraint:OnDelete:CASCADE" json:"events,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
	UpdatedAt    time.Time        `json:"updatedAt"`
}

func (c *Community) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = CommunityInactive
	}
	if c.SignupAt.IsZero() {
		c.SignupAt = time.Now()
	}
	return nil
}

type CommunityEvent struct {
	ID          uuid.UUID       `gorm:"type:char(36);primaryKey" json:"id"`
	CommunityID uuid.UUID       `gorm:"type:char(36);not null;index" json:"communityId"`
	Title       string          `gorm:"size:200" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Location    string          `gorm:"size:255" json:"location"`
	StartsAt    *time.Time      `json:"startsAt,omitempty"`
	EndsAt      *time.Time      `json:"endsAt,omitempty"`
	Status      string          `gorm:"size:32;not null" json:"status"`
	Attendees   []CustomerEvent `gorm:"foreignKey:EventID" json:"attendees"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (e *CommunityEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = EventActive
	}
	return nil
}

// CustomerEvent 活动报名记录（attendee）
type CustomerEvent struct {
	ID         uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	EventID    uuid.UUID `gorm:"type:char(36);not null;index" json:"event"`
	CustomerID uuid.UUID `gorm:"type:char(36);not null;index" json:"customer"`
	Name       string    `gorm:"size:128" json:"name"`
	Email      string    `gorm:"size:128" json:"email"`
	CreatedAt  time.Time `json:"createdAt"`
}

func (CustomerEvent) TableName() string { return "customer_events" }

func (a *CustomerEvent) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
