package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OnboardingNone     = "none"
	OnboardingPending  = "pending"
	OnboardingComplete = "complete"
)

type Vendor struct {
	ID               uuid.UUID `gorm:"type:char(36);primaryKey" json:"id"`
	CommunityID      uuid.UUID `gorm:"type:char(36);not null;index" json:"community"`
	ShopName         string    `gorm:"size:128;not null;index" json:"shopName"`
	Email            string    `gorm:"size:128;uniqueIndex" json:"email"`
	Password         string    `gorm:"size:255" json:"-"`
	IsProduct        bool      `gorm:"not null;default:false" json:"isProduct"`
	StripeAccountID  string    `gorm:"size:64;index" json:"-"`
	OnboardingStatus string    `gorm:"size:16;not null;default:none" json:"onboardingStatus"`
	ChargesEnabled   bool      `gorm:"not null;default:false" json:"chargesEnabled"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

func (v *Vendor) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	if v.OnboardingStatus == "" {
		v.OnboardingStatus = OnboardingNone
	}
	return nil
}
