package mysql

import (
	"context"

	"Local_Market/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type VendorRepository struct {
	DB *gorm.DB
}

func (r *VendorRepository) Create(ctx context.Context, v *model.Vendor) error {
	return translate(r.DB.WithContext(ctx).Create(v).Error, "create vendor")
}

func (r *VendorRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Vendor, error) {
	var v model.Vendor
	if err := r.DB.WithContext(ctx).Omit("password").Where("id = ?", id).First(&v).Error; err != nil {
		return nil, translate(err, "vendor")
	}
	return &v, nil
}

func (r *VendorRepository) FindCredential(ctx context.Context, email string) (uuid.UUID, string, error) {
	var v model.Vendor
	if err := r.DB.WithContext(ctx).Select("id", "password").Where("email = ?", email).First(&v).Error; err != nil {
		return uuid.Nil, "", translate(err, "vendor credential")
	}
	return v.ID, v.Password, nil
}

// StartOnboarding 记录 Stripe 账户并进入 pending
func (r *VendorRepository) StartOnboarding(ctx context.Context, id uuid.UUID, accountID string) error {
	res := r.DB.WithContext(ctx).Model(&model.Vendor{}).Where("id = ?", id).Updates(map[string]any{
		"stripe_account_id": accountID,
		"onboarding_status": model.OnboardingPending,
	})
	if res.Error != nil {
		return translate(res.Error, "start onboarding")
	}
	if res.RowsAffected == 0 {
		return exists(r.DB.WithContext(ctx), &model.Vendor{}, "id = ?", id)
	}
	return nil
}

// UpdateOnboarding webhook 回调：按 Stripe 账户更新状态，返回受影响的 vendor 数
func (r *VendorRepository) UpdateOnboarding(ctx context.Context, accountID, status string, chargesEnabled bool) (int64, error) {
	var affected int64
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Vendor{}).Where("stripe_account_id = ?", accountID).Updates(map[string]any{
			"onboarding_status": status,
			"charges_enabled":   chargesEnabled,
		})
		if res.Error != nil {
			return res.Error
		}
		affected = res.RowsAffected
		if affected == 0 {
			return nil
		}
		return insertOutbox(tx, "vendor", accountID, model.EventVendorOnboarded, map[string]any{
			"status":          status,
			"charges_enabled": chargesEnabled,
		})
	})
	return affected, translate(err, "update onboarding")
}
