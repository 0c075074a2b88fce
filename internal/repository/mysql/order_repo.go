package mysql

import (
	"context"
	"fmt"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository struct {
	DB *gorm.DB
}

// ListByVendor 按下单时间倒序；status 为空时不过滤
func (r *OrderRepository) ListByVendor(ctx context.Context, vendorID uuid.UUID, status string) ([]model.Order, error) {
	orders := []model.Order{}
	db := r.DB.WithContext(ctx).Where("vendor_id = ?", vendorID)
	if status != "" {
		db = db.Where("status = ?", status)
	}
	if err := db.Order("order_date DESC, id ASC").Find(&orders).Error; err != nil {
		return nil, translate(err, "vendor orders")
	}
	return orders, nil
}

// TransitionStatus 条件更新：只有当前状态在允许的前置集合里才会写入，避免并发覆盖
func (r *OrderRepository) TransitionStatus(ctx context.Context, vendorID, orderID uuid.UUID, to string) error {
	from := model.AllowedFrom(to)
	if len(from) == 0 {
		return pkg.BadRequest("unknown order status %q", to)
	}
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Order{}).
			Where("id = ? AND vendor_id = ? AND status IN ?", orderID, vendorID, from).
			Update("status", to)
		if res.Error != nil {
			return translate(res.Error, "order status")
		}
		if res.RowsAffected == 0 {
			var o model.Order
			if err := tx.Select("id", "status").Where("id = ? AND vendor_id = ?", orderID, vendorID).First(&o).Error; err != nil {
				return translate(err, "order")
			}
			return fmt.Errorf("order is %s, cannot move to %s: %w", o.Status, to, pkg.ErrConflict)
		}
		return insertOutbox(tx, "order", orderID.String(), model.EventOrderStatusChanged, map[string]any{
			"vendor": vendorID,
			"status": to,
		})
	})
}
