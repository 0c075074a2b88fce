package mysql

import (
	"context"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProductRepository struct {
	DB *gorm.DB
}

// Create 创建商品；同一事务内把 vendor.is_product 置为 true 并写 outbox
func (r *ProductRepository) Create(ctx context.Context, p *model.Product) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Specifications", "Styles").Create(p).Error; err != nil {
			return translate(err, "create product")
		}
		for i := range p.Specifications {
			p.Specifications[i].ProductID = p.ID
			p.Specifications[i].Position = i
		}
		if len(p.Specifications) > 0 {
			if err := tx.Create(&p.Specifications).Error; err != nil {
				return translate(err, "create specifications")
			}
		}
		if err := tx.Model(&model.Vendor{}).
			Where("id = ? AND is_product = ?", p.VendorID, false).
			Update("is_product", true).Error; err != nil {
			return err
		}
		return insertOutbox(tx, "product", p.ID.String(), model.EventProductCreated, map[string]any{
			"vendor": p.VendorID,
			"name":   p.Name,
			"status": p.Status,
		})
	})
}

func byPosition(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

// ensureOwned 商品必须存在且属于该 vendor，否则 NotFound
func ensureOwned(tx *gorm.DB, vendorID, productID uuid.UUID) error {
	return exists(tx, &model.Product{}, "id = ? AND vendor_id = ?", productID, vendorID)
}

// lockOwned 同 ensureOwned，并对商品行加 FOR UPDATE，串行化同一商品下的规格追加
func lockOwned(tx *gorm.DB, vendorID, productID uuid.UUID) error {
	var p model.Product
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ? AND vendor_id = ?", productID, vendorID).
		Take(&p).Error
	return translate(err, "product")
}

// FindOwned vendor 查看自己的商品（含规格、款式与库存）
func (r *ProductRepository) FindOwned(ctx context.Context, vendorID, productID uuid.UUID) (*model.Product, error) {
	var p model.Product
	err := r.DB.WithContext(ctx).
		Preload("Specifications", byPosition).
		Preload("Styles", orderByCreated).
		Preload("Styles.Inventories", orderByCreated).
		Where("id = ? AND vendor_id = ?", productID, vendorID).
		First(&p).Error
	if err != nil {
		return nil, translate(err, "product")
	}
	if p.Specifications == nil {
		p.Specifications = []model.ProductSpecification{}
	}
	if p.Styles == nil {
		p.Styles = []model.Style{}
	}
	return &p, nil
}

// UpdateFields 一条 UPDATE 只写给出的列；状态变化额外发 status_changed
func (r *ProductRepository) UpdateFields(ctx context.Context, vendorID, productID uuid.UUID, cols map[string]any) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(cols) == 0 {
			return ensureOwned(tx, vendorID, productID)
		}
		res := tx.Model(&model.Product{}).
			Where("id = ? AND vendor_id = ?", productID, vendorID).
			Updates(cols)
		if res.Error != nil {
			return translate(res.Error, "update product")
		}
		if res.RowsAffected == 0 {
			if err := ensureOwned(tx, vendorID, productID); err != nil {
				return err
			}
		}
		if err := insertOutbox(tx, "product", productID.String(), model.EventProductUpdated, cols); err != nil {
			return err
		}
		if status, ok := cols["status"]; ok {
			return insertOutbox(tx, "product", productID.String(), model.EventProductStatusChanged, map[string]any{
				"status": status,
			})
		}
		return nil
	})
}

// UpsertSpecification specID 命中则只更新给出的字段，否则追加到末尾（追加必须带 name）
func (r *ProductRepository) UpsertSpecification(ctx context.Context, vendorID, productID uuid.UUID, specID *uuid.UUID, patch model.SpecPatch) (*model.ProductSpecification, error) {
	var out model.ProductSpecification
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockOwned(tx, vendorID, productID); err != nil {
			return err
		}
		if specID != nil {
			scope := tx.Model(&model.ProductSpecification{}).Where("id = ? AND product_id = ?", *specID, productID)
			var n int64
			if err := scope.Count(&n).Error; err != nil {
				return err
			}
			if n > 0 {
				if cols := patch.Columns(); len(cols) > 0 {
					if err := tx.Model(&model.ProductSpecification{}).
						Where("id = ? AND product_id = ?", *specID, productID).
						Updates(cols).Error; err != nil {
						return err
					}
				}
				if err := tx.Where("id = ?", *specID).First(&out).Error; err != nil {
					return err
				}
				return insertOutbox(tx, "product", productID.String(), model.EventProductUpdated, map[string]any{
					"specification": out.ID,
				})
			}
		}

		if patch.Name == nil || *patch.Name == "" {
			return pkg.BadRequest("name required for a new specification")
		}
		var next int
		if err := tx.Model(&model.ProductSpecification{}).
			Select("COALESCE(MAX(position), -1) + 1").
			Where("product_id = ?", productID).
			Scan(&next).Error; err != nil {
			return err
		}
		out = model.ProductSpecification{ProductID: productID, Position: next, Name: *patch.Name}
		if patch.Value != nil {
			out.Value = *patch.Value
		}
		if err := tx.Create(&out).Error; err != nil {
			return translate(err, "append specification")
		}
		return insertOutbox(tx, "product", productID.String(), model.EventProductUpdated, map[string]any{
			"specification": out.ID,
		})
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// ReplaceSpecifications 删除全部旧条目后按顺序写入新列表
func (r *ProductRepository) ReplaceSpecifications(ctx context.Context, vendorID, productID uuid.UUID, specs []model.ProductSpecification) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOwned(tx, vendorID, productID); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductSpecification{}).Error; err != nil {
			return err
		}
		for i := range specs {
			specs[i].ProductID = productID
			specs[i].Position = i
		}
		if len(specs) > 0 {
			if err := tx.Create(&specs).Error; err != nil {
				return translate(err, "replace specifications")
			}
		}
		return insertOutbox(tx, "product", productID.String(), model.EventProductUpdated, map[string]any{
			"specifications": len(specs),
		})
	})
}

func (r *ProductRepository) ListSpecifications(ctx context.Context, vendorID, productID uuid.UUID) ([]model.ProductSpecification, error) {
	specs := []model.ProductSpecification{}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOwned(tx, vendorID, productID); err != nil {
			return err
		}
		return tx.Where("product_id = ?", productID).Order("position ASC").Find(&specs).Error
	})
	return specs, err
}

// SetJSONColumn customization / subscription 整体替换，不做合并
func (r *ProductRepository) SetJSONColumn(ctx context.Context, vendorID, productID uuid.UUID, column string, value datatypes.JSON) error {
	switch column {
	case "customization":
		value = model.OrJSON(value, model.JSONObject)
	case "subscription":
		value = model.OrJSON(value, model.JSONNull)
	default:
		return pkg.BadRequest("unknown column %q", column)
	}
	return r.UpdateFields(ctx, vendorID, productID, map[string]any{column: value})
}

// GetJSONColumn 读取单个 JSON 列
func (r *ProductRepository) GetJSONColumn(ctx context.Context, vendorID, productID uuid.UUID, column string) (datatypes.JSON, error) {
	if column != "customization" && column != "subscription" {
		return nil, pkg.BadRequest("unknown column %q", column)
	}
	var p model.Product
	err := r.DB.WithContext(ctx).Select("id", column).
		Where("id = ? AND vendor_id = ?", productID, vendorID).
		First(&p).Error
	if err != nil {
		return nil, translate(err, "product")
	}
	if column == "customization" {
		return model.OrJSON(p.Customization, model.JSONObject), nil
	}
	return model.OrJSON(p.Subscription, model.JSONNull), nil
}

// CreateStyle 新建款式及其库存
func (r *ProductRepository) CreateStyle(ctx context.Context, vendorID, productID uuid.UUID, s *model.Style) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOwned(tx, vendorID, productID); err != nil {
			return err
		}
		s.ProductID = productID
		for i := range s.Inventories {
			s.Inventories[i].ProductID = productID
		}
		if err := tx.Create(s).Error; err != nil {
			return translate(err, "create style")
		}
		return insertOutbox(tx, "product", productID.String(), model.EventProductUpdated, map[string]any{
			"style": s.ID,
		})
	})
}

func (r *ProductRepository) ListStyles(ctx context.Context, vendorID, productID uuid.UUID) ([]model.Style, error) {
	styles := []model.Style{}
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOwned(tx, vendorID, productID); err != nil {
			return err
		}
		return tx.Preload("Inventories", orderByCreated).
			Where("product_id = ?", productID).
			Order("created_at ASC").
			Find(&styles).Error
	})
	return styles, err
}

func (r *ProductRepository) FindStyle(ctx context.Context, vendorID, productID, styleID uuid.UUID) (*model.Style, error) {
	var s model.Style
	err := r.DB.WithContext(ctx).
		Preload("Inventories", orderByCreated).
		Joins("JOIN products ON products.id = styles.product_id").
		Where("styles.id = ? AND styles.product_id = ? AND products.vendor_id = ?", styleID, productID, vendorID).
		First(&s).Error
	if err != nil {
		return nil, translate(err, "style")
	}
	return &s, nil
}

// Delete 硬删除商品，级联规格、款式、库存
func (r *ProductRepository) Delete(ctx context.Context, vendorID, productID uuid.UUID) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := ensureOwned(tx, vendorID, productID); err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.Inventory{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.Style{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", productID).Delete(&model.ProductSpecification{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id = ?", productID).Delete(&model.Product{}).Error; err != nil {
			return err
		}
		return insertOutbox(tx, "product", productID.String(), model.EventProductDeleted, map[string]any{
			"vendor": vendorID,
		})
	})
}
