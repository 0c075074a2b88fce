package mysql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const featuredLimit = 8

// PublicProductQuery 公开商品列表的查询选项，零值字段不参与过滤
type PublicProductQuery struct {
	Community *uuid.UUID
	Vendor    *uuid.UUID
	Type      string // subscription
	Search    string
	Category  string
	Sort      string // ascending | descending，其余按创建时间
	MinPrice  *decimal.Decimal
	MaxPrice  *decimal.Decimal
	Featured  bool
}

// BuildPublicFilter 纯函数：选项 -> WHERE 条件；search 为空时不加名称条件
func BuildPublicFilter(q PublicProductQuery) []Cond {
	var conds []Cond
	if q.Type == "subscription" {
		conds = append(conds, Cond{SQL: "JSON_TYPE(products.subscription) <> 'NULL'"})
	}
	if s := strings.TrimSpace(q.Search); s != "" {
		p := containsPattern(s)
		conds = append(conds, Cond{
			SQL:  "(LOWER(products.name) LIKE ? OR LOWER(COALESCE(vendors.shop_name, '')) LIKE ?)",
			Args: []any{p, p},
		})
	}
	if q.Community != nil {
		conds = append(conds, Cond{SQL: "vendors.community_id = ?", Args: []any{*q.Community}})
	}
	if q.Vendor != nil {
		conds = append(conds, Cond{SQL: "products.vendor_id = ?", Args: []any{*q.Vendor}})
	}
	if q.Category != "" {
		conds = append(conds, Cond{SQL: "products.category = ?", Args: []any{q.Category}})
	}
	// 价格上下限作用在同一条库存上
	if q.MinPrice != nil || q.MaxPrice != nil {
		sql := "EXISTS (SELECT 1 FROM inventories WHERE inventories.product_id = products.id"
		var args []any
		if q.MinPrice != nil {
			sql += " AND inventories.price >= ?"
			args = append(args, *q.MinPrice)
		}
		if q.MaxPrice != nil {
			sql += " AND inventories.price <= ?"
			args = append(args, *q.MaxPrice)
		}
		conds = append(conds, Cond{SQL: sql + ")", Args: args})
	}
	return conds
}

func publicOrder(sort string) string {
	switch sort {
	case "ascending":
		return "products.name ASC, products.id ASC"
	case "descending":
		return "products.name DESC, products.id ASC"
	default:
		return "products.created_at ASC, products.id ASC"
	}
}

// PublicProductCard 公开列表的扁平记录，缺省字段填零值而不是省略
type PublicProductCard struct {
	ID       uuid.UUID       `json:"id"`
	Category string          `json:"category"`
	Name     string          `json:"name"`
	ShopName string          `json:"shopName"`
	Price    decimal.Decimal `json:"price"`
	Image    string          `json:"image"`
	Tags     []string        `json:"tags"`
}

// PublicRow products JOIN vendors 的一行
type PublicRow struct {
	ID            uuid.UUID
	Name          string
	Category      string
	DeliveryTypes datatypes.JSONSlice[string]
	Subscription  datatypes.JSON
	ShopName      string
}

// DeriveTags 标签不落库，按 deliveryTypes 与 subscription 推导
func DeriveTags(deliveryTypes []string, hasSubscription bool) []string {
	has := func(v string) bool {
		for _, d := range deliveryTypes {
			if d == v {
				return true
			}
		}
		return false
	}
	switch {
	case has(model.DeliveryLocalSubscriptions):
		return []string{model.TagSubscription, model.TagNearBy}
	case has(model.DeliveryNearBy):
		return []string{model.TagNearBy}
	case hasSubscription:
		return []string{model.TagSubscription}
	default:
		return []string{}
	}
}

// RepresentativeInventory 第一条带图片的库存；invs 需已按 created_at,id 排好序
func RepresentativeInventory(invs []model.Inventory) *model.Inventory {
	for i := range invs {
		if invs[i].Image != nil {
			return &invs[i]
		}
	}
	return nil
}

func ProjectPublicCard(row PublicRow, rep *model.Inventory) PublicProductCard {
	card := PublicProductCard{
		ID:       row.ID,
		Category: row.Category,
		Name:     row.Name,
		ShopName: row.ShopName,
		Price:    decimal.Zero,
		Tags:     DeriveTags(row.DeliveryTypes, !model.IsNullJSON(row.Subscription)),
	}
	if rep != nil {
		card.Price = rep.Price
		card.Image = *rep.Image
	}
	return card
}

// ProductQuery 商品相关的只读投影
type ProductQuery struct {
	DB *gorm.DB
}

// Public 公开商品列表：products LEFT JOIN vendors，再一次性取本页库存
func (r *ProductQuery) Public(ctx context.Context, q PublicProductQuery) ([]PublicProductCard, error) {
	var rows []PublicRow
	db := r.DB.WithContext(ctx).Table("products").
		Select("products.id, products.name, products.category, products.delivery_types, products.subscription, " +
			"COALESCE(vendors.shop_name, '') AS shop_name").
		Joins("LEFT JOIN vendors ON vendors.id = products.vendor_id")
	db = applyConds(db, BuildPublicFilter(q)).Order(publicOrder(q.Sort))
	if q.Featured {
		db = db.Limit(featuredLimit)
	}
	if err := db.Scan(&rows).Error; err != nil {
		return nil, translate(err, "public products")
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	invs, err := r.inventoriesOf(ctx, ids)
	if err != nil {
		return nil, err
	}
	cards := make([]PublicProductCard, 0, len(rows))
	for _, row := range rows {
		cards = append(cards, ProjectPublicCard(row, RepresentativeInventory(invs[row.ID])))
	}
	return cards, nil
}

func (r *ProductQuery) inventoriesOf(ctx context.Context, productIDs []uuid.UUID) (map[uuid.UUID][]model.Inventory, error) {
	out := map[uuid.UUID][]model.Inventory{}
	if len(productIDs) == 0 {
		return out, nil
	}
	var invs []model.Inventory
	if err := r.DB.WithContext(ctx).
		Where("product_id IN ?", productIDs).
		Order("created_at ASC, id ASC").
		Find(&invs).Error; err != nil {
		return nil, translate(err, "inventories")
	}
	for _, inv := range invs {
		out[inv.ProductID] = append(out[inv.ProductID], inv)
	}
	return out, nil
}

// VendorProductQuery vendor 后台列表；name/id/sku 都是大小写不敏感的子串匹配
type VendorProductQuery struct {
	VendorID uuid.UUID
	Name     string
	ID       string // 展示编号 number
	SKU      string
	SortBy   string // newest | oldest | active | inactive
}

func (q VendorProductQuery) Conds() []Cond {
	conds := []Cond{{SQL: "products.vendor_id = ?", Args: []any{q.VendorID}}}
	if q.Name != "" {
		conds = append(conds, Cond{SQL: "LOWER(products.name) LIKE ?", Args: []any{containsPattern(q.Name)}})
	}
	if q.ID != "" {
		conds = append(conds, Cond{SQL: "LOWER(products.number) LIKE ?", Args: []any{containsPattern(q.ID)}})
	}
	return conds
}

func vendorOrder(sortBy string) string {
	switch sortBy {
	case "oldest":
		return "products.created_at ASC, products.id ASC"
	case "active":
		return "products.status ASC, products.created_at DESC"
	case "inactive":
		return "products.status DESC, products.created_at DESC"
	default:
		return "products.created_at DESC, products.id ASC"
	}
}

type VendorProductRow struct {
	ID        uuid.UUID `json:"id"`
	Number    string    `json:"number"`
	Name      string    `json:"name"`
	Status    string    `json:"status"`
	Image     string    `json:"image"`
	SKU       string    `json:"sku"`
	CreatedAt time.Time `json:"createdAt"`
}

// FilterBySKU 在投影之后按派生的 sku 字段过滤
func FilterBySKU(rows []VendorProductRow, sku string) []VendorProductRow {
	if sku == "" {
		return rows
	}
	needle := strings.ToLower(sku)
	out := make([]VendorProductRow, 0, len(rows))
	for _, row := range rows {
		if strings.Contains(strings.ToLower(row.SKU), needle) {
			out = append(out, row)
		}
	}
	return out
}

// FirstSKU 同名条目只取 position 最小的一条
func FirstSKU(specs []model.ProductSpecification) string {
	for _, s := range specs {
		if s.Name == model.SpecSKU {
			return s.Value
		}
	}
	return ""
}

func (r *ProductQuery) Vendor(ctx context.Context, q VendorProductQuery) ([]VendorProductRow, error) {
	var products []model.Product
	db := r.DB.WithContext(ctx).Model(&model.Product{}).
		Select("products.id", "products.number", "products.name", "products.status", "products.created_at")
	if err := applyConds(db, q.Conds()).Order(vendorOrder(q.SortBy)).Find(&products).Error; err != nil {
		return nil, translate(err, "vendor products")
	}
	ids := make([]uuid.UUID, 0, len(products))
	for _, p := range products {
		ids = append(ids, p.ID)
	}

	skus := map[uuid.UUID][]model.ProductSpecification{}
	if len(ids) > 0 {
		var specs []model.ProductSpecification
		if err := r.DB.WithContext(ctx).
			Where("product_id IN ? AND name = ?", ids, model.SpecSKU).
			Order("position ASC").
			Find(&specs).Error; err != nil {
			return nil, translate(err, "sku specifications")
		}
		for _, s := range specs {
			skus[s.ProductID] = append(skus[s.ProductID], s)
		}
	}
	invs, err := r.inventoriesOf(ctx, ids)
	if err != nil {
		return nil, err
	}

	rows := make([]VendorProductRow, 0, len(products))
	for _, p := range products {
		row := VendorProductRow{
			ID:        p.ID,
			Number:    p.Number,
			Name:      p.Name,
			Status:    p.Status,
			SKU:       FirstSKU(skus[p.ID]),
			CreatedAt: p.CreatedAt,
		}
		if rep := RepresentativeInventory(invs[p.ID]); rep != nil {
			row.Image = *rep.Image
		}
		rows = append(rows, row)
	}
	return FilterBySKU(rows, q.SKU), nil
}

type DetailVendor struct {
	ID       uuid.UUID `json:"id"`
	ShopName string    `json:"shopName"`
}

type DetailCommunity struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Slug   string    `json:"slug"`
	Images struct {
		LogoURL string `json:"logoUrl"`
	} `json:"images"`
}

type DetailStyle struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type DetailInventory struct {
	ID    uuid.UUID         `json:"id"`
	Attrs datatypes.JSONMap `json:"attrs"`
	Image *string           `json:"image"`
	Price decimal.Decimal   `json:"price"`
}

type DetailMore struct {
	ShortDesc      string                       `json:"shortDesc"`
	LongDesc       string                       `json:"longDesc"`
	Disclaimer     string                       `json:"disclaimer"`
	Specifications []model.ProductSpecification `json:"specifications"`
}

type DetailOrder struct {
	Name          string                      `json:"name"`
	Vendor        DetailVendor                `json:"vendor"`
	Community     DetailCommunity             `json:"community"`
	Styles        []DetailStyle               `json:"styles"`
	Inventories   []DetailInventory           `json:"inventories"`
	Customization datatypes.JSON              `json:"customization"`
	Subscription  datatypes.JSON              `json:"subscription"`
	SoldByUnit    bool                        `json:"soldByUnit"`
	DeliveryTypes datatypes.JSONSlice[string] `json:"deliveryTypes"`
}

// CustomerProductDetail 顾客详情页
type CustomerProductDetail struct {
	More  DetailMore  `json:"more"`
	Order DetailOrder `json:"order"`
}

// CustomerDetail 商品不存在 -> ErrNotFound；商品存在但 vendor/community 关联不是恰好一条 -> ErrReadModelUnresolved
func (r *ProductQuery) CustomerDetail(ctx context.Context, id uuid.UUID) (*CustomerProductDetail, error) {
	db := r.DB.WithContext(ctx)
	var p model.Product
	if err := db.Preload("Specifications", byPosition).
		Where("id = ?", id).First(&p).Error; err != nil {
		return nil, translate(err, "product")
	}

	var vendors []model.Vendor
	if err := db.Select("id", "community_id", "shop_name").Where("id = ?", p.VendorID).Find(&vendors).Error; err != nil {
		return nil, translate(err, "product vendor")
	}
	if len(vendors) != 1 {
		return nil, fmt.Errorf("product %s: %d vendors: %w", id, len(vendors), pkg.ErrReadModelUnresolved)
	}
	var communities []model.Community
	if err := db.Select("id", "name", "slug", "image_logo_url").
		Where("id = ?", vendors[0].CommunityID).Find(&communities).Error; err != nil {
		return nil, translate(err, "product community")
	}
	if len(communities) != 1 {
		return nil, fmt.Errorf("product %s: %d communities: %w", id, len(communities), pkg.ErrReadModelUnresolved)
	}

	var styles []model.Style
	if err := db.Where("product_id = ?", id).Order("created_at ASC, id ASC").Find(&styles).Error; err != nil {
		return nil, translate(err, "product styles")
	}
	styleIDs := make([]uuid.UUID, 0, len(styles))
	outStyles := make([]DetailStyle, 0, len(styles))
	for _, s := range styles {
		styleIDs = append(styleIDs, s.ID)
		outStyles = append(outStyles, DetailStyle{ID: s.ID, Name: s.Name})
	}
	// 库存只取经由款式可达的
	outInvs := []DetailInventory{}
	if len(styleIDs) > 0 {
		var invs []model.Inventory
		if err := db.Where("style_id IN ?", styleIDs).Order("created_at ASC, id ASC").Find(&invs).Error; err != nil {
			return nil, translate(err, "product inventories")
		}
		for _, inv := range invs {
			outInvs = append(outInvs, DetailInventory{ID: inv.ID, Attrs: inv.Attrs, Image: inv.Image, Price: inv.Price})
		}
	}

	specs := p.Specifications
	if specs == nil {
		specs = []model.ProductSpecification{}
	}
	deliveryTypes := p.DeliveryTypes
	if deliveryTypes == nil {
		deliveryTypes = datatypes.JSONSlice[string]{}
	}
	c := communities[0]
	community := DetailCommunity{ID: c.ID, Name: c.Name, Slug: c.Slug}
	community.Images.LogoURL = c.Images.LogoURL

	return &CustomerProductDetail{
		More: DetailMore{
			ShortDesc:      p.ShortDesc,
			LongDesc:       p.LongDesc,
			Disclaimer:     p.Disclaimer,
			Specifications: specs,
		},
		Order: DetailOrder{
			Name:          p.Name,
			Vendor:        DetailVendor{ID: vendors[0].ID, ShopName: vendors[0].ShopName},
			Community:     community,
			Styles:        outStyles,
			Inventories:   outInvs,
			Customization: model.OrJSON(p.Customization, model.JSONObject),
			Subscription:  model.OrJSON(p.Subscription, model.JSONNull),
			SoldByUnit:    p.SoldByUnit,
			DeliveryTypes: deliveryTypes,
		},
	}, nil
}
