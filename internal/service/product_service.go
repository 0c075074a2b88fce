package service

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"Local_Market/internal/model"
	"Local_Market/internal/pkg"
	"Local_Market/internal/repository/mysql"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProductService struct {
	repo  *mysql.ProductRepository
	query *mysql.ProductQuery
}

func NewProductService(repo *mysql.ProductRepository, query *mysql.ProductQuery) *ProductService {
	return &ProductService{repo: repo, query: query}
}

// CreateProductInput multipart 表单字段；deliveryTypes/tax/specifications 为 JSON 字符串
type CreateProductInput struct {
	Name           string `form:"name"`
	Category       string `form:"category"`
	ShortDesc      string `form:"shortDesc"`
	LongDesc       string `form:"longDesc"`
	Disclaimer     string `form:"disclaimer"`
	DeliveryTypes  string `form:"deliveryTypes"`
	SoldByUnit     bool   `form:"soldByUnit"`
	Tax            string `form:"tax"`
	Specifications string `form:"specifications"`
	Nutrition      string `form:"-"`
}

// ParseStringList 接受 JSON 数组字符串
func ParseStringList(raw string) ([]string, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, pkg.BadRequest("deliveryTypes must be a JSON array of strings")
	}
	return out, nil
}

func parseJSONField(name, raw string) (datatypes.JSON, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	if !json.Valid([]byte(raw)) {
		return nil, pkg.BadRequest("%s must be valid JSON", name)
	}
	return datatypes.JSON(raw), nil
}

// Create 新商品状态固定为 inactive，编号为 8 位随机数
func (s *ProductService) Create(ctx context.Context, vendorID uuid.UUID, in CreateProductInput) (*model.Product, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, pkg.BadRequest("name required")
	}
	if in.Nutrition == "" {
		return nil, pkg.BadRequest("nutrition file required")
	}
	delivery, err := ParseStringList(in.DeliveryTypes)
	if err != nil {
		return nil, err
	}
	tax, err := parseJSONField("tax", in.Tax)
	if err != nil {
		return nil, err
	}
	var specs []model.ProductSpecification
	if strings.TrimSpace(in.Specifications) != "" {
		if err := json.Unmarshal([]byte(in.Specifications), &specs); err != nil {
			return nil, pkg.BadRequest("specifications must be a JSON array")
		}
	}
	number, err := pkg.RandDigits(8)
	if err != nil {
		return nil, err
	}
	p := &model.Product{
		Number:         number,
		VendorID:       vendorID,
		Name:           strings.TrimSpace(in.Name),
		Category:       in.Category,
		ShortDesc:      in.ShortDesc,
		LongDesc:       in.LongDesc,
		Disclaimer:     in.Disclaimer,
		DeliveryTypes:  delivery,
		Nutrition:      in.Nutrition,
		Status:         model.ProductInactive,
		SoldByUnit:     in.SoldByUnit,
		Tax:            tax,
		Specifications: specs,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// UpdateProductInput multipart 表单；空字符串视为未提供
type UpdateProductInput struct {
	Name          string `form:"name"`
	DeliveryTypes string `form:"deliveryTypes"`
	Category      string `form:"category"`
	Status        string `form:"status"`
	ShortDesc     string `form:"shortDesc"`
	LongDesc      string `form:"longDesc"`
	Disclaimer    string `form:"disclaimer"`
	SoldByUnit    string `form:"soldByUnit"`
	Tax           string `form:"tax"`
	Nutrition     string `form:"-"`
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Patch 表单 -> 稀疏 patch
func (in UpdateProductInput) Patch() (model.ProductPatch, error) {
	patch := model.ProductPatch{
		Name:       optional(in.Name),
		Category:   optional(in.Category),
		Status:     optional(in.Status),
		ShortDesc:  optional(in.ShortDesc),
		LongDesc:   optional(in.LongDesc),
		Disclaimer: optional(in.Disclaimer),
		Nutrition:  optional(in.Nutrition),
	}
	if patch.Status != nil && *patch.Status != model.ProductActive && *patch.Status != model.ProductInactive {
		return patch, pkg.BadRequest("unknown status %q", *patch.Status)
	}
	if in.DeliveryTypes != "" {
		list, err := ParseStringList(in.DeliveryTypes)
		if err != nil {
			return patch, err
		}
		if list == nil {
			list = []string{}
		}
		patch.DeliveryTypes = &list
	}
	switch in.SoldByUnit {
	case "":
	case "true", "1":
		v := true
		patch.SoldByUnit = &v
	case "false", "0":
		v := false
		patch.SoldByUnit = &v
	default:
		return patch, pkg.BadRequest("soldByUnit must be a boolean")
	}
	if in.Tax != "" {
		tax, err := parseJSONField("tax", in.Tax)
		if err != nil {
			return patch, err
		}
		patch.Tax = &tax
	}
	return patch, nil
}

func (s *ProductService) Update(ctx context.Context, vendorID, productID uuid.UUID, in UpdateProductInput) error {
	patch, err := in.Patch()
	if err != nil {
		return err
	}
	return s.repo.UpdateFields(ctx, vendorID, productID, patch.Columns())
}

func (s *ProductService) Delete(ctx context.Context, vendorID, productID uuid.UUID) error {
	return s.repo.Delete(ctx, vendorID, productID)
}

func (s *ProductService) VendorProduct(ctx context.Context, vendorID, productID uuid.UUID) (*model.Product, error) {
	return s.repo.FindOwned(ctx, vendorID, productID)
}

func (s *ProductService) Public(ctx context.Context, q mysql.PublicProductQuery) ([]mysql.PublicProductCard, error) {
	return s.query.Public(ctx, q)
}

func (s *ProductService) VendorList(ctx context.Context, q mysql.VendorProductQuery) ([]mysql.VendorProductRow, error) {
	return s.query.Vendor(ctx, q)
}

func (s *ProductService) CustomerDetail(ctx context.Context, id uuid.UUID) (*mysql.CustomerProductDetail, error) {
	return s.query.CustomerDetail(ctx, id)
}

func (s *ProductService) Specifications(ctx context.Context, vendorID, productID uuid.UUID) ([]model.ProductSpecification, error) {
	return s.repo.ListSpecifications(ctx, vendorID, productID)
}

func (s *ProductService) UpsertSpecification(ctx context.Context, vendorID, productID uuid.UUID, specID *uuid.UUID, patch model.SpecPatch) (*model.ProductSpecification, error) {
	if specID == nil && (patch.Name == nil || *patch.Name == "") {
		return nil, pkg.BadRequest("name required for a new specification")
	}
	return s.repo.UpsertSpecification(ctx, vendorID, productID, specID, patch)
}

func (s *ProductService) ReplaceSpecifications(ctx context.Context, vendorID, productID uuid.UUID, specs []model.ProductSpecification) error {
	return s.repo.ReplaceSpecifications(ctx, vendorID, productID, specs)
}

func (s *ProductService) JSONColumn(ctx context.Context, vendorID, productID uuid.UUID, column string) (datatypes.JSON, error) {
	return s.repo.GetJSONColumn(ctx, vendorID, productID, column)
}

// SetJSONColumn customization 必须是对象；subscription 可以是对象或 null
func (s *ProductService) SetJSONColumn(ctx context.Context, vendorID, productID uuid.UUID, column string, value json.RawMessage) error {
	if err := checkJSONShape(column, value); err != nil {
		return err
	}
	return s.repo.SetJSONColumn(ctx, vendorID, productID, column, datatypes.JSON(value))
}

// checkJSONShape 空 body 交给存储层取默认值
func checkJSONShape(column string, value json.RawMessage) error {
	t := bytes.TrimSpace(value)
	if len(t) == 0 {
		return nil
	}
	if !json.Valid(t) {
		return pkg.BadRequest("%s must be valid JSON", column)
	}
	switch column {
	case "customization":
		if t[0] != '{' {
			return pkg.BadRequest("customization must be a JSON object")
		}
	case "subscription":
		if t[0] != '{' && !bytes.Equal(t, []byte("null")) {
			return pkg.BadRequest("subscription must be a JSON object or null")
		}
	}
	return nil
}

func (s *ProductService) Styles(ctx context.Context, vendorID, productID uuid.UUID) ([]model.Style, error) {
	return s.repo.ListStyles(ctx, vendorID, productID)
}

func (s *ProductService) Style(ctx context.Context, vendorID, productID, styleID uuid.UUID) (*model.Style, error) {
	return s.repo.FindStyle(ctx, vendorID, productID, styleID)
}

type StyleInput struct {
	Name        string `json:"name"`
	Inventories []struct {
		Price decimal.Decimal `json:"price"`
		Image *string         `json:"image"`
		Attrs map[string]any  `json:"attrs"`
	} `json:"inventories"`
}

func (s *ProductService) CreateStyle(ctx context.Context, vendorID, productID uuid.UUID, in StyleInput) (*model.Style, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, pkg.BadRequest("style name required")
	}
	style := &model.Style{Name: in.Name}
	for _, inv := range in.Inventories {
		if inv.Price.IsNegative() {
			return nil, pkg.BadRequest("price must not be negative")
		}
		style.Inventories = append(style.Inventories, model.Inventory{
			Price: inv.Price,
			Image: inv.Image,
			Attrs: datatypes.JSONMap(inv.Attrs),
		})
	}
	if err := s.repo.CreateStyle(ctx, vendorID, productID, style); err != nil {
		return nil, err
	}
	return style, nil
}
