package handler

import (
	"context"
	"encoding/json"
	"io"

	"Local_Market/internal/middleware"
	"Local_Market/internal/model"
	"Local_Market/internal/pkg"
	"Local_Market/internal/repository/mysql"
	"Local_Market/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type ProductService interface {
	Create(ctx context.Context, vendorID uuid.UUID, in service.CreateProductInput) (*model.Product, error)
	Update(ctx context.Context, vendorID, productID uuid.UUID, in service.UpdateProductInput) error
	Delete(ctx context.Context, vendorID, productID uuid.UUID) error
	VendorProduct(ctx context.Context, vendorID, productID uuid.UUID) (*model.Product, error)
	Public(ctx context.Context, q mysql.PublicProductQuery) ([]mysql.PublicProductCard, error)
	VendorList(ctx context.Context, q mysql.VendorProductQuery) ([]mysql.VendorProductRow, error)
	CustomerDetail(ctx context.Context, id uuid.UUID) (*mysql.CustomerProductDetail, error)
	Specifications(ctx context.Context, vendorID, productID uuid.UUID) ([]model.ProductSpecification, error)
	UpsertSpecification(ctx context.Context, vendorID, productID uuid.UUID, specID *uuid.UUID, patch model.SpecPatch) (*model.ProductSpecification, error)
	ReplaceSpecifications(ctx context.Context, vendorID, productID uuid.UUID, specs []model.ProductSpecification) error
	JSONColumn(ctx context.Context, vendorID, productID uuid.UUID, column string) (datatypes.JSON, error)
	SetJSONColumn(ctx context.Context, vendorID, productID uuid.UUID, column string, value json.RawMessage) error
	Styles(ctx context.Context, vendorID, productID uuid.UUID) ([]model.Style, error)
	Style(ctx context.Context, vendorID, productID, styleID uuid.UUID) (*model.Style, error)
	CreateStyle(ctx context.Context, vendorID, productID uuid.UUID, in service.StyleInput) (*model.Style, error)
}

const (
	categoryStyle         = "style"
	categorySpecification = "specification"
	categoryCustomization = "customization"
	categorySubscription  = "subscription"
)

type ProductHandler struct {
	svc ProductService
}

func NewProductHandler(svc ProductService) *ProductHandler {
	return &ProductHandler{svc: svc}
}

func optionalID(raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := pkg.ParseID(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func optionalDecimal(name, raw string) (*decimal.Decimal, error) {
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, pkg.BadRequest("%s must be a number", name)
	}
	return &d, nil
}

// ParsePublicQuery 查询串 -> 选项；未出现的参数保持零值
func ParsePublicQuery(c *gin.Context) (mysql.PublicProductQuery, error) {
	q := mysql.PublicProductQuery{
		Type:     c.Query("type"),
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Sort:     c.Query("sort"),
	}
	var err error
	if q.Community, err = optionalID(c.Query("community")); err != nil {
		return q, err
	}
	if q.Vendor, err = optionalID(c.Query("vendor")); err != nil {
		return q, err
	}
	if q.MinPrice, err = optionalDecimal("minPrice", c.Query("minPrice")); err != nil {
		return q, err
	}
	if q.MaxPrice, err = optionalDecimal("maxPrice", c.Query("maxPrice")); err != nil {
		return q, err
	}
	switch c.Query("featured") {
	case "", "false", "0":
	default:
		q.Featured = true
	}
	return q, nil
}

// Public GET /products/public
func (h *ProductHandler) Public(c *gin.Context) {
	q, err := ParsePublicQuery(c)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	cards, err := h.svc.Public(c.Request.Context(), q)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"products": cards})
}

// VendorList GET /products/vendor?name=&sortBy=&id=&sku=
func (h *ProductHandler) VendorList(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	rows, err := h.svc.VendorList(c.Request.Context(), mysql.VendorProductQuery{
		VendorID: a.ID,
		Name:     c.Query("name"),
		ID:       c.Query("id"),
		SKU:      c.Query("sku"),
		SortBy:   c.Query("sortBy"),
	})
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"products": rows})
}

func (h *ProductHandler) VendorProduct(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	p, err := h.svc.VendorProduct(c.Request.Context(), a.ID, id)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"product": p})
}

// CustomerDetail 格式错误 400，不存在 404，关联解析异常 500(read_model_unresolved)
func (h *ProductHandler) CustomerDetail(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	detail, err := h.svc.CustomerDetail(c.Request.Context(), id)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"product": detail})
}

// GetCategory GET /products/:id/:category
func (h *ProductHandler) GetCategory(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	switch category := c.Param("category"); category {
	case categoryStyle:
		if raw := c.Query("styleId"); raw != "" {
			styleID, err := pkg.ParseID(raw)
			if err != nil {
				pkg.Fail(c, err)
				return
			}
			style, err := h.svc.Style(ctx, a.ID, id, styleID)
			if err != nil {
				pkg.Fail(c, err)
				return
			}
			pkg.OK(c, gin.H{"style": style})
			return
		}
		styles, err := h.svc.Styles(ctx, a.ID, id)
		if err != nil {
			pkg.Fail(c, err)
			return
		}
		pkg.OK(c, gin.H{"styles": styles})
	case categorySpecification:
		specs, err := h.svc.Specifications(ctx, a.ID, id)
		if err != nil {
			pkg.Fail(c, err)
			return
		}
		pkg.OK(c, gin.H{"specifications": specs})
	case categoryCustomization, categorySubscription:
		value, err := h.svc.JSONColumn(ctx, a.ID, id, category)
		if err != nil {
			pkg.Fail(c, err)
			return
		}
		pkg.OK(c, gin.H{category: value})
	default:
		pkg.Fail(c, pkg.BadRequest("unknown category %q", category))
	}
}

// Create POST /products（multipart，nutrition 文件必传）
func (h *ProductHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	var in service.CreateProductInput
	if err := c.ShouldBind(&in); err != nil {
		pkg.Fail(c, pkg.BadRequest("invalid params"))
		return
	}
	if paths := middleware.UploadedPaths(c); len(paths) > 0 {
		in.Nutrition = paths[0]
	}
	p, err := h.svc.Create(c.Request.Context(), a.ID, in)
	if err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"product": p})
}

// PostCategory POST /products/:id/:category
func (h *ProductHandler) PostCategory(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	switch category := c.Param("category"); category {
	case categorySpecification:
		specID, err := optionalID(c.Query("specId"))
		if err != nil {
			pkg.Fail(c, err)
			return
		}
		var patch model.SpecPatch
		if !bindJSON(c, &patch) {
			return
		}
		spec, err := h.svc.UpsertSpecification(ctx, a.ID, id, specID, patch)
		if err != nil {
			pkg.Fail(c, err)
			return
		}
		pkg.OK(c, gin.H{"specification": spec})
	case categoryCustomization, categorySubscription:
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			pkg.Fail(c, pkg.BadRequest("invalid body"))
			return
		}
		if err := h.svc.SetJSONColumn(ctx, a.ID, id, category, body); err != nil {
			pkg.Fail(c, err)
			return
		}
		pkg.OK(c, gin.H{"msg": "updated"})
	case categoryStyle:
		var in service.StyleInput
		if !bindJSON(c, &in) {
			return
		}
		style, err := h.svc.CreateStyle(ctx, a.ID, id, in)
		if err != nil {
			pkg.Fail(c, err)
			return
		}
		pkg.OK(c, gin.H{"style": style})
	default:
		pkg.Fail(c, pkg.BadRequest("unknown category %q", category))
	}
}

// Update PUT /products/:id（multipart，只更新给出的字段）
func (h *ProductHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var in service.UpdateProductInput
	if err := c.ShouldBind(&in); err != nil {
		pkg.Fail(c, pkg.BadRequest("invalid params"))
		return
	}
	if paths := middleware.UploadedPaths(c); len(paths) > 0 {
		in.Nutrition = paths[0]
	}
	if err := h.svc.Update(c.Request.Context(), a.ID, id, in); err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"msg": "updated"})
}

// PutCategory PUT /products/:id/specification 整体替换规格列表
func (h *ProductHandler) PutCategory(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if category := c.Param("category"); category != categorySpecification {
		pkg.Fail(c, pkg.BadRequest("unknown category %q", category))
		return
	}
	var specs []model.ProductSpecification
	if !bindJSON(c, &specs) {
		return
	}
	if err := h.svc.ReplaceSpecifications(c.Request.Context(), a.ID, id, specs); err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"msg": "updated"})
}

func (h *ProductHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), a.ID, id); err != nil {
		pkg.Fail(c, err)
		return
	}
	pkg.OK(c, gin.H{"msg": "deleted"})
}
