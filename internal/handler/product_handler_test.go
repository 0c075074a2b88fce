package handler

import (
	"bytes"
	"context"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"Local_Market/internal/middleware"
	"Local_Market/internal/model"
	"Local_Market/internal/pkg"
	"Local_Market/internal/repository/mysql"
	"Local_Market/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProducts 只实现用到的方法，其余调用会 panic
type fakeProducts struct {
	ProductService
	detail     func(id uuid.UUID) (*mysql.CustomerProductDetail, error)
	public     func(q mysql.PublicProductQuery) ([]mysql.PublicProductCard, error)
	vendorList func(q mysql.VendorProductQuery) ([]mysql.VendorProductRow, error)
	upsert     func(specID *uuid.UUID, patch model.SpecPatch) (*model.ProductSpecification, error)
	update     func(in service.UpdateProductInput) error
}

func (f *fakeProducts) Update(_ context.Context, _, _ uuid.UUID, in service.UpdateProductInput) error {
	return f.update(in)
}

func (f *fakeProducts) UpsertSpecification(_ context.Context, _, _ uuid.UUID, specID *uuid.UUID, patch model.SpecPatch) (*model.ProductSpecification, error) {
	return f.upsert(specID, patch)
}

func (f *fakeProducts) CustomerDetail(_ context.Context, id uuid.UUID) (*mysql.CustomerProductDetail, error) {
	return f.detail(id)
}

func (f *fakeProducts) Public(_ context.Context, q mysql.PublicProductQuery) ([]mysql.PublicProductCard, error) {
	return f.public(q)
}

func (f *fakeProducts) VendorList(_ context.Context, q mysql.VendorProductQuery) ([]mysql.VendorProductRow, error) {
	return f.vendorList(q)
}

func productRouter(svc ProductService) *gin.Engine {
	h := NewProductHandler(svc)
	r := gin.New()
	r.GET("/products/public", h.Public)
	r.GET("/products/customer/:id", h.CustomerDetail)
	return r
}

func TestCustomerDetail_MalformedID(t *testing.T) {
	called := false
	r := productRouter(&fakeProducts{detail: func(uuid.UUID) (*mysql.CustomerProductDetail, error) {
		called = true
		return nil, nil
	}})

	w := do(r, http.MethodGet, "/products/customer/not-a-uuid", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, called)
}

func TestCustomerDetail_NotFound(t *testing.T) {
	r := productRouter(&fakeProducts{detail: func(id uuid.UUID) (*mysql.CustomerProductDetail, error) {
		return nil, fmt.Errorf("product: %w", pkg.ErrNotFound)
	}})

	w := do(r, http.MethodGet, "/products/customer/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, float64(404), decode(t, w)["status"])
}

func TestCustomerDetail_UnresolvedRelation(t *testing.T) {
	r := productRouter(&fakeProducts{detail: func(id uuid.UUID) (*mysql.CustomerProductDetail, error) {
		return nil, fmt.Errorf("product %s: 0 vendors: %w", id, pkg.ErrReadModelUnresolved)
	}})

	w := do(r, http.MethodGet, "/products/customer/"+uuid.NewString(), "", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	body := decode(t, w)
	assert.Equal(t, "read_model_unresolved", body["code"])
	assert.NotContains(t, w.Body.String(), "vendors")
}

func TestCustomerDetail_OK(t *testing.T) {
	id := uuid.New()
	r := productRouter(&fakeProducts{detail: func(got uuid.UUID) (*mysql.CustomerProductDetail, error) {
		d := &mysql.CustomerProductDetail{}
		d.Order.Name = "Honey"
		d.Order.Vendor.ShopName = "Bee Farm"
		return d, nil
	}})

	w := do(r, http.MethodGet, "/products/customer/"+id.String(), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	product := decode(t, w)["product"].(map[string]any)
	order := product["order"].(map[string]any)
	assert.Equal(t, "Honey", order["name"])
	assert.Equal(t, "Bee Farm", order["vendor"].(map[string]any)["shopName"])
}

func TestParsePublicQuery(t *testing.T) {
	community := uuid.New()
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet,
		"/products/public?community="+community.String()+"&search=jam&minPrice=2.5&featured=true&sort=descending", nil)

	q, err := ParsePublicQuery(c)
	require.NoError(t, err)
	require.NotNil(t, q.Community)
	assert.Equal(t, community, *q.Community)
	assert.Nil(t, q.Vendor)
	assert.Equal(t, "jam", q.Search)
	require.NotNil(t, q.MinPrice)
	assert.True(t, q.MinPrice.Equal(decimal.RequireFromString("2.5")))
	assert.Nil(t, q.MaxPrice)
	assert.True(t, q.Featured)
	assert.Equal(t, "descending", q.Sort)
}

func TestParsePublicQuery_Invalid(t *testing.T) {
	for _, raw := range []string{"community=abc", "maxPrice=cheap"} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/products/public?"+raw, nil)
		_, err := ParsePublicQuery(c)
		assert.ErrorIs(t, err, pkg.ErrBadRequest, raw)
	}
}

func TestParsePublicQuery_FeaturedFalse(t *testing.T) {
	for _, raw := range []string{"", "featured=false", "featured=0"} {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/products/public?"+raw, nil)
		q, err := ParsePublicQuery(c)
		require.NoError(t, err)
		assert.False(t, q.Featured, raw)
	}
}

func TestPublic_ReturnsCards(t *testing.T) {
	var got mysql.PublicProductQuery
	r := productRouter(&fakeProducts{public: func(q mysql.PublicProductQuery) ([]mysql.PublicProductCard, error) {
		got = q
		return []mysql.PublicProductCard{{Name: "Bread", Price: decimal.Zero, Tags: []string{}}}, nil
	}})

	w := do(r, http.MethodGet, "/products/public?type=subscription", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "subscription", got.Type)
	cards := decode(t, w)["products"].([]any)
	require.Len(t, cards, 1)
	card := cards[0].(map[string]any)
	assert.Equal(t, "", card["shopName"])
	assert.Equal(t, "", card["image"])
	assert.Equal(t, []any{}, card["tags"])
}

func TestVendorList_UsesActorScope(t *testing.T) {
	a := vendorActor()
	var got mysql.VendorProductQuery
	h := NewProductHandler(&fakeProducts{vendorList: func(q mysql.VendorProductQuery) ([]mysql.VendorProductRow, error) {
		got = q
		return []mysql.VendorProductRow{}, nil
	}})
	r := gin.New()
	r.GET("/products/vendor", asActor(a), h.VendorList)

	w := do(r, http.MethodGet, "/products/vendor?name=jam&sku=AB&sortBy=oldest", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, a.ID, got.VendorID)
	assert.Equal(t, "jam", got.Name)
	assert.Equal(t, "AB", got.SKU)
	assert.Equal(t, "oldest", got.SortBy)
}

func categoryRouter(svc ProductService) *gin.Engine {
	h := NewProductHandler(svc)
	r := gin.New()
	g := r.Group("/products", asActor(vendorActor()))
	g.POST("/:id/:category", h.PostCategory)
	g.PUT("/:id/:category", h.PutCategory)
	return r
}

func TestPostCategory_SpecificationMerge(t *testing.T) {
	specID := uuid.New()
	var gotID *uuid.UUID
	var gotPatch model.SpecPatch
	r := categoryRouter(&fakeProducts{upsert: func(id *uuid.UUID, patch model.SpecPatch) (*model.ProductSpecification, error) {
		gotID, gotPatch = id, patch
		return &model.ProductSpecification{ID: *id, Name: "weight", Value: *patch.Value}, nil
	}})

	w := do(r, http.MethodPost, "/products/"+uuid.NewString()+"/specification?specId="+specID.String(), `{"value":"2kg"}`, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, gotID)
	assert.Equal(t, specID, *gotID)
	assert.Nil(t, gotPatch.Name)
	assert.Equal(t, "weight", decode(t, w)["specification"].(map[string]any)["name"])
}

func TestPostCategory_Unknown(t *testing.T) {
	r := categoryRouter(&fakeProducts{})
	w := do(r, http.MethodPost, "/products/"+uuid.NewString()+"/colour", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPut, "/products/"+uuid.NewString()+"/style", `[]`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodPost, "/products/"+uuid.NewString()+"/specification?specId=bad", `{}`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdate_FailureRemovesUpload(t *testing.T) {
	dir := t.TempDir()
	var nutrition string
	h := NewProductHandler(&fakeProducts{update: func(in service.UpdateProductInput) error {
		nutrition = in.Nutrition
		return fmt.Errorf("product: %w", pkg.ErrNotFound)
	}})
	r := gin.New()
	upload := middleware.Upload(middleware.UploadOptions{Dir: dir, Field: "nutrition", MaxFiles: 1, MaxBytes: 1024})
	r.PUT("/products/:id", asActor(vendorActor()), upload, h.Update)

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	require.NoError(t, mw.WriteField("name", "Raw honey"))
	fw, err := mw.CreateFormFile("nutrition", "label.pdf")
	require.NoError(t, err)
	_, err = fw.Write([]byte("facts"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPut, "/products/"+uuid.NewString(), body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.NotEmpty(t, nutrition)
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
