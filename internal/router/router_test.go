package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"Local_Market/internal/handler"
	"Local_Market/internal/model"
	"Local_Market/internal/pkg"
	"Local_Market/internal/repository/redis"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type noSessions struct{}

func (noSessions) Check(context.Context, string, string, string) error { return redis.ErrTokenNotFound }

type noCommunities struct{}

func (noCommunities) FindWithEvents(context.Context, uuid.UUID) (*model.Community, error) {
	return nil, pkg.ErrNotFound
}

func testRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return InitRouter(Deps{
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		Sessions:    noSessions{},
		Communities: noCommunities{},
		UploadDir:   t.TempDir(),
		MaxUpload:   1 << 20,
		Community:   handler.NewCommunityHandler(nil, noSessions{}),
		Product:     handler.NewProductHandler(nil),
		Vendor:      handler.NewVendorHandler(nil),
		Order:       handler.NewOrderHandler(nil),
		Payment:     handler.NewPaymentHandler(nil),
	})
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	r := testRouter(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/products/vendor"},
		{http.MethodGet, "/products/vendor/" + uuid.NewString()},
		{http.MethodPost, "/products"},
		{http.MethodPut, "/communities/profile"},
		{http.MethodGet, "/communities/event"},
		{http.MethodDelete, "/communities/" + uuid.NewString()},
		{http.MethodGet, "/vendors/me"},
		{http.MethodGet, "/orders/vendor"},
	}
	for _, rt := range routes {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(rt.method, rt.path, nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", rt.method, rt.path)
	}
}

func TestLoggedOutVendorRejected(t *testing.T) {
	r := testRouter(t)
	token, err := pkg.Issue(uuid.NewString(), pkg.RoleVendor)
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/orders/vendor", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestEventRoutesRejectAdmin(t *testing.T) {
	r := testRouter(t)
	token, err := pkg.Issue(uuid.NewString(), pkg.RoleAdmin)
	assert.NoError(t, err)

	// admin 不是组织者，活动接口不对其开放
	req := httptest.NewRequest(http.MethodGet, "/communities/event", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCustomerDetailMalformedID(t *testing.T) {
	r := testRouter(t)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products/customer/not-an-id", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
