package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"Local_Market/internal/middleware"
	"Local_Market/internal/pkg"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// asActor 代替 Gate 注入调用方
func asActor(a middleware.Actor) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ContextActorKey, a)
		c.Next()
	}
}

func vendorActor() middleware.Actor {
	return middleware.Actor{ID: uuid.New(), Role: pkg.RoleVendor}
}

func do(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}
