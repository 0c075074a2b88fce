package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"Local_Market/internal/pkg"
	"Local_Market/internal/repository/redis"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubSessions 以 role:id -> token 模拟 redis 中登记的会话
type stubSessions struct {
	tokens map[string]string
	err    error
}

func (s stubSessions) Check(_ context.Context, role, actorID, token string) error {
	if s.err != nil {
		return s.err
	}
	got, ok := s.tokens[role+":"+actorID]
	if !ok {
		return redis.ErrTokenNotFound
	}
	if got != token {
		return redis.ErrTokenMismatch
	}
	return nil
}

func issue(t *testing.T, id uuid.UUID, role pkg.Role) string {
	t.Helper()
	token, err := pkg.Issue(id.String(), role)
	require.NoError(t, err)
	return token
}

func gatedRouter(sessions SessionChecker, roles ...pkg.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/p", Gate(sessions, roles...), func(c *gin.Context) {
		actor, _ := ActorFrom(c)
		c.String(http.StatusOK, string(actor.Role)+":"+actor.ID.String())
	})
	return r
}

func get(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/p", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGate_MissingHeader(t *testing.T) {
	w := get(gatedRouter(stubSessions{}, pkg.RoleVendor), "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"status":401`)
}

func TestGate_AcceptsRegisteredSession(t *testing.T) {
	id := uuid.New()
	token := issue(t, id, pkg.RoleVendor)
	sessions := stubSessions{tokens: map[string]string{"vendor:" + id.String(): token}}

	w := get(gatedRouter(sessions, pkg.RoleVendor), token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "vendor:"+id.String(), w.Body.String())
}

func TestGate_RejectsReplacedSession(t *testing.T) {
	id := uuid.New()
	token := issue(t, id, pkg.RoleVendor)
	sessions := stubSessions{tokens: map[string]string{"vendor:" + id.String(): "newer-token"}}

	w := get(gatedRouter(sessions, pkg.RoleVendor), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGate_RejectsWrongRole(t *testing.T) {
	id := uuid.New()
	token := issue(t, id, pkg.RoleOrganizer)
	sessions := stubSessions{tokens: map[string]string{string(pkg.RoleOrganizer) + ":" + id.String(): token}}

	w := get(gatedRouter(sessions, pkg.RoleVendor), token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "role not permitted")
}

func TestGate_AdminSkipsSessionCheck(t *testing.T) {
	token := issue(t, uuid.New(), pkg.RoleAdmin)

	w := get(gatedRouter(stubSessions{err: redis.ErrTokenNotFound}, pkg.RoleAdmin), token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGate_RedisDownIsServerError(t *testing.T) {
	token := issue(t, uuid.New(), pkg.RoleVendor)

	w := get(gatedRouter(stubSessions{err: redis.ErrRedisUnavailable}, pkg.RoleVendor), token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "redis")
}

func TestBearerToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	c.Request.Header.Set("Authorization", "Token abc")
	_, ok := BearerToken(c)
	assert.False(t, ok)

	c.Request.Header.Set("Authorization", "Bearer abc")
	token, ok := BearerToken(c)
	assert.True(t, ok)
	assert.Equal(t, "abc", token)
}
