package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	token, err := Issue("c-1", RoleOrganizer)
	require.NoError(t, err)

	claims, err := ParseAccess(token)
	require.NoError(t, err)
	assert.Equal(t, "c-1", claims.ActorID)
	assert.Equal(t, RoleOrganizer, claims.Role)
}

func TestParseAccess_Expired(t *testing.T) {
	token, err := IssueWithTTL("v-1", RoleVendor, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccess(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseAccess_WrongSecret(t *testing.T) {
	token, err := Issue("v-1", RoleVendor)
	require.NoError(t, err)

	old := AccessSecret
	t.Cleanup(func() { AccessSecret = old })
	AccessSecret = []byte("another-secret")

	_, err = ParseAccess(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseAccess_Garbage(t *testing.T) {
	_, err := ParseAccess("not-a-token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestSlugify(t *testing.T) {
	assert.Equal(t, "green-valley-market", Slugify("  Green Valley   Market! "))
	assert.Equal(t, "caf", Slugify("Café"))
	assert.Equal(t, "", Slugify("!!!"))
}

func TestUniqueSlug(t *testing.T) {
	slug, err := UniqueSlug("Green Valley")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^green-valley-\d{4}$`), slug)

	slug, err = UniqueSlug("???")
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^community-\d{4}$`), slug)
}

func TestRandDigits(t *testing.T) {
	s, err := RandDigits(8)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^\d{8}$`), s)
}

func TestParseID(t *testing.T) {
	_, err := ParseID("nope")
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{BadRequest("x"), http.StatusBadRequest},
		{fmt.Errorf("login: %w", ErrUnauthorized), http.StatusUnauthorized},
		{ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("product: %w", ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("order: %w", ErrConflict), http.StatusConflict},
		{ErrReadModelUnresolved, http.StatusInternalServerError},
		{errors.New("dial tcp: refused"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusOf(tt.err), tt.err.Error())
	}
}

func failBody(t *testing.T, err error) (int, map[string]any) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	Fail(c, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w.Code, body
}

func TestFail_DoesNotLeakInternalErrors(t *testing.T) {
	code, body := failBody(t, errors.New("Error 1045: Access denied for user 'root'"))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, float64(500), body["status"])
	assert.Equal(t, "internal error", body["msg"])
	assert.NotContains(t, body, "code")
}

func TestFail_BadRequestMessage(t *testing.T) {
	code, body := failBody(t, BadRequest("malformed id %q", "abc"))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, `malformed id "abc"`, body["msg"])
}

func TestFail_ReadModelUnresolved(t *testing.T) {
	code, body := failBody(t, fmt.Errorf("product x: 0 vendors: %w", ErrReadModelUnresolved))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "read_model_unresolved", body["code"])
	assert.Equal(t, "read model unresolved", body["msg"])
}

func TestOK_StatusMatchesTransport(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	OK(c, gin.H{"data": 1})

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(200), body["status"])
	assert.Equal(t, float64(1), body["data"])
}
