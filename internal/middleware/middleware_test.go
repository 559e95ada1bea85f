package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mobilenest_back_end/internal/audit"
	"mobilenest_back_end/internal/utils"
)

const testSecret = "test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func authedRouter(extra ...gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(testSecret, zap.NewNop())}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := UserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": id, "email": Email(c)})
	})
	r.GET("/me", handlers...)
	return r
}

func bearer(t *testing.T, userID uint, role string) string {
	t.Helper()
	token, err := utils.GenerateJWT(testSecret, userID, "budi@example.com", role, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(r http.Handler, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	r := authedRouter()

	w := do(r, http.MethodGet, "/me", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), `"success":false`)

	w = do(r, http.MethodGet, "/me", "Token abc")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", "Bearer not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = do(r, http.MethodGet, "/me", bearer(t, 7, "customer"))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"user_id":7,"email":"budi@example.com"}`, w.Body.String())
}

func TestAuthRequiredRejectsOtherSecret(t *testing.T) {
	token, err := utils.GenerateJWT("other", 7, "", "customer", time.Hour)
	require.NoError(t, err)

	w := do(authedRouter(), http.MethodGet, "/me", "Bearer "+token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestClaimUserID(t *testing.T) {
	id, ok := claimUserID(float64(12))
	assert.True(t, ok)
	assert.Equal(t, uint(12), id)

	id, ok = claimUserID("42")
	assert.True(t, ok)
	assert.Equal(t, uint(42), id)

	for _, raw := range []interface{}{nil, "abc", "0", float64(0), float64(-3), float64(1.5), true} {
		_, ok := claimUserID(raw)
		assert.False(t, ok, "%v", raw)
	}
}

func TestRequireAdmin(t *testing.T) {
	r := authedRouter(RequireAdmin)

	w := do(r, http.MethodGet, "/me", bearer(t, 7, "customer"))
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/me", bearer(t, 7, "admin"))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestCartRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	r := authedRouter(CartRateLimit(rdb))
	auth := bearer(t, 7, "customer")

	for i := 0; i < CartMaxRequests; i++ {
		w := do(r, http.MethodGet, "/me", auth)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := do(r, http.MethodGet, "/me", auth)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))

	// Un autre utilisateur garde son propre quota
	w = do(r, http.MethodGet, "/me", bearer(t, 8, "customer"))
	assert.Equal(t, http.StatusOK, w.Code)

	mr.FastForward(CartWindow + time.Second)
	w = do(r, http.MethodGet, "/me", auth)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	r := authedRouter(PaymentRateLimit(nil))
	for i := 0; i < PaymentMaxRequests+2; i++ {
		w := do(r, http.MethodGet, "/me", bearer(t, 7, "customer"))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestAuditCriticalActions(t *testing.T) {
	store := audit.NewMemoryLogger()
	r := gin.New()
	r.Use(AuthRequired(testSecret, zap.NewNop()))
	r.POST("/api/transaksi", AuditCriticalActions(store, zap.NewNop(), audit.ActionOrderStatus, audit.ResourceOrder),
		func(c *gin.Context) {
			c.Set(AuditOldValue, map[string]string{"status": "Verified"})
			c.Set(AuditNewValue, map[string]string{"status": "Shipping"})
			c.JSON(http.StatusOK, gin.H{"success": true})
		})
	r.POST("/api/fail", AuditCriticalActions(store, zap.NewNop(), audit.ActionOrderDelete, audit.ResourceOrder),
		func(c *gin.Context) { c.JSON(http.StatusBadRequest, gin.H{"success": false}) })

	w := do(r, http.MethodPost, "/api/transaksi?id=5", bearer(t, 7, "admin"))
	require.Equal(t, http.StatusOK, w.Code)
	do(r, http.MethodPost, "/api/fail?id=6", bearer(t, 7, "admin"))

	logs, err := store.List(context.Background(), audit.ResourceOrder, "5", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, "7", logs[0].UserID)
	assert.True(t, logs[0].Success)
	assert.JSONEq(t, `{"status":"Shipping"}`, logs[0].NewValue)

	logs, err = store.List(context.Background(), audit.ResourceOrder, "6", 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.False(t, logs[0].Success)
}

func TestRequestLoggerSetsRequestID(t *testing.T) {
	r := gin.New()
	r.Use(RequestLogger(zap.NewNop()))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := do(r, http.MethodGet, "/health", "")
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}
