package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/javajoker/storefront-backend/internal/i18n"
	"github.com/javajoker/storefront-backend/internal/models"
	"github.com/javajoker/storefront-backend/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
	utils.SetJWTSecret("middleware-test-secret")
	if err := i18n.Initialize("", "en"); err != nil {
		panic(err)
	}
}

type errorBody struct {
	Error struct {
		Code    string                 `json:"code"`
		Message string                 `json:"message"`
		Details map[string]interface{} `json:"details"`
	} `json:"error"`
}

func serve(t *testing.T, r *gin.Engine, req *http.Request) (*httptest.ResponseRecorder, errorBody) {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body errorBody
	if w.Code >= http.StatusBadRequest {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	}
	return w, body
}

func protectedEngine() *gin.Engine {
	r := gin.New()
	r.Use(I18nMiddleware("en"))
	r.GET("/me", AuthRequired(), func(c *gin.Context) {
		id, _ := utils.GetUserIDFromContext(c)
		c.String(http.StatusOK, id)
	})
	r.GET("/admin", AuthRequired(), AdminRequired(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})
	r.GET("/maybe", OptionalAuth(), func(c *gin.Context) {
		_, ok := utils.GetUserIDFromContext(c)
		c.JSON(http.StatusOK, gin.H{"signed_in": ok})
	})
	return r
}

func TestAuthRequired(t *testing.T) {
	r := protectedEngine()
	userID := uuid.New()

	t.Run("missing token redirects to login", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(RequestedPathHeader, "/profile/orders?page=2")

		w, body := serve(t, r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Please sign in to continue", body.Error.Message)
		assert.Equal(t, "/login?redirect=%2Fprofile%2Forders%3Fpage%3D2", body.Error.Details["redirect"])
	})

	t.Run("foreign return path falls back to home", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set(RequestedPathHeader, "https://evil.test/")

		_, body := serve(t, r, req)
		assert.Equal(t, "/login?redirect=%2F", body.Error.Details["redirect"])
	})

	t.Run("expired token", func(t *testing.T) {
		token, err := utils.GenerateJWT(userID, "a@example.com", "A", "user", -1)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept-Language", "en-IN")

		w, body := serve(t, r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Your session has expired. Please sign in again", body.Error.Message)
	})

	t.Run("refresh token is not accepted", func(t *testing.T) {
		token, err := utils.GenerateRefreshToken(userID, 1)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		w, body := serve(t, r, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, "Invalid authentication token", body.Error.Message)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := utils.GenerateJWT(userID, "a@example.com", "A", "user", 1)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		w, _ := serve(t, r, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, userID.String(), w.Body.String())
	})
}

func TestAdminRequired(t *testing.T) {
	r := protectedEngine()

	for role, want := range map[models.UserRole]int{
		models.UserRoleUser:  http.StatusForbidden,
		models.UserRoleAdmin: http.StatusNoContent,
	} {
		token, err := utils.GenerateJWT(uuid.New(), "x@example.com", "X", string(role), 1)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Authorization", "Bearer "+token)

		w, _ := serve(t, r, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestOptionalAuthIgnoresBadTokens(t *testing.T) {
	r := protectedEngine()

	req := httptest.NewRequest(http.MethodGet, "/maybe", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")

	w, _ := serve(t, r, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"signed_in":false}`, w.Body.String())
}

func TestNegotiate(t *testing.T) {
	cases := map[string]string{
		"":                        "en",
		"hi-IN,hi;q=0.9,en;q=0.8": "hi",
		"fr-FR, hi_IN;q=0.5":      "hi",
		"de,fr":                   "en",
		"EN-gb":                   "en",
		"-,hi":                    "hi",
	}
	for header, want := range cases {
		assert.Equal(t, want, negotiate(header, "en"), header)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(rate.Every(time.Hour), 2)
	r := gin.New()
	r.Use(I18nMiddleware("en"), rl.Middleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for i := 0; i < 2; i++ {
		w, _ := serve(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	}

	w, body := serve(t, r, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "RATE_LIMITED", body.Error.Code)
}

type recorder struct {
	mu      sync.Mutex
	entries []*models.AuditLog
}

func (r *recorder) RecordAudit(ctx context.Context, entry *models.AuditLog) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
}

func TestAuditLog(t *testing.T) {
	rec := &recorder{}
	adminID := uuid.New()
	targetID := uuid.New()

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", adminID.String())
		c.Next()
	}, AuditLog(rec))
	r.GET("/v1/admin/orders/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.PUT("/v1/admin/users/:id/status", func(c *gin.Context) {
		var body map[string]interface{}
		require.NoError(t, c.ShouldBindJSON(&body))
		c.JSON(http.StatusAccepted, body)
	})

	serve(t, r, httptest.NewRequest(http.MethodGet, "/v1/admin/orders/"+targetID.String(), nil))
	assert.Empty(t, rec.entries)

	req := httptest.NewRequest(http.MethodPut, "/v1/admin/users/"+targetID.String()+"/status",
		strings.NewReader(`{"status":"suspended","password":"hunter2"}`))
	req.Header.Set("Content-Type", "application/json")
	w, _ := serve(t, r, req)

	// The handler still sees the original body.
	assert.JSONEq(t, `{"status":"suspended","password":"hunter2"}`, w.Body.String())

	require.Len(t, rec.entries, 1)
	entry := rec.entries[0]
	assert.Equal(t, "PUT /v1/admin/users/:id/status", entry.Action)
	assert.Equal(t, "users", entry.ResourceType)
	assert.Equal(t, targetID.String(), entry.ResourceID)
	assert.Equal(t, http.StatusAccepted, entry.Status)
	assert.Equal(t, "[redacted]", entry.NewValues["password"])
	assert.Equal(t, "suspended", entry.NewValues["status"])
	require.NotNil(t, entry.UserID)
	assert.Equal(t, adminID, *entry.UserID)
}

func TestExtractResourceType(t *testing.T) {
	assert.Equal(t, "orders", extractResourceType("/v1/admin/orders/123/status"))
	assert.Equal(t, "products", extractResourceType("/v1/products"))
	assert.Equal(t, "unknown", extractResourceType("/v1/admin"))
}
