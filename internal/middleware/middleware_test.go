package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/minitrello-api/internal/config"
	"github.com/yukikurage/minitrello-api/internal/identity"
	"github.com/yukikurage/minitrello-api/internal/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newAuthRouter(tokens *identity.Provider) *gin.Engine {
	r := gin.New()
	r.GET("/me", RequireAuth(tokens, logger.NewNop()), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.String(http.StatusOK, userID+" "+GetUserEmail(c))
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	tokens := identity.NewProvider(config.JWTConfig{Secret: "secret", Issuer: "test", ExpiresIn: time.Hour})
	token, err := tokens.Issue("user-1", "a@example.com")
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Token " + token, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer " + token, http.StatusOK},
	}

	r := newAuthRouter(tokens)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, "user-1 a@example.com", w.Body.String())
			} else {
				assert.Contains(t, w.Body.String(), `"success":false`)
			}
		})
	}
}

func TestIPRateLimiter(t *testing.T) {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	limiter := NewIPRateLimiter(2, time.Minute)
	limiter.now = func() time.Time { return now }

	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.True(t, limiter.Allow("1.1.1.1"))
	assert.False(t, limiter.Allow("1.1.1.1"))
	assert.True(t, limiter.Allow("2.2.2.2"), "buckets are per IP")

	now = now.Add(31 * time.Second)
	assert.True(t, limiter.Allow("1.1.1.1"), "one token refills every half minute")
}

func TestRateLimit_Responds429(t *testing.T) {
	r := gin.New()
	r.POST("/send-code", RateLimit(NewIPRateLimiter(1, time.Hour)), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/send-code", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/send-code", nil))

	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
}
