package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/budget_approval_app/internal/apperrors"
	"github.com/SscSPs/budget_approval_app/internal/core/domain"
	"github.com/SscSPs/budget_approval_app/internal/middleware"
	"github.com/SscSPs/budget_approval_app/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

const testSecret = "test-secret"

type stubUsers map[string]*domain.User

func (s stubUsers) GetUserByID(_ context.Context, id string) (*domain.User, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return nil, apperrors.NewNotFoundError("user")
}

func newRouter(users stubUsers, roles ...domain.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(middleware.GetLoggerFromCtx(context.Background())))
	chain := []gin.HandlerFunc{middleware.AuthMiddleware(testSecret), middleware.LoadCurrentUser(users)}
	if len(roles) > 0 {
		chain = append(chain, middleware.RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		user, ok := middleware.GetCurrentUser(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.String(http.StatusOK, user.UnitID)
	})
	r.GET("/me", chain...)
	return r
}

func token(t *testing.T, user *domain.User, expiry time.Duration) string {
	t.Helper()
	signed, _, err := utils.GenerateJWT(user, testSecret, expiry, "test")
	require.NoError(t, err)
	return signed
}

func TestAuthChain(t *testing.T) {
	approver := &domain.User{UserID: "u1", Role: domain.RoleApprover, UnitID: "county"}
	users := stubUsers{"u1": approver}

	tests := []struct {
		name   string
		header string
		roles  []domain.UserRole
		want   int
	}{
		{name: "missing header", want: http.StatusUnauthorized},
		{name: "malformed header", header: "Token abc", want: http.StatusUnauthorized},
		{name: "bad signature", header: "Bearer " + func() string {
			s, _, _ := utils.GenerateJWT(approver, "other", time.Hour, "test")
			return s
		}(), want: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + token(t, approver, -time.Minute), want: http.StatusUnauthorized},
		{name: "unknown subject", header: "Bearer " + token(t, &domain.User{UserID: "ghost"}, time.Hour), want: http.StatusUnauthorized},
		{name: "valid", header: "Bearer " + token(t, approver, time.Hour), want: http.StatusOK},
		{name: "role allowed", header: "Bearer " + token(t, approver, time.Hour), roles: []domain.UserRole{domain.RoleApprover, domain.RoleAdmin}, want: http.StatusOK},
		{name: "role denied", header: "Bearer " + token(t, approver, time.Hour), roles: []domain.UserRole{domain.RoleAdmin}, want: http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(users, tt.roles...)
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
			assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
			if tt.want == http.StatusOK {
				assert.Equal(t, "county", w.Body.String())
			}
		})
	}
}

func TestStructuredLoggingMiddleware_KeepsIncomingRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(middleware.GetLoggerFromCtx(context.Background())))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get("X-Request-ID"))
}

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rate, err := limiter.NewRateFromFormatted("2-M")
	require.NoError(t, err)
	r := gin.New()
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))
	r.POST("/login", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/login", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}
