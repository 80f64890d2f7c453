package utilities

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"servewise-backend/internal/model"
)

func TestTokenRoundTrip(t *testing.T) {
	SetTokenSecrets("test-access", "test-refresh")
	emp := &model.Employee{ID: uuid.New(), RestaurantID: uuid.New(), Role: model.RoleManager, Email: "gm@example.com"}

	access, refresh, err := GenerateTokens(emp)
	require.NoError(t, err)

	claims, err := ValidateToken(access, false)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, claims.EmployeeID)
	assert.Equal(t, emp.RestaurantID, claims.RestaurantID)
	assert.Equal(t, model.RoleManager, claims.Role)

	_, err = ValidateToken(access, true)
	assert.ErrorIs(t, err, ErrInvalidToken, "an access token is not a refresh token")

	newAccess, _, err := RefreshTokens(refresh)
	require.NoError(t, err)
	claims, err = ValidateToken(newAccess, false)
	require.NoError(t, err)
	assert.Equal(t, emp.ID, claims.EmployeeID)
}

func TestAuthMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetTokenSecrets("test-access", "test-refresh")
	access, _, err := GenerateTokens(&model.Employee{ID: uuid.New(), RestaurantID: uuid.New(), Role: model.RoleEmployee})
	require.NoError(t, err)

	r := gin.New()
	r.Use(AuthMiddleware("/health"))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/lessons", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(CtxRole)) })
	r.POST("/templates", RequireRole(model.RoleManager), func(c *gin.Context) { c.Status(http.StatusCreated) })

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"public path", http.MethodGet, "/health", "", http.StatusOK},
		{"missing header", http.MethodGet, "/lessons", "", http.StatusUnauthorized},
		{"garbage token", http.MethodGet, "/lessons", "nope", http.StatusUnauthorized},
		{"valid token", http.MethodGet, "/lessons", access, http.StatusOK},
		{"wrong role", http.MethodPost, "/templates", access, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestAccessTokenExpiry(t *testing.T) {
	SetAccessTokenExpiry(2 * time.Minute)
	t.Cleanup(func() { SetAccessTokenExpiry(0) })

	access, _, err := GenerateTokens(&model.Employee{ID: uuid.New(), Role: model.RoleEmployee})
	require.NoError(t, err)
	claims, err := ValidateToken(access, false)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(2*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
}
