package utilities

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"servewise-backend/internal/model"
)

var (
	secretsMu     sync.RWMutex
	accessSecret  = []byte("change-me-access")
	refreshSecret = []byte("change-me-refresh")
)

// Token expiration times
const (
	DefaultAccessTokenExpiry = time.Minute * 15
	RefreshTokenExpiry       = time.Hour * 24 * 7
)

var accessTokenExpiry = DefaultAccessTokenExpiry

var (
	ErrInvalidToken = errors.New("invalid or malformed token")
	ErrTokenExpired = errors.New("token has expired")
)

type Claims struct {
	EmployeeID   uuid.UUID `json:"employee_id"`
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Role         string    `json:"role"`
	Email        string    `json:"email"`
	jwt.RegisteredClaims
}

// SetTokenSecrets replaces the signing keys; called once at startup from config.
func SetTokenSecrets(access, refresh string) {
	secretsMu.Lock()
	defer secretsMu.Unlock()
	if access != "" {
		accessSecret = []byte(access)
	}
	if refresh != "" {
		refreshSecret = []byte(refresh)
	}
}

// SetAccessTokenExpiry sets the access token lifetime; non-positive values
// restore the default.
func SetAccessTokenExpiry(d time.Duration) {
	secretsMu.Lock()
	defer secretsMu.Unlock()
	if d <= 0 {
		d = DefaultAccessTokenExpiry
	}
	accessTokenExpiry = d
}

func secretFor(isRefresh bool) []byte {
	secretsMu.RLock()
	defer secretsMu.RUnlock()
	if isRefresh {
		return refreshSecret
	}
	return accessSecret
}

// GenerateTokens creates both access and refresh tokens
func GenerateTokens(employee *model.Employee) (string, string, error) {
	secretsMu.RLock()
	expiry := accessTokenExpiry
	secretsMu.RUnlock()
	accessToken, err := generateToken(employee, secretFor(false), expiry)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := generateToken(employee, secretFor(true), RefreshTokenExpiry)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

// ValidateToken verifies the token and extracts claims
func ValidateToken(tokenStr string, isRefresh bool) (*Claims, error) {
	secret := secretFor(isRefresh)
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// RefreshTokens generates a new access and refresh token using a valid refresh token
func RefreshTokens(refreshToken string) (string, string, error) {
	claims, err := ValidateToken(refreshToken, true)
	if err != nil {
		return "", "", err
	}
	return GenerateTokens(&model.Employee{
		ID:           claims.EmployeeID,
		RestaurantID: claims.RestaurantID,
		Role:         claims.Role,
		Email:        claims.Email,
	})
}

func generateToken(employee *model.Employee, secret []byte, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		EmployeeID:   employee.ID,
		RestaurantID: employee.RestaurantID,
		Role:         employee.Role,
		Email:        employee.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			Subject:   employee.ID.String(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}
