package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-purposes"

func newTestJWTService() *JWTService {
	return NewJWTService(testSecret, 15*time.Minute, 7*24*time.Hour)
}

func TestJWTService_AccessTokenRoundTrip(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateAccessToken(42, "ada@example.com", RoleAdmin)
	require.NoError(t, err)
	assert.True(t, expiresAt.After(time.Now()))
	assert.True(t, expiresAt.Before(time.Now().Add(16*time.Minute)))

	claims, err := service.ValidateAccessToken(token)

	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.CustomerID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "42", claims.Subject)
	assert.NotEmpty(t, claims.ID)
	assert.True(t, claims.IsAdmin())
}

func TestJWTService_AccessTokenExpired(t *testing.T) {
	service := newTestJWTService()
	issued := time.Now().Add(-time.Hour)
	service.now = func() time.Time { return issued }

	token, _, err := service.GenerateAccessToken(1, "a@example.com", RoleCustomer)
	require.NoError(t, err)

	service.now = time.Now
	claims, err := service.ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
	assert.Nil(t, claims)
}

func TestJWTService_ValidateAccessToken_Invalid(t *testing.T) {
	service := newTestJWTService()

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"random string", "not-a-valid-token"},
		{"malformed JWT", "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9.invalid.signature"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			claims, err := service.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
			assert.Nil(t, claims)
		})
	}
}

func TestJWTService_WrongSignature(t *testing.T) {
	other := NewJWTService("another-secret-key-for-testing-only", 15*time.Minute, time.Hour)
	token, _, err := other.GenerateAccessToken(1, "a@example.com", RoleCustomer)
	require.NoError(t, err)

	_, err = newTestJWTService().ValidateAccessToken(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_WrongAlgorithm(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		CustomerID: 1,
		TokenType:  tokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "retail-shop",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	claims, err := newTestJWTService().ValidateAccessToken(tokenString)

	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Nil(t, claims)
}

func TestJWTService_RefreshTokenRoundTrip(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateRefreshToken(7, "bob@example.com")
	require.NoError(t, err)
	assert.True(t, expiresAt.Before(time.Now().Add(8*24*time.Hour)))

	claims, err := service.ValidateRefreshToken(token)

	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.CustomerID)
	assert.Equal(t, "bob@example.com", claims.Email)
	assert.Empty(t, claims.Role)
}

func TestJWTService_TokenTypesAreNotInterchangeable(t *testing.T) {
	service := newTestJWTService()

	refresh, _, err := service.GenerateRefreshToken(7, "bob@example.com")
	require.NoError(t, err)
	access, _, err := service.GenerateAccessToken(7, "bob@example.com", RoleCustomer)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(refresh)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = service.ValidateRefreshToken(access)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_GetExpiry(t *testing.T) {
	service := NewJWTService(testSecret, 30*time.Minute, 14*24*time.Hour)

	assert.Equal(t, 30*time.Minute, service.GetAccessTokenExpiry())
	assert.Equal(t, 14*24*time.Hour, service.GetRefreshTokenExpiry())
}
