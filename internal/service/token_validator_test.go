package service

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/student-portal-api/internal/models"
	appErrors "github.com/noah-isme/student-portal-api/pkg/errors"
)

const testSecret = "portal-test-secret"

func signToken(t *testing.T, method jwt.SigningMethod, key interface{}, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(method, claims).SignedString(key)
	require.NoError(t, err)
	return token
}

func baseClaims() *models.JWTClaims {
	return &models.JWTClaims{
		Email: "s@uni.edu",
		Role:  "authenticated",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "user-42",
			Issuer:    "portal-auth",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func TestTokenValidatorAcceptsProviderToken(t *testing.T) {
	v := NewTokenValidator(TokenConfig{Secret: testSecret, Issuer: "portal-auth", Audience: []string{"authenticated"}})

	claims, err := v.ValidateToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), baseClaims()))
	require.NoError(t, err)
	assert.Equal(t, "user-42", claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.False(t, claims.IsAdmin())
}

func TestTokenValidatorAdminRole(t *testing.T) {
	v := NewTokenValidator(TokenConfig{Secret: testSecret})
	c := baseClaims()
	c.Role = "admin"

	claims, err := v.ValidateToken(signToken(t, jwt.SigningMethodHS256, []byte(testSecret), c))
	require.NoError(t, err)
	assert.True(t, claims.IsAdmin())
}

func TestTokenValidatorRejects(t *testing.T) {
	v := NewTokenValidator(TokenConfig{Secret: testSecret, Issuer: "portal-auth", Audience: []string{"authenticated"}})

	expired := baseClaims()
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Minute))

	wrongAudience := baseClaims()
	wrongAudience.Audience = jwt.ClaimStrings{"service_role"}

	wrongIssuer := baseClaims()
	wrongIssuer.Issuer = "elsewhere"

	noExpiry := baseClaims()
	noExpiry.ExpiresAt = nil

	noSubject := baseClaims()
	noSubject.Subject = ""

	cases := map[string]string{
		"garbage":        "not-a-token",
		"wrong secret":   signToken(t, jwt.SigningMethodHS256, []byte("other"), baseClaims()),
		"wrong method":   signToken(t, jwt.SigningMethodHS512, []byte(testSecret), baseClaims()),
		"expired":        signToken(t, jwt.SigningMethodHS256, []byte(testSecret), expired),
		"wrong audience": signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongAudience),
		"wrong issuer":   signToken(t, jwt.SigningMethodHS256, []byte(testSecret), wrongIssuer),
		"no expiry":      signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noExpiry),
		"no subject":     signToken(t, jwt.SigningMethodHS256, []byte(testSecret), noSubject),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := v.ValidateToken(token)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestTokenValidatorWithoutSecret(t *testing.T) {
	v := NewTokenValidator(TokenConfig{})
	_, err := v.ValidateToken("anything")
	require.Error(t, err)
}
