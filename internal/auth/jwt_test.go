package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smartmobility/tripplanner/internal/auth"
)

const (
	testIssuer   = "https://id.smartmobility.co"
	testAudience = "tripplanner-api"
)

func newJWTService(key string) *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: key,
		Issuer:     testIssuer,
		Audience:   testAudience,
	})
}

func TestJWTService_GenerateAndValidateAccessToken(t *testing.T) {
	svc := newJWTService("test-secret-key-for-testing-only")

	token, expiresAt, err := svc.GenerateAccessToken(auth.Principal{UserID: "usr_test123", Name: "Ana"}, 0)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(auth.DefaultAccessTokenExpiry), expiresAt, 5*time.Second)

	claims, err := svc.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_test123", claims.UserID)
	assert.Equal(t, "usr_test123", claims.Subject)
	assert.Equal(t, testIssuer, claims.Issuer)
	assert.Equal(t, auth.Principal{UserID: "usr_test123", Name: "Ana"}, claims.Principal())
}

func TestJWTService_InvalidToken(t *testing.T) {
	svc := newJWTService("test-secret-key-for-testing-only")

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.valid.jwt"},
		{"invalid base64", "xxx.yyy.zzz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.ValidateAccessToken(tt.token)
			assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
		})
	}
}

func TestJWTService_WrongSigningKey(t *testing.T) {
	token, _, err := newJWTService("key-one").GenerateAccessToken(auth.Principal{UserID: "usr_test123"}, time.Hour)
	require.NoError(t, err)

	_, err = newJWTService("key-two").ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}

func TestJWTService_WrongIssuerOrAudience(t *testing.T) {
	token, _, err := newJWTService("test-key").GenerateAccessToken(auth.Principal{UserID: "usr_test123"}, time.Hour)
	require.NoError(t, err)

	otherIssuer := auth.NewJWTService(auth.JWTConfig{SigningKey: "test-key", Issuer: "other", Audience: testAudience})
	_, err = otherIssuer.ValidateAccessToken(token)
	assert.Error(t, err)

	otherAudience := auth.NewJWTService(auth.JWTConfig{SigningKey: "test-key", Issuer: testIssuer, Audience: "other"})
	_, err = otherAudience.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTService_ExpiredToken(t *testing.T) {
	claims := auth.JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "usr_test123",
			Audience:  jwt.ClaimStrings{testAudience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute)),
		},
		UserID: "usr_test123",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)

	_, err = newJWTService("test-key").ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrAccessTokenExpired)
}

func TestJWTService_SubjectOnlyToken(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Issuer:    testIssuer,
		Subject:   "usr_from_sub",
		Audience:  jwt.ClaimStrings{testAudience},
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-key"))
	require.NoError(t, err)

	got, err := newJWTService("test-key").ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_from_sub", got.UserID)
}
