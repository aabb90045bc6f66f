package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWTService() *JWTService {
	return NewJWTService(JWTConfig{
		SigningKey: "test-signing-key",
		Issuer:     "aqhub-test",
	})
}

func TestJWTService_GenerateAndValidate(t *testing.T) {
	svc := testJWTService()
	user := &User{ID: "usr_123", Email: "test@example.com"}

	token, expiresAt, err := svc.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Seven day sessions.
	assert.WithinDuration(t, time.Now().Add(TokenExpiry), expiresAt, time.Minute)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "usr_123", claims.UserID)
	assert.Equal(t, "usr_123", claims.Subject)
	assert.Equal(t, "aqhub-test", claims.Issuer)
}

func TestJWTService_RejectsWrongKey(t *testing.T) {
	svc := testJWTService()
	other := NewJWTService(JWTConfig{SigningKey: "different-key", Issuer: "aqhub-test"})

	token, _, err := svc.GenerateToken(&User{ID: "usr_123"})
	require.NoError(t, err)

	_, err = other.ValidateToken(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsExpiredToken(t *testing.T) {
	svc := testJWTService()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "aqhub-test",
			Subject:   "usr_123",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
		},
		UserID: "usr_123",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestJWTService_RejectsUnsignedAlgorithm(t *testing.T) {
	svc := testJWTService()

	token := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "aqhub-test",
			Subject:   "usr_123",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: "usr_123",
	})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = svc.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTService_RejectsGarbage(t *testing.T) {
	svc := testJWTService()

	_, err := svc.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
