package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "this_is_a_very_long_secret_key_with_32_plus_characters"

func TestNewJWTManager(t *testing.T) {
	_, err := NewJWTManager("", time.Hour)
	assert.Error(t, err)

	_, err = NewJWTManager(testSecret, 0)
	assert.Error(t, err)

	m, err := NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)
	assert.NotNil(t, m)
}

func TestGenerateAndValidateToken(t *testing.T) {
	m, err := NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)

	token, err := m.GenerateToken("u-1", "luffy@example.com", "USER")
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, "u-1", claims.User.ID)
	assert.Equal(t, "luffy@example.com", claims.User.Email)
	assert.Equal(t, "u-1", claims.Subject)
}

func TestValidateToken_Expired(t *testing.T) {
	m, err := NewJWTManager(testSecret, time.Minute)
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	token, err := m.GenerateToken("u-1", "a@b.c", "USER")
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	issuer, err := NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)
	verifier, err := NewJWTManager("another_secret_that_is_long_enough_too", time.Hour)
	require.NoError(t, err)

	token, err := issuer.GenerateToken("u-1", "a@b.c", "SUPERADMIN")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.ErrorIs(t, err, jwt.ErrTokenSignatureInvalid)
}

func TestValidateToken_RejectsNoneAlgorithm(t *testing.T) {
	m, err := NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)

	unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{
		Role: "SUPERADMIN",
		User: TokenUser{ID: "admin"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	token, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateToken_Malformed(t *testing.T) {
	m, err := NewJWTManager(testSecret, time.Hour)
	require.NoError(t, err)

	_, err = m.ValidateToken("not.a.token")
	assert.Error(t, err)
}
