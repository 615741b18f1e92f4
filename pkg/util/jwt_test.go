package util

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	token, err := GenerateJWT("user-1", "secret", time.Hour)
	require.NoError(t, err)

	userID, err := ParseJWT(token, "secret")
	require.NoError(t, err)
	assert.Equal(t, "user-1", userID)

	_, err = ParseJWT(token, "other")
	assert.Error(t, err)
}

func TestParseJWT_Expired(t *testing.T) {
	token, err := GenerateJWT("user-1", "secret", -time.Minute)
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)
}

func TestParseJWT_MissingUserID(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseJWT(token, "secret")
	assert.ErrorIs(t, err, jwt.ErrTokenMalformed)
}

func TestExtractToken(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	assert.Empty(t, ExtractToken(r))

	r.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, "abc", ExtractToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, ExtractToken(r))
}
