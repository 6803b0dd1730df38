package utils

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	userID := uuid.New()

	tok, err := GenerateToken("secret", userID, time.Hour)
	require.NoError(t, err)

	got, err := ParseToken("secret", tok)
	require.NoError(t, err)
	assert.Equal(t, userID, got)
}

func TestGenerateToken_UniquePerIssue(t *testing.T) {
	userID := uuid.New()

	a, err := GenerateToken("secret", userID, time.Hour)
	require.NoError(t, err)
	b, err := GenerateToken("secret", userID, time.Hour)
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestGenerateToken_MissingSecret(t *testing.T) {
	_, err := GenerateToken("", uuid.New(), time.Hour)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = ParseToken("", "whatever")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestParseToken_Expired(t *testing.T) {
	tok, err := GenerateToken("secret", uuid.New(), -time.Second)
	require.NoError(t, err)

	_, err = ParseToken("secret", tok)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))
}

func TestParseToken_WrongSecret(t *testing.T) {
	tok, err := GenerateToken("right", uuid.New(), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken("wrong", tok)
	assert.Error(t, err)
}

func TestParseToken_Malformed(t *testing.T) {
	_, err := ParseToken("secret", "not.a.jwt")
	assert.Error(t, err)
}

func TestParseToken_RejectsOtherAlgorithms(t *testing.T) {
	claims := jwt.MapClaims{"id": uuid.NewString(), "exp": time.Now().Add(time.Hour).Unix()}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("secret"))
	require.NoError(t, err)

	_, err = ParseToken("secret", tok)
	assert.Error(t, err)
}
