package utils

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateOTP_Shape(t *testing.T) {
	for i := 0; i < 200; i++ {
		otp, err := GenerateOTP(6)
		require.NoError(t, err)
		require.Len(t, otp, 6)

		n, err := strconv.Atoi(otp)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, n, 100000)
		assert.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateOTP_OtherLengths(t *testing.T) {
	otp, err := GenerateOTP(8)
	require.NoError(t, err)
	assert.Len(t, otp, 8)
}

func TestGenerateOTP_Varies(t *testing.T) {
	seen := map[string]struct{}{}
	for i := 0; i < 50; i++ {
		otp, err := GenerateOTP(6)
		require.NoError(t, err)
		seen[otp] = struct{}{}
	}
	assert.Greater(t, len(seen), 40)
}

func TestGenerateOTP_RejectsBadLength(t *testing.T) {
	_, err := GenerateOTP(2)
	assert.Error(t, err)
	_, err = GenerateOTP(30)
	assert.Error(t, err)
}
