package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateOTP returns a random numeric code of the given length with no
// leading zero, drawn from crypto/rand.
func GenerateOTP(length int) (string, error) {
	if length < 4 || length > 18 {
		return "", fmt.Errorf("otp length %d out of range", length)
	}

	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length-1)), nil)
	span := new(big.Int).Mul(low, big.NewInt(9))

	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return n.Add(n, low).String(), nil
}
