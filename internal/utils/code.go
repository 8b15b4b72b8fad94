package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateNumericCode returns a random code of exactly n decimal digits with no leading zero
func GenerateNumericCode(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("code length must be positive")
	}

	low := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(low, big.NewInt(10)), low)

	r, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("failed to generate random number: %w", err)
	}

	return new(big.Int).Add(low, r).String(), nil
}

// GenerateState returns a random hex token for OAuth state parameters
func GenerateState() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return fmt.Sprintf("%x", b), nil
}
