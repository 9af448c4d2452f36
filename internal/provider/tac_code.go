package provider

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// TACCodeLength is the number of digits in a verification code.
const TACCodeLength = 6

var tacCodeSpace = big.NewInt(1_000_000)

// NewTACCode returns a zero-padded six digit code from crypto/rand.
func NewTACCode() (string, error) {
	n, err := rand.Int(rand.Reader, tacCodeSpace)
	if err != nil {
		return "", fmt.Errorf("csprng: %w", err)
	}
	return fmt.Sprintf("%0*d", TACCodeLength, n.Int64()), nil
}
