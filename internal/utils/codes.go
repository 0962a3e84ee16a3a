package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const ResetCodeLength = 6

var resetCodeSpace = big.NewInt(1_000_000)

// NewResetCode draws uniformly from 000000-999999 and zero-pads to six digits.
func NewResetCode() (string, error) {
	n, err := rand.Int(rand.Reader, resetCodeSpace)
	if err != nil {
		return "", fmt.Errorf("reset code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
