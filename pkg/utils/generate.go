package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// ==================== VERIFICATION CODE ====================

const (
	codeMin = 100000
	codeMax = 999999
)

// GenerateVerificationCode returns a 6-digit code drawn uniformly from 100000..999999.
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeMax-codeMin+1))
	if err != nil {
		return "", fmt.Errorf("generate verification code: %w", err)
	}
	return fmt.Sprintf("%d", n.Int64()+codeMin), nil
}
