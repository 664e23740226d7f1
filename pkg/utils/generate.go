package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
)

// Login codes are drawn uniformly over [100000, 999999], so every code is a
// 6-character string by construction and leading zeros never occur.
const (
	loginCodeMin  = 100000
	loginCodeSpan = 900000
)

// GenerateLoginCode draws a 6-digit numeric login code.
func GenerateLoginCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(loginCodeSpan))
	if err != nil {
		return "", fmt.Errorf("draw login code: %w", err)
	}

	return strconv.FormatInt(loginCodeMin+n.Int64(), 10), nil
}
