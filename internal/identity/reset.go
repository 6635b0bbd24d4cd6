// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity

import (
	"crypto/rand"
	"math/big"

	"github.com/samber/oops"
)

// Reset code configuration.
const (
	// ResetCodeLength is the length of a one-time reset code.
	ResetCodeLength = 10

	// resetCodeAlphabet is the set of characters codes are drawn from.
	resetCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// GenerateResetCode creates a one-time password reset code: ResetCodeLength
// characters drawn uniformly from letters and digits using crypto/rand.
func GenerateResetCode() (string, error) {
	max := big.NewInt(int64(len(resetCodeAlphabet)))
	code := make([]byte, ResetCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", oops.Code("RESET_CODE_GENERATE_FAILED").Wrap(err)
		}
		code[i] = resetCodeAlphabet[n.Int64()]
	}
	return string(code), nil
}
