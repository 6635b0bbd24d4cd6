// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity

import "errors"

// Error kinds for the identity core. Every failure raised by this package
// wraps one of these sentinels, so callers can branch on taxonomy with
// errors.Is while the oops codes and messages carry the detail.
var (
	// ErrInvalidInput covers malformed or constraint-violating arguments:
	// bad email/password/name shape, duplicate email, bad credentials,
	// invalid reset code.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnauthorized is raised when identity cannot be established from a
	// presented token.
	ErrUnauthorized = errors.New("unauthorized")
)
