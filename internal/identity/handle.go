// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity

import (
	"strconv"
	"strings"
	"unicode"
)

// MaxHandleLength bounds generated handles.
const MaxHandleLength = 20

// GenerateHandle derives a unique display handle from a name pair. The base
// is the concatenated names with everything that is not a letter or digit
// removed, lowercased, and truncated to 20 runes. If the base is taken,
// suffixes 0, 1, 2, … are probed in order; the base is trimmed so the
// suffixed handle still fits the 20-rune bound.
//
// The function is pure: given the same names and the same existing-handle
// set it always returns the same handle.
func GenerateHandle(first, last string, existing map[string]struct{}) string {
	base := handleBase(first + last)

	if _, taken := existing[base]; !taken {
		return base
	}

	for i := 0; ; i++ {
		suffix := strconv.Itoa(i)
		candidate := withSuffix(base, suffix)
		if _, taken := existing[candidate]; !taken {
			return candidate
		}
	}
}

// handleBase strips non-alphanumerics, lowercases, and truncates.
func handleBase(name string) string {
	var b strings.Builder
	n := 0
	for _, r := range strings.ToLower(name) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		b.WriteRune(r)
		n++
		if n == MaxHandleLength {
			break
		}
	}
	return b.String()
}

// withSuffix appends the probe digits, trimming the base when the result
// would exceed the handle bound.
func withSuffix(base, suffix string) string {
	runes := []rune(base)
	if len(runes)+len(suffix) > MaxHandleLength {
		runes = runes[:MaxHandleLength-len(suffix)]
	}
	return string(runes) + suffix
}
