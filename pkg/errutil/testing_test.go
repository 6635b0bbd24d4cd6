// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package errutil_test

import (
	"errors"
	"testing"

	"github.com/samber/oops"

	"github.com/driftline/driftline/pkg/errutil"
)

var errSentinel = errors.New("sentinel")

func TestAssertErrorCode(t *testing.T) {
	err := oops.Code("SOME_CODE").Errorf("failed")
	errutil.AssertErrorCode(t, err, "SOME_CODE")
}

func TestAssertErrorKind(t *testing.T) {
	err := oops.Code("SOME_CODE").Wrapf(errSentinel, "failed")
	errutil.AssertErrorKind(t, err, errSentinel)
}

func TestAssertErrorContext(t *testing.T) {
	err := oops.Code("SOME_CODE").With("user_id", int64(7)).Errorf("failed")
	errutil.AssertErrorContext(t, err, "user_id", int64(7))
}
