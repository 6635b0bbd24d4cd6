// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package errutil provides helpers for logging and asserting on structured
// errors.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError logs err at error level. Structured errors contribute their code
// and each context entry as individual attributes, so log pipelines can
// filter on them directly; plain errors contribute only their message.
func LogError(logger *slog.Logger, msg string, err error) {
	attrs := []any{"error", err.Error()}

	if oopsErr, ok := oops.AsOops(err); ok {
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		for key, value := range oopsErr.Context() {
			attrs = append(attrs, key, value)
		}
	}

	logger.Error(msg, attrs...)
}
