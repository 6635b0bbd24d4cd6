// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package notify

import (
	"context"
	"log/slog"

	"github.com/samber/oops"
)

// LogNotifier writes messages to the log instead of delivering them. It is
// the fallback when no mail relay is configured, which keeps the reset flow
// usable in development.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier.
// Returns an error if the logger is nil.
func NewLogNotifier(logger *slog.Logger) (*LogNotifier, error) {
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &LogNotifier{logger: logger}, nil
}

// Send logs the message and succeeds.
func (n *LogNotifier) Send(ctx context.Context, address, message string) error {
	n.logger.InfoContext(ctx, "notification (no relay configured)",
		"address", address,
		"message", message,
	)
	return nil
}
