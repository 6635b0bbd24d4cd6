// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/oops"

	"github.com/driftline/driftline/pkg/errutil"
)

// Notifier delivers out-of-band messages to users. The reset flow treats
// delivery as fire-and-forget; retry and failure policy belong to the
// implementation.
type Notifier interface {
	Send(ctx context.Context, address, message string) error
}

// PasswordResetService implements the one-time reset-code flow.
type PasswordResetService struct {
	store    Store
	hasher   PasswordHasher
	notifier Notifier
	logger   *slog.Logger
}

// NewPasswordResetService creates a PasswordResetService with a no-op
// logger. Returns an error if any required dependency is nil.
func NewPasswordResetService(store Store, hasher PasswordHasher, notifier Notifier) (*PasswordResetService, error) {
	return NewPasswordResetServiceWithLogger(store, hasher, notifier, slog.New(slog.DiscardHandler))
}

// NewPasswordResetServiceWithLogger creates a PasswordResetService with the
// provided logger. Returns an error if any required dependency is nil.
func NewPasswordResetServiceWithLogger(store Store, hasher PasswordHasher, notifier Notifier, logger *slog.Logger) (*PasswordResetService, error) {
	if store == nil {
		return nil, oops.Errorf("directory store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if notifier == nil {
		return nil, oops.Errorf("notifier is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &PasswordResetService{
		store:    store,
		hasher:   hasher,
		notifier: notifier,
		logger:   logger,
	}, nil
}

// Request starts a password reset for the account holding email, if one
// exists and has no active sessions. The generated code is stored on the
// user and handed to the notifier addressed to that email.
//
// Request never returns an error and never signals whether the email is
// registered or eligible: surfacing either would let callers enumerate
// accounts. Internal failures are logged and swallowed.
func (s *PasswordResetService) Request(ctx context.Context, email string) {
	resetRequestsTotal.Inc()

	// The code is generated before the directory is consulted so the
	// eligible and ineligible paths do comparable work.
	code, err := GenerateResetCode()
	if err != nil {
		errutil.LogError(s.logger, "reset request failed", err)
		return
	}

	eligible := false
	err = s.store.Update(ctx, func(snap *Snapshot) error {
		user := snap.UserByEmail(email)
		if user == nil || user.HasActiveSessions() {
			return nil
		}
		user.PendingResetCode = code
		eligible = true
		return nil
	})
	if err != nil {
		errutil.LogError(s.logger, "reset request failed", err)
		return
	}
	if !eligible {
		return
	}

	// Delivery happens outside the directory critical section; a slow or
	// failing network path must not stall unrelated requests.
	message := fmt.Sprintf("Your password reset code is %s", code)
	if err := s.notifier.Send(ctx, email, message); err != nil {
		errutil.LogError(s.logger, "reset notification dispatch failed", err)
	}
}

// Redeem consumes a reset code: it validates the replacement password,
// finds the user holding the code, stores the new digest, and clears the
// code so it cannot be used twice.
func (s *PasswordResetService) Redeem(ctx context.Context, code, newPassword string) (err error) {
	defer func() { resetRedeemsTotal.WithLabelValues(metricStatus(err)).Inc() }()

	if err := ValidatePassword(newPassword); err != nil {
		return err
	}

	// Hash before taking the directory lock; argon2id is deliberately slow.
	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_REDEEM_FAILED").With("operation", "hash password").Wrap(err)
	}

	err = s.store.Update(ctx, func(snap *Snapshot) error {
		user := snap.UserByResetCode(code)
		if user == nil {
			return oops.Code("RESET_CODE_INVALID").
				Wrapf(ErrInvalidInput, "reset code is wrong")
		}
		user.PasswordHash = digest
		user.PendingResetCode = ""
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "password reset redeemed")
	return nil
}
