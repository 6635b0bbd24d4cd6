// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/oops"
)

// ProfileImageResolver supplies the profile-image URL recorded on a new
// account. Image upload and cropping live in the profile subsystem.
type ProfileImageResolver interface {
	// URLFor returns the image URL for a user. origin is "default" for the
	// stock image or "custom" for an uploaded one.
	URLFor(userID int64, origin string) string
}

// Profile image origins.
const (
	ImageOriginDefault = "default"
	ImageOriginCustom  = "custom"
)

// AuthResult is returned by Register and Login: the authenticated user id,
// the session id minted for this authentication, and the bearer token
// binding the two.
type AuthResult struct {
	UserID    int64
	SessionID int64
	Token     string
}

// Service implements account registration and login against the directory
// store.
type Service struct {
	store  Store
	hasher PasswordHasher
	tokens *TokenCodec
	images ProfileImageResolver
	logger *slog.Logger

	// legacy verifies digests the active hasher flags for upgrade, so a
	// directory hashed under the old scheme keeps authenticating while
	// logins migrate it.
	legacy PasswordHasher
}

// NewService creates a Service with a no-op logger.
// Returns an error if any required dependency is nil.
func NewService(store Store, hasher PasswordHasher, tokens *TokenCodec, images ProfileImageResolver) (*Service, error) {
	return NewServiceWithLogger(store, hasher, tokens, images, slog.New(slog.DiscardHandler))
}

// NewServiceWithLogger creates a Service with the provided logger.
// Returns an error if any required dependency is nil.
func NewServiceWithLogger(store Store, hasher PasswordHasher, tokens *TokenCodec, images ProfileImageResolver, logger *slog.Logger) (*Service, error) {
	if store == nil {
		return nil, oops.Errorf("directory store is required")
	}
	if hasher == nil {
		return nil, oops.Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Errorf("token codec is required")
	}
	if images == nil {
		return nil, oops.Errorf("profile image resolver is required")
	}
	if logger == nil {
		return nil, oops.Errorf("logger is required")
	}
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		images: images,
		logger: logger,
		legacy: NewSHA256Hasher(),
	}, nil
}

// Register creates a new account. The whole read-modify-write — uniqueness
// checks, handle generation, id and session allocation, insertion — runs in
// one store transaction. The first user ever registered becomes the
// workspace owner and brings the workspace stats scaffold into existence.
func (s *Service) Register(ctx context.Context, email, password, nameFirst, nameLast string) (result *AuthResult, err error) {
	defer func() { registrationsTotal.WithLabelValues(metricStatus(err)).Inc() }()

	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(password); err != nil {
		return nil, err
	}
	if err := ValidateName(nameFirst, nameLast); err != nil {
		return nil, err
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("AUTH_REGISTER_FAILED").With("operation", "hash password").Wrap(err)
	}

	var userID, sessionID int64
	err = s.store.Update(ctx, func(snap *Snapshot) error {
		if snap.EmailTaken(email, 0) {
			return oops.Code("AUTH_EMAIL_TAKEN").
				With("email", email).
				Wrapf(ErrInvalidInput, "email is not valid or taken")
		}

		now := time.Now().UTC()
		userID = snap.NextUserID()
		sessionID = snap.AllocateSessionID()

		permission := PermissionMember
		if userID == 1 {
			permission = PermissionOwner
		}

		user := &User{
			ID:               userID,
			Email:            email,
			PasswordHash:     digest,
			NameFirst:        nameFirst,
			NameLast:         nameLast,
			Handle:           GenerateHandle(nameFirst, nameLast, snap.Handles()),
			Permission:       permission,
			ActiveSessionIDs: []int64{sessionID},
			ProfileImageURL:  s.images.URLFor(userID, ImageOriginDefault),
			Stats:            NewUserStats(now),
			CreatedAt:        now,
		}
		snap.Users = append(snap.Users, user)

		// The workspace scaffold exists from the moment the first user does.
		if snap.Workspace == nil {
			snap.Workspace = NewWorkspaceStats(now)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sessionsIssuedTotal.Inc()

	token, err := s.tokens.Issue(userID, sessionID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user registered",
		"user_id", userID,
		"session_id", sessionID,
	)

	return &AuthResult{UserID: userID, SessionID: sessionID, Token: token}, nil
}

// Login authenticates an email/password pair, allocates a fresh session id,
// records it against the user, and issues a token. Unknown email and wrong
// password are both input errors, distinguished only by message text.
//
// Password verification is deliberately slow, so it runs outside the
// directory critical section; the digest is re-checked under the lock in
// case a reset landed in between.
func (s *Service) Login(ctx context.Context, email, password string) (result *AuthResult, err error) {
	defer func() { loginsTotal.WithLabelValues(metricStatus(err)).Inc() }()

	snap, err := s.store.Get(ctx)
	if err != nil {
		return nil, err
	}

	user := snap.UserByEmail(email)
	if user == nil {
		// Still burn a verification, against a dummy digest in the active
		// hasher's format, so unknown emails cost the same to probe as
		// wrong passwords.
		_, _ = s.hasher.Verify(password, s.hasher.DummyDigest()) //nolint:errcheck // result is deliberately unused
		return nil, oops.Code("AUTH_UNKNOWN_EMAIL").
			Wrapf(ErrInvalidInput, "account does not exist or email is wrong")
	}

	digest := user.PasswordHash
	if !s.verifyPassword(password, digest) {
		return nil, oops.Code("AUTH_WRONG_PASSWORD").
			With("user_id", user.ID).
			Wrapf(ErrInvalidInput, "password is wrong")
	}

	var upgraded string
	if s.hasher.NeedsUpgrade(digest) {
		if rehashed, hashErr := s.hasher.Hash(password); hashErr == nil {
			upgraded = rehashed
		}
	}

	var userID, sessionID int64
	err = s.store.Update(ctx, func(snap *Snapshot) error {
		user := snap.UserByEmail(email)
		if user == nil {
			return oops.Code("AUTH_UNKNOWN_EMAIL").
				Wrapf(ErrInvalidInput, "account does not exist or email is wrong")
		}

		if user.PasswordHash == digest {
			if upgraded != "" {
				user.PasswordHash = upgraded
			}
		} else if !s.verifyPassword(password, user.PasswordHash) {
			// The digest changed while we were verifying. The presented
			// password has to match the current one to mint a session.
			return oops.Code("AUTH_WRONG_PASSWORD").
				With("user_id", user.ID).
				Wrapf(ErrInvalidInput, "password is wrong")
		}

		userID = user.ID
		sessionID = snap.AllocateSessionID()
		user.ActiveSessionIDs = append(user.ActiveSessionIDs, sessionID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sessionsIssuedTotal.Inc()

	token, err := s.tokens.Issue(userID, sessionID)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "user logged in",
		"user_id", userID,
		"session_id", sessionID,
	)

	return &AuthResult{UserID: userID, SessionID: sessionID, Token: token}, nil
}

// verifyPassword checks a password against a stored digest, falling back to
// the legacy scheme for digests the active hasher wants upgraded.
func (s *Service) verifyPassword(password, digest string) bool {
	ok, err := s.hasher.Verify(password, digest)
	if err == nil && ok {
		return true
	}
	if s.hasher.NeedsUpgrade(digest) {
		ok, err = s.legacy.Verify(password, digest)
		return err == nil && ok
	}
	return false
}
