// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/samber/oops"
)

// Name length constraints (runes, inclusive).
const (
	MinNameLength = 1
	MaxNameLength = 50
)

// MinPasswordLength is the minimum accepted password length.
const MinPasswordLength = 6

// emailRegex is matched against the whole address: local part, @, domain,
// and a top-level segment of at least two letters.
var emailRegex = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)

// PermissionLevel is the coarse role recorded on every user. The first
// registered user is the workspace owner; everyone after that is a member.
type PermissionLevel int

const (
	PermissionOwner  PermissionLevel = 1
	PermissionMember PermissionLevel = 2
)

// String returns the lowercase name of the permission level.
func (p PermissionLevel) String() string {
	switch p {
	case PermissionOwner:
		return "owner"
	case PermissionMember:
		return "member"
	default:
		return "unknown"
	}
}

// User is a registered account. Users are owned by the directory snapshot;
// mutations go through Store.Update so invariants (unique email, unique
// handle, monotonic session ids) hold under concurrency.
type User struct {
	ID               int64           `json:"auth_user_id"`
	Email            string          `json:"email"`
	PasswordHash     string          `json:"password"`
	NameFirst        string          `json:"name_first"`
	NameLast         string          `json:"name_last"`
	Handle           string          `json:"name_handle"`
	Permission       PermissionLevel `json:"permission_id"`
	ActiveSessionIDs []int64         `json:"session_ids"`
	PendingResetCode string          `json:"reset_password,omitempty"`
	ProfileImageURL  string          `json:"profile_img_url"`
	Stats            UserStats       `json:"stats"`
	CreatedAt        time.Time       `json:"created_at"`
}

// CountStamp is one point in a usage time series.
type CountStamp struct {
	Count     int       `json:"count"`
	Timestamp time.Time `json:"time_stamp"`
}

// UserStats is the per-user usage scaffold initialised at registration.
// The series are appended to by the messaging subsystems, not by this core.
type UserStats struct {
	ChannelsJoined []CountStamp `json:"channels_joined"`
	DMsJoined      []CountStamp `json:"dms_joined"`
	MessagesSent   []CountStamp `json:"messages_sent"`
}

// NewUserStats returns a stats scaffold with a single zero entry per series,
// stamped at the given time.
func NewUserStats(now time.Time) UserStats {
	zero := []CountStamp{{Count: 0, Timestamp: now}}
	return UserStats{
		ChannelsJoined: append([]CountStamp(nil), zero...),
		DMsJoined:      append([]CountStamp(nil), zero...),
		MessagesSent:   append([]CountStamp(nil), zero...),
	}
}

// WorkspaceStats is the aggregate usage scaffold created when the first user
// registers. Owned by the statistics subsystem afterwards.
type WorkspaceStats struct {
	ChannelsExist []CountStamp `json:"channels_exist"`
	DMsExist      []CountStamp `json:"dms_exist"`
	MessagesExist []CountStamp `json:"messages_exist"`
}

// NewWorkspaceStats returns a workspace scaffold with zero entries stamped
// at the given time.
func NewWorkspaceStats(now time.Time) *WorkspaceStats {
	zero := []CountStamp{{Count: 0, Timestamp: now}}
	return &WorkspaceStats{
		ChannelsExist: append([]CountStamp(nil), zero...),
		DMsExist:      append([]CountStamp(nil), zero...),
		MessagesExist: append([]CountStamp(nil), zero...),
	}
}

// HasActiveSessions reports whether any session id is recorded against the
// user. Users with active sessions are not eligible for a password reset.
func (u *User) HasActiveSessions() bool {
	return len(u.ActiveSessionIDs) > 0
}

// clone returns a deep copy of the user.
func (u *User) clone() *User {
	c := *u
	c.ActiveSessionIDs = append([]int64(nil), u.ActiveSessionIDs...)
	c.Stats = UserStats{
		ChannelsJoined: append([]CountStamp(nil), u.Stats.ChannelsJoined...),
		DMsJoined:      append([]CountStamp(nil), u.Stats.DMsJoined...),
		MessagesSent:   append([]CountStamp(nil), u.Stats.MessagesSent...),
	}
	return &c
}

// ValidateEmail checks the shape of an email address. Uniqueness against
// the directory is checked separately via Snapshot.EmailTaken.
func ValidateEmail(email string) error {
	if !emailRegex.MatchString(email) {
		return oops.Code("AUTH_INVALID_EMAIL").
			With("email", email).
			Wrapf(ErrInvalidInput, "email is not valid")
	}
	return nil
}

// ValidatePassword checks the minimum password length. There is no upper
// bound and no character-class requirement.
func ValidatePassword(password string) error {
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return oops.Code("AUTH_INVALID_PASSWORD").
			With("min", MinPasswordLength).
			Wrapf(ErrInvalidInput, "password has to be at least %d characters long", MinPasswordLength)
	}
	return nil
}

// ValidateName checks that both name parts are between 1 and 50 runes.
func ValidateName(first, last string) error {
	for _, name := range []string{first, last} {
		n := utf8.RuneCountInString(name)
		if n < MinNameLength || n > MaxNameLength {
			return oops.Code("AUTH_INVALID_NAME").
				With("min", MinNameLength).
				With("max", MaxNameLength).
				Wrapf(ErrInvalidInput, "each name has to be between %d and %d characters long", MinNameLength, MaxNameLength)
		}
	}
	return nil
}
