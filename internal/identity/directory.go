// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity

import "context"

// Snapshot is the directory state: every registered user, the process-wide
// session counter, and the aggregate workspace scaffold. It is the unit the
// store collaborator reads and writes; all consistency rules are expressed
// against it.
type Snapshot struct {
	Users          []*User         `json:"users"`
	SessionCounter int64           `json:"session_id"`
	Workspace      *WorkspaceStats `json:"workspace_stats,omitempty"`
}

// Store is the persistence boundary for the directory. Implementations must
// make Update atomic: the mutation function observes a consistent snapshot
// and its writes become visible all at once, so two concurrent
// registrations can never both observe the same next user id or the same
// free handle, and two redemptions can never both consume one reset code.
type Store interface {
	// Get returns a copy of the current snapshot. Mutating the returned
	// value does not affect the store.
	Get(ctx context.Context) (*Snapshot, error)

	// Set replaces the snapshot wholesale.
	Set(ctx context.Context, snap *Snapshot) error

	// Update runs fn against the current snapshot inside the store's
	// critical section and persists the result. If fn returns an error the
	// snapshot is left unchanged and the error is returned verbatim.
	Update(ctx context.Context, fn func(*Snapshot) error) error
}

// AllocateSessionID increments the session counter and returns the new
// value. Session ids are strictly increasing across the whole directory,
// shared by every user, and never reused. The first id ever allocated is 1.
func (s *Snapshot) AllocateSessionID() int64 {
	s.SessionCounter++
	return s.SessionCounter
}

// UserByID returns the user with the given id, or nil.
func (s *Snapshot) UserByID(id int64) *User {
	for _, u := range s.Users {
		if u.ID == id {
			return u
		}
	}
	return nil
}

// UserByEmail returns the user with the given email (case-sensitive), or
// nil.
func (s *Snapshot) UserByEmail(email string) *User {
	for _, u := range s.Users {
		if u.Email == email {
			return u
		}
	}
	return nil
}

// EmailTaken reports whether a user other than excludeID already holds the
// email. excludeID 0 excludes nobody (registration).
func (s *Snapshot) EmailTaken(email string, excludeID int64) bool {
	for _, u := range s.Users {
		if u.Email == email && u.ID != excludeID {
			return true
		}
	}
	return false
}

// Handles returns the set of handles currently in use.
func (s *Snapshot) Handles() map[string]struct{} {
	handles := make(map[string]struct{}, len(s.Users))
	for _, u := range s.Users {
		handles[u.Handle] = struct{}{}
	}
	return handles
}

// UserByResetCode returns the user whose pending reset code equals code, or
// nil. The empty code never matches: users without a pending reset store
// the empty string.
func (s *Snapshot) UserByResetCode(code string) *User {
	if code == "" {
		return nil
	}
	for _, u := range s.Users {
		if u.PendingResetCode == code {
			return u
		}
	}
	return nil
}

// NextUserID returns the id the next registered user will receive: one
// greater than the current directory size, so the first user gets 1.
func (s *Snapshot) NextUserID() int64 {
	return int64(len(s.Users)) + 1
}

// Clone returns a deep copy of the snapshot.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		SessionCounter: s.SessionCounter,
	}
	if s.Users != nil {
		c.Users = make([]*User, len(s.Users))
		for i, u := range s.Users {
			c.Users[i] = u.clone()
		}
	}
	if s.Workspace != nil {
		w := &WorkspaceStats{
			ChannelsExist: append([]CountStamp(nil), s.Workspace.ChannelsExist...),
			DMsExist:      append([]CountStamp(nil), s.Workspace.DMsExist...),
			MessagesExist: append([]CountStamp(nil), s.Workspace.MessagesExist...),
		}
		c.Workspace = w
	}
	return c
}
