// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity_test

import (
	"context"
	"sync"
	"time"

	"github.com/driftline/driftline/internal/identity"
)

func testTime() time.Time {
	return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
}

// fakeResolver returns predictable profile-image URLs.
type fakeResolver struct{}

func (fakeResolver) URLFor(userID int64, origin string) string {
	if origin == "custom" {
		return "http://img.test/photos/custom.jpg"
	}
	return "http://img.test/default.jpg"
}

type sentMessage struct {
	address string
	message string
}

// fakeNotifier records every delivery.
type fakeNotifier struct {
	mu    sync.Mutex
	err   error
	sends []sentMessage
}

func (n *fakeNotifier) Send(_ context.Context, address, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.sends = append(n.sends, sentMessage{address: address, message: message})
	return nil
}

func (n *fakeNotifier) sent() []sentMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]sentMessage(nil), n.sends...)
}

// resetBetweenStore swaps the first user's digest for newDigest right before
// the first Update, simulating a password reset racing an in-flight login.
type resetBetweenStore struct {
	identity.Store
	newDigest string
	once      sync.Once
}

func (s *resetBetweenStore) Update(ctx context.Context, fn func(*identity.Snapshot) error) error {
	s.once.Do(func() {
		_ = s.Store.Update(ctx, func(snap *identity.Snapshot) error {
			snap.Users[0].PasswordHash = s.newDigest
			return nil
		})
	})
	return s.Store.Update(ctx, fn)
}
