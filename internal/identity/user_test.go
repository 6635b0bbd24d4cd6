// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/driftline/internal/identity"
	"github.com/driftline/driftline/pkg/errutil"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@example.co.uk",
		"user+tag@example.com",
		"u_1%x-y@sub.example.org",
	}
	for _, email := range valid {
		t.Run("valid "+email, func(t *testing.T) {
			assert.NoError(t, identity.ValidateEmail(email))
		})
	}

	invalid := []string{
		"",
		"plainaddress",
		"@example.com",
		"user@",
		"user@example",
		"user@example.c",
		"user@@example.com",
		"user @example.com",
	}
	for _, email := range invalid {
		t.Run("invalid "+email, func(t *testing.T) {
			err := identity.ValidateEmail(email)
			require.Error(t, err)
			errutil.AssertErrorKind(t, err, identity.ErrInvalidInput)
			errutil.AssertErrorCode(t, err, "AUTH_INVALID_EMAIL")
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{name: "exactly six characters", password: "abcdef", wantErr: false},
		{name: "long password", password: strings.Repeat("x", 200), wantErr: false},
		{name: "six runes multibyte", password: "pässwö", wantErr: false},
		{name: "five characters", password: "abcde", wantErr: true},
		{name: "empty", password: "", wantErr: true},
		{name: "five runes multibyte", password: "päss1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := identity.ValidatePassword(tt.password)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorKind(t, err, identity.ErrInvalidInput)
				errutil.AssertErrorCode(t, err, "AUTH_INVALID_PASSWORD")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidateName(t *testing.T) {
	fifty := strings.Repeat("a", 50)

	tests := []struct {
		name    string
		first   string
		last    string
		wantErr bool
	}{
		{name: "both valid", first: "Ann", last: "Lee", wantErr: false},
		{name: "single character names", first: "A", last: "B", wantErr: false},
		{name: "fifty character names", first: fifty, last: fifty, wantErr: false},
		{name: "unicode runes counted not bytes", first: strings.Repeat("é", 50), last: "Lee", wantErr: false},
		{name: "empty first", first: "", last: "Lee", wantErr: true},
		{name: "empty last", first: "Ann", last: "", wantErr: true},
		{name: "first too long", first: fifty + "a", last: "Lee", wantErr: true},
		{name: "last too long", first: "Ann", last: fifty + "a", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := identity.ValidateName(tt.first, tt.last)
			if tt.wantErr {
				require.Error(t, err)
				errutil.AssertErrorKind(t, err, identity.ErrInvalidInput)
				errutil.AssertErrorCode(t, err, "AUTH_INVALID_NAME")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPermissionLevel_String(t *testing.T) {
	assert.Equal(t, "owner", identity.PermissionOwner.String())
	assert.Equal(t, "member", identity.PermissionMember.String())
	assert.Equal(t, "unknown", identity.PermissionLevel(99).String())
}

func TestNewUserStats(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	stats := identity.NewUserStats(now)

	require.Len(t, stats.ChannelsJoined, 1)
	require.Len(t, stats.DMsJoined, 1)
	require.Len(t, stats.MessagesSent, 1)
	assert.Equal(t, 0, stats.ChannelsJoined[0].Count)
	assert.Equal(t, now, stats.ChannelsJoined[0].Timestamp)
}

func TestNewWorkspaceStats(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ws := identity.NewWorkspaceStats(now)

	require.Len(t, ws.ChannelsExist, 1)
	require.Len(t, ws.DMsExist, 1)
	require.Len(t, ws.MessagesExist, 1)
	assert.Equal(t, 0, ws.MessagesExist[0].Count)
	assert.Equal(t, now, ws.MessagesExist[0].Timestamp)
}

func TestUser_HasActiveSessions(t *testing.T) {
	u := &identity.User{}
	assert.False(t, u.HasActiveSessions())

	u.ActiveSessionIDs = []int64{3}
	assert.True(t, u.HasActiveSessions())
}
