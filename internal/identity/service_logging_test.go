// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/driftline/internal/identity"
	"github.com/driftline/driftline/internal/identity/store"
)

func TestService_LogsAuthentications(t *testing.T) {
	ctx := context.Background()

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	directory := store.NewMemoryStore()
	codec, err := identity.NewTokenCodec([]byte("test-secret"))
	require.NoError(t, err)

	svc, err := identity.NewServiceWithLogger(directory, identity.NewSHA256Hasher(), codec, fakeResolver{}, logger)
	require.NoError(t, err)

	_, err = svc.Register(ctx, "ann@example.com", "password123", "Ann", "Lee")
	require.NoError(t, err)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "user registered", entry["msg"])
	assert.Equal(t, float64(1), entry["user_id"])
	assert.Equal(t, float64(1), entry["session_id"])

	buf.Reset()
	_, err = svc.Login(ctx, "ann@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "user logged in", entry["msg"])
	assert.Equal(t, float64(2), entry["session_id"])
}
