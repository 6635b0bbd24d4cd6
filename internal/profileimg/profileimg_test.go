// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package profileimg_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/driftline/internal/profileimg"
)

func TestNewResolver_EmptyBaseURL(t *testing.T) {
	r, err := profileimg.NewResolver("")
	require.Error(t, err)
	assert.Nil(t, r)
}

func TestResolver_URLFor(t *testing.T) {
	r, err := profileimg.NewResolver("http://localhost:8068")
	require.NoError(t, err)

	t.Run("default image", func(t *testing.T) {
		assert.Equal(t, "http://localhost:8068/default.jpg", r.URLFor(1, profileimg.OriginDefault))
	})

	t.Run("custom image keyed by user id", func(t *testing.T) {
		assert.Equal(t, "http://localhost:8068/photos/42.jpg", r.URLFor(42, profileimg.OriginCustom))
	})

	t.Run("unknown origin falls back to default", func(t *testing.T) {
		assert.Equal(t, "http://localhost:8068/default.jpg", r.URLFor(1, "mystery"))
	})
}

func TestResolver_TrimsTrailingSlash(t *testing.T) {
	r, err := profileimg.NewResolver("http://localhost:8068/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8068/default.jpg", r.URLFor(1, profileimg.OriginDefault))
}
