// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package profileimg resolves profile-image URLs. Image upload and cropping
// are handled by the profile subsystem; the identity core only needs the
// default reference at registration time.
package profileimg

import (
	"fmt"
	"strings"

	"github.com/samber/oops"
)

// Image origins.
const (
	OriginDefault = "default"
	OriginCustom  = "custom"
)

// Resolver builds server routes for profile images under a public base URL.
type Resolver struct {
	baseURL string
}

// NewResolver creates a Resolver for the given public base URL.
func NewResolver(baseURL string) (*Resolver, error) {
	if baseURL == "" {
		return nil, oops.Code("PROFILEIMG_CONFIG_INVALID").Errorf("base URL is required")
	}
	return &Resolver{baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// URLFor returns the image URL for a user. Custom images live under
// /photos/<id>.jpg; anything else resolves to the stock image.
func (r *Resolver) URLFor(userID int64, origin string) string {
	if origin == OriginCustom {
		return fmt.Sprintf("%s/photos/%d.jpg", r.baseURL, userID)
	}
	return r.baseURL + "/default.jpg"
}
