// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package identity

import (
	"strconv"

	"github.com/golang-jwt/jwt/v5"
	"github.com/samber/oops"
)

// TokenIdentity is the pair of ids a verified token binds together.
type TokenIdentity struct {
	UserID    int64
	SessionID int64
}

// tokenClaims is the wire shape of a session token. The ids are encoded as
// decimal strings; consumers on other stacks parse them the same way.
type tokenClaims struct {
	jwt.RegisteredClaims
	UserID    string `json:"auth_user_id"`
	SessionID string `json:"session_id"`
}

// TokenCodec issues and verifies session bearer tokens. Tokens are HS256
// JWTs signed with an injected secret: the fields are legible but
// unforgeable without the key. Tokens carry no expiry; revocation is not
// part of this core.
type TokenCodec struct {
	secret []byte
}

// NewTokenCodec creates a TokenCodec with the given signing secret.
func NewTokenCodec(secret []byte) (*TokenCodec, error) {
	if len(secret) == 0 {
		return nil, oops.Code("AUTH_EMPTY_SECRET").Errorf("token secret is required")
	}
	return &TokenCodec{secret: secret}, nil
}

// Issue produces a token binding a user id to a session id.
func (c *TokenCodec) Issue(userID, sessionID int64) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		UserID:    strconv.FormatInt(userID, 10),
		SessionID: strconv.FormatInt(sessionID, 10),
	})

	signed, err := token.SignedString(c.secret)
	if err != nil {
		return "", oops.Code("AUTH_TOKEN_SIGN_FAILED").Wrap(err)
	}
	return signed, nil
}

// Verify parses and validates a token, returning the identity it binds.
// Any tampering with either id invalidates the signature. All failures map
// to the Unauthorized kind.
func (c *TokenCodec) Verify(token string) (TokenIdentity, error) {
	claims := &tokenClaims{}

	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return c.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return TokenIdentity{}, oops.Code("AUTH_TOKEN_INVALID").Wrapf(ErrUnauthorized, "token is invalid")
	}
	if !parsed.Valid {
		return TokenIdentity{}, oops.Code("AUTH_TOKEN_INVALID").Wrapf(ErrUnauthorized, "token is invalid")
	}

	userID, err := strconv.ParseInt(claims.UserID, 10, 64)
	if err != nil {
		return TokenIdentity{}, oops.Code("AUTH_TOKEN_INVALID").Wrapf(ErrUnauthorized, "token is invalid")
	}
	sessionID, err := strconv.ParseInt(claims.SessionID, 10, 64)
	if err != nil {
		return TokenIdentity{}, oops.Code("AUTH_TOKEN_INVALID").Wrapf(ErrUnauthorized, "token is invalid")
	}

	return TokenIdentity{UserID: userID, SessionID: sessionID}, nil
}
