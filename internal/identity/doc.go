// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

// Package identity is the account and session core of Driftline.
//
// # Domain Types
//
// User is exclusively owned by the directory Snapshot; every read and
// mutation goes through a Store so uniqueness of emails and handles, the
// monotonic session counter, and single-use reset codes hold under
// concurrent requests.
//
// # Services
//
//   - Service — registration and login, issuing session bearer tokens
//   - PasswordResetService — one-time reset codes and their redemption
//
// Both are created with New*Service constructors that validate their
// dependencies. TokenCodec is the capability object for issuing and
// verifying tokens; PasswordHasher abstracts the digest scheme so the
// legacy unsalted default can be swapped for argon2id without touching
// callers.
package identity
