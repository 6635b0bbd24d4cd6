// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package store

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/oops"

	"github.com/driftline/driftline/internal/identity"
)

// poolIface is the subset of pgxpool.Pool the store uses. pgxmock
// implements it for unit tests.
type poolIface interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}

// PostgresStore persists the directory snapshot as a single JSONB row.
// Update wraps the read-modify-write in a transaction with a row lock, so
// concurrent updates serialize exactly like the memory store's mutex.
type PostgresStore struct {
	pool poolIface
}

// NewPostgresStore creates a PostgresStore backed by the given connection
// pool.
func NewPostgresStore(pool poolIface) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Connect opens a connection pool for dsn and returns a store over it.
func Connect(ctx context.Context, dsn string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, oops.Code("DIRECTORY_CONNECT_FAILED").Wrap(err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, oops.Code("DIRECTORY_CONNECT_FAILED").Wrap(err)
	}
	return NewPostgresStore(pool), nil
}

// Close closes the underlying pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Get returns the current snapshot. A missing row (schema applied but never
// written) yields an empty directory.
func (s *PostgresStore) Get(ctx context.Context) (*identity.Snapshot, error) {
	var data []byte
	err := s.pool.QueryRow(ctx, `SELECT data FROM directory WHERE id = 1`).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return &identity.Snapshot{}, nil
	}
	if err != nil {
		return nil, oops.Code("DIRECTORY_GET_FAILED").With("operation", "select snapshot").Wrap(err)
	}

	return decodeSnapshot(data)
}

// Set replaces the snapshot wholesale.
func (s *PostgresStore) Set(ctx context.Context, snap *identity.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return oops.Code("DIRECTORY_SET_FAILED").With("operation", "marshal snapshot").Wrap(err)
	}

	_, err = s.pool.Exec(ctx, `
		INSERT INTO directory (id, data, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, data)
	if err != nil {
		return oops.Code("DIRECTORY_SET_FAILED").With("operation", "upsert snapshot").Wrap(err)
	}
	return nil
}

// Update runs fn against the stored snapshot inside a transaction. The row
// lock taken by FOR UPDATE makes concurrent Updates queue up rather than
// clobber each other.
func (s *PostgresStore) Update(ctx context.Context, fn func(*identity.Snapshot) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return oops.Code("DIRECTORY_UPDATE_FAILED").With("operation", "begin transaction").Wrap(err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // no-op after commit

	var data []byte
	err = tx.QueryRow(ctx, `SELECT data FROM directory WHERE id = 1 FOR UPDATE`).Scan(&data)

	var snap *identity.Snapshot
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		snap = &identity.Snapshot{}
	case err != nil:
		return oops.Code("DIRECTORY_UPDATE_FAILED").With("operation", "select snapshot").Wrap(err)
	default:
		if snap, err = decodeSnapshot(data); err != nil {
			return err
		}
	}

	if err := fn(snap); err != nil {
		return err
	}

	next, err := json.Marshal(snap)
	if err != nil {
		return oops.Code("DIRECTORY_UPDATE_FAILED").With("operation", "marshal snapshot").Wrap(err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO directory (id, data, updated_at) VALUES (1, $1, now())
		ON CONFLICT (id) DO UPDATE SET data = EXCLUDED.data, updated_at = now()
	`, next)
	if err != nil {
		return oops.Code("DIRECTORY_UPDATE_FAILED").With("operation", "write snapshot").Wrap(err)
	}

	if err := tx.Commit(ctx); err != nil {
		return oops.Code("DIRECTORY_UPDATE_FAILED").With("operation", "commit").Wrap(err)
	}
	return nil
}

func decodeSnapshot(data []byte) (*identity.Snapshot, error) {
	snap := &identity.Snapshot{}
	if err := json.Unmarshal(data, snap); err != nil {
		return nil, oops.Code("DIRECTORY_DECODE_FAILED").With("operation", "unmarshal snapshot").Wrap(err)
	}
	return snap, nil
}
