// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Driftline Contributors

package store_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/driftline/driftline/internal/identity"
	"github.com/driftline/driftline/internal/identity/store"
	"github.com/driftline/driftline/pkg/errutil"
)

func newMockStore(t *testing.T) (*store.PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return store.NewPostgresStore(mock), mock
}

func TestPostgresStore_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("missing row yields empty snapshot", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery("SELECT data FROM directory WHERE id = 1").
			WillReturnError(pgx.ErrNoRows)

		snap, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Empty(t, snap.Users)
		assert.Equal(t, int64(0), snap.SessionCounter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("decodes stored snapshot", func(t *testing.T) {
		s, mock := newMockStore(t)

		data := []byte(`{"users":[{"auth_user_id":1,"email":"ann@example.com"}],"session_id":4}`)
		mock.ExpectQuery("SELECT data FROM directory WHERE id = 1").
			WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(data))

		snap, err := s.Get(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Users, 1)
		assert.Equal(t, "ann@example.com", snap.Users[0].Email)
		assert.Equal(t, int64(4), snap.SessionCounter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("corrupt snapshot reports decode failure", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery("SELECT data FROM directory WHERE id = 1").
			WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow([]byte("not json")))

		_, err := s.Get(ctx)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "DIRECTORY_DECODE_FAILED")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query failure is wrapped", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectQuery("SELECT data FROM directory WHERE id = 1").
			WillReturnError(errors.New("connection refused"))

		_, err := s.Get(ctx)
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "DIRECTORY_GET_FAILED")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresStore_Set(t *testing.T) {
	ctx := context.Background()
	s, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO directory").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := s.Set(ctx, &identity.Snapshot{SessionCounter: 7})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_Update(t *testing.T) {
	ctx := context.Background()

	t.Run("read-modify-write inside a transaction", func(t *testing.T) {
		s, mock := newMockStore(t)

		data := []byte(`{"users":[],"session_id":2}`)
		mock.ExpectBegin()
		mock.ExpectQuery("SELECT data FROM directory WHERE id = 1 FOR UPDATE").
			WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow(data))
		mock.ExpectExec("INSERT INTO directory").
			WithArgs(pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		var observed int64
		err := s.Update(ctx, func(snap *identity.Snapshot) error {
			observed = snap.SessionCounter
			snap.AllocateSessionID()
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), observed)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing row starts from an empty snapshot", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT data FROM directory WHERE id = 1 FOR UPDATE").
			WillReturnError(pgx.ErrNoRows)
		mock.ExpectExec("INSERT INTO directory").
			WithArgs(pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
		mock.ExpectCommit()

		err := s.Update(ctx, func(snap *identity.Snapshot) error {
			assert.Empty(t, snap.Users)
			snap.AllocateSessionID()
			return nil
		})
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("mutation error rolls back and passes through verbatim", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin()
		mock.ExpectQuery("SELECT data FROM directory WHERE id = 1 FOR UPDATE").
			WillReturnRows(pgxmock.NewRows([]string{"data"}).AddRow([]byte(`{"users":[],"session_id":0}`)))
		mock.ExpectRollback()

		wantErr := errors.New("mutation failed")
		err := s.Update(ctx, func(*identity.Snapshot) error {
			return wantErr
		})
		require.ErrorIs(t, err, wantErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure is wrapped", func(t *testing.T) {
		s, mock := newMockStore(t)

		mock.ExpectBegin().WillReturnError(errors.New("pool exhausted"))

		err := s.Update(ctx, func(*identity.Snapshot) error { return nil })
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "DIRECTORY_UPDATE_FAILED")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
