package main

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

const accessQuery = `(?s)select c\.user_id, cs\.id, cs\.can_edit, cs\.can_delete, cs\.can_share\s+from calendars c`

var accessCols = []string{"user_id", "id", "can_edit", "can_delete", "can_share"}

func TestResolveCalendarAccess_Owner(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(accessQuery).WithArgs(int64(7), int64(5)).
		WillReturnRows(sqlmock.NewRows(accessCols).AddRow(int64(7), nil, nil, nil, nil))

	acc, err := store.ResolveCalendarAccess(context.Background(), 7, 5)
	require.NoError(t, err)
	require.Equal(t, AccessOwner, acc.Level)
	require.True(t, acc.CanEdit && acc.CanDelete && acc.CanShare)
}

func TestResolveCalendarAccess_OwnerWinsOverStrayShareRow(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(accessQuery).WithArgs(int64(7), int64(5)).
		WillReturnRows(sqlmock.NewRows(accessCols).AddRow(int64(7), int64(99), false, false, false))

	acc, err := store.ResolveCalendarAccess(context.Background(), 7, 5)
	require.NoError(t, err)
	require.Equal(t, AccessOwner, acc.Level)
	require.True(t, acc.CanShare)
}

func TestResolveCalendarAccess_SharedCapsAreVerbatim(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(accessQuery).WithArgs(int64(7), int64(5)).
		WillReturnRows(sqlmock.NewRows(accessCols).AddRow(int64(1), int64(12), true, false, true))

	acc, err := store.ResolveCalendarAccess(context.Background(), 7, 5)
	require.NoError(t, err)
	require.Equal(t, AccessShared, acc.Level)
	require.True(t, acc.CanEdit)
	require.False(t, acc.CanDelete)
	require.True(t, acc.CanShare)
}

func TestResolveCalendarAccess_StrangerHasNone(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(accessQuery).WithArgs(int64(7), int64(5)).
		WillReturnRows(sqlmock.NewRows(accessCols).AddRow(int64(1), nil, nil, nil, nil))

	acc, err := store.ResolveCalendarAccess(context.Background(), 7, 5)
	require.NoError(t, err)
	require.False(t, acc.HasAccess())
}

func TestResolveCalendarAccess_MissingCalendarFoldsToNone(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(accessQuery).WithArgs(int64(7), int64(404)).
		WillReturnRows(sqlmock.NewRows(accessCols))

	acc, err := store.ResolveCalendarAccess(context.Background(), 7, 404)
	require.NoError(t, err)
	require.False(t, acc.HasAccess())
}
