package main

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func expectAccessRow(mock sqlmock.Sqlmock, userID, calendarID, ownerID int64, shareID any, canEdit, canDelete, canShare any) {
	mock.ExpectQuery(accessQuery).WithArgs(userID, calendarID).
		WillReturnRows(sqlmock.NewRows(accessCols).AddRow(ownerID, shareID, canEdit, canDelete, canShare))
}

func TestAuthorizeCalendar_CapabilityTable(t *testing.T) {
	// Grantee with can_edit only, like a collaborator who may move tasks
	// around but not prune or reshare the calendar.
	cases := []struct {
		name string
		need capability
		err  error
	}{
		{"view allowed", capView, nil},
		{"edit allowed", capEdit, nil},
		{"delete denied", capDelete, ErrForbidden},
		{"share denied", capShare, ErrForbidden},
		{"owner ops denied", capOwner, ErrForbidden},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			store, mock, db := newStoreWithMock(t)
			defer db.Close()
			expectAccessRow(mock, 7, 5, 1, int64(12), true, false, false)

			_, err := store.AuthorizeCalendar(context.Background(), 7, 5, c.need)
			if c.err == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, c.err)
			}
		})
	}
}

func TestAuthorizeCalendar_OwnerPassesEverything(t *testing.T) {
	for _, need := range []capability{capView, capEdit, capDelete, capShare, capOwner} {
		store, mock, db := newStoreWithMock(t)
		expectAccessRow(mock, 7, 5, 7, nil, nil, nil, nil)
		acc, err := store.AuthorizeCalendar(context.Background(), 7, 5, need)
		require.NoError(t, err)
		require.True(t, acc.IsOwner())
		db.Close()
	}
}

func TestAuthorizeCalendar_NoAccessIsNotFound(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()
	mock.ExpectQuery(accessQuery).WithArgs(int64(7), int64(5)).
		WillReturnRows(sqlmock.NewRows(accessCols))

	_, err := store.AuthorizeCalendar(context.Background(), 7, 5, capView)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorizeTask_ResolvesThroughCalendar(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`select calendar_id from tasks where id=\$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"calendar_id"}).AddRow(int64(5)))
	expectAccessRow(mock, 7, 5, 1, int64(12), true, false, false)

	acc, calendarID, err := store.AuthorizeTask(context.Background(), 7, 3, capEdit)
	require.NoError(t, err)
	require.Equal(t, int64(5), calendarID)
	require.True(t, acc.CanEdit)
}

func TestAuthorizeTask_MissingTaskIsNotFound(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`select calendar_id from tasks where id=\$1`).
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"calendar_id"}))

	_, _, err := store.AuthorizeTask(context.Background(), 7, 3, capView)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestAuthorizeNote_UsesCalendarNotAuthor(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	now := time.Now()
	// Note written by user 1; caller 7 holds can_edit through a share.
	mock.ExpectQuery(`(?s)select id, user_id, calendar_id, task_id, title, content, date, is_general.*from notes where id=\$1`).
		WithArgs(int64(20)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "calendar_id", "task_id", "title", "content", "date", "is_general", "created_at", "updated_at"}).
			AddRow(int64(20), int64(1), int64(5), nil, "brief", "", nil, true, now, now))
	expectAccessRow(mock, 7, 5, 1, int64(12), true, false, false)

	_, n, err := store.AuthorizeNote(context.Background(), 7, 20, capEdit)
	require.NoError(t, err)
	require.Equal(t, int64(20), n.ID)
	require.Equal(t, int64(1), n.UserID)
}

func TestAuthorizeNote_OwnerEditsGranteeNote(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	now := time.Now()
	// Note written by grantee 7; the calendar owner 1 edits it.
	mock.ExpectQuery(`(?s)select id, user_id, calendar_id, task_id, title, content, date, is_general.*from notes where id=\$1`).
		WithArgs(int64(21)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "calendar_id", "task_id", "title", "content", "date", "is_general", "created_at", "updated_at"}).
			AddRow(int64(21), int64(7), int64(5), nil, "draft", "", nil, true, now, now))
	expectAccessRow(mock, 1, 5, 1, nil, nil, nil, nil)

	acc, _, err := store.AuthorizeNote(context.Background(), 1, 21, capEdit)
	require.NoError(t, err)
	require.True(t, acc.IsOwner())
}
