package main

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var taskRowCols = []string{"id", "calendar_id", "title", "description", "content_type", "platforms",
	"status", "scheduled_date", "display_date", "created_at", "updated_at"}

func taskRow(id, calendarID int64, title string, scheduled time.Time) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(taskRowCols).
		AddRow(id, calendarID, title, "", "text", []byte(`["instagram"]`), StatusPending, scheduled, scheduled, now, now)
}

func TestDeleteTask_RemovesNotesInSameTransaction(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`delete from notes where task_id=\$1`).
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`delete from tasks where id=\$1`).
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, store.DeleteTask(context.Background(), 3))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteTask_MissingTaskRollsBack(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(`delete from notes where task_id=\$1`).
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(`delete from tasks where id=\$1`).
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	require.ErrorIs(t, store.DeleteTask(context.Background(), 3), ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMoveTask_DateMovesBothDateColumns(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	newDate := date(2025, time.March, 15)
	mock.ExpectQuery(`update tasks set scheduled_date=\$1, display_date=\$1, updated_at=now\(\) where id=\$2 returning`).
		WithArgs(newDate, int64(3)).
		WillReturnRows(taskRow(3, 5, "reel", newDate))

	task, err := store.MoveTask(context.Background(), 3, &newDate, nil)
	require.NoError(t, err)
	require.NotNil(t, task.ScheduledDate)
	require.NotNil(t, task.DisplayDate)
	require.True(t, task.ScheduledDate.Equal(*task.DisplayDate))
}

func TestMoveTask_StatusOnly(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	status := StatusCompleted
	mock.ExpectQuery(`update tasks set status=\$1, updated_at=now\(\) where id=\$2 returning`).
		WithArgs(status, int64(3)).
		WillReturnRows(taskRow(3, 5, "reel", date(2025, time.March, 15)))

	_, err := store.MoveTask(context.Background(), 3, nil, &status)
	require.NoError(t, err)
}

func TestMoveTask_NothingToUpdate(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	_, err := store.MoveTask(context.Background(), 3, nil, nil)
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkOverdueTasks(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectExec(`update tasks set status=\$1, updated_at=now\(\) where status=\$2 and scheduled_date < current_date`).
		WithArgs(StatusOverdue, StatusPending).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := store.MarkOverdueTasks(context.Background())
	require.NoError(t, err)
	require.Equal(t, int64(4), n)
}
