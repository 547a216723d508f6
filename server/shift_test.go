package main

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewStore(db), mock, db
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMonthDelta(t *testing.T) {
	cases := []struct {
		old, new string
		want     int
		ok       bool
	}{
		{"2025-01", "2025-03", 2, true},
		{"2025-03", "2025-01", -2, true},
		{"2024-11", "2025-02", 3, true},
		{"2025-06", "2024-06", -12, true},
		{"2025-05", "2025-05", 0, true},
		{"2025-1", "2025-03", 0, false},
		{"", "2025-03", 0, false},
		{"2025-01", "not-a-month", 0, false},
	}
	for _, c := range cases {
		got, ok := monthDelta(c.old, c.new)
		if got != c.want || ok != c.ok {
			t.Errorf("monthDelta(%q, %q) = %d, %v; want %d, %v", c.old, c.new, got, ok, c.want, c.ok)
		}
	}
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	cases := []struct {
		in     time.Time
		months int
		want   time.Time
	}{
		{date(2025, time.January, 31), 1, date(2025, time.February, 28)},
		{date(2024, time.January, 31), 1, date(2024, time.February, 29)},
		{date(2025, time.March, 31), -1, date(2025, time.February, 28)},
		{date(2025, time.January, 15), 2, date(2025, time.March, 15)},
		{date(2025, time.May, 31), 1, date(2025, time.June, 30)},
		{date(2025, time.October, 10), -14, date(2024, time.August, 10)},
	}
	for _, c := range cases {
		if got := addMonths(c.in, c.months); !got.Equal(c.want) {
			t.Errorf("addMonths(%v, %d) = %v; want %v", c.in, c.months, got, c.want)
		}
	}

	// A shift and its inverse round-trip as long as no clamp fired.
	mid := date(2025, time.January, 15)
	if got := addMonths(addMonths(mid, 2), -2); !got.Equal(mid) {
		t.Errorf("round trip moved %v to %v", mid, got)
	}
}

func TestShiftCalendarTasks_MovesEveryDatedTask(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)select id, scheduled_date from tasks where calendar_id=\$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "scheduled_date"}).
			AddRow(int64(1), date(2025, time.January, 15)).
			AddRow(int64(2), date(2025, time.January, 31)))

	mock.ExpectExec(`update tasks set scheduled_date=\$1, display_date=\$1`).
		WithArgs(date(2025, time.March, 15), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`update tasks set scheduled_date=\$1, display_date=\$1`).
		WithArgs(date(2025, time.March, 31), int64(2)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	report := store.ShiftCalendarTasks(context.Background(), discardLogger(), 5, "2025-01", "2025-03")
	if report.MonthDelta != 2 {
		t.Fatalf("month delta = %d; want 2", report.MonthDelta)
	}
	if len(report.Shifted) != 2 || report.Failed != 0 {
		t.Fatalf("shifted=%d failed=%d; want 2, 0", len(report.Shifted), report.Failed)
	}
	if !report.Shifted[0].NewDate.Equal(date(2025, time.March, 15)) {
		t.Fatalf("task 1 moved to %v", report.Shifted[0].NewDate)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestShiftCalendarTasks_NoOpOnEqualOrMissingMonths(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	for _, c := range [][2]string{{"2025-01", "2025-01"}, {"", "2025-01"}, {"2025-01", ""}} {
		report := store.ShiftCalendarTasks(context.Background(), discardLogger(), 5, c[0], c[1])
		if report.MonthDelta != 0 || len(report.Shifted) != 0 {
			t.Fatalf("shift(%q, %q) not a no-op: %+v", c[0], c[1], report)
		}
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no queries expected: %v", err)
	}
}

func TestShiftCalendarTasks_SkipsFailedTaskAndContinues(t *testing.T) {
	store, mock, db := newStoreWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)select id, scheduled_date from tasks where calendar_id=\$1`).
		WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "scheduled_date"}).
			AddRow(int64(10), date(2025, time.February, 1)).
			AddRow(int64(11), date(2025, time.February, 20)))

	mock.ExpectExec(`update tasks set scheduled_date=\$1, display_date=\$1`).
		WithArgs(date(2025, time.March, 1), int64(10)).
		WillReturnError(errors.New("deadlock"))
	mock.ExpectExec(`update tasks set scheduled_date=\$1, display_date=\$1`).
		WithArgs(date(2025, time.March, 20), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	report := store.ShiftCalendarTasks(context.Background(), discardLogger(), 9, "2025-02", "2025-03")
	if report.Failed != 1 {
		t.Fatalf("failed = %d; want 1", report.Failed)
	}
	if len(report.Shifted) != 1 || report.Shifted[0].TaskID != 11 {
		t.Fatalf("shifted = %+v; want only task 11", report.Shifted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
