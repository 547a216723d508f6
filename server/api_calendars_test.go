package main

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

var calendarRowCols = []string{"id", "user_id", "name", "start_month", "description", "color", "unique_url", "created_at", "updated_at"}

func calendarRow(id, ownerID int64, name, startMonth string) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(calendarRowCols).
		AddRow(id, ownerID, name, startMonth, "", defaultColor, "u-"+name, now, now)
}

func TestUpdateCalendar_StartMonthChangeShiftsTasks(t *testing.T) {
	a, mock, db := newTestAPI(t)
	defer db.Close()

	expectTokenUser(mock, "tok-alice", 1)
	mock.ExpectQuery(accessQuery).WithArgs(int64(1), int64(5)).
		WillReturnRows(sqlmock.NewRows(accessCols).AddRow(int64(1), nil, nil, nil, nil))
	mock.ExpectQuery(`(?s)select .* from calendars where id=\$1`).
		WithArgs(int64(5)).
		WillReturnRows(calendarRow(5, 1, "march push", "2025-01"))
	mock.ExpectQuery(`(?s)update calendars set name=\$1, start_month=\$2`).
		WithArgs("march push", "2025-03", "", defaultColor, int64(5)).
		WillReturnRows(calendarRow(5, 1, "march push", "2025-03"))

	// The shift runs against every dated task of the calendar.
	mock.ExpectQuery(`(?s)select id, scheduled_date from tasks where calendar_id=\$1`).
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "scheduled_date"}).
			AddRow(int64(1), date(2025, time.January, 15)))
	mock.ExpectExec(`update tasks set scheduled_date=\$1, display_date=\$1`).
		WithArgs(date(2025, time.March, 15), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	body := `{"name":"march push","start_month":"2025-03"}`
	r := httptest.NewRequest("PUT", "/api/calendars/5", strings.NewReader(body))
	r.SetPathValue("id", "5")
	r.Header.Set("Authorization", "Bearer tok-alice")
	w := httptest.NewRecorder()
	a.handleUpdateCalendar(w, r)

	require.Equal(t, 200, w.Code)
	require.Equal(t, true, decodeBody(t, w)["success"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCalendar_SameStartMonthDoesNotShift(t *testing.T) {
	a, mock, db := newTestAPI(t)
	defer db.Close()

	expectTokenUser(mock, "tok-alice", 1)
	mock.ExpectQuery(accessQuery).WithArgs(int64(1), int64(5)).
		WillReturnRows(sqlmock.NewRows(accessCols).AddRow(int64(1), nil, nil, nil, nil))
	mock.ExpectQuery(`(?s)select .* from calendars where id=\$1`).
		WithArgs(int64(5)).
		WillReturnRows(calendarRow(5, 1, "steady", "2025-01"))
	mock.ExpectQuery(`(?s)update calendars set name=\$1, start_month=\$2`).
		WithArgs("steady", "2025-01", "", defaultColor, int64(5)).
		WillReturnRows(calendarRow(5, 1, "steady", "2025-01"))

	body := `{"name":"steady","start_month":"2025-01"}`
	r := httptest.NewRequest("PUT", "/api/calendars/5", strings.NewReader(body))
	r.SetPathValue("id", "5")
	r.Header.Set("Authorization", "Bearer tok-alice")
	w := httptest.NewRecorder()
	a.handleUpdateCalendar(w, r)

	require.Equal(t, 200, w.Code)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCalendar_RejectsBadStartMonth(t *testing.T) {
	a, mock, db := newTestAPI(t)
	defer db.Close()

	expectTokenUser(mock, "tok", 1)
	r := httptest.NewRequest("POST", "/api/calendars", strings.NewReader(`{"name":"c","start_month":"March 2025"}`))
	r.Header.Set("Authorization", "Bearer tok")
	w := httptest.NewRecorder()
	a.handleCreateCalendar(w, r)

	require.Equal(t, 400, w.Code)
	require.Equal(t, "invalid start month", decodeBody(t, w)["error"])
}
