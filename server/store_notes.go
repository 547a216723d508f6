package main

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"
)

const noteCols = `id, user_id, calendar_id, task_id, title, content, date, is_general, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (Note, error) {
	var n Note
	var taskID sql.NullInt64
	var date sql.NullTime
	if err := row.Scan(&n.ID, &n.UserID, &n.CalendarID, &taskID, &n.Title, &n.Content, &date,
		&n.IsGeneral, &n.CreatedAt, &n.UpdatedAt); err != nil {
		return Note{}, err
	}
	if taskID.Valid {
		v := taskID.Int64
		n.TaskID = &v
	}
	n.Date = nullDate(date)
	return n, nil
}

func (s *Store) CreateNote(ctx context.Context, userID, calendarID int64, taskID *int64, title, content string, date *time.Time, isGeneral bool) (Note, error) {
	return scanNote(s.db.QueryRowContext(ctx,
		`insert into notes(user_id, calendar_id, task_id, title, content, date, is_general)
		 values($1,$2,$3,$4,$5,$6,$7) returning `+noteCols,
		userID, calendarID, taskID, title, content, date, isGeneral))
}

func (s *Store) GetNote(ctx context.Context, id int64) (Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx, `select `+noteCols+` from notes where id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

// TaskBelongsToCalendar reports whether the task exists under the calendar.
// Non-general notes must reference a task of their own calendar.
func (s *Store) TaskBelongsToCalendar(ctx context.Context, taskID, calendarID int64) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `select id from tasks where id=$1 and calendar_id=$2`, taskID, calendarID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// NoteFilter narrows ListNotes; nil fields are ignored.
type NoteFilter struct {
	CalendarID *int64
	TaskID     *int64
	IsGeneral  *bool
}

// ListNotes returns notes in every calendar the user owns or has a share on,
// annotated with calendar and task names, most recently touched first.
func (s *Store) ListNotes(ctx context.Context, userID int64, f NoteFilter) ([]Note, error) {
	q := `select n.id, n.user_id, n.calendar_id, n.task_id, n.title, n.content, n.date, n.is_general,
	             n.created_at, n.updated_at, c.name, coalesce(t.title, '')
	      from notes n
	      join calendars c on c.id = n.calendar_id
	      left join tasks t on t.id = n.task_id
	      left join calendar_shares cs on cs.calendar_id = c.id and cs.shared_with_id = $1
	      where (c.user_id = $1 or cs.id is not null)`
	args := []any{userID}
	idx := 2
	if f.CalendarID != nil {
		q += ` and n.calendar_id=$` + strconv.Itoa(idx)
		args = append(args, *f.CalendarID)
		idx++
	}
	if f.TaskID != nil {
		q += ` and n.task_id=$` + strconv.Itoa(idx)
		args = append(args, *f.TaskID)
		idx++
	}
	if f.IsGeneral != nil {
		q += ` and n.is_general=$` + strconv.Itoa(idx)
		args = append(args, *f.IsGeneral)
		idx++
	}
	q += ` order by n.updated_at desc, n.created_at desc`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Note
	for rows.Next() {
		var n Note
		var taskID sql.NullInt64
		var date sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.CalendarID, &taskID, &n.Title, &n.Content, &date,
			&n.IsGeneral, &n.CreatedAt, &n.UpdatedAt, &n.CalendarName, &n.TaskTitle); err != nil {
			return nil, err
		}
		if taskID.Valid {
			v := taskID.Int64
			n.TaskID = &v
		}
		n.Date = nullDate(date)
		out = append(out, n)
	}
	return out, rows.Err()
}

func (s *Store) UpdateNote(ctx context.Context, id int64, title, content string, taskID *int64, date *time.Time, isGeneral bool) (Note, error) {
	n, err := scanNote(s.db.QueryRowContext(ctx,
		`update notes set title=$1, content=$2, task_id=$3, date=$4, is_general=$5, updated_at=now()
		 where id=$6 returning `+noteCols,
		title, content, taskID, date, isGeneral, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Note{}, ErrNotFound
	}
	return n, err
}

func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from notes where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
