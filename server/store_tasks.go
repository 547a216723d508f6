package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

const taskCols = `id, calendar_id, title, description, content_type, platforms, status, scheduled_date, display_date, created_at, updated_at`

func encodePlatforms(ps []string) []byte {
	if ps == nil {
		ps = []string{}
	}
	b, _ := json.Marshal(ps)
	return b
}

func decodePlatforms(raw []byte) []string {
	var ps []string
	if err := json.Unmarshal(raw, &ps); err != nil || ps == nil {
		return []string{}
	}
	return ps
}

func nullDate(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}

func scanTask(row interface{ Scan(...any) error }) (Task, error) {
	var t Task
	var platforms []byte
	var sched, disp sql.NullTime
	if err := row.Scan(&t.ID, &t.CalendarID, &t.Title, &t.Description, &t.ContentType, &platforms,
		&t.Status, &sched, &disp, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return Task{}, err
	}
	t.Platforms = decodePlatforms(platforms)
	t.ScheduledDate = nullDate(sched)
	t.DisplayDate = nullDate(disp)
	return t, nil
}

func (s *Store) CreateTask(ctx context.Context, calendarID int64, title, description, contentType string, platforms []string, status string, scheduled *time.Time) (Task, error) {
	return scanTask(s.db.QueryRowContext(ctx,
		`insert into tasks(calendar_id, title, description, content_type, platforms, status, scheduled_date, display_date)
		 values($1,$2,$3,$4,$5,$6,$7,$7) returning `+taskCols,
		calendarID, title, description, contentType, encodePlatforms(platforms), status, scheduled))
}

func (s *Store) CalendarIDByTask(ctx context.Context, taskID int64) (int64, error) {
	var calendarID int64
	err := s.db.QueryRowContext(ctx, `select calendar_id from tasks where id=$1`, taskID).Scan(&calendarID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	return calendarID, err
}

// TasksByCalendar lists a calendar's tasks with note counts, soonest first.
func (s *Store) TasksByCalendar(ctx context.Context, calendarID int64) ([]Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`select t.id, t.calendar_id, t.title, t.description, t.content_type, t.platforms, t.status,
		        t.scheduled_date, t.display_date, t.created_at, t.updated_at,
		        count(n.id) as notes_count
		 from tasks t left join notes n on n.task_id = t.id
		 where t.calendar_id=$1
		 group by t.id
		 order by t.scheduled_date asc, t.created_at desc`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Task
	for rows.Next() {
		var t Task
		var platforms []byte
		var sched, disp sql.NullTime
		if err := rows.Scan(&t.ID, &t.CalendarID, &t.Title, &t.Description, &t.ContentType, &platforms,
			&t.Status, &sched, &disp, &t.CreatedAt, &t.UpdatedAt, &t.NotesCount); err != nil {
			return nil, err
		}
		t.Platforms = decodePlatforms(platforms)
		t.ScheduledDate = nullDate(sched)
		t.DisplayDate = nullDate(disp)
		t.HasNotes = t.NotesCount > 0
		out = append(out, t)
	}
	return out, rows.Err()
}

// TasksForOwner lists tasks across every calendar the user owns, optionally
// restricted to one calendar.
func (s *Store) TasksForOwner(ctx context.Context, userID int64, calendarID *int64) ([]Task, error) {
	q := `select t.id, t.calendar_id, t.title, t.description, t.content_type, t.platforms, t.status,
	             t.scheduled_date, t.display_date, t.created_at, t.updated_at, c.name, c.color
	      from tasks t join calendars c on c.id = t.calendar_id
	      where c.user_id=$1`
	args := []any{userID}
	if calendarID != nil {
		q += ` and t.calendar_id=$2`
		args = append(args, *calendarID)
	}
	q += ` order by t.scheduled_date asc, t.created_at desc`
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Task
	for rows.Next() {
		var t Task
		var platforms []byte
		var sched, disp sql.NullTime
		if err := rows.Scan(&t.ID, &t.CalendarID, &t.Title, &t.Description, &t.ContentType, &platforms,
			&t.Status, &sched, &disp, &t.CreatedAt, &t.UpdatedAt, &t.CalendarName, &t.CalendarColor); err != nil {
			return nil, err
		}
		t.Platforms = decodePlatforms(platforms)
		t.ScheduledDate = nullDate(sched)
		t.DisplayDate = nullDate(disp)
		out = append(out, t)
	}
	return out, rows.Err()
}

// GetTaskForOwner fetches a task only when the caller owns its calendar.
func (s *Store) GetTaskForOwner(ctx context.Context, id, userID int64) (Task, error) {
	var t Task
	var platforms []byte
	var sched, disp sql.NullTime
	err := s.db.QueryRowContext(ctx,
		`select t.id, t.calendar_id, t.title, t.description, t.content_type, t.platforms, t.status,
		        t.scheduled_date, t.display_date, t.created_at, t.updated_at, c.name, c.color,
		        count(n.id) as notes_count
		 from tasks t
		 join calendars c on c.id = t.calendar_id
		 left join notes n on n.task_id = t.id
		 where t.id=$1 and c.user_id=$2
		 group by t.id, c.name, c.color`, id, userID).
		Scan(&t.ID, &t.CalendarID, &t.Title, &t.Description, &t.ContentType, &platforms,
			&t.Status, &sched, &disp, &t.CreatedAt, &t.UpdatedAt, &t.CalendarName, &t.CalendarColor, &t.NotesCount)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, err
	}
	t.Platforms = decodePlatforms(platforms)
	t.ScheduledDate = nullDate(sched)
	t.DisplayDate = nullDate(disp)
	t.HasNotes = t.NotesCount > 0
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, id int64, title, description, contentType string, platforms []string, status string, scheduled *time.Time) (Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx,
		`update tasks set title=$1, description=$2, content_type=$3, platforms=$4, status=$5,
		        scheduled_date=$6, display_date=$6, updated_at=now()
		 where id=$7 returning `+taskCols,
		title, description, contentType, encodePlatforms(platforms), status, scheduled, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

// MoveTask changes a task's date and/or status. The scheduled and display
// dates always move together.
func (s *Store) MoveTask(ctx context.Context, id int64, newDate *time.Time, status *string) (Task, error) {
	set := []string{}
	args := []any{}
	idx := 1
	if newDate != nil {
		set = append(set, fmt.Sprintf("scheduled_date=$%d, display_date=$%d", idx, idx))
		args = append(args, *newDate)
		idx++
	}
	if status != nil {
		set = append(set, fmt.Sprintf("status=$%d", idx))
		args = append(args, *status)
		idx++
	}
	if len(set) == 0 {
		return Task{}, errors.New("nothing to update")
	}
	args = append(args, id)
	q := fmt.Sprintf(`update tasks set %s, updated_at=now() where id=$%d returning `+taskCols, joinComma(set), idx)
	t, err := scanTask(s.db.QueryRowContext(ctx, q, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	return t, err
}

// DeleteTask removes a task and its notes in one transaction. The note
// cleanup is enforced here rather than left to the schema so the cascade
// holds on stores without the foreign key.
func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if _, err := tx.ExecContext(ctx, `delete from notes where task_id=$1`, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `delete from tasks where id=$1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

func joinComma(parts []string) string {
	if len(parts) == 0 {
		return ""
	}
	out := parts[0]
	for i := 1; i < len(parts); i++ {
		out += ", " + parts[i]
	}
	return out
}
