package main

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

const calendarCols = `id, user_id, name, start_month, description, color, unique_url, created_at, updated_at`

func scanCalendar(row interface{ Scan(...any) error }) (Calendar, error) {
	var c Calendar
	err := row.Scan(&c.ID, &c.OwnerID, &c.Name, &c.StartMonth, &c.Description, &c.Color, &c.UniqueURL, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (s *Store) CreateCalendar(ctx context.Context, ownerID int64, name, startMonth, description, color string) (Calendar, error) {
	return scanCalendar(s.db.QueryRowContext(ctx,
		`insert into calendars(user_id, name, start_month, description, color, unique_url)
		 values($1,$2,$3,$4,$5,$6) returning `+calendarCols,
		ownerID, name, startMonth, description, color, uuid.NewString()))
}

func (s *Store) GetCalendar(ctx context.Context, id int64) (Calendar, error) {
	c, err := scanCalendar(s.db.QueryRowContext(ctx,
		`select `+calendarCols+` from calendars where id=$1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Calendar{}, ErrNotFound
	}
	return c, err
}

// OwnCalendars lists calendars the user owns, newest first.
func (s *Store) OwnCalendars(ctx context.Context, userID int64) ([]Calendar, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+calendarCols+` from calendars where user_id=$1 order by created_at desc`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Calendar
	for rows.Next() {
		c, err := scanCalendar(rows)
		if err != nil {
			return nil, err
		}
		c.IsOwner, c.CanEdit, c.CanDelete, c.CanShare = true, true, true, true
		out = append(out, c)
	}
	return out, rows.Err()
}

// SharedCalendars lists calendars shared with the user, annotated with the
// grant's capabilities and the owner's identity.
func (s *Store) SharedCalendars(ctx context.Context, userID int64) ([]Calendar, error) {
	rows, err := s.db.QueryContext(ctx,
		`select c.id, c.user_id, c.name, c.start_month, c.description, c.color, c.unique_url, c.created_at, c.updated_at,
		        cs.can_edit, cs.can_delete, cs.can_share, u.name, u.email
		 from calendar_shares cs
		 join calendars c on c.id = cs.calendar_id
		 join users u on u.id = cs.owner_id
		 where cs.shared_with_id=$1 order by cs.shared_at desc`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Calendar
	for rows.Next() {
		var c Calendar
		if err := rows.Scan(&c.ID, &c.OwnerID, &c.Name, &c.StartMonth, &c.Description, &c.Color, &c.UniqueURL,
			&c.CreatedAt, &c.UpdatedAt, &c.CanEdit, &c.CanDelete, &c.CanShare, &c.OwnerName, &c.OwnerEmail); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *Store) UpdateCalendar(ctx context.Context, id int64, name, startMonth, description, color string) (Calendar, error) {
	c, err := scanCalendar(s.db.QueryRowContext(ctx,
		`update calendars set name=$1, start_month=$2, description=$3, color=$4, updated_at=now()
		 where id=$5 returning `+calendarCols,
		name, startMonth, description, color, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Calendar{}, ErrNotFound
	}
	return c, err
}

func (s *Store) DeleteCalendar(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `delete from calendars where id=$1`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
