package main

import (
	"context"
	"database/sql"
	"errors"
)

const shareCols = `id, calendar_id, owner_id, shared_with_id, can_edit, can_delete, can_share, shared_at`

func scanShare(row interface{ Scan(...any) error }) (CalendarShare, error) {
	var sh CalendarShare
	err := row.Scan(&sh.ID, &sh.CalendarID, &sh.OwnerID, &sh.SharedWithID, &sh.CanEdit, &sh.CanDelete, &sh.CanShare, &sh.SharedAt)
	return sh, err
}

func (s *Store) CreateShare(ctx context.Context, calendarID, ownerID, sharedWithID int64, canEdit, canDelete, canShare bool) (CalendarShare, error) {
	return scanShare(s.db.QueryRowContext(ctx,
		`insert into calendar_shares(calendar_id, owner_id, shared_with_id, can_edit, can_delete, can_share)
		 values($1,$2,$3,$4,$5,$6) returning `+shareCols,
		calendarID, ownerID, sharedWithID, canEdit, canDelete, canShare))
}

func (s *Store) ShareExists(ctx context.Context, calendarID, sharedWithID int64) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `select id from calendar_shares where calendar_id=$1 and shared_with_id=$2`,
		calendarID, sharedWithID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	return err == nil, err
}

// SharesByCalendar lists every grant on a calendar with grantee details.
func (s *Store) SharesByCalendar(ctx context.Context, calendarID int64) ([]CalendarShare, error) {
	rows, err := s.db.QueryContext(ctx,
		`select cs.id, cs.calendar_id, cs.owner_id, cs.shared_with_id, cs.can_edit, cs.can_delete, cs.can_share, cs.shared_at,
		        u.name, u.email
		 from calendar_shares cs join users u on u.id = cs.shared_with_id
		 where cs.calendar_id=$1 order by cs.shared_at desc`, calendarID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CalendarShare
	for rows.Next() {
		var sh CalendarShare
		if err := rows.Scan(&sh.ID, &sh.CalendarID, &sh.OwnerID, &sh.SharedWithID,
			&sh.CanEdit, &sh.CanDelete, &sh.CanShare, &sh.SharedAt, &sh.UserName, &sh.UserEmail); err != nil {
			return nil, err
		}
		out = append(out, sh)
	}
	return out, rows.Err()
}

// ShareByIDForOwner fetches a grant only if the caller is the owner who
// created it. Only that owner may edit or revoke the grant.
func (s *Store) ShareByIDForOwner(ctx context.Context, shareID, ownerID int64) (CalendarShare, error) {
	sh, err := scanShare(s.db.QueryRowContext(ctx,
		`select `+shareCols+` from calendar_shares where id=$1 and owner_id=$2`, shareID, ownerID))
	if errors.Is(err, sql.ErrNoRows) {
		return CalendarShare{}, ErrNotFound
	}
	return sh, err
}

func (s *Store) UpdateSharePermissions(ctx context.Context, shareID int64, canEdit, canDelete, canShare bool) (CalendarShare, error) {
	sh, err := scanShare(s.db.QueryRowContext(ctx,
		`update calendar_shares set can_edit=$1, can_delete=$2, can_share=$3 where id=$4 returning `+shareCols,
		canEdit, canDelete, canShare, shareID))
	if errors.Is(err, sql.ErrNoRows) {
		return CalendarShare{}, ErrNotFound
	}
	return sh, err
}

func (s *Store) DeleteShare(ctx context.Context, shareID int64) error {
	_, err := s.db.ExecContext(ctx, `delete from calendar_shares where id=$1`, shareID)
	return err
}
