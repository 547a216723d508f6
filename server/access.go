package main

import (
	"context"
	"database/sql"
	"errors"
)

// AccessLevel is the caller's relationship to a calendar.
type AccessLevel int

const (
	AccessNone AccessLevel = iota
	AccessShared
	AccessOwner
)

// Access is the effective permission set for a (user, calendar) pair.
// The owner holds every capability unconditionally; a grantee holds exactly
// the flags on their share row; everyone else holds nothing.
type Access struct {
	Level     AccessLevel
	CanEdit   bool
	CanDelete bool
	CanShare  bool
}

func (a Access) HasAccess() bool { return a.Level != AccessNone }
func (a Access) IsOwner() bool   { return a.Level == AccessOwner }

// ResolveCalendarAccess computes the caller's access to a calendar in one
// round trip. A missing calendar and a calendar the caller was never granted
// fold into the same AccessNone result so that callers cannot probe for
// calendar ids they do not own. Ownership is checked first and wins even if a
// stray share row exists for the owner.
func (s *Store) ResolveCalendarAccess(ctx context.Context, userID, calendarID int64) (Access, error) {
	var ownerID int64
	var shareID sql.NullInt64
	var canEdit, canDelete, canShare sql.NullBool
	err := s.db.QueryRowContext(ctx, `select c.user_id, cs.id, cs.can_edit, cs.can_delete, cs.can_share
		from calendars c
		left join calendar_shares cs on cs.calendar_id = c.id and cs.shared_with_id = $1
		where c.id = $2`, userID, calendarID).
		Scan(&ownerID, &shareID, &canEdit, &canDelete, &canShare)
	if errors.Is(err, sql.ErrNoRows) {
		return Access{}, nil
	}
	if err != nil {
		return Access{}, err
	}
	if ownerID == userID {
		return Access{Level: AccessOwner, CanEdit: true, CanDelete: true, CanShare: true}, nil
	}
	if shareID.Valid {
		return Access{Level: AccessShared, CanEdit: canEdit.Bool, CanDelete: canDelete.Bool, CanShare: canShare.Bool}, nil
	}
	return Access{}, nil
}
