package main

import "context"

// capability names the access a mutation requires on its target calendar.
type capability int

const (
	capView capability = iota
	capEdit
	capDelete
	capShare
	// capOwner marks operations reserved to the calendar owner
	// (calendar update/delete, share creation).
	capOwner
)

// AuthorizeCalendar resolves the caller's access and checks the required
// capability. No access and no such calendar both yield ErrNotFound;
// access without the capability yields ErrForbidden. Neither is ever
// reported as an internal error.
func (s *Store) AuthorizeCalendar(ctx context.Context, userID, calendarID int64, need capability) (Access, error) {
	acc, err := s.ResolveCalendarAccess(ctx, userID, calendarID)
	if err != nil {
		return Access{}, err
	}
	if !acc.HasAccess() {
		return Access{}, ErrNotFound
	}
	if acc.IsOwner() {
		return acc, nil
	}
	switch need {
	case capView:
		return acc, nil
	case capEdit:
		if acc.CanEdit {
			return acc, nil
		}
	case capDelete:
		if acc.CanDelete {
			return acc, nil
		}
	case capShare:
		if acc.CanShare {
			return acc, nil
		}
	}
	return Access{}, ErrForbidden
}

// AuthorizeTask gates a task mutation behind the capability required on the
// task's calendar. A task the caller cannot see folds into ErrNotFound.
func (s *Store) AuthorizeTask(ctx context.Context, userID, taskID int64, need capability) (Access, int64, error) {
	calendarID, err := s.CalendarIDByTask(ctx, taskID)
	if err != nil {
		return Access{}, 0, err
	}
	acc, err := s.AuthorizeCalendar(ctx, userID, calendarID, need)
	return acc, calendarID, err
}

// AuthorizeNote gates a note mutation. Permissions are entirely calendar
// derived: the note author gets no special treatment, so a grantee with
// can_edit may modify notes written by the owner and vice versa.
func (s *Store) AuthorizeNote(ctx context.Context, userID, noteID int64, need capability) (Access, Note, error) {
	n, err := s.GetNote(ctx, noteID)
	if err != nil {
		return Access{}, Note{}, err
	}
	acc, err := s.AuthorizeCalendar(ctx, userID, n.CalendarID, need)
	if err != nil {
		return Access{}, Note{}, err
	}
	return acc, n, nil
}
