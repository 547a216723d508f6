package main

import (
	"errors"
	"net/http"
	"strings"
)

type sharePermissions struct {
	CanEdit   *bool `json:"can_edit"`
	CanDelete *bool `json:"can_delete"`
	CanShare  *bool `json:"can_share"`
}

type shareRequest struct {
	CalendarID  int64            `json:"calendar_id"`
	UserEmail   string           `json:"user_email"`
	Permissions sharePermissions `json:"permissions"`
}

// boolOr resolves an optional permission flag against its default.
func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

func (a *api) handleCreateShare(w http.ResponseWriter, r *http.Request) {
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	var req shareRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload", "request body could not be parsed")
		return
	}
	req.UserEmail = strings.ToLower(strings.TrimSpace(req.UserEmail))
	if req.CalendarID == 0 || req.UserEmail == "" {
		writeError(w, 400, "incomplete data", "calendar id and user email are required")
		return
	}
	if _, err := a.store.AuthorizeCalendar(r.Context(), u.ID, req.CalendarID, capOwner); err != nil {
		a.denyCalendar(w, err, "share")
		return
	}
	target, err := a.store.UserByEmail(r.Context(), req.UserEmail)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "user not found", "no user is registered with that email")
			return
		}
		a.log.Error("lookup share target", "err", err)
		writeError(w, 500, "internal error", "could not share the calendar")
		return
	}
	if target.ID == u.ID {
		writeError(w, 400, "invalid share", "you cannot share a calendar with yourself")
		return
	}
	exists, err := a.store.ShareExists(r.Context(), req.CalendarID, target.ID)
	if err != nil {
		a.log.Error("check existing share", "err", err)
		writeError(w, 500, "internal error", "could not share the calendar")
		return
	}
	if exists {
		writeError(w, 400, "already shared", "the calendar is already shared with that user")
		return
	}
	p := req.Permissions
	s, err := a.store.CreateShare(r.Context(), req.CalendarID, u.ID, target.ID,
		boolOr(p.CanEdit, true), boolOr(p.CanDelete, true), boolOr(p.CanShare, false))
	if err != nil {
		a.log.Error("create share", "err", err)
		writeError(w, 500, "internal error", "could not share the calendar")
		return
	}
	s.UserName, s.UserEmail = target.Name, target.Email
	writeJSON(w, 201, map[string]any{"success": true, "share": s})
	a.bus.Publish(Event{Type: "calendar.shared", Entity: "share", CalendarID: req.CalendarID})
}

func (a *api) handleSharesByCalendar(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id", "calendar id must be numeric")
		return
	}
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	acc, err := a.store.AuthorizeCalendar(r.Context(), u.ID, id, capView)
	if err != nil {
		a.denyCalendar(w, err, "read")
		return
	}
	if !acc.IsOwner() && !acc.CanEdit {
		writeError(w, 403, "permission denied", "you do not have permission to view shares for this calendar")
		return
	}
	shares, err := a.store.SharesByCalendar(r.Context(), id)
	if err != nil {
		a.log.Error("list shares", "err", err)
		writeError(w, 500, "internal error", "could not list shares")
		return
	}
	if shares == nil {
		shares = []CalendarShare{}
	}
	writeJSON(w, 200, map[string]any{"success": true, "shares": shares, "total": len(shares)})
}

func (a *api) handleUpdateShare(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id", "share id must be numeric")
		return
	}
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	var req struct {
		Permissions sharePermissions `json:"permissions"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload", "request body could not be parsed")
		return
	}
	old, err := a.store.ShareByIDForOwner(r.Context(), id, u.ID)
	if err != nil {
		a.denyShare(w, err)
		return
	}
	p := req.Permissions
	s, err := a.store.UpdateSharePermissions(r.Context(), id,
		boolOr(p.CanEdit, old.CanEdit), boolOr(p.CanDelete, old.CanDelete), boolOr(p.CanShare, old.CanShare))
	if err != nil {
		a.log.Error("update share", "err", err)
		writeError(w, 500, "internal error", "could not update the share")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true, "share": s})
	a.bus.Publish(Event{Type: "share.updated", Entity: "share", CalendarID: s.CalendarID})
}

func (a *api) handleDeleteShare(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id", "share id must be numeric")
		return
	}
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	s, err := a.store.ShareByIDForOwner(r.Context(), id, u.ID)
	if err != nil {
		a.denyShare(w, err)
		return
	}
	if err := a.store.DeleteShare(r.Context(), id); err != nil {
		a.log.Error("delete share", "err", err)
		writeError(w, 500, "internal error", "could not revoke the share")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true})
	a.bus.Publish(Event{Type: "share.revoked", Entity: "share", CalendarID: s.CalendarID})
}

func (a *api) handleSharedWithMe(w http.ResponseWriter, r *http.Request) {
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	shared, err := a.store.SharedCalendars(r.Context(), u.ID)
	if err != nil {
		a.log.Error("shared with me", "err", err)
		writeError(w, 500, "internal error", "could not list shared calendars")
		return
	}
	if shared == nil {
		shared = []Calendar{}
	}
	writeJSON(w, 200, map[string]any{"success": true, "calendars": shared, "total": len(shared)})
}

func (a *api) handleSearchUsers(w http.ResponseWriter, r *http.Request) {
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("query"))
	if len(q) < 2 {
		writeError(w, 400, "query too short", "query must be at least 2 characters")
		return
	}
	users, err := a.store.SearchUsers(r.Context(), q, u.ID, 10)
	if err != nil {
		a.log.Error("search users", "err", err)
		writeError(w, 500, "internal error", "could not search users")
		return
	}
	if users == nil {
		users = []User{}
	}
	writeJSON(w, 200, map[string]any{"success": true, "users": users, "total": len(users)})
}

// Only the user who granted a share may change or revoke it. A share that
// exists but was granted by someone else looks the same as a missing one to
// the store, so the lookup failure maps to 403 rather than 404.
func (a *api) denyShare(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, 403, "permission denied", "only the user who granted this share can modify it")
	default:
		a.log.Error("authorize share", "err", err)
		writeError(w, 500, "internal error", "could not authorize the request")
	}
}
