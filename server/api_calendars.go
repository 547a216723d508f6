package main

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

const defaultColor = "#3B82F6"

func (a *api) handleListCalendars(w http.ResponseWriter, r *http.Request) {
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	own, err := a.store.OwnCalendars(r.Context(), u.ID)
	if err != nil {
		a.log.Error("list own calendars", "err", err)
		writeError(w, 500, "internal error", "could not list calendars")
		return
	}
	shared, err := a.store.SharedCalendars(r.Context(), u.ID)
	if err != nil {
		a.log.Error("list shared calendars", "err", err)
		writeError(w, 500, "internal error", "could not list calendars")
		return
	}
	all := append(own, shared...)
	writeJSON(w, 200, map[string]any{
		"success":   true,
		"calendars": all,
		"total":     len(all),
		"own":       len(own),
		"shared":    len(shared),
	})
}

func (a *api) handleCreateCalendar(w http.ResponseWriter, r *http.Request) {
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	var req struct {
		Name        string `json:"name"`
		StartMonth  string `json:"start_month"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, 400, "incomplete data", "calendar name is required")
		return
	}
	startMonth := req.StartMonth
	if startMonth == "" {
		startMonth = time.Now().Format(monthLayout)
	}
	if !validMonth(startMonth) {
		writeError(w, 400, "invalid start month", "start_month must be YYYY-MM")
		return
	}
	color := req.Color
	if color == "" {
		color = defaultColor
	}
	c, err := a.store.CreateCalendar(r.Context(), u.ID, strings.TrimSpace(req.Name), startMonth, req.Description, color)
	if err != nil {
		a.log.Error("create calendar", "err", err)
		writeError(w, 500, "internal error", "could not create the calendar")
		return
	}
	c.IsOwner, c.CanEdit, c.CanDelete, c.CanShare = true, true, true, true
	writeJSON(w, 201, map[string]any{"success": true, "calendar": c})
}

func (a *api) handleGetCalendar(w http.ResponseWriter, r *http.Request) {
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
	c, err := a.store.GetCalendar(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "calendar not found", "calendar does not exist or you do not have access to it")
			return
		}
		a.log.Error("get calendar", "err", err)
		writeError(w, 500, "internal error", "could not fetch the calendar")
		return
	}
	annotate(&c, acc)
	writeJSON(w, 200, map[string]any{"success": true, "calendar": c})
}

func (a *api) handleUpdateCalendar(w http.ResponseWriter, r *http.Request) {
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
	if _, err := a.store.AuthorizeCalendar(r.Context(), u.ID, id, capOwner); err != nil {
		a.denyCalendar(w, err, "update")
		return
	}
	var req struct {
		Name        string `json:"name"`
		StartMonth  string `json:"start_month"`
		Description string `json:"description"`
		Color       string `json:"color"`
	}
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Name) == "" {
		writeError(w, 400, "incomplete data", "calendar name is required")
		return
	}
	if req.StartMonth != "" && !validMonth(req.StartMonth) {
		writeError(w, 400, "invalid start month", "start_month must be YYYY-MM")
		return
	}
	old, err := a.store.GetCalendar(r.Context(), id)
	if err != nil {
		a.log.Error("get calendar", "err", err)
		writeError(w, 500, "internal error", "could not update the calendar")
		return
	}
	color := req.Color
	if color == "" {
		color = defaultColor
	}
	c, err := a.store.UpdateCalendar(r.Context(), id, strings.TrimSpace(req.Name), req.StartMonth, req.Description, color)
	if err != nil {
		a.log.Error("update calendar", "err", err)
		writeError(w, 500, "internal error", "could not update the calendar")
		return
	}
	// Realign task dates after a start-month change. The calendar update is
	// already committed; shift failures are logged and never surfaced.
	if old.StartMonth != "" && req.StartMonth != "" && old.StartMonth != req.StartMonth {
		report := a.store.ShiftCalendarTasks(r.Context(), a.log, id, old.StartMonth, req.StartMonth)
		a.log.Info("calendar shifted", "calendar_id", id, "month_delta", report.MonthDelta,
			"shifted", len(report.Shifted), "failed", report.Failed)
		a.bus.Publish(Event{Type: "calendar.shifted", Entity: "calendar", CalendarID: id,
			Payload: map[string]any{"month_delta": report.MonthDelta, "shifted": len(report.Shifted)}})
	}
	c.IsOwner, c.CanEdit, c.CanDelete, c.CanShare = true, true, true, true
	writeJSON(w, 200, map[string]any{"success": true, "calendar": c})
	a.bus.Publish(Event{Type: "calendar.updated", Entity: "calendar", CalendarID: id})
}

func (a *api) handleDeleteCalendar(w http.ResponseWriter, r *http.Request) {
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
	if _, err := a.store.AuthorizeCalendar(r.Context(), u.ID, id, capOwner); err != nil {
		a.denyCalendar(w, err, "delete")
		return
	}
	if err := a.store.DeleteCalendar(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "calendar not found", "calendar does not exist or you do not have access to it")
			return
		}
		a.log.Error("delete calendar", "err", err)
		writeError(w, 500, "internal error", "could not delete the calendar")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true})
}

func (a *api) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
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
	if _, err := a.store.AuthorizeCalendar(r.Context(), u.ID, id, capView); err != nil {
		a.denyCalendar(w, err, "watch")
		return
	}
	a.bus.ServeSSE(w, r, id)
}

func annotate(c *Calendar, acc Access) {
	c.IsOwner = acc.IsOwner()
	c.CanEdit = acc.CanEdit
	c.CanDelete = acc.CanDelete
	c.CanShare = acc.CanShare
}

// denyCalendar translates guard denials: no access folds into 404, an
// insufficient capability is 403, anything else is a storage fault.
func (a *api) denyCalendar(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, 404, "calendar not found", "calendar does not exist or you do not have access to it")
	case errors.Is(err, ErrForbidden):
		writeError(w, 403, "permission denied", "you do not have permission to "+op+" this calendar")
	default:
		a.log.Error("authorize calendar", "op", op, "err", err)
		writeError(w, 500, "internal error", "could not authorize the request")
	}
}
