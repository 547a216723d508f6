package main

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

type noteRequest struct {
	CalendarID int64  `json:"calendar_id"`
	TaskID     *int64 `json:"task_id"`
	Title      string `json:"title"`
	Content    string `json:"content"`
	Date       string `json:"date"`
	IsGeneral  bool   `json:"is_general"`
}

func (n *noteRequest) parsedDate() (*time.Time, bool) {
	if n.Date == "" {
		return nil, true
	}
	d, err := parseDate(n.Date)
	if err != nil {
		return nil, false
	}
	return &d, true
}

func (a *api) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	var req noteRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload", "request body could not be parsed")
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.CalendarID == 0 {
		writeError(w, 400, "incomplete data", "title and calendar id are required")
		return
	}
	if !req.IsGeneral && req.TaskID == nil {
		writeError(w, 400, "incomplete data", "a task note requires a task id")
		return
	}
	if req.IsGeneral {
		req.TaskID = nil
	}
	if _, err := a.store.AuthorizeCalendar(r.Context(), u.ID, req.CalendarID, capView); err != nil {
		a.denyCalendar(w, err, "add notes to")
		return
	}
	if req.TaskID != nil {
		ok, err := a.store.TaskBelongsToCalendar(r.Context(), *req.TaskID, req.CalendarID)
		if err != nil {
			a.log.Error("check task calendar", "err", err)
			writeError(w, 500, "internal error", "could not create the note")
			return
		}
		if !ok {
			writeError(w, 400, "invalid payload", "task does not belong to the given calendar")
			return
		}
	}
	date, ok := req.parsedDate()
	if !ok {
		writeError(w, 400, "invalid payload", "date must be YYYY-MM-DD")
		return
	}
	n, err := a.store.CreateNote(r.Context(), u.ID, req.CalendarID, req.TaskID, req.Title, req.Content, date, req.IsGeneral)
	if err != nil {
		a.log.Error("create note", "err", err)
		writeError(w, 500, "internal error", "could not create the note")
		return
	}
	writeJSON(w, 201, map[string]any{"success": true, "note": n})
	a.bus.Publish(Event{Type: "note.created", Entity: "note", CalendarID: n.CalendarID, TaskID: n.TaskID})
}

func (a *api) handleListNotes(w http.ResponseWriter, r *http.Request) {
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	var f NoteFilter
	q := r.URL.Query()
	if v := q.Get("calendar_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			writeError(w, 400, "bad id", "calendar_id must be numeric")
			return
		}
		f.CalendarID = &id
	}
	if v := q.Get("task_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			writeError(w, 400, "bad id", "task_id must be numeric")
			return
		}
		f.TaskID = &id
	}
	if v := q.Get("is_general"); v != "" {
		general := v == "true"
		f.IsGeneral = &general
	}
	notes, err := a.store.ListNotes(r.Context(), u.ID, f)
	if err != nil {
		a.log.Error("list notes", "err", err)
		writeError(w, 500, "internal error", "could not list notes")
		return
	}
	if notes == nil {
		notes = []Note{}
	}
	writeJSON(w, 200, map[string]any{"success": true, "notes": notes, "total": len(notes)})
}

func (a *api) handleGetNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id", "note id must be numeric")
		return
	}
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	_, n, err := a.store.AuthorizeNote(r.Context(), u.ID, id, capView)
	if err != nil {
		a.denyNote(w, err, "read")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true, "note": n})
}

func (a *api) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id", "note id must be numeric")
		return
	}
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	var req noteRequest
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeError(w, 400, "incomplete data", "title is required")
		return
	}
	_, old, err := a.store.AuthorizeNote(r.Context(), u.ID, id, capEdit)
	if err != nil {
		a.denyNote(w, err, "edit")
		return
	}
	date, ok := req.parsedDate()
	if !ok {
		writeError(w, 400, "invalid payload", "date must be YYYY-MM-DD")
		return
	}
	if date == nil {
		date = old.Date
	}
	n, err := a.store.UpdateNote(r.Context(), id, strings.TrimSpace(req.Title), req.Content, old.TaskID, date, old.IsGeneral)
	if err != nil {
		a.log.Error("update note", "err", err)
		writeError(w, 500, "internal error", "could not update the note")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true, "note": n})
	a.bus.Publish(Event{Type: "note.updated", Entity: "note", CalendarID: n.CalendarID, TaskID: n.TaskID})
}

func (a *api) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id", "note id must be numeric")
		return
	}
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	_, n, err := a.store.AuthorizeNote(r.Context(), u.ID, id, capDelete)
	if err != nil {
		a.denyNote(w, err, "delete")
		return
	}
	if err := a.store.DeleteNote(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "note not found", "note does not exist or you do not have access to it")
			return
		}
		a.log.Error("delete note", "err", err)
		writeError(w, 500, "internal error", "could not delete the note")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true})
	a.bus.Publish(Event{Type: "note.deleted", Entity: "note", CalendarID: n.CalendarID, TaskID: n.TaskID})
}

func (a *api) denyNote(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, 404, "note not found", "note does not exist or you do not have access to it")
	case errors.Is(err, ErrForbidden):
		writeError(w, 403, "permission denied", "you do not have permission to "+op+" notes in this calendar")
	default:
		a.log.Error("authorize note", "op", op, "err", err)
		writeError(w, 500, "internal error", "could not authorize the request")
	}
}
