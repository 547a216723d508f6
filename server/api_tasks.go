package main

import (
	"errors"
	"net/http"
	"strings"
	"time"
)

type taskRequest struct {
	CalendarID    int64    `json:"calendar_id"`
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ContentType   string   `json:"content_type"`
	Platforms     []string `json:"platforms"`
	Status        string   `json:"status"`
	ScheduledDate string   `json:"scheduled_date"`
}

// normalize applies defaults and validates the enum fields. Returns a user
// facing message when the payload is invalid.
func (t *taskRequest) normalize() (scheduled *time.Time, errMsg string) {
	t.Title = strings.TrimSpace(t.Title)
	if t.ContentType == "" {
		t.ContentType = "text"
	}
	if !validContentTypes[t.ContentType] {
		return nil, "content_type must be one of video, image, text, campaign, ad"
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if !validStatuses[t.Status] {
		return nil, "status must be one of pending, completed, overdue"
	}
	if !validPlatformSet(t.Platforms) {
		return nil, "platforms must be among instagram, youtube, tiktok, facebook, linkedin"
	}
	if t.ScheduledDate != "" {
		d, err := parseDate(t.ScheduledDate)
		if err != nil {
			return nil, "scheduled_date must be YYYY-MM-DD"
		}
		scheduled = &d
	}
	return scheduled, ""
}

func (a *api) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	var req taskRequest
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload", "request body could not be parsed")
		return
	}
	if req.CalendarID == 0 || strings.TrimSpace(req.Title) == "" || req.ScheduledDate == "" {
		writeError(w, 400, "incomplete data", "calendar id, title and date are required")
		return
	}
	scheduled, errMsg := req.normalize()
	if errMsg != "" {
		writeError(w, 400, "invalid payload", errMsg)
		return
	}
	if _, err := a.store.AuthorizeCalendar(r.Context(), u.ID, req.CalendarID, capEdit); err != nil {
		a.denyCalendar(w, err, "add tasks to")
		return
	}
	t, err := a.store.CreateTask(r.Context(), req.CalendarID, req.Title, req.Description, req.ContentType, req.Platforms, req.Status, scheduled)
	if err != nil {
		a.log.Error("create task", "err", err)
		writeError(w, 500, "internal error", "could not create the task")
		return
	}
	writeJSON(w, 201, map[string]any{"success": true, "task": t})
	a.bus.Publish(Event{Type: "task.created", Entity: "task", CalendarID: t.CalendarID, TaskID: &t.ID})
}

func (a *api) handleListTasks(w http.ResponseWriter, r *http.Request) {
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	var calendarID *int64
	if v := r.URL.Query().Get("calendar_id"); v != "" {
		id, err := parseID(v)
		if err != nil {
			writeError(w, 400, "bad id", "calendar_id must be numeric")
			return
		}
		calendarID = &id
	}
	tasks, err := a.store.TasksForOwner(r.Context(), u.ID, calendarID)
	if err != nil {
		a.log.Error("list tasks", "err", err)
		writeError(w, 500, "internal error", "could not list tasks")
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	writeJSON(w, 200, map[string]any{"success": true, "tasks": tasks, "total": len(tasks)})
}

func (a *api) handleTasksByCalendar(w http.ResponseWriter, r *http.Request) {
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
	tasks, err := a.store.TasksByCalendar(r.Context(), id)
	if err != nil {
		a.log.Error("tasks by calendar", "err", err)
		writeError(w, 500, "internal error", "could not list tasks")
		return
	}
	if tasks == nil {
		tasks = []Task{}
	}
	writeJSON(w, 200, map[string]any{
		"success": true,
		"tasks":   tasks,
		"total":   len(tasks),
		"calendar": map[string]any{
			"id":       id,
			"is_owner": acc.IsOwner(),
			"permissions": map[string]bool{
				"can_edit":   acc.CanEdit,
				"can_delete": acc.CanDelete,
				"can_share":  acc.CanShare,
			},
		},
	})
}

func (a *api) handleGetTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id", "task id must be numeric")
		return
	}
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	t, err := a.store.GetTaskForOwner(r.Context(), id, u.ID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "task not found", "task does not exist or you do not have access to it")
			return
		}
		a.log.Error("get task", "err", err)
		writeError(w, 500, "internal error", "could not fetch the task")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true, "task": t})
}

func (a *api) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id", "task id must be numeric")
		return
	}
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	var req taskRequest
	if err := readJSON(w, r, &req); err != nil || strings.TrimSpace(req.Title) == "" {
		writeError(w, 400, "incomplete data", "title is required")
		return
	}
	scheduled, errMsg := req.normalize()
	if errMsg != "" {
		writeError(w, 400, "invalid payload", errMsg)
		return
	}
	if _, _, err := a.store.AuthorizeTask(r.Context(), u.ID, id, capEdit); err != nil {
		a.denyTask(w, err, "edit")
		return
	}
	t, err := a.store.UpdateTask(r.Context(), id, req.Title, req.Description, req.ContentType, req.Platforms, req.Status, scheduled)
	if err != nil {
		a.log.Error("update task", "err", err)
		writeError(w, 500, "internal error", "could not update the task")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true, "task": t})
	a.bus.Publish(Event{Type: "task.updated", Entity: "task", CalendarID: t.CalendarID, TaskID: &t.ID})
}

func (a *api) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id", "task id must be numeric")
		return
	}
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	_, calendarID, err := a.store.AuthorizeTask(r.Context(), u.ID, id, capDelete)
	if err != nil {
		a.denyTask(w, err, "delete")
		return
	}
	if err := a.store.DeleteTask(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 404, "task not found", "task does not exist or you do not have access to it")
			return
		}
		a.log.Error("delete task", "err", err)
		writeError(w, 500, "internal error", "could not delete the task")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true})
	a.bus.Publish(Event{Type: "task.deleted", Entity: "task", CalendarID: calendarID, TaskID: &id})
}

func (a *api) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r.PathValue("id"))
	if err != nil {
		writeError(w, 400, "bad id", "task id must be numeric")
		return
	}
	u, errU := a.currentUser(r)
	if errU != nil {
		unauthorized(w)
		return
	}
	var req struct {
		NewDate string `json:"new_date"`
		Status  string `json:"status"`
	}
	if err := readJSON(w, r, &req); err != nil {
		writeError(w, 400, "invalid payload", "request body could not be parsed")
		return
	}
	if req.NewDate == "" && req.Status == "" {
		writeError(w, 400, "incomplete data", "new date or status is required")
		return
	}
	var newDate *time.Time
	if req.NewDate != "" {
		d, err := parseDate(req.NewDate)
		if err != nil {
			writeError(w, 400, "invalid payload", "new_date must be YYYY-MM-DD")
			return
		}
		newDate = &d
	}
	var status *string
	if req.Status != "" {
		if !validStatuses[req.Status] {
			writeError(w, 400, "invalid payload", "status must be one of pending, completed, overdue")
			return
		}
		status = &req.Status
	}
	if _, _, err := a.store.AuthorizeTask(r.Context(), u.ID, id, capEdit); err != nil {
		a.denyTask(w, err, "move")
		return
	}
	t, err := a.store.MoveTask(r.Context(), id, newDate, status)
	if err != nil {
		a.log.Error("move task", "err", err)
		writeError(w, 500, "internal error", "could not move the task")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true, "task": t})
	a.bus.Publish(Event{Type: "task.moved", Entity: "task", CalendarID: t.CalendarID, TaskID: &t.ID})
}

func (a *api) denyTask(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrNotFound):
		writeError(w, 404, "task not found", "task does not exist or you do not have access to it")
	case errors.Is(err, ErrForbidden):
		writeError(w, 403, "permission denied", "you do not have permission to "+op+" tasks in this calendar")
	default:
		a.log.Error("authorize task", "op", op, "err", err)
		writeError(w, 500, "internal error", "could not authorize the request")
	}
}
