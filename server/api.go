package main

import (
	"net/http"
	"time"
)

func (a *api) routes(mux *http.ServeMux) {
	// Auth endpoints
	mux.HandleFunc("POST /api/auth/register", a.withRateLimit("auth", 20, time.Minute, a.handleRegister))
	mux.HandleFunc("POST /api/auth/login", a.withRateLimit("auth", 30, time.Minute, a.handleLogin))
	mux.HandleFunc("POST /api/auth/verify", a.handleVerify)
	mux.HandleFunc("POST /api/auth/logout", a.handleLogout)

	mux.HandleFunc("GET /api/health", a.handleHealth)
	mux.HandleFunc("GET /api/status", a.handleStatus)

	// Calendars
	mux.HandleFunc("GET /api/calendars", a.handleListCalendars)
	mux.HandleFunc("POST /api/calendars", a.handleCreateCalendar)
	mux.HandleFunc("GET /api/calendars/{id}", a.handleGetCalendar)
	mux.HandleFunc("PUT /api/calendars/{id}", a.handleUpdateCalendar)
	mux.HandleFunc("DELETE /api/calendars/{id}", a.handleDeleteCalendar)
	mux.HandleFunc("GET /api/calendars/{id}/events", a.handleCalendarEvents)

	// Tasks
	mux.HandleFunc("GET /api/tasks", a.handleListTasks)
	mux.HandleFunc("POST /api/tasks", a.handleCreateTask)
	mux.HandleFunc("GET /api/tasks/calendar/{id}", a.handleTasksByCalendar)
	mux.HandleFunc("GET /api/tasks/{id}", a.handleGetTask)
	mux.HandleFunc("PUT /api/tasks/{id}", a.handleUpdateTask)
	mux.HandleFunc("DELETE /api/tasks/{id}", a.handleDeleteTask)
	mux.HandleFunc("PATCH /api/tasks/{id}/move", a.handleMoveTask)

	// Notes
	mux.HandleFunc("GET /api/notes", a.handleListNotes)
	mux.HandleFunc("POST /api/notes", a.handleCreateNote)
	mux.HandleFunc("GET /api/notes/{id}", a.handleGetNote)
	mux.HandleFunc("PUT /api/notes/{id}", a.handleUpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", a.handleDeleteNote)

	// Sharing
	mux.HandleFunc("POST /api/sharing/share", a.handleCreateShare)
	mux.HandleFunc("GET /api/sharing/calendar/{id}", a.handleSharesByCalendar)
	mux.HandleFunc("PUT /api/sharing/share/{id}", a.handleUpdateShare)
	mux.HandleFunc("DELETE /api/sharing/share/{id}", a.handleDeleteShare)
	mux.HandleFunc("GET /api/sharing/shared-with-me", a.handleSharedWithMe)
	mux.HandleFunc("GET /api/sharing/search-users", a.handleSearchUsers)
}
