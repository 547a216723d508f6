package main

import (
	"net/http"
	"time"
)

func (a *api) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := a.store.Ping(r.Context()); err != nil {
		a.log.Error("health check", "err", err)
		writeError(w, 503, "unavailable", "database is not reachable")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true, "status": "ok"})
}

func (a *api) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, 200, map[string]any{
		"success": true,
		"status":  "ok",
		"env":     getenv("APP_ENV", "development"),
		"uptime":  time.Since(a.started).Round(time.Second).String(),
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}
