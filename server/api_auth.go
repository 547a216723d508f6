package main

import (
	"errors"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

func (a *api) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil ||
		strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
		writeError(w, 400, "incomplete data", "email and password are required")
		return
	}
	if len(req.Password) < 6 {
		writeError(w, 400, "password too short", "password must be at least 6 characters")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = strings.SplitN(req.Email, "@", 2)[0]
	}
	if _, err := a.store.UserByEmail(r.Context(), req.Email); err == nil {
		writeError(w, 400, "user already exists", "this email is already registered")
		return
	} else if !errors.Is(err, ErrNotFound) {
		a.log.Error("register lookup", "err", err)
		writeError(w, 500, "internal error", "could not create the user")
		return
	}
	hashBytes, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		a.log.Error("bcrypt", "err", err)
		writeError(w, 500, "internal error", "could not create the user")
		return
	}
	u, err := a.store.CreateUser(r.Context(), strings.TrimSpace(req.Email), string(hashBytes), name)
	if err != nil {
		a.log.Error("register", "err", err)
		writeError(w, 400, "cannot create user", "this email is already registered")
		return
	}
	token, _, err := a.store.CreateToken(r.Context(), u.ID, a.tokenTTL())
	if err != nil {
		a.log.Error("create token", "err", err)
		writeError(w, 500, "internal error", "could not create the user")
		return
	}
	writeJSON(w, 201, map[string]any{"success": true, "user": u, "token": token})
}

func (a *api) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := readJSON(w, r, &req); err != nil || req.Email == "" || req.Password == "" {
		writeError(w, 400, "incomplete data", "email and password are required")
		return
	}
	u, err := a.store.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			writeError(w, 401, "invalid credentials", "email or password is incorrect")
			return
		}
		a.log.Error("login", "err", err)
		writeError(w, 500, "internal error", "could not log in")
		return
	}
	token, _, err := a.store.CreateToken(r.Context(), u.ID, a.tokenTTL())
	if err != nil {
		a.log.Error("create token", "err", err)
		writeError(w, 500, "internal error", "could not log in")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true, "user": u, "token": token})
}

// handleVerify resolves a raw token back to its user, for clients restoring a
// stored session.
func (a *api) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := readJSON(w, r, &req); err != nil || req.Token == "" {
		writeError(w, 400, "token missing", "token is required")
		return
	}
	u, err := a.store.UserByToken(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			unauthorized(w)
			return
		}
		a.log.Error("verify token", "err", err)
		writeError(w, 500, "internal error", "could not verify the token")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true, "user": u})
}

func (a *api) handleLogout(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := readJSON(w, r, &req); err != nil || req.Token == "" {
		writeError(w, 400, "token missing", "token is required")
		return
	}
	if err := a.store.DeleteToken(r.Context(), req.Token); err != nil {
		a.log.Error("logout", "err", err)
		writeError(w, 500, "internal error", "could not log out")
		return
	}
	writeJSON(w, 200, map[string]any{"success": true})
}
