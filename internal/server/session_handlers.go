package server

import (
	"encoding/json"
	"net/http"

	apperrors "aduan/internal/errors"
	"aduan/internal/session"
)

// Notification texts shown after admin gate actions.
const (
	msgAdminWelcome  = "Selamat Datang, Admin!"
	msgWrongPassword = "Kata laluan salah!"
)

// GetSession returns the session state.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.currentSession(r))
}

// SetView switches the active view.
func (s *Server) SetView(w http.ResponseWriter, r *http.Request) {
	var body struct {
		View string `json:"view"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperrors.NewValidationError("view", "invalid json"), "")
		return
	}
	v, ok := session.ParseView(body.View)
	if !ok {
		s.writeError(w, apperrors.NewValidationError("view", "unknown view "+body.View), "")
		return
	}
	writeJSON(w, http.StatusOK, s.Sessions.SetView(sessionID(r), v))
}

// AdminLogin elevates the session with the shared admin password.
func (s *Server) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		s.writeError(w, apperrors.NewValidationError("password", "invalid json"), "")
		return
	}

	st, err := s.Sessions.Login(sessionID(r), body.Password)
	if err != nil {
		// A wrong secret is an authentication failure, not a missing privilege
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: msgWrongPassword})
		return
	}
	writeJSON(w, http.StatusOK, messageBody{Message: msgAdminWelcome, Data: st})
}

// AdminLogout drops admin privilege.
func (s *Server) AdminLogout(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Sessions.Logout(sessionID(r)))
}
