package server

import (
	"encoding/json"
	"net/http"

	apperrors "aduan/internal/errors"

	"go.uber.org/zap"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error string `json:"error"`
}

// messageBody pairs a user-facing notification with optional data.
type messageBody struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// helper function to write JSON response
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps typed errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case apperrors.IsValidation(err):
		return http.StatusBadRequest
	case apperrors.IsUnauthorized(err):
		return http.StatusForbidden
	case apperrors.IsConfirmationRequired(err):
		return http.StatusConflict
	case apperrors.IsOversize(err):
		return http.StatusRequestEntityTooLarge
	case apperrors.IsDispatch(err), apperrors.IsFetch(err):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError logs err and writes it with msg as the user-facing text. An
// empty msg uses the error text.
func (s *Server) writeError(w http.ResponseWriter, err error, msg string) {
	code := statusFor(err)
	if code >= http.StatusInternalServerError {
		s.Logger.Error("request failed", zap.Int("status", code), zap.Error(err))
	} else {
		s.Logger.Debug("request rejected", zap.Int("status", code), zap.Error(err))
	}
	if msg == "" {
		msg = err.Error()
	}
	writeJSON(w, code, errorBody{Error: msg})
}
