package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"aduan/internal/session"

	"github.com/gorilla/mux"
)

// SessionCookie carries the session id.
const SessionCookie = "aduan_session"

type ctxKey int

const sessionKey ctxKey = iota

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// metricsMiddleware records request counts and latency per route template.
func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		s.Metrics.IncrementRequests(route, r.Method, strconv.Itoa(rec.status))
		s.Metrics.RecordRequestLatency(route, r.Method, time.Since(start))
	})
}

// sessionMiddleware resolves the session from its cookie, creating one when
// the cookie is missing or unknown, and refreshes the cookie.
func (s *Server) sessionMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var id string
		if c, err := r.Cookie(SessionCookie); err == nil {
			id = c.Value
		}

		st := s.Sessions.Get(id)
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookie,
			Value:    st.ID,
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), sessionKey, st.ID)))
	})
}

// sessionID returns the session id resolved by sessionMiddleware.
func sessionID(r *http.Request) string {
	id, _ := r.Context().Value(sessionKey).(string)
	return id
}

// currentSession returns the live state of the request's session.
func (s *Server) currentSession(r *http.Request) session.State {
	return s.Sessions.Get(sessionID(r))
}
