// Package session holds the per-visitor application state of the dashboard:
// which view is active, whether the admin gate has been passed, and which
// operations are in flight.
//
// The admin gate compares against one shared secret. It keeps casual visitors
// away from admin actions and is not an access-control mechanism. The secret
// is held only as a bcrypt hash; a configured value that is already a bcrypt
// hash is used as is.
package session

import (
	"sync"
	"time"

	apperrors "aduan/internal/errors"
	"aduan/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// View is one of the dashboard screens.
type View string

const (
	ViewDashboard View = "dashboard"
	ViewList      View = "list"
	ViewAnalytics View = "analytics"
	ViewForm      View = "form"
)

// DefaultView is shown to a new session.
const DefaultView = ViewDashboard

// ParseView validates a view name.
func ParseView(s string) (View, bool) {
	switch v := View(s); v {
	case ViewDashboard, ViewList, ViewAnalytics, ViewForm:
		return v, true
	}
	return "", false
}

// State is a snapshot of one session.
type State struct {
	ID             string    `json:"id"`
	ActiveView     View      `json:"activeView"`
	Admin          bool      `json:"admin"`
	Submitting     bool      `json:"submitting"`
	Exporting      bool      `json:"exporting"`
	UpdatingStatus string    `json:"updatingStatus,omitempty"` // report id
	Deleting       string    `json:"deleting,omitempty"`       // report id
	CreatedAt      time.Time `json:"createdAt"`
	LastSeen       time.Time `json:"lastSeen"`
}

// Privilege maps the admin flag onto a repository privilege.
func (s State) Privilege() repository.Privilege {
	if s.Admin {
		return repository.Admin
	}
	return repository.Staff
}

// Store keeps session states in memory, keyed by session id.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*State
	hash     []byte // nil when the secret could not be hashed; every login fails
	idle     time.Duration
	now      func() time.Time
}

// NewStore creates a store. Sessions unused for longer than idle are dropped
// by Sweep.
func NewStore(adminSecret string, idle time.Duration) *Store {
	return &Store{
		sessions: make(map[string]*State),
		hash:     hashSecret(adminSecret),
		idle:     idle,
		now:      time.Now,
	}
}

// Get returns the session for id, creating a fresh one (new id, default
// view, every flag false) when id is unknown.
func (s *Store) Get(id string) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.lookup(id)
}

func (s *Store) lookup(id string) *State {
	now := s.now()
	if st, ok := s.sessions[id]; ok {
		st.LastSeen = now
		return st
	}
	st := &State{
		ID:         uuid.NewString(),
		ActiveView: DefaultView,
		CreatedAt:  now,
		LastSeen:   now,
	}
	s.sessions[st.ID] = st
	return st
}

// Update applies fn to the session and returns the result.
func (s *Store) Update(id string, fn func(*State)) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.lookup(id)
	fn(st)
	return *st
}

// SetView switches the active view.
func (s *Store) SetView(id string, v View) State {
	return s.Update(id, func(st *State) { st.ActiveView = v })
}

// Login elevates the session when password matches the shared secret.
func (s *Store) Login(id, password string) (State, error) {
	if s.hash == nil || bcrypt.CompareHashAndPassword(s.hash, []byte(password)) != nil {
		return s.Get(id), apperrors.NewUnauthorizedError("wrong admin password")
	}
	return s.Update(id, func(st *State) { st.Admin = true }), nil
}

// hashSecret returns the bcrypt hash of secret, or secret itself when it is
// already a hash.
func hashSecret(secret string) []byte {
	if _, err := bcrypt.Cost([]byte(secret)); err == nil {
		return []byte(secret)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil
	}
	return hash
}

// Logout drops admin privilege.
func (s *Store) Logout(id string) State {
	return s.Update(id, func(st *State) { st.Admin = false })
}

// Operations tracked as in-flight flags.
const (
	OpSubmit = "submit"
	OpExport = "export"
	OpStatus = "status"
	OpDelete = "delete"
)

// Begin marks an operation in flight and returns a func that clears it.
// target is the report id for OpStatus and OpDelete.
func (s *Store) Begin(id, op, target string) func() {
	s.Update(id, func(st *State) { setFlag(st, op, true, target) })
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if st, ok := s.sessions[id]; ok {
			setFlag(st, op, false, "")
		}
	}
}

func setFlag(st *State, op string, on bool, target string) {
	switch op {
	case OpSubmit:
		st.Submitting = on
	case OpExport:
		st.Exporting = on
	case OpStatus:
		st.UpdatingStatus = target
	case OpDelete:
		st.Deleting = target
	}
}

// Sweep removes idle sessions and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idle)
	n := 0
	for id, st := range s.sessions {
		if st.LastSeen.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
