package reconcile

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Entry is one dispatched intent awaiting confirmation from the report feed.
type Entry struct {
	Token       string    `json:"token"`
	Action      string    `json:"action"`
	ReportID    string    `json:"reportId,omitempty"`
	Status      string    `json:"status,omitempty"`
	Fingerprint string    `json:"fingerprint,omitempty"`
	Baseline    int       `json:"baseline,omitempty"` // feed rows already matching Fingerprint at submit time
	TeacherName string    `json:"teacherName,omitempty"`
	Location    string    `json:"location,omitempty"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	Discrepancy bool      `json:"discrepancy"`
	Alerted     bool      `json:"alerted"`
}

// Ledger stores entries keyed by correlation token.
type Ledger interface {
	// Get returns the entry for token; ok is false when it is absent.
	Get(ctx context.Context, token string) (e Entry, ok bool, err error)
	Put(ctx context.Context, e Entry) error
	Delete(ctx context.Context, token string) error
	List(ctx context.Context) ([]Entry, error)
}

// MemoryLedger keeps entries in process memory. Entries are lost on restart.
type MemoryLedger struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryLedger creates an empty in-memory ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{entries: make(map[string]Entry)}
}

func (l *MemoryLedger) Get(_ context.Context, token string) (Entry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[token]
	return e, ok, nil
}

func (l *MemoryLedger) Put(_ context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[e.Token] = e
	return nil
}

func (l *MemoryLedger) Delete(_ context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, token)
	return nil
}

// List returns entries oldest first.
func (l *MemoryLedger) List(_ context.Context) ([]Entry, error) {
	l.mu.Lock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	l.mu.Unlock()

	sortEntries(out)
	return out, nil
}

func sortEntries(entries []Entry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].Token < entries[j].Token
		}
		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}
