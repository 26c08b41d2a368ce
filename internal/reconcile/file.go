package reconcile

import (
	"bufio"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
)

// bufferSize for buffered CSV writes.
const bufferSize = 64 * 1024

// fileColumns is the header row of a ledger file.
var fileColumns = []string{
	"token", "action", "report_id", "status", "fingerprint", "baseline",
	"teacher", "location", "description", "created_at", "discrepancy", "alerted",
}

// FileLedger keeps entries in memory and mirrors them to a CSV file so a
// single instance keeps its pending intents across restarts.
//
// Data flow:
//
//	Read:   CSV → map on open → served from the map
//	Put:    new token appends a row, known token rewrites the file
//	Delete: rewrite the file without the entry
//
// A failed write leaves the map as it was.
type FileLedger struct {
	mu      sync.Mutex
	path    string
	entries map[string]Entry
}

// NewFileLedger opens (or starts) the ledger at path. Malformed rows are
// skipped with a warning.
func NewFileLedger(path string) (*FileLedger, error) {
	l := &FileLedger{path: path, entries: make(map[string]Entry)}

	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		zap.L().Info("📋 No ledger file found, starting empty", zap.String("path", path))
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open ledger file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	for i, rec := range records {
		if i == 0 && len(rec) > 0 && rec[0] == fileColumns[0] {
			continue
		}
		e, err := decodeRow(rec)
		if err != nil {
			zap.L().Warn("⚠️  Skipping malformed ledger row", zap.Int("row", i+1), zap.Error(err))
			continue
		}
		l.entries[e.Token] = e
	}

	zap.L().Info("📚 Loaded pending intents from ledger file",
		zap.String("path", path), zap.Int("entries", len(l.entries)))
	return l, nil
}

func (l *FileLedger) Get(_ context.Context, token string) (Entry, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	e, ok := l.entries[token]
	return e, ok, nil
}

// Put and Delete only change the map once the file write succeeded.
func (l *FileLedger) Put(_ context.Context, e Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, known := l.entries[e.Token]
	if !known {
		if err := l.appendRow(e); err != nil {
			return err
		}
		l.entries[e.Token] = e
		return nil
	}

	l.entries[e.Token] = e
	if err := l.rewrite(); err != nil {
		l.entries[e.Token] = prev
		return err
	}
	return nil
}

func (l *FileLedger) Delete(_ context.Context, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	prev, ok := l.entries[token]
	if !ok {
		return nil
	}
	delete(l.entries, token)
	if err := l.rewrite(); err != nil {
		l.entries[token] = prev
		return err
	}
	return nil
}

// List returns entries oldest first.
func (l *FileLedger) List(_ context.Context) ([]Entry, error) {
	l.mu.Lock()
	out := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		out = append(out, e)
	}
	l.mu.Unlock()

	sortEntries(out)
	return out, nil
}

// appendRow adds one entry, writing the header first when the file is new.
// Caller must hold the mutex.
func (l *FileLedger) appendRow(e Entry) error {
	info, statErr := os.Stat(l.path)
	fresh := statErr != nil || info.Size() == 0

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	rows := [][]string{encodeRow(e)}
	if fresh {
		rows = append([][]string{fileColumns}, rows...)
	}
	return writeRows(file, rows)
}

// rewrite replaces the file with the current entries. Caller must hold the
// mutex.
func (l *FileLedger) rewrite() error {
	file, err := os.OpenFile(l.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	defer file.Close()

	entries := make([]Entry, 0, len(l.entries))
	for _, e := range l.entries {
		entries = append(entries, e)
	}
	sortEntries(entries)

	rows := make([][]string, 0, len(entries)+1)
	rows = append(rows, fileColumns)
	for _, e := range entries {
		rows = append(rows, encodeRow(e))
	}
	return writeRows(file, rows)
}

func writeRows(file *os.File, rows [][]string) error {
	buffered := bufio.NewWriterSize(file, bufferSize)
	writer := csv.NewWriter(buffered)
	if err := writer.WriteAll(rows); err != nil {
		return err
	}
	return buffered.Flush()
}

func encodeRow(e Entry) []string {
	return []string{
		e.Token,
		e.Action,
		e.ReportID,
		e.Status,
		e.Fingerprint,
		strconv.Itoa(e.Baseline),
		e.TeacherName,
		e.Location,
		e.Description,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
		strconv.FormatBool(e.Discrepancy),
		strconv.FormatBool(e.Alerted),
	}
}

func decodeRow(rec []string) (Entry, error) {
	if len(rec) != len(fileColumns) {
		return Entry{}, fmt.Errorf("expected %d columns, got %d", len(fileColumns), len(rec))
	}
	if rec[0] == "" {
		return Entry{}, errors.New("missing token")
	}
	baseline, err := strconv.Atoi(rec[5])
	if err != nil {
		return Entry{}, fmt.Errorf("baseline: %w", err)
	}
	created, err := time.Parse(time.RFC3339Nano, rec[9])
	if err != nil {
		return Entry{}, fmt.Errorf("created_at: %w", err)
	}
	discrepancy, err := strconv.ParseBool(rec[10])
	if err != nil {
		return Entry{}, fmt.Errorf("discrepancy: %w", err)
	}
	alerted, err := strconv.ParseBool(rec[11])
	if err != nil {
		return Entry{}, fmt.Errorf("alerted: %w", err)
	}
	return Entry{
		Token:       rec[0],
		Action:      rec[1],
		ReportID:    rec[2],
		Status:      rec[3],
		Fingerprint: rec[4],
		Baseline:    baseline,
		TeacherName: rec[6],
		Location:    rec[7],
		Description: rec[8],
		CreatedAt:   created,
		Discrepancy: discrepancy,
		Alerted:     alerted,
	}, nil
}
