package reconcile

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLedger_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.csv")
	ctx := context.Background()
	base := time.Date(2026, 2, 25, 8, 0, 0, 0, time.UTC)

	ledger, err := NewFileLedger(path)
	require.NoError(t, err)

	require.NoError(t, ledger.Put(ctx, Entry{
		Token: "a", Action: "addReport", Fingerprint: "ali\x1fdewan\x1flampu, rosak",
		Baseline: 1, TeacherName: "Ali", Location: "Dewan", Description: "Lampu, rosak \"teruk\"",
		CreatedAt: base,
	}))
	require.NoError(t, ledger.Put(ctx, Entry{Token: "b", Action: "deleteReport", ReportID: "R2", CreatedAt: base.Add(time.Minute)}))
	require.NoError(t, ledger.Put(ctx, Entry{Token: "c", Action: "updateStatus", ReportID: "R3", Status: "Selesai", CreatedAt: base.Add(2 * time.Minute)}))

	// Update in place and delete
	require.NoError(t, ledger.Put(ctx, Entry{Token: "b", Action: "deleteReport", ReportID: "R2", CreatedAt: base.Add(time.Minute), Discrepancy: true, Alerted: true}))
	require.NoError(t, ledger.Delete(ctx, "c"))
	require.NoError(t, ledger.Delete(ctx, "missing"))

	reopened, err := NewFileLedger(path)
	require.NoError(t, err)
	entries, err := reopened.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "a", entries[0].Token)
	assert.Equal(t, 1, entries[0].Baseline)
	assert.Equal(t, "Lampu, rosak \"teruk\"", entries[0].Description)
	assert.Equal(t, "ali\x1fdewan\x1flampu, rosak", entries[0].Fingerprint)
	assert.True(t, entries[0].CreatedAt.Equal(base))

	assert.Equal(t, "b", entries[1].Token)
	assert.True(t, entries[1].Discrepancy)
	assert.True(t, entries[1].Alerted)
}

func TestFileLedger_AppendWritesHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.csv")
	ctx := context.Background()

	ledger, err := NewFileLedger(path)
	require.NoError(t, err)
	require.NoError(t, ledger.Put(ctx, Entry{Token: "a", CreatedAt: time.Now()}))
	require.NoError(t, ledger.Put(ctx, Entry{Token: "b", CreatedAt: time.Now()}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "token,action"))
}

func TestFileLedger_SkipsMalformedRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.csv")
	content := "token,action,report_id,status,fingerprint,baseline,teacher,location,description,created_at,discrepancy,alerted\n" +
		"a,deleteReport,R1,,,0,,,,2026-02-25T08:00:00Z,false,false\n" +
		"broken,row\n" +
		"b,deleteReport,R2,,,zero,,,,2026-02-25T08:00:00Z,false,false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ledger, err := NewFileLedger(path)
	require.NoError(t, err)
	entries, err := ledger.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "R1", entries[0].ReportID)
}

func TestFileLedger_FailedWriteLeavesMapUnchanged(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "ledger")
	require.NoError(t, os.Mkdir(dir, 0o755))
	path := filepath.Join(dir, "pending.csv")
	base := time.Date(2026, 2, 25, 8, 0, 0, 0, time.UTC)

	ledger, err := NewFileLedger(path)
	require.NoError(t, err)
	require.NoError(t, ledger.Put(ctx, Entry{Token: "a", Action: "deleteReport", ReportID: "R1", CreatedAt: base}))

	// Directory gone: every write fails
	require.NoError(t, os.RemoveAll(dir))

	assert.Error(t, ledger.Put(ctx, Entry{Token: "b", Action: "deleteReport", ReportID: "R2", CreatedAt: base}))
	_, ok, err := ledger.Get(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)

	assert.Error(t, ledger.Put(ctx, Entry{Token: "a", Action: "deleteReport", ReportID: "R1", CreatedAt: base, Alerted: true}))
	e, ok, err := ledger.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, e.Alerted)

	assert.Error(t, ledger.Delete(ctx, "a"))
	entries, err := ledger.List(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a", entries[0].Token)
}
