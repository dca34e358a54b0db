package archive

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/helios-hq/meridian/pkg/audit"
)

func newTestArchive(t *testing.T) *SQLiteArchive {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	a, err := NewSQLiteArchive(dbPath)
	if err != nil {
		t.Fatalf("NewSQLiteArchive() error = %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestSQLiteArchive_RoundTrip(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	entries := []*audit.LogEntry{
		{
			ID:         "entry-1",
			RuleID:     "rule-1",
			RuleName:   "pause on low roas",
			CampaignID: "camp-1",
			ActionType: "PAUSE_CAMPAIGN",
			Triggered:  true,
			Reason:     "action executed",
			Timestamp:  base,
			Metadata:   map[string]string{"conditions": "roas < 1.5 => true"},
		},
		{
			ID:         "entry-2",
			RuleID:     "rule-2",
			CampaignID: "camp-1",
			ActionType: "LOG_EVENT",
			Triggered:  false,
			Reason:     "conditions not met",
			Timestamp:  base.Add(time.Minute),
		},
	}

	if err := a.Archive(ctx, entries); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}

	count, err := a.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 2 {
		t.Fatalf("Count() = %d, want 2", count)
	}

	recent, err := a.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent() returned %d entries, want 2", len(recent))
	}

	// Newest first.
	if recent[0].ID != "entry-2" || recent[1].ID != "entry-1" {
		t.Errorf("Recent() order = [%s, %s], want [entry-2, entry-1]",
			recent[0].ID, recent[1].ID)
	}

	got := recent[1]
	if got.RuleName != "pause on low roas" {
		t.Errorf("RuleName = %q, want %q", got.RuleName, "pause on low roas")
	}
	if !got.Triggered {
		t.Error("Triggered = false, want true")
	}
	if got.Metadata["conditions"] != "roas < 1.5 => true" {
		t.Errorf("Metadata = %v, want conditions preserved", got.Metadata)
	}
	if !got.Timestamp.Equal(base) {
		t.Errorf("Timestamp = %v, want %v", got.Timestamp, base)
	}
}

func TestSQLiteArchive_DuplicateIDsSkipped(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	entry := &audit.LogEntry{
		ID:         "entry-1",
		RuleID:     "rule-1",
		CampaignID: "camp-1",
		ActionType: "LOG_EVENT",
		Timestamp:  time.Now(),
	}

	if err := a.Archive(ctx, []*audit.LogEntry{entry}); err != nil {
		t.Fatal(err)
	}
	if err := a.Archive(ctx, []*audit.LogEntry{entry}); err != nil {
		t.Fatalf("re-archiving same entry error = %v, want nil", err)
	}

	count, err := a.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("Count() = %d, want 1", count)
	}
}

func TestSQLiteArchive_EmptyBatch(t *testing.T) {
	a := newTestArchive(t)
	if err := a.Archive(context.Background(), nil); err != nil {
		t.Errorf("Archive(nil) error = %v, want nil", err)
	}
}

func TestSQLiteArchive_EmptyPath(t *testing.T) {
	if _, err := NewSQLiteArchive(""); err == nil {
		t.Error("NewSQLiteArchive(\"\") error = nil, want error")
	}
}

func TestSQLiteArchive_CloseIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "audit.db")
	a, err := NewSQLiteArchive(dbPath)
	if err != nil {
		t.Fatal(err)
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
}

// TestStoreEvictionFlowsToSQLite exercises the full path from in-memory
// eviction to durable archive.
func TestStoreEvictionFlowsToSQLite(t *testing.T) {
	a := newTestArchive(t)
	store := audit.NewStore(audit.WithCapacity(2), audit.WithArchiveSink(a))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		entry := &audit.LogEntry{
			ID:         fmt.Sprintf("entry-%d", i),
			RuleID:     "rule-1",
			CampaignID: "camp-1",
			ActionType: "LOG_EVENT",
		}
		if err := store.Append(ctx, entry); err != nil {
			t.Fatal(err)
		}
	}

	if store.Len() != 2 {
		t.Errorf("store Len() = %d, want 2", store.Len())
	}

	count, err := a.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if count != 3 {
		t.Errorf("archived Count() = %d, want 3 evicted entries", count)
	}
}
