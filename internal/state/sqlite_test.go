package state

import (
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store := NewSQLiteStore()
	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := store.Migrate(); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return store
}

func TestSQLiteStore_OpenClose(t *testing.T) {
	store := NewSQLiteStore()

	if err := store.Open(":memory:"); err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}

	if err := store.Close(); err != nil {
		t.Fatalf("failed to close store: %v", err)
	}
}

func TestSQLiteStore_RecordAndListBatches(t *testing.T) {
	store := setupTestStore(t)

	first := &Batch{
		SessionID:   "s1",
		Dataset:     "weather.csv",
		Step:        "Handle Missing Values",
		Ops:         []string{"df['temp'].fillna(df['temp'].mean(), inplace=True)"},
		AppliedAt:   time.Date(2026, 1, 2, 10, 0, 0, 0, time.UTC),
		ColsDropped: []string{},
	}
	if err := store.RecordBatch(first); err != nil {
		t.Fatalf("failed to record batch: %v", err)
	}
	if first.ID == "" {
		t.Fatal("expected generated batch id")
	}

	second := &Batch{
		SessionID:   "s1",
		Dataset:     "weather.csv",
		Step:        "Handle Outliers",
		Ops:         []string{"df=df[(df['temp']>=Q1-1.5*IQR)&(df['temp']<=Q3+1.5*IQR)]"},
		RowsRemoved: 3,
		AppliedAt:   time.Date(2026, 1, 2, 10, 5, 0, 0, time.UTC),
		ColsDropped: []string{},
	}
	if err := store.RecordBatch(second); err != nil {
		t.Fatalf("failed to record batch: %v", err)
	}

	batches, err := store.ListBatches("s1")
	if err != nil {
		t.Fatalf("failed to list batches: %v", err)
	}
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(batches))
	}
	if batches[0].Step != "Handle Missing Values" || batches[1].Step != "Handle Outliers" {
		t.Fatalf("batches out of apply order: %q, %q", batches[0].Step, batches[1].Step)
	}
	if batches[1].RowsRemoved != 3 {
		t.Fatalf("expected 3 rows removed, got %d", batches[1].RowsRemoved)
	}
	if len(batches[0].Ops) != 1 {
		t.Fatalf("expected operations round-trip, got %v", batches[0].Ops)
	}
}

func TestSQLiteStore_ListRecent(t *testing.T) {
	store := setupTestStore(t)

	for i, session := range []string{"a", "b", "c"} {
		err := store.RecordBatch(&Batch{
			SessionID:   session,
			Dataset:     "d.csv",
			Step:        "Drop Columns",
			Ops:         []string{"df.drop(columns=columns_to_drop, inplace=True)"},
			AppliedAt:   time.Date(2026, 1, 2, 10, i, 0, 0, time.UTC),
			ColsDropped: []string{"x"},
		})
		if err != nil {
			t.Fatalf("failed to record batch: %v", err)
		}
	}

	recent, err := store.ListRecent(2)
	if err != nil {
		t.Fatalf("failed to list recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 batches, got %d", len(recent))
	}
	if recent[0].SessionID != "c" {
		t.Fatalf("expected newest first, got %q", recent[0].SessionID)
	}
}

func TestSQLiteStore_DeleteSession(t *testing.T) {
	store := setupTestStore(t)

	err := store.RecordBatch(&Batch{SessionID: "gone", Dataset: "d.csv", Step: "Drop Columns", Ops: []string{"x"}, ColsDropped: []string{}})
	if err != nil {
		t.Fatalf("failed to record batch: %v", err)
	}
	if err := store.DeleteSession("gone"); err != nil {
		t.Fatalf("failed to delete session: %v", err)
	}

	batches, err := store.ListBatches("gone")
	if err != nil {
		t.Fatalf("failed to list batches: %v", err)
	}
	if len(batches) != 0 {
		t.Fatalf("expected no batches, got %d", len(batches))
	}
}

func TestSQLiteStore_NotOpened(t *testing.T) {
	store := NewSQLiteStore()
	if err := store.RecordBatch(&Batch{}); err == nil {
		t.Fatal("expected error on unopened store")
	}
	if _, err := store.ListBatches("x"); err == nil {
		t.Fatal("expected error on unopened store")
	}
}
