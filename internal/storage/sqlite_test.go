//go:build sqlite

package storage

import (
	"context"
	"path/filepath"
	"testing"

	"volition/internal/model"
)

func TestSQLiteStoreGraphSpecRoundTrip(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "volition.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	input := testGraphSpec("g1")
	if err := store.SaveGraphSpec(ctx, input); err != nil {
		t.Fatalf("save graph spec: %v", err)
	}

	output, ok, err := store.GetGraphSpec(ctx, "g1")
	if err != nil {
		t.Fatalf("get graph spec: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted graph spec")
	}
	if output.Name != input.Name || len(output.Aggregators) != 1 {
		t.Fatalf("unexpected graph spec: %+v", output)
	}

	// Saving again under the same id overwrites.
	input.Name = "patrol-v2"
	if err := store.SaveGraphSpec(ctx, input); err != nil {
		t.Fatalf("save graph spec again: %v", err)
	}
	output, _, err = store.GetGraphSpec(ctx, "g1")
	if err != nil {
		t.Fatalf("get graph spec: %v", err)
	}
	if output.Name != "patrol-v2" {
		t.Fatalf("upsert lost: %+v", output)
	}
}

func TestSQLiteStoreDecisionJournal(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "volition.db")

	store := NewSQLiteStore(dbPath)
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	if err := store.AppendDecisions(ctx, []model.DecisionRecord{
		testDecision("run-1", 1, "a1"),
		testDecision("run-1", 1, "a2"),
	}); err != nil {
		t.Fatalf("append decisions: %v", err)
	}
	if err := store.AppendDecisions(ctx, []model.DecisionRecord{
		testDecision("run-1", 2, "a1"),
	}); err != nil {
		t.Fatalf("append decisions: %v", err)
	}

	records, ok, err := store.GetDecisions(ctx, "run-1")
	if err != nil {
		t.Fatalf("get decisions: %v", err)
	}
	if !ok {
		t.Fatal("expected persisted decisions")
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0].Seq != 1 || records[2].Seq != 2 {
		t.Fatalf("ordering lost: %+v", records)
	}

	if _, ok, _ := store.GetDecisions(ctx, "run-2"); ok {
		t.Fatal("expected no decisions for unknown run")
	}
}

func TestSQLiteStoreReopen(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "volition.db")

	first := NewSQLiteStore(dbPath)
	if err := first.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := first.SaveGraphSpec(ctx, testGraphSpec("g1")); err != nil {
		t.Fatalf("save graph spec: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	second := NewSQLiteStore(dbPath)
	if err := second.Init(ctx); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	t.Cleanup(func() {
		_ = second.Close()
	})

	_, ok, err := second.GetGraphSpec(ctx, "g1")
	if err != nil {
		t.Fatalf("get graph spec: %v", err)
	}
	if !ok {
		t.Fatal("graph spec did not survive reopen")
	}
}

func TestSQLiteStoreRequiresInit(t *testing.T) {
	store := NewSQLiteStore(filepath.Join(t.TempDir(), "volition.db"))
	if err := store.SaveGraphSpec(context.Background(), testGraphSpec("g1")); err == nil {
		t.Fatal("expected error before Init")
	}
}
