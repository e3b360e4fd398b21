package storage

import (
	"context"
	"testing"

	"volition/internal/model"
)

func testGraphSpec(id string) model.GraphSpec {
	return model.GraphSpec{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              id,
		Name:            "patrol",
		Considerations: []model.ConsiderationSpec{
			{Name: "health", Input: "health_pct", Curve: model.CurveSpec{Family: "linear", DomainMax: 1}},
		},
		Aggregators: []model.AggregatorSpec{
			{Name: "root", Kind: "max", Children: []model.ChildSpec{{Name: "health"}}, Action: "patrol", Threshold: 0.2},
		},
	}
}

func testDecision(runID string, seq int, agentID string) model.DecisionRecord {
	return model.DecisionRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		RunID:           runID,
		TickID:          "tick-1",
		Seq:             seq,
		AgentID:         agentID,
		Action:          "patrol",
		Score:           0.6,
		Chosen:          true,
	}
}

func TestMemoryStoreGraphSpecRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

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
	if output.Name != input.Name || len(output.Considerations) != 1 {
		t.Fatalf("unexpected graph spec: %+v", output)
	}
}

func TestMemoryStoreGetMissingGraphSpec(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	_, ok, err := store.GetGraphSpec(ctx, "absent")
	if err != nil {
		t.Fatalf("get graph spec: %v", err)
	}
	if ok {
		t.Fatal("expected no graph spec")
	}
}

func TestMemoryStoreListGraphSpecsSorted(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	for _, id := range []string{"g3", "g1", "g2"} {
		if err := store.SaveGraphSpec(ctx, testGraphSpec(id)); err != nil {
			t.Fatalf("save graph spec: %v", err)
		}
	}

	specs, err := store.ListGraphSpecs(ctx)
	if err != nil {
		t.Fatalf("list graph specs: %v", err)
	}
	want := []string{"g1", "g2", "g3"}
	if len(specs) != len(want) {
		t.Fatalf("specs = %d, want %d", len(specs), len(want))
	}
	for i, spec := range specs {
		if spec.ID != want[i] {
			t.Fatalf("specs[%d] = %s, want %s", i, spec.ID, want[i])
		}
	}
}

func TestMemoryStoreDecisionJournalAppends(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

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
	if records[2].Seq != 2 {
		t.Fatalf("append order lost: %+v", records)
	}

	if _, ok, _ := store.GetDecisions(ctx, "run-2"); ok {
		t.Fatal("expected no decisions for unknown run")
	}
}

func TestMemoryStoreReset(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	if err := store.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := store.SaveGraphSpec(ctx, testGraphSpec("g1")); err != nil {
		t.Fatalf("save graph spec: %v", err)
	}

	if err := store.Reset(ctx); err != nil {
		t.Fatalf("reset: %v", err)
	}

	specs, err := store.ListGraphSpecs(ctx)
	if err != nil {
		t.Fatalf("list graph specs: %v", err)
	}
	if len(specs) != 0 {
		t.Fatalf("specs after reset = %d, want 0", len(specs))
	}
}
