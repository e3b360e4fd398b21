package storage

import (
	"context"

	"volition/internal/model"
)

// Store persists scorer graph definitions and the decision journal.
type Store interface {
	Init(ctx context.Context) error
	SaveGraphSpec(ctx context.Context, spec model.GraphSpec) error
	GetGraphSpec(ctx context.Context, id string) (model.GraphSpec, bool, error)
	ListGraphSpecs(ctx context.Context) ([]model.GraphSpec, error)
	AppendDecisions(ctx context.Context, records []model.DecisionRecord) error
	GetDecisions(ctx context.Context, runID string) ([]model.DecisionRecord, bool, error)
}

// Resetter is an optional capability for stores that can drop all data.
type Resetter interface {
	Reset(ctx context.Context) error
}
