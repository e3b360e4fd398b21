package storage

import (
	"context"
	"sort"
	"sync"

	"volition/internal/model"
)

type MemoryStore struct {
	mu          sync.RWMutex
	initialized bool
	graphs      map[string]model.GraphSpec
	decisions   map[string][]model.DecisionRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Init(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.initialized = true
	s.graphs = make(map[string]model.GraphSpec)
	s.decisions = make(map[string][]model.DecisionRecord)
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	return s.Init(ctx)
}

func (s *MemoryStore) SaveGraphSpec(_ context.Context, spec model.GraphSpec) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.graphs[spec.ID] = spec
	return nil
}

func (s *MemoryStore) GetGraphSpec(_ context.Context, id string) (model.GraphSpec, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spec, ok := s.graphs[id]
	return spec, ok, nil
}

func (s *MemoryStore) ListGraphSpecs(_ context.Context) ([]model.GraphSpec, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.graphs))
	for id := range s.graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]model.GraphSpec, 0, len(ids))
	for _, id := range ids {
		out = append(out, s.graphs[id])
	}
	return out, nil
}

func (s *MemoryStore) AppendDecisions(_ context.Context, records []model.DecisionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, record := range records {
		s.decisions[record.RunID] = append(s.decisions[record.RunID], record)
	}
	return nil
}

func (s *MemoryStore) GetDecisions(_ context.Context, runID string) ([]model.DecisionRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records, ok := s.decisions[runID]
	if !ok {
		return nil, false, nil
	}
	return append([]model.DecisionRecord(nil), records...), true, nil
}
