package world

import "context"

// Snapshot is a per-agent, pre-fetched view of the raw values considerations
// read. Implementations must be safe for read-only use during an evaluation
// pass; the engine never writes through a snapshot.
type Snapshot interface {
	Raw(name string) (float64, bool)
}

// MapSnapshot is the simplest snapshot: a flat name -> value map.
type MapSnapshot map[string]float64

func (m MapSnapshot) Raw(name string) (float64, bool) {
	v, ok := m[name]
	return v, ok
}

// Provider is the integration point for external world state (typically an
// entity-component-system). It is asked for one snapshot per agent per tick,
// before evaluation starts; evaluation itself never touches the provider.
type Provider interface {
	Snapshot(ctx context.Context, agentID string) (Snapshot, error)
}

// StaticProvider serves fixed snapshots keyed by agent id. Useful for tests
// and replaying recorded world states.
type StaticProvider map[string]MapSnapshot

func (p StaticProvider) Snapshot(_ context.Context, agentID string) (Snapshot, error) {
	snap, ok := p[agentID]
	if !ok {
		return MapSnapshot{}, nil
	}
	return snap, nil
}
