package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"volition/internal/eval"
	"volition/internal/graph"
	"volition/internal/model"
	"volition/internal/scheduler"
	"volition/internal/selector"
	"volition/internal/storage"
	"volition/internal/world"
)

// Config wires an Engine together. Selector defaults to ThresholdSelector
// and Workers to one; Store and Provider are optional.
type Config struct {
	Workers  int
	Selector selector.Selector
	Store    storage.Store
	Provider world.Provider
}

// TickResult is the outcome of one bulk-synchronous pass over a set of
// agents against a single graph.
type TickResult struct {
	TickID  string
	Seq     int
	Results []scheduler.AgentResult
}

// Engine holds installed graphs and drives decision ticks across agents.
// Graphs are immutable once finalized; Install swaps whole graphs under a
// write lock, so in-flight ticks keep evaluating the graph they started
// with.
type Engine struct {
	runID string
	pool  *scheduler.Pool
	sel   selector.Selector
	store storage.Store
	prov  world.Provider

	mu         sync.RWMutex
	graphs     map[string]*graph.Graph
	seq        int
	lastScores map[string][]eval.NodeScore
}

func New(cfg Config) *Engine {
	sel := cfg.Selector
	if sel == nil {
		sel = selector.ThresholdSelector{}
	}
	return &Engine{
		runID:      uuid.New().String(),
		pool:       scheduler.NewPool(cfg.Workers),
		sel:        sel,
		store:      cfg.Store,
		prov:       cfg.Provider,
		graphs:     make(map[string]*graph.Graph),
		lastScores: make(map[string][]eval.NodeScore),
	}
}

// RunID identifies this engine instance in the decision journal.
func (e *Engine) RunID() string {
	return e.runID
}

// Install registers a finalized graph under its name, replacing any graph
// previously installed under the same name.
func (e *Engine) Install(g *graph.Graph) error {
	if g == nil {
		return fmt.Errorf("graph is required")
	}
	if g.Name() == "" {
		return fmt.Errorf("graph name is required")
	}

	e.mu.Lock()
	e.graphs[g.Name()] = g
	e.mu.Unlock()
	return nil
}

// InstallSpec materializes a declarative spec, installs the resulting
// graph, and persists the spec when a store is configured. Persistence
// happens only after a successful install, so the store never holds a
// definition that could not be installed.
func (e *Engine) InstallSpec(ctx context.Context, spec model.GraphSpec) (*graph.Graph, error) {
	g, err := graph.FromSpec(spec)
	if err != nil {
		return nil, fmt.Errorf("materialize graph %s: %w", spec.Name, err)
	}
	if err := e.Install(g); err != nil {
		return nil, err
	}
	if e.store != nil && spec.ID != "" {
		spec.SchemaVersion = storage.CurrentSchemaVersion
		spec.CodecVersion = storage.CurrentCodecVersion
		if err := e.store.SaveGraphSpec(ctx, spec); err != nil {
			return nil, fmt.Errorf("save graph spec %s: %w", spec.ID, err)
		}
	}
	return g, nil
}

// Graph returns the currently installed graph under name.
func (e *Engine) Graph(name string) (*graph.Graph, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	g, ok := e.graphs[name]
	return g, ok
}

// GraphNames lists installed graph names in no particular order.
func (e *Engine) GraphNames() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.graphs))
	for name := range e.graphs {
		names = append(names, name)
	}
	return names
}

// Tick evaluates every agent against the named graph in one parallel pass
// and records the outcomes in the decision journal when a store is
// configured. The snapshots in agents are read-only for the duration of
// the call.
func (e *Engine) Tick(ctx context.Context, graphName string, agents []scheduler.AgentInput) (TickResult, error) {
	e.mu.RLock()
	g, ok := e.graphs[graphName]
	e.mu.RUnlock()
	if !ok {
		return TickResult{}, fmt.Errorf("graph not installed: %s", graphName)
	}

	e.mu.Lock()
	e.seq++
	seq := e.seq
	e.mu.Unlock()

	results := e.pool.RunTick(ctx, g, e.sel, agents)

	tick := TickResult{
		TickID:  uuid.New().String(),
		Seq:     seq,
		Results: results,
	}

	e.mu.Lock()
	for _, res := range results {
		if res.Err == nil {
			e.lastScores[res.AgentID] = res.Scores
		}
	}
	e.mu.Unlock()

	if e.store != nil {
		if err := e.journal(ctx, tick); err != nil {
			return tick, fmt.Errorf("journal tick %s: %w", tick.TickID, err)
		}
	}
	return tick, nil
}

// TickFromProvider pulls one snapshot per agent from the configured world
// provider, then runs Tick. Agents whose snapshot fetch fails are passed
// through with a nil snapshot so evaluation records them as degraded
// rather than silently dropping them.
func (e *Engine) TickFromProvider(ctx context.Context, graphName string, agentIDs []string) (TickResult, error) {
	if e.prov == nil {
		return TickResult{}, fmt.Errorf("no world provider configured")
	}

	agents := make([]scheduler.AgentInput, len(agentIDs))
	for i, id := range agentIDs {
		snap, err := e.prov.Snapshot(ctx, id)
		if err != nil {
			agents[i] = scheduler.AgentInput{ID: id}
			continue
		}
		agents[i] = scheduler.AgentInput{ID: id, Snapshot: snap}
	}
	return e.Tick(ctx, graphName, agents)
}

// LastScores returns the per-node scores from the agent's most recent
// successful tick, in evaluation order.
func (e *Engine) LastScores(agentID string) ([]eval.NodeScore, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	scores, ok := e.lastScores[agentID]
	if !ok {
		return nil, false
	}
	out := make([]eval.NodeScore, len(scores))
	copy(out, scores)
	return out, true
}

func (e *Engine) journal(ctx context.Context, tick TickResult) error {
	var records []model.DecisionRecord
	for _, res := range tick.Results {
		if res.Err != nil {
			continue
		}
		record := model.DecisionRecord{
			VersionedRecord: model.VersionedRecord{
				SchemaVersion: storage.CurrentSchemaVersion,
				CodecVersion:  storage.CurrentCodecVersion,
			},
			RunID:    e.runID,
			TickID:   tick.TickID,
			Seq:      tick.Seq,
			AgentID:  res.AgentID,
			Action:   res.Selection.Chosen,
			Score:    res.Selection.Score,
			Chosen:   res.Selection.Ok,
			Degraded: len(res.Degradations),
		}
		records = append(records, record)
	}
	if len(records) == 0 {
		return nil
	}
	return e.store.AppendDecisions(ctx, records)
}
