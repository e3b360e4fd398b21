// Package volition is the public surface of the decision engine. It wraps
// the internal packages behind a Client the way callers outside this module
// are expected to use them: install graphs, run ticks, read the journal.
package volition

import (
	"context"
	"fmt"

	"volition/internal/config"
	"volition/internal/engine"
	"volition/internal/eval"
	"volition/internal/graph"
	"volition/internal/model"
	"volition/internal/scheduler"
	"volition/internal/selector"
	"volition/internal/storage"
	"volition/internal/world"
)

const defaultDBPath = "volition.db"

type Options struct {
	StoreKind string
	DBPath    string
	Workers   int
	Selector  selector.Selector
	Provider  world.Provider
}

type Client struct {
	store  storage.Store
	engine *engine.Engine
}

// Re-exported aliases so callers build graphs and read results without
// importing internal packages.
type (
	Graph        = graph.Graph
	Builder      = graph.Builder
	NodeID       = graph.NodeID
	Kind         = graph.Kind
	GraphSpec    = model.GraphSpec
	AgentInput   = scheduler.AgentInput
	AgentResult  = scheduler.AgentResult
	TickResult   = engine.TickResult
	NodeScore    = eval.NodeScore
	Selection    = selector.Result
	Snapshot     = world.Snapshot
	MapSnapshot  = world.MapSnapshot
	DecisionItem = model.DecisionRecord
)

const (
	WeightedAverage = graph.WeightedAverage
	Product         = graph.Product
	Min             = graph.Min
	Max             = graph.Max
	AllOrNothing    = graph.AllOrNothing
	SumClamped      = graph.SumClamped
	Median          = graph.Median
	GeometricMean   = graph.GeometricMean
)

func NewBuilder(name string) *Builder {
	return graph.NewBuilder(name)
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}

	return &Client{
		store: store,
		engine: engine.New(engine.Config{
			Workers:  opts.Workers,
			Selector: opts.Selector,
			Store:    store,
			Provider: opts.Provider,
		}),
	}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

// RunID identifies this client's decision journal entries.
func (c *Client) RunID() string {
	return c.engine.RunID()
}

// Install registers a finalized graph for ticking.
func (c *Client) Install(g *Graph) error {
	return c.engine.Install(g)
}

// InstallSpec materializes and installs a declarative graph definition,
// persisting it when the spec carries an ID.
func (c *Client) InstallSpec(ctx context.Context, spec GraphSpec) (*Graph, error) {
	return c.engine.InstallSpec(ctx, spec)
}

// InstallFile loads a YAML graph definition from disk and installs it.
func (c *Client) InstallFile(ctx context.Context, path string) (*Graph, error) {
	spec, err := config.LoadGraphSpec(path)
	if err != nil {
		return nil, err
	}
	return c.engine.InstallSpec(ctx, spec)
}

// Tick runs one decision pass for the given agents against the named graph.
func (c *Client) Tick(ctx context.Context, graphName string, agents []AgentInput) (TickResult, error) {
	return c.engine.Tick(ctx, graphName, agents)
}

// TickFromProvider fetches snapshots from the configured provider first.
func (c *Client) TickFromProvider(ctx context.Context, graphName string, agentIDs []string) (TickResult, error) {
	return c.engine.TickFromProvider(ctx, graphName, agentIDs)
}

// LastScores returns an agent's per-node scores from its latest tick.
func (c *Client) LastScores(agentID string) ([]NodeScore, bool) {
	return c.engine.LastScores(agentID)
}

// Graphs lists installed graph names.
func (c *Client) Graphs() []string {
	return c.engine.GraphNames()
}

// StoredGraphSpecs lists persisted graph definitions.
func (c *Client) StoredGraphSpecs(ctx context.Context) ([]GraphSpec, error) {
	return c.store.ListGraphSpecs(ctx)
}

// Journal returns the decision records written under runID.
func (c *Client) Journal(ctx context.Context, runID string) ([]DecisionItem, error) {
	records, found, err := c.store.GetDecisions(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("no decisions recorded for run %s", runID)
	}
	return records, nil
}
