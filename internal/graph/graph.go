package graph

import (
	"fmt"

	"volition/internal/curve"
	"volition/internal/world"
)

// NodeID is a stable index into a graph's node arena.
type NodeID int

// None marks the absence of a node.
const None NodeID = -1

// Kind enumerates the closed set of aggregation rules. The combination logic
// in the evaluator switches exhaustively over these.
type Kind uint8

const (
	WeightedAverage Kind = iota + 1
	Product
	Min
	Max
	AllOrNothing
	SumClamped
	Median
	GeometricMean
)

func (k Kind) String() string {
	switch k {
	case WeightedAverage:
		return "weighted_average"
	case Product:
		return "product"
	case Min:
		return "min"
	case Max:
		return "max"
	case AllOrNothing:
		return "all_or_nothing"
	case SumClamped:
		return "sum_clamped"
	case Median:
		return "median"
	case GeometricMean:
		return "geometric_mean"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// ParseKind resolves an aggregator kind from its serialized name.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "weighted_average":
		return WeightedAverage, nil
	case "product":
		return Product, nil
	case "min":
		return Min, nil
	case "max":
		return Max, nil
	case "all_or_nothing":
		return AllOrNothing, nil
	case "sum_clamped":
		return SumClamped, nil
	case "median":
		return Median, nil
	case "geometric_mean":
		return GeometricMean, nil
	default:
		return 0, fmt.Errorf("unsupported aggregator kind: %s", s)
	}
}

// InputFunc reads one raw value from a snapshot. The boolean reports whether
// the value was available.
type InputFunc func(snap world.Snapshot) (float64, bool)

// Edge is a directed aggregator -> child reference with a non-negative weight.
type Edge struct {
	Child  NodeID
	Weight float64
}

// Node is one arena entry. A node is either a consideration leaf or an
// aggregator; an aggregator may additionally be an action root. Nodes are
// immutable once the graph is finalized; callers must treat them as
// read-only.
type Node struct {
	Name string

	// Consideration fields.
	Consideration bool
	Input         string
	InputFn       InputFunc
	Curve         curve.Curve
	Invert        bool
	Weight        float64
	Cutoff        float64

	// Aggregator fields.
	Kind     Kind
	Bar      float64
	Children []Edge

	// Action root fields.
	Action    string
	Threshold float64
	Priority  int
}

// Graph is a validated, immutable scorer graph. It is safe for concurrent
// read-only use by any number of evaluation passes; all per-pass state lives
// in eval.Context, never on the graph.
type Graph struct {
	name    string
	nodes   []Node
	actions []NodeID
	order   []NodeID
	byName  map[string]NodeID
}

func (g *Graph) Name() string {
	return g.name
}

func (g *Graph) Len() int {
	return len(g.nodes)
}

// At returns the node for the given id. The returned pointer aliases the
// graph's arena and must not be written through.
func (g *Graph) At(id NodeID) *Node {
	return &g.nodes[id]
}

// Actions returns the action root ids in registration order.
func (g *Graph) Actions() []NodeID {
	return append([]NodeID(nil), g.actions...)
}

// Order returns a topological order of all reachable nodes, children before
// parents.
func (g *Graph) Order() []NodeID {
	return append([]NodeID(nil), g.order...)
}

// Lookup resolves a node id by name.
func (g *Graph) Lookup(name string) (NodeID, bool) {
	id, ok := g.byName[name]
	return id, ok
}
