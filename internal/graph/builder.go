package graph

import (
	"errors"
	"fmt"

	"volition/internal/curve"
)

var (
	ErrCycle           = errors.New("graph contains a cycle")
	ErrOrphan          = errors.New("node is unreachable from any action root")
	ErrEmptyAggregator = errors.New("aggregator has no children")
	ErrNegativeWeight  = errors.New("edge weight must be non-negative")
	ErrUnknownNode     = errors.New("unknown node id")
	ErrDuplicateName   = errors.New("node name already in use")
	ErrDuplicateAction = errors.New("action id already in use")
	ErrNotAggregator   = errors.New("node is not an aggregator")
	ErrBadThreshold    = errors.New("eligibility threshold must be in [0,1]")
	ErrNoActions       = errors.New("graph has no action roots")
	ErrFinalized       = errors.New("builder already finalized")
)

// ConsiderationOption tweaks a consideration's post-curve behavior.
type ConsiderationOption func(*Node)

// Inverted flips the consideration's score to 1-s after the curve.
func Inverted() ConsiderationOption {
	return func(n *Node) { n.Invert = true }
}

// Weighted multiplies the consideration's score by w after the curve.
func Weighted(w float64) ConsiderationOption {
	return func(n *Node) { n.Weight = w }
}

// Cutoff forces the consideration's score to 0 when it falls below c.
func Cutoff(c float64) ConsiderationOption {
	return func(n *Node) { n.Cutoff = c }
}

// Builder accumulates nodes and edges for a scorer graph. Finalize validates
// the whole structure and either returns an immutable graph or an error with
// no partial graph; the builder cannot be reused afterwards.
type Builder struct {
	name   string
	nodes  []Node
	byName map[string]NodeID
	done   bool
}

func NewBuilder(name string) *Builder {
	return &Builder{
		name:   name,
		byName: make(map[string]NodeID),
	}
}

func (b *Builder) addNode(n Node) (NodeID, error) {
	if b.done {
		return None, ErrFinalized
	}
	if n.Name == "" {
		return None, errors.New("node name is required")
	}
	if _, exists := b.byName[n.Name]; exists {
		return None, fmt.Errorf("%w: %s", ErrDuplicateName, n.Name)
	}
	id := NodeID(len(b.nodes))
	b.nodes = append(b.nodes, n)
	b.byName[n.Name] = id
	return id, nil
}

// AddConsideration adds a leaf that reads the named raw input from the
// agent's snapshot and shapes it with the given curve.
func (b *Builder) AddConsideration(name, input string, c curve.Curve, opts ...ConsiderationOption) (NodeID, error) {
	if input == "" {
		return None, fmt.Errorf("consideration %s: input name is required", name)
	}
	return b.addConsideration(Node{Name: name, Input: input, Curve: c}, opts)
}

// AddConsiderationFunc adds a leaf whose raw value comes from a closure
// instead of a named snapshot entry.
func (b *Builder) AddConsiderationFunc(name string, fn InputFunc, c curve.Curve, opts ...ConsiderationOption) (NodeID, error) {
	if fn == nil {
		return None, fmt.Errorf("consideration %s: input function is required", name)
	}
	return b.addConsideration(Node{Name: name, InputFn: fn, Curve: c}, opts)
}

func (b *Builder) addConsideration(n Node, opts []ConsiderationOption) (NodeID, error) {
	n.Consideration = true
	n.Weight = 1
	for _, opt := range opts {
		opt(&n)
	}
	if n.Weight < 0 {
		return None, fmt.Errorf("consideration %s: %w", n.Name, ErrNegativeWeight)
	}
	if n.Cutoff < 0 || n.Cutoff > 1 {
		return None, fmt.Errorf("consideration %s: cutoff must be in [0,1]", n.Name)
	}
	return b.addNode(n)
}

// AddAggregator adds an internal node with the given combination rule.
func (b *Builder) AddAggregator(name string, kind Kind) (NodeID, error) {
	switch kind {
	case WeightedAverage, Product, Min, Max, AllOrNothing, SumClamped, Median, GeometricMean:
	default:
		return None, fmt.Errorf("aggregator %s: unsupported kind %s", name, kind)
	}
	return b.addNode(Node{Name: name, Kind: kind})
}

// SetBar sets an aggregator's gating bar. For AllOrNothing the default bar
// of 0 means a child passes only when its score is strictly positive, and a
// positive bar means a child passes when its score is >= bar. For
// GeometricMean the whole aggregate collapses to 0 when it falls below the
// bar.
func (b *Builder) SetBar(id NodeID, bar float64) error {
	n, err := b.aggregator(id)
	if err != nil {
		return err
	}
	if bar < 0 || bar > 1 {
		return fmt.Errorf("aggregator %s: bar must be in [0,1]", n.Name)
	}
	n.Bar = bar
	return nil
}

// Connect adds a weighted edge from an aggregator to a child node. Children
// are evaluated in the order they were connected, which fixes the floating
// point summation order.
func (b *Builder) Connect(parent, child NodeID, weight float64) error {
	p, err := b.aggregator(parent)
	if err != nil {
		return err
	}
	if child < 0 || int(child) >= len(b.nodes) {
		return fmt.Errorf("%w: %d", ErrUnknownNode, child)
	}
	if weight < 0 {
		return fmt.Errorf("edge %s -> %s: %w", p.Name, b.nodes[child].Name, ErrNegativeWeight)
	}
	p.Children = append(p.Children, Edge{Child: child, Weight: weight})
	return nil
}

// MarkAction turns an aggregator into an action root with an eligibility
// threshold and a tie-break priority.
func (b *Builder) MarkAction(id NodeID, action string, threshold float64, priority int) error {
	n, err := b.aggregator(id)
	if err != nil {
		return err
	}
	if action == "" {
		return fmt.Errorf("aggregator %s: action id is required", n.Name)
	}
	if threshold < 0 || threshold > 1 {
		return fmt.Errorf("action %s: %w", action, ErrBadThreshold)
	}
	for i := range b.nodes {
		if b.nodes[i].Action == action {
			return fmt.Errorf("%w: %s", ErrDuplicateAction, action)
		}
	}
	n.Action = action
	n.Threshold = threshold
	n.Priority = priority
	return nil
}

func (b *Builder) aggregator(id NodeID) (*Node, error) {
	if b.done {
		return nil, ErrFinalized
	}
	if id < 0 || int(id) >= len(b.nodes) {
		return nil, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	n := &b.nodes[id]
	if n.Consideration {
		return nil, fmt.Errorf("%w: %s", ErrNotAggregator, n.Name)
	}
	return n, nil
}

// Finalize validates the accumulated structure and returns the immutable
// graph. The construction is rejected as a whole on the first defect found.
func (b *Builder) Finalize() (*Graph, error) {
	if b.done {
		return nil, ErrFinalized
	}

	var actions []NodeID
	for i := range b.nodes {
		n := &b.nodes[i]
		if n.Action != "" {
			actions = append(actions, NodeID(i))
		}
		if !n.Consideration && len(n.Children) == 0 {
			return nil, fmt.Errorf("%w: %s", ErrEmptyAggregator, n.Name)
		}
	}
	if len(actions) == 0 {
		return nil, ErrNoActions
	}

	order, err := b.topoSort(actions)
	if err != nil {
		return nil, err
	}

	reached := make([]bool, len(b.nodes))
	for _, id := range order {
		reached[id] = true
	}
	for i := range b.nodes {
		if !reached[i] {
			return nil, fmt.Errorf("%w: %s", ErrOrphan, b.nodes[i].Name)
		}
	}

	b.done = true
	return &Graph{
		name:    b.name,
		nodes:   b.nodes,
		actions: actions,
		order:   order,
		byName:  b.byName,
	}, nil
}

const (
	colorUnvisited = 0
	colorVisiting  = 1
	colorDone      = 2
)

// topoSort walks depth-first from the action roots in registration order,
// visiting children in insertion order, and emits nodes children-first. A
// back edge to a node still on the stack is a cycle.
func (b *Builder) topoSort(roots []NodeID) ([]NodeID, error) {
	color := make([]uint8, len(b.nodes))
	order := make([]NodeID, 0, len(b.nodes))

	var visit func(id NodeID) error
	visit = func(id NodeID) error {
		switch color[id] {
		case colorDone:
			return nil
		case colorVisiting:
			return fmt.Errorf("%w: at %s", ErrCycle, b.nodes[id].Name)
		}
		color[id] = colorVisiting
		for _, edge := range b.nodes[id].Children {
			if err := visit(edge.Child); err != nil {
				return err
			}
		}
		color[id] = colorDone
		order = append(order, id)
		return nil
	}

	for _, root := range roots {
		if err := visit(root); err != nil {
			return nil, err
		}
	}
	return order, nil
}
