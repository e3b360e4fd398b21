package eval

import (
	"math"
	"sort"

	"volition/internal/curve"
	"volition/internal/graph"
	"volition/internal/world"
)

// Degradation records a consideration that could not read its input and was
// scored 0 instead. Degradations never abort a pass; they are surfaced for
// observability.
type Degradation struct {
	Node  graph.NodeID
	Name  string
	Input string
}

// NodeScore is one computed node score, for diagnostics.
type NodeScore struct {
	Node  graph.NodeID
	Name  string
	Score float64
}

// ActionScore is the evaluated score of one action root together with the
// selection metadata the selector needs.
type ActionScore struct {
	Node      graph.NodeID
	Action    string
	Score     float64
	Threshold float64
	Priority  int
}

// Context is the per-agent, per-pass evaluation state: the agent's snapshot
// plus a score cache guaranteeing at-most-once computation per node. A
// context must not be shared across agents or reused across ticks.
type Context struct {
	g        *graph.Graph
	snap     world.Snapshot
	scores   []float64
	done     []bool
	computed int
	degraded []Degradation
}

func NewContext(g *graph.Graph, snap world.Snapshot) *Context {
	return &Context{
		g:      g,
		snap:   snap,
		scores: make([]float64, g.Len()),
		done:   make([]bool, g.Len()),
	}
}

// Evaluate scores a single node, computing any not-yet-cached descendants.
func (c *Context) Evaluate(id graph.NodeID) float64 {
	if c.done[id] {
		return c.scores[id]
	}

	n := c.g.At(id)
	var score float64
	if n.Consideration {
		score = c.scoreConsideration(id, n)
	} else {
		score = c.scoreAggregator(n)
	}
	score = curve.Clamp01(score)

	c.scores[id] = score
	c.done[id] = true
	c.computed++
	return score
}

// EvaluateActions scores every action root and returns them in registration
// order.
func (c *Context) EvaluateActions() []ActionScore {
	roots := c.g.Actions()
	out := make([]ActionScore, 0, len(roots))
	for _, id := range roots {
		n := c.g.At(id)
		out = append(out, ActionScore{
			Node:      id,
			Action:    n.Action,
			Score:     c.Evaluate(id),
			Threshold: n.Threshold,
			Priority:  n.Priority,
		})
	}
	return out
}

func (c *Context) scoreConsideration(id graph.NodeID, n *graph.Node) float64 {
	raw, ok := c.readRaw(n)
	if !ok {
		c.degraded = append(c.degraded, Degradation{Node: id, Name: n.Name, Input: n.Input})
		return 0
	}

	score := n.Curve.Evaluate(raw)
	if n.Invert {
		score = 1 - score
	}
	score = curve.Clamp01(score * n.Weight)
	if score < n.Cutoff {
		score = 0
	}
	return score
}

func (c *Context) readRaw(n *graph.Node) (float64, bool) {
	if n.InputFn != nil {
		return n.InputFn(c.snap)
	}
	if c.snap == nil {
		return 0, false
	}
	return c.snap.Raw(n.Input)
}

func (c *Context) scoreAggregator(n *graph.Node) float64 {
	// Children are visited in insertion order so the floating point
	// summation order is reproducible across passes.
	children := make([]float64, len(n.Children))
	for i, edge := range n.Children {
		children[i] = c.Evaluate(edge.Child)
	}

	switch n.Kind {
	case graph.WeightedAverage:
		var sum, weightSum float64
		for i, edge := range n.Children {
			if edge.Weight <= 0 {
				continue
			}
			sum += children[i] * edge.Weight
			weightSum += edge.Weight
		}
		if weightSum == 0 {
			return 0
		}
		return sum / weightSum
	case graph.Product:
		product := 1.0
		for _, s := range children {
			product *= s
		}
		return product
	case graph.Min:
		min := children[0]
		for _, s := range children[1:] {
			if s < min {
				min = s
			}
		}
		return min
	case graph.Max:
		max := children[0]
		for _, s := range children[1:] {
			if s > max {
				max = s
			}
		}
		return max
	case graph.AllOrNothing:
		var sum float64
		for _, s := range children {
			if n.Bar > 0 {
				if s < n.Bar {
					return 0
				}
			} else if s <= 0 {
				return 0
			}
			sum += s
		}
		return sum / float64(len(children))
	case graph.SumClamped:
		var sum float64
		for i, edge := range n.Children {
			sum += children[i] * edge.Weight
		}
		return sum
	case graph.GeometricMean:
		product := 1.0
		for _, s := range children {
			product *= s
		}
		mean := math.Pow(product, 1/float64(len(children)))
		if mean < n.Bar {
			return 0
		}
		return mean
	case graph.Median:
		sorted := append([]float64(nil), children...)
		sort.Float64s(sorted)
		mid := len(sorted) / 2
		if len(sorted)%2 == 0 {
			return (sorted[mid-1] + sorted[mid]) / 2
		}
		return sorted[mid]
	default:
		// Finalize rejects unknown kinds; this is unreachable on a valid graph.
		return 0
	}
}

// Score returns the cached score for a node, if it was computed this pass.
func (c *Context) Score(id graph.NodeID) (float64, bool) {
	if !c.done[id] {
		return 0, false
	}
	return c.scores[id], true
}

// Scores returns every computed node score in topological order.
func (c *Context) Scores() []NodeScore {
	out := make([]NodeScore, 0, c.computed)
	for _, id := range c.g.Order() {
		if !c.done[id] {
			continue
		}
		out = append(out, NodeScore{Node: id, Name: c.g.At(id).Name, Score: c.scores[id]})
	}
	return out
}

// Degradations returns the considerations that scored 0 because their input
// was unavailable this pass.
func (c *Context) Degradations() []Degradation {
	return append([]Degradation(nil), c.degraded...)
}

// Computed reports how many node computations this pass performed. With
// memoization this never exceeds the number of reachable nodes, regardless
// of how many parents share a subgraph.
func (c *Context) Computed() int {
	return c.computed
}
