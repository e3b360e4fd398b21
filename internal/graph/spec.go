package graph

import (
	"fmt"

	"volition/internal/curve"
	"volition/internal/model"
)

// FromSpec materializes a serialized graph definition: considerations first,
// then aggregators, then edges and action roots, then full validation via
// Finalize. Aggregator children may reference any named node, so aggregators
// can nest in either declaration order.
func FromSpec(spec model.GraphSpec) (*Graph, error) {
	name := spec.Name
	if name == "" {
		name = spec.ID
	}
	b := NewBuilder(name)

	for _, cs := range spec.Considerations {
		shape, err := curve.FromSpec(cs.Curve)
		if err != nil {
			return nil, fmt.Errorf("consideration %s: %w", cs.Name, err)
		}
		var opts []ConsiderationOption
		if cs.Invert {
			opts = append(opts, Inverted())
		}
		if cs.Weight != nil {
			opts = append(opts, Weighted(*cs.Weight))
		}
		if cs.Cutoff != 0 {
			opts = append(opts, Cutoff(cs.Cutoff))
		}
		if _, err := b.AddConsideration(cs.Name, cs.Input, shape, opts...); err != nil {
			return nil, err
		}
	}

	aggIDs := make(map[string]NodeID, len(spec.Aggregators))
	for _, as := range spec.Aggregators {
		kind, err := ParseKind(as.Kind)
		if err != nil {
			return nil, fmt.Errorf("aggregator %s: %w", as.Name, err)
		}
		id, err := b.AddAggregator(as.Name, kind)
		if err != nil {
			return nil, err
		}
		if as.Bar != 0 {
			if err := b.SetBar(id, as.Bar); err != nil {
				return nil, err
			}
		}
		aggIDs[as.Name] = id
	}

	for _, as := range spec.Aggregators {
		parent := aggIDs[as.Name]
		for _, ch := range as.Children {
			child, ok := b.byName[ch.Name]
			if !ok {
				return nil, fmt.Errorf("aggregator %s: unknown child %q", as.Name, ch.Name)
			}
			weight := 1.0
			if ch.Weight != nil {
				weight = *ch.Weight
			}
			if err := b.Connect(parent, child, weight); err != nil {
				return nil, err
			}
		}
		if as.Action != "" {
			if err := b.MarkAction(parent, as.Action, as.Threshold, as.Priority); err != nil {
				return nil, err
			}
		}
	}

	return b.Finalize()
}
