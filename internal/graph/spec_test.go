package graph

import (
	"testing"

	"volition/internal/model"
)

func flightSpec() model.GraphSpec {
	half := 0.5
	return model.GraphSpec{
		Name: "flight",
		Considerations: []model.ConsiderationSpec{
			{Name: "health", Input: "health_pct", Curve: model.CurveSpec{Family: "linear", DomainMin: 0, DomainMax: 1}},
			{Name: "threat", Input: "threat_level", Curve: model.CurveSpec{Family: "linear", DomainMin: 0, DomainMax: 1}, Invert: true},
		},
		Aggregators: []model.AggregatorSpec{
			{
				Name: "flee-score",
				Kind: "weighted_average",
				Children: []model.ChildSpec{
					{Name: "health", Weight: &half},
					{Name: "threat", Weight: &half},
				},
				Action:    "flee",
				Threshold: 0.3,
				Priority:  1,
			},
		},
	}
}

func TestFromSpecMaterializes(t *testing.T) {
	g, err := FromSpec(flightSpec())
	if err != nil {
		t.Fatalf("from spec: %v", err)
	}
	if g.Name() != "flight" {
		t.Fatalf("name = %s, want flight", g.Name())
	}
	if len(g.Actions()) != 1 {
		t.Fatalf("actions = %v, want one", g.Actions())
	}

	root := g.At(g.Actions()[0])
	if root.Action != "flee" || root.Threshold != 0.3 || root.Priority != 1 {
		t.Fatalf("unexpected action root: %+v", root)
	}
	if len(root.Children) != 2 || root.Children[0].Weight != 0.5 {
		t.Fatalf("unexpected children: %+v", root.Children)
	}

	threatID, ok := g.Lookup("threat")
	if !ok {
		t.Fatal("threat consideration missing")
	}
	if !g.At(threatID).Invert {
		t.Fatal("invert flag lost in materialization")
	}
}

func TestFromSpecMissingWeightDefaultsToOne(t *testing.T) {
	spec := flightSpec()
	spec.Aggregators[0].Children[0].Weight = nil

	g, err := FromSpec(spec)
	if err != nil {
		t.Fatalf("from spec: %v", err)
	}
	root := g.At(g.Actions()[0])
	if root.Children[0].Weight != 1 {
		t.Fatalf("default weight = %v, want 1", root.Children[0].Weight)
	}
}

func TestFromSpecExplicitZeroWeightKept(t *testing.T) {
	zero := 0.0
	spec := flightSpec()
	spec.Aggregators[0].Children[0].Weight = &zero

	g, err := FromSpec(spec)
	if err != nil {
		t.Fatalf("from spec: %v", err)
	}
	root := g.At(g.Actions()[0])
	if root.Children[0].Weight != 0 {
		t.Fatalf("explicit zero weight = %v, want 0", root.Children[0].Weight)
	}
}

func TestFromSpecConsiderationWeightDefaultsAndExplicitZero(t *testing.T) {
	zero := 0.0
	spec := flightSpec()
	spec.Considerations[0].Weight = &zero

	g, err := FromSpec(spec)
	if err != nil {
		t.Fatalf("from spec: %v", err)
	}

	healthID, _ := g.Lookup("health")
	if got := g.At(healthID).Weight; got != 0 {
		t.Fatalf("explicit zero consideration weight = %v, want 0", got)
	}
	// No weight declared: the builder default of 1 applies.
	threatID, _ := g.Lookup("threat")
	if got := g.At(threatID).Weight; got != 1 {
		t.Fatalf("default consideration weight = %v, want 1", got)
	}
}

func TestFromSpecUnknownChild(t *testing.T) {
	spec := flightSpec()
	spec.Aggregators[0].Children[0].Name = "mana"
	if _, err := FromSpec(spec); err == nil {
		t.Fatal("expected error for unknown child reference")
	}
}

func TestFromSpecUnknownKind(t *testing.T) {
	spec := flightSpec()
	spec.Aggregators[0].Kind = "mode"
	if _, err := FromSpec(spec); err == nil {
		t.Fatal("expected error for unknown aggregator kind")
	}
}

func TestFromSpecNestedAggregators(t *testing.T) {
	spec := flightSpec()
	spec.Aggregators[0].Action = ""
	spec.Aggregators = append(spec.Aggregators, model.AggregatorSpec{
		Name:      "root",
		Kind:      "max",
		Children:  []model.ChildSpec{{Name: "flee-score"}},
		Action:    "flee",
		Threshold: 0.1,
	})

	g, err := FromSpec(spec)
	if err != nil {
		t.Fatalf("from spec: %v", err)
	}
	if got := g.At(g.Actions()[0]).Action; got != "flee" {
		t.Fatalf("action = %s, want flee", got)
	}
}
