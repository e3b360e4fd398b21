package config

import (
	"os"
	"path/filepath"
	"testing"
)

const graphYAML = `
id: g1
name: flight
considerations:
  - name: health
    input: health_pct
    curve:
      family: linear
      domain_min: 0
      domain_max: 1
    invert: true
  - name: threat
    input: threat_level
    curve:
      family: logistic
      domain_min: 0
      domain_max: 1
      steepness: 8
      midpoint: 0.5
aggregators:
  - name: flee-score
    kind: weighted_average
    children:
      - name: health
        weight: 0.5
      - name: threat
        weight: 0.5
    action: flee
    threshold: 0.3
    priority: 1
`

const scenarioYAML = `
graph: flight
ticks: 3
agents:
  - id: a1
    inputs:
      health_pct: 0.9
      threat_level: 0.1
    drift:
      health_pct: -0.2
  - id: a2
    inputs:
      health_pct: 0.3
      threat_level: 0.8
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadGraph(t *testing.T) {
	path := writeFile(t, "graph.yaml", graphYAML)

	g, spec, err := LoadGraph(path)
	if err != nil {
		t.Fatalf("load graph: %v", err)
	}
	if g.Name() != "flight" {
		t.Fatalf("name = %s, want flight", g.Name())
	}
	if spec.ID != "g1" || len(spec.Considerations) != 2 {
		t.Fatalf("unexpected spec: %+v", spec)
	}

	healthID, ok := g.Lookup("health")
	if !ok {
		t.Fatal("health consideration missing")
	}
	if !g.At(healthID).Invert {
		t.Fatal("invert flag lost")
	}

	root := g.At(g.Actions()[0])
	if root.Action != "flee" || root.Threshold != 0.3 {
		t.Fatalf("unexpected action root: %+v", root)
	}
}

func TestLoadGraphRequiresName(t *testing.T) {
	path := writeFile(t, "graph.yaml", "id: g1\n")
	if _, _, err := LoadGraph(path); err == nil {
		t.Fatal("expected error for missing name")
	}
}

func TestLoadGraphRejectsBadCurve(t *testing.T) {
	bad := `
name: broken
considerations:
  - name: health
    input: health_pct
    curve:
      family: linear
      domain_min: 1
      domain_max: 0
aggregators:
  - name: root
    kind: max
    children:
      - name: health
    action: act
`
	path := writeFile(t, "graph.yaml", bad)
	if _, _, err := LoadGraph(path); err == nil {
		t.Fatal("expected error for inverted curve domain")
	}
}

func TestLoadGraphMissingFile(t *testing.T) {
	if _, _, err := LoadGraph(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadScenario(t *testing.T) {
	path := writeFile(t, "scenario.yaml", scenarioYAML)

	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if sc.Graph != "flight" || sc.Ticks != 3 || len(sc.Agents) != 2 {
		t.Fatalf("unexpected scenario: %+v", sc)
	}
}

func TestLoadScenarioDefaultsTicks(t *testing.T) {
	path := writeFile(t, "scenario.yaml", `
graph: flight
agents:
  - id: a1
    inputs:
      x: 1
`)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}
	if sc.Ticks != 1 {
		t.Fatalf("ticks = %d, want default 1", sc.Ticks)
	}
}

func TestLoadScenarioRejectsDuplicateAgents(t *testing.T) {
	path := writeFile(t, "scenario.yaml", `
graph: flight
agents:
  - id: a1
    inputs: {x: 1}
  - id: a1
    inputs: {x: 2}
`)
	if _, err := LoadScenario(path); err == nil {
		t.Fatal("expected error for duplicate agent ids")
	}
}

func TestLoadScenarioRequiresAgents(t *testing.T) {
	path := writeFile(t, "scenario.yaml", "graph: flight\n")
	if _, err := LoadScenario(path); err == nil {
		t.Fatal("expected error for empty agent list")
	}
}

func TestScenarioSnapshotsApplyDrift(t *testing.T) {
	path := writeFile(t, "scenario.yaml", scenarioYAML)
	sc, err := LoadScenario(path)
	if err != nil {
		t.Fatalf("load scenario: %v", err)
	}

	initial := sc.Snapshots(0)
	if v, _ := initial["a1"].Raw("health_pct"); v != 0.9 {
		t.Fatalf("tick 0 health = %v, want 0.9", v)
	}

	drifted := sc.Snapshots(2)
	if v, _ := drifted["a1"].Raw("health_pct"); v != 0.5 {
		t.Fatalf("tick 2 health = %v, want 0.5", v)
	}
	// No drift declared for a2: value stays put.
	if v, _ := drifted["a2"].Raw("threat_level"); v != 0.8 {
		t.Fatalf("tick 2 threat = %v, want 0.8", v)
	}
}
