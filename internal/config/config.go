package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"volition/internal/graph"
	"volition/internal/model"
	"volition/internal/world"
)

// Scenario describes a batch of agents to tick against a graph: each
// agent's initial raw inputs and an optional per-tick drift applied
// between ticks.
type Scenario struct {
	Graph  string          `yaml:"graph"`
	Ticks  int             `yaml:"ticks"`
	Agents []ScenarioAgent `yaml:"agents"`
}

type ScenarioAgent struct {
	ID     string             `yaml:"id"`
	Inputs map[string]float64 `yaml:"inputs"`
	Drift  map[string]float64 `yaml:"drift,omitempty"`
}

// LoadGraphSpec reads a declarative graph definition from a YAML file.
func LoadGraphSpec(path string) (model.GraphSpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.GraphSpec{}, fmt.Errorf("read graph spec: %w", err)
	}
	var spec model.GraphSpec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return model.GraphSpec{}, fmt.Errorf("parse graph spec %s: %w", path, err)
	}
	if spec.Name == "" {
		return model.GraphSpec{}, fmt.Errorf("graph spec %s: name is required", path)
	}
	return spec, nil
}

// LoadGraph reads a YAML graph definition and materializes it.
func LoadGraph(path string) (*graph.Graph, model.GraphSpec, error) {
	spec, err := LoadGraphSpec(path)
	if err != nil {
		return nil, model.GraphSpec{}, err
	}
	g, err := graph.FromSpec(spec)
	if err != nil {
		return nil, model.GraphSpec{}, fmt.Errorf("materialize graph %s: %w", spec.Name, err)
	}
	return g, spec, nil
}

// LoadScenario reads a scenario definition from a YAML file.
func LoadScenario(path string) (Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Scenario{}, fmt.Errorf("read scenario: %w", err)
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return Scenario{}, fmt.Errorf("parse scenario %s: %w", path, err)
	}
	if sc.Ticks <= 0 {
		sc.Ticks = 1
	}
	if len(sc.Agents) == 0 {
		return Scenario{}, fmt.Errorf("scenario %s: at least one agent is required", path)
	}
	seen := make(map[string]struct{}, len(sc.Agents))
	for i, agent := range sc.Agents {
		if agent.ID == "" {
			return Scenario{}, fmt.Errorf("scenario %s: agent %d: id is required", path, i)
		}
		if _, dup := seen[agent.ID]; dup {
			return Scenario{}, fmt.Errorf("scenario %s: duplicate agent id %s", path, agent.ID)
		}
		seen[agent.ID] = struct{}{}
	}
	return sc, nil
}

// Snapshots returns each agent's inputs advanced by tick applications of
// its drift, as world snapshots keyed by agent id. Tick zero returns the
// initial inputs unchanged.
func (s Scenario) Snapshots(tick int) map[string]world.MapSnapshot {
	out := make(map[string]world.MapSnapshot, len(s.Agents))
	for _, agent := range s.Agents {
		snap := make(world.MapSnapshot, len(agent.Inputs))
		for name, v := range agent.Inputs {
			snap[name] = v + agent.Drift[name]*float64(tick)
		}
		out[agent.ID] = snap
	}
	return out
}
