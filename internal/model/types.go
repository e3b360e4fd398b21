package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version" yaml:"schema_version"`
	CodecVersion  int `json:"codec_version" yaml:"codec_version"`
}

// GraphSpec is the serializable definition of a scorer graph. A spec is
// declarative data only; graph.FromSpec materializes it into an immutable
// graph.
type GraphSpec struct {
	VersionedRecord `yaml:",inline"`
	ID              string              `json:"id" yaml:"id"`
	Name            string              `json:"name" yaml:"name"`
	Considerations  []ConsiderationSpec `json:"considerations" yaml:"considerations"`
	Aggregators     []AggregatorSpec    `json:"aggregators" yaml:"aggregators"`
}

// ConsiderationSpec defines a leaf node: a named raw input read from the
// agent's world snapshot, shaped by a response curve. A missing weight
// defaults to 1; an explicit zero is kept as written.
type ConsiderationSpec struct {
	Name   string    `json:"name" yaml:"name"`
	Input  string    `json:"input" yaml:"input"`
	Curve  CurveSpec `json:"curve" yaml:"curve"`
	Invert bool      `json:"invert,omitempty" yaml:"invert,omitempty"`
	Weight *float64  `json:"weight,omitempty" yaml:"weight,omitempty"`
	Cutoff float64   `json:"cutoff,omitempty" yaml:"cutoff,omitempty"`
}

// CurveSpec names a curve family and its parameters. Which parameters are
// required depends on the family; unused fields are ignored.
type CurveSpec struct {
	Family    string  `json:"family" yaml:"family"`
	DomainMin float64 `json:"domain_min" yaml:"domain_min"`
	DomainMax float64 `json:"domain_max" yaml:"domain_max"`
	Exponent  float64 `json:"exponent,omitempty" yaml:"exponent,omitempty"`
	Slope     float64 `json:"slope,omitempty" yaml:"slope,omitempty"`
	Shift     float64 `json:"shift,omitempty" yaml:"shift,omitempty"`
	Steepness float64 `json:"steepness,omitempty" yaml:"steepness,omitempty"`
	Midpoint  float64 `json:"midpoint,omitempty" yaml:"midpoint,omitempty"`
	Threshold float64 `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Low       float64 `json:"low,omitempty" yaml:"low,omitempty"`
	High      float64 `json:"high,omitempty" yaml:"high,omitempty"`
}

// AggregatorSpec defines an internal node combining child scores. An
// aggregator with a non-empty Action is an action root.
type AggregatorSpec struct {
	Name      string      `json:"name" yaml:"name"`
	Kind      string      `json:"kind" yaml:"kind"`
	Bar       float64     `json:"bar,omitempty" yaml:"bar,omitempty"`
	Children  []ChildSpec `json:"children" yaml:"children"`
	Action    string      `json:"action,omitempty" yaml:"action,omitempty"`
	Threshold float64     `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Priority  int         `json:"priority,omitempty" yaml:"priority,omitempty"`
}

// ChildSpec references a child node by name with an edge weight.
// A missing weight defaults to 1; an explicit zero is kept as written.
type ChildSpec struct {
	Name   string   `json:"name" yaml:"name"`
	Weight *float64 `json:"weight,omitempty" yaml:"weight,omitempty"`
}

// DecisionRecord is one agent's selection outcome for one tick, as written
// to the decision journal.
type DecisionRecord struct {
	VersionedRecord
	RunID    string  `json:"run_id"`
	TickID   string  `json:"tick_id"`
	Seq      int     `json:"seq"`
	AgentID  string  `json:"agent_id"`
	Action   string  `json:"action,omitempty"`
	Score    float64 `json:"score"`
	Chosen   bool    `json:"chosen"`
	Degraded int     `json:"degraded,omitempty"`
}
