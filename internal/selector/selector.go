package selector

import "volition/internal/eval"

// Ranked is one action's standing in a selection: its evaluated score and
// whether it met its own eligibility threshold.
type Ranked struct {
	Action   string
	Score    float64
	Priority int
	Eligible bool
}

// Result is the outcome of one selection. Ok is false when no action met its
// threshold, which is a normal terminal state, not an error; the caller
// decides the fallback behavior. Ranked always carries every action in
// registration order for diagnostics.
type Result struct {
	Chosen string
	Ok     bool
	Score  float64
	Ranked []Ranked
}

// Selector turns evaluated action scores into a chosen action.
type Selector interface {
	Name() string
	Select(scores []eval.ActionScore) Result
}

// ThresholdSelector filters actions below their own eligibility threshold
// and picks the maximum score among the survivors. Ties break by higher
// priority, then by registration order, so the choice is deterministic for
// identical inputs.
type ThresholdSelector struct{}

func (ThresholdSelector) Name() string {
	return "threshold"
}

func (ThresholdSelector) Select(scores []eval.ActionScore) Result {
	result := Result{Ranked: make([]Ranked, 0, len(scores))}

	best := -1
	for i, as := range scores {
		eligible := as.Score >= as.Threshold
		result.Ranked = append(result.Ranked, Ranked{
			Action:   as.Action,
			Score:    as.Score,
			Priority: as.Priority,
			Eligible: eligible,
		})
		if !eligible {
			continue
		}
		if best < 0 {
			best = i
			continue
		}
		if as.Score > scores[best].Score {
			best = i
		} else if as.Score == scores[best].Score && as.Priority > scores[best].Priority {
			best = i
		}
	}

	if best < 0 {
		return result
	}
	result.Chosen = scores[best].Action
	result.Ok = true
	result.Score = scores[best].Score
	return result
}
