package scheduler

import (
	"context"
	"fmt"
	"sync"

	"volition/internal/eval"
	"volition/internal/graph"
	"volition/internal/selector"
	"volition/internal/world"
)

// AgentInput is one agent's unit of work for a tick: its identity and the
// pre-fetched snapshot its considerations will read.
type AgentInput struct {
	ID       string
	Snapshot world.Snapshot
}

// AgentResult is one agent's outcome for a tick. Err is set only when the
// agent's own evaluation failed (or was cancelled); other agents in the same
// batch are unaffected.
type AgentResult struct {
	AgentID      string
	Selection    selector.Result
	Scores       []eval.NodeScore
	Degradations []eval.Degradation
	Err          error
}

// Pool evaluates agents in parallel against a shared read-only graph. A tick
// is bulk-synchronous: RunTick returns only after every agent's evaluation
// has finished.
type Pool struct {
	workers int
}

func NewPool(workers int) *Pool {
	if workers <= 0 {
		workers = 1
	}
	return &Pool{workers: workers}
}

func (p *Pool) Workers() int {
	return p.workers
}

// RunTick evaluates every agent and returns one result per agent, in input
// order. The graph is only ever read; each agent gets its own evaluation
// context, so workers share no mutable state.
func (p *Pool) RunTick(ctx context.Context, g *graph.Graph, sel selector.Selector, agents []AgentInput) []AgentResult {
	type job struct {
		idx   int
		agent AgentInput
	}
	type result struct {
		idx int
		res AgentResult
	}

	jobs := make(chan job)
	results := make(chan result, len(agents))

	workerCount := p.workers
	if workerCount > len(agents) {
		workerCount = len(agents)
	}

	var wg sync.WaitGroup
	wg.Add(workerCount)
	for w := 0; w < workerCount; w++ {
		go func() {
			defer wg.Done()
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, res: AgentResult{AgentID: j.agent.ID, Err: err}}
					continue
				}
				results <- result{idx: j.idx, res: evaluateAgent(g, sel, j.agent)}
			}
		}()
	}

	for i := range agents {
		jobs <- job{idx: i, agent: agents[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	out := make([]AgentResult, len(agents))
	for res := range results {
		out[res.idx] = res.res
	}
	return out
}

// evaluateAgent runs one full pass for one agent. A panic inside a
// consideration closure is contained here so a defective input function
// cannot take down the rest of the batch.
func evaluateAgent(g *graph.Graph, sel selector.Selector, agent AgentInput) (res AgentResult) {
	res.AgentID = agent.ID
	defer func() {
		if r := recover(); r != nil {
			res.Err = fmt.Errorf("agent %s: evaluation panicked: %v", agent.ID, r)
		}
	}()

	evalCtx := eval.NewContext(g, agent.Snapshot)
	scores := evalCtx.EvaluateActions()
	res.Selection = sel.Select(scores)
	res.Scores = evalCtx.Scores()
	res.Degradations = evalCtx.Degradations()
	return res
}
