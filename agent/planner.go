package agent

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/reliefmesh/reliefmesh/core"
	"github.com/reliefmesh/reliefmesh/logging"
	"github.com/reliefmesh/reliefmesh/model"
)

// Planner derives the iteration's prioritized resource demands from the goal
// and the latest critique. The first pass demands the full initial supply of
// every kind (minimum one unit, so an empty depot still produces a plan that
// exercises the supply check); later passes start from the previous plan and
// apply the feedback: a ReduceKind demand is halved, a BoostKind moves to
// the front of the priority order.
type Planner struct {
	name     string
	logger   logging.Logger
	narrator model.Model
}

// PlannerOptions configures a Planner.
type PlannerOptions struct {
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
	// Narrator optionally phrases the plan rationale via a language model.
	// Narration failures fall back to the deterministic rationale; control
	// flow never depends on the narrator.
	Narrator model.Model
}

// NewPlanner constructs the planning stage.
func NewPlanner(optFns ...func(o *PlannerOptions)) *Planner {
	opts := PlannerOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Planner{name: "planner", logger: opts.Logger, narrator: opts.Narrator}
}

// Name implements Agent.
func (p *Planner) Name() string { return p.name }

// Role implements Agent.
func (p *Planner) Role() core.Role { return core.RolePlanner }

// Run implements Agent.
func (p *Planner) Run(ctx context.Context, in *Input) (core.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	demands := p.baseDemands(in.Goal)
	if prev := latestPlan(in.Entries); prev != nil {
		for _, s := range prev.Steps {
			demands[s.Kind] = s.Quantity
		}
	}

	boost := ""
	if fb := in.Feedback; fb != nil {
		if fb.ReduceKind != "" {
			demands[fb.ReduceKind] /= 2
			p.logger.Debug("planner.reduce", "kind", fb.ReduceKind, "demand", demands[fb.ReduceKind])
		}
		boost = fb.BoostKind
	}

	plan := &core.Plan{
		Iteration: in.Iteration,
		Steps:     orderSteps(demands, boost),
		Rationale: p.rationale(ctx, in, demands, boost),
	}

	p.logger.Info("planner.plan", "iteration", in.Iteration, "steps", len(plan.Steps), "demand", plan.TotalDemand())

	return plan, nil
}

// baseDemands returns the first-pass demand per kind: the full initial
// count, floored at one unit.
func (p *Planner) baseDemands(goal core.Goal) map[string]int {
	demands := make(map[string]int, len(goal.Resources))
	for kind, initial := range goal.Resources {
		demand := initial
		if demand < 1 {
			demand = 1
		}
		demands[kind] = demand
	}
	return demands
}

// orderSteps turns the demand map into prioritized steps: the boosted kind
// first, the rest by demand descending then kind name. Weights decay by rank
// and sum to 1.
func orderSteps(demands map[string]int, boost string) []core.Step {
	kinds := make([]string, 0, len(demands))
	for kind := range demands {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool {
		a, b := kinds[i], kinds[j]
		if (a == boost) != (b == boost) {
			return a == boost
		}
		if demands[a] != demands[b] {
			return demands[a] > demands[b]
		}
		return a < b
	})

	n := len(kinds)
	denom := float64(n*(n+1)) / 2
	steps := make([]core.Step, 0, n)
	for i, kind := range kinds {
		steps = append(steps, core.Step{
			Kind:     kind,
			Priority: i + 1,
			Weight:   float64(n-i) / denom,
			Quantity: demands[kind],
		})
	}
	return steps
}

func (p *Planner) rationale(ctx context.Context, in *Input, demands map[string]int, boost string) string {
	fallback := deterministicRationale(in, boost)
	if p.narrator == nil {
		return fallback
	}

	resp, err := p.narrator.Complete(ctx, model.Request{
		Instructions: "You are a disaster relief planner. Reply with one short sentence.",
		Prompt:       fmt.Sprintf("Summarize the rationale for iteration %d of %q with demands %v.", in.Iteration, in.Goal.Objective, demands),
	})
	if err != nil {
		p.logger.Warn("planner.narrator_failed", "error", err.Error())
		return fallback
	}
	return strings.TrimSpace(resp.Text)
}

func deterministicRationale(in *Input, boost string) string {
	switch {
	case in.Feedback != nil && in.Feedback.ReduceKind != "":
		return fmt.Sprintf("iteration %d: reduced %s demand after supply shortfall", in.Iteration, in.Feedback.ReduceKind)
	case boost != "":
		return fmt.Sprintf("iteration %d: prioritized %s after evaluation critique", in.Iteration, boost)
	default:
		return fmt.Sprintf("iteration %d: initial demand from supply counts for %q", in.Iteration, in.Goal.Objective)
	}
}

// latestPlan returns the most recent plan payload in the memory snapshot,
// nil when none exists.
func latestPlan(entries []core.Entry) *core.Plan {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Role != core.RolePlanner {
			continue
		}
		if plan, ok := entries[i].Content.(*core.Plan); ok {
			return plan
		}
	}
	return nil
}
