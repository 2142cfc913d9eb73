package core

import (
	"fmt"
	"strings"
)

// Step is one prioritized sub-goal of a Plan: deliver Quantity units of Kind.
// Priority is the 1-based position in the plan; Weight is the step's share of
// the effectiveness score (weights over a plan sum to 1).
type Step struct {
	Kind     string  `json:"kind"`
	Priority int     `json:"priority"`
	Weight   float64 `json:"weight"`
	Quantity int     `json:"quantity"`
}

// Plan is the Planner's output for one iteration: an ordered list of
// prioritized resource demands derived from the goal and any prior critique.
type Plan struct {
	Iteration int    `json:"iteration"`
	Rationale string `json:"rationale,omitempty"`
	Steps     []Step `json:"steps"`
}

func (*Plan) isPayload() {}

// Summary implements Payload.
func (p *Plan) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "plan iter=%d:", p.Iteration)
	for _, s := range p.Steps {
		fmt.Fprintf(&b, " %d.%s=%d", s.Priority, s.Kind, s.Quantity)
	}
	return b.String()
}

// Demand returns the requested quantity for a kind, zero when the plan has no
// step for it.
func (p *Plan) Demand(kind string) int {
	for _, s := range p.Steps {
		if s.Kind == kind {
			return s.Quantity
		}
	}
	return 0
}

// TotalDemand sums the requested quantities over all steps.
func (p *Plan) TotalDemand() int {
	total := 0
	for _, s := range p.Steps {
		total += s.Quantity
	}
	return total
}

// Clone returns a deep copy safe for independent mutation.
func (p *Plan) Clone() *Plan {
	steps := make([]Step, len(p.Steps))
	copy(steps, p.Steps)
	return &Plan{Iteration: p.Iteration, Rationale: p.Rationale, Steps: steps}
}
