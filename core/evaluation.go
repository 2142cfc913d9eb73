package core

import "fmt"

// EvaluationResult is the Evaluation stage's output: a normalized
// effectiveness score plus the critique fed back to the Planner when the
// score falls short. Scoring is a pure function of allocation and initial
// supply; evaluating the same inputs twice yields the same result.
type EvaluationResult struct {
	Score          float64 `json:"score"`
	Critique       string  `json:"critique,omitempty"`
	WeakestKind    string  `json:"weakest_kind,omitempty"`
	TotalAllocated int     `json:"total_allocated"`
	TotalRemaining int     `json:"total_remaining"`
}

func (*EvaluationResult) isPayload() {}

// Summary implements Payload.
func (e *EvaluationResult) Summary() string {
	if e.Critique != "" {
		return fmt.Sprintf("score=%.2f critique=%q", e.Score, e.Critique)
	}
	return fmt.Sprintf("score=%.2f", e.Score)
}

// Feedback is the typed critique the orchestrator routes back into the
// Planner: BoostKind names the weakest-covered kind that deserves a higher
// priority, ReduceKind names a kind whose demand exceeded supply. Typed
// fields keep the Planner free of critique-string parsing.
type Feedback struct {
	Text       string
	BoostKind  string
	ReduceKind string
}
