package orchestrator

import (
	"github.com/reliefmesh/reliefmesh/core"
)

// Status is the terminal outcome of a run.
type Status string

const (
	// StatusDone marks a completed run with a score, including best-effort
	// completions at the iteration limit.
	StatusDone Status = "done"
	// StatusFailed marks a run aborted by an unrecoverable error.
	StatusFailed Status = "failed"
)

// Result is the aggregate returned to the caller. A failed run still carries
// the memory trace accumulated up to the failure and the triggering error;
// there is never a silent empty result.
type Result struct {
	RunID  string `json:"run_id"`
	Status Status `json:"status"`

	Plan       *core.Plan     `json:"plan,omitempty"`
	Allocation map[string]int `json:"allocation"`
	Remaining  map[string]int `json:"remaining"`
	Score      float64        `json:"score"`

	// Iterations counts completed passes through PLANNING.
	Iterations int `json:"iterations"`
	// LimitReached reports that the run ended because the iteration budget
	// was exhausted rather than by meeting the score threshold.
	LimitReached bool `json:"limit_reached,omitempty"`

	// Trace is the full session memory in order.
	Trace []core.Entry `json:"trace"`
	// Conversation is the bus summary of the most recent envelopes.
	Conversation string `json:"conversation,omitempty"`

	Err error `json:"-"`
}
