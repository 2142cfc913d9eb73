package orchestrator

import "time"

// State is one node of the orchestration state machine.
type State string

const (
	// StatePlanning is the initial state: the Planner derives the
	// iteration's plan.
	StatePlanning State = "PLANNING"
	// StateRetrieving gathers situational findings for the plan.
	StateRetrieving State = "RETRIEVING"
	// StateExecuting allocates supply against the plan.
	StateExecuting State = "EXECUTING"
	// StateEvaluating scores the allocation and decides iterate vs. done.
	StateEvaluating State = "EVALUATING"
	// StateDone is the successful terminal state.
	StateDone State = "DONE"
	// StateFailed is the terminal state for unrecoverable errors.
	StateFailed State = "FAILED"
)

// Transition is the structured event emitted once per state machine edge.
// External collectors consume these through the OnTransition hook; the core
// never formats or ships telemetry itself.
type Transition struct {
	RunID     string    `json:"run_id"`
	From      State     `json:"from_state"`
	To        State     `json:"to_state"`
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
}

// TransitionFunc receives transition events. Implementations must be safe
// for concurrent runs and should return quickly; the loop blocks on the
// call.
type TransitionFunc func(Transition)
