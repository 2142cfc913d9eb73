package agent

import (
	"context"

	"github.com/reliefmesh/reliefmesh/core"
)

// Input is the read-only snapshot an agent consumes for one invocation. The
// orchestrator fills the fields relevant to the stage; agents must treat
// every field, Entries in particular, as immutable.
type Input struct {
	// Goal is the run's immutable objective and initial supply.
	Goal core.Goal
	// Entries is the session memory snapshot at invocation time.
	Entries []core.Entry
	// Iteration is the zero-based loop pass.
	Iteration int
	// Feedback carries the latest critique, nil on the first pass.
	Feedback *core.Feedback
	// Plan is the current iteration's plan (retrieval, execution).
	Plan *core.Plan
	// Findings is the current iteration's retrieval output (execution,
	// evaluation).
	Findings *core.RetrievalResult
	// Available is the supply the execution stage may allocate from.
	Available map[string]int
	// Allocation is the execution output scored by evaluation.
	Allocation *core.Allocation
}

// Agent is the fixed capability interface of a pipeline stage: consume the
// input snapshot, produce one typed payload. Implementations must respect
// context cancellation and be safe for use across consecutive iterations
// (no per-run state).
type Agent interface {
	Name() string
	Role() core.Role
	Run(ctx context.Context, in *Input) (core.Payload, error)
}
