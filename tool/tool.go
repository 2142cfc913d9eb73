package tool

import (
	"context"

	"github.com/reliefmesh/reliefmesh/core"
)

// Tool is the base interface every registered capability implements.
//
// Tool implementations should:
//   - Provide stable, descriptive names (snake_case recommended)
//   - Be safe for concurrent use; the registry is shared across runs
//   - Hold no run-specific state between invocations
type Tool interface {
	// Name returns the unique identifier for this tool.
	Name() string

	// Description returns a human-readable description of what this tool does.
	Description() string
}

// Searcher is the search capability category: gather situational findings
// for a query. Implementations must tag each finding with a source
// identifier and a confidence in [0,1].
type Searcher interface {
	Tool
	Search(ctx context.Context, query string) (*core.RetrievalResult, error)
}

// Allocator is the allocation capability category: assign the plan's demands
// against the available supply. Implementations must fail with
// *core.InsufficientSupplyError rather than clamp when a demand exceeds the
// available quantity.
type Allocator interface {
	Tool
	Allocate(ctx context.Context, plan *core.Plan, available map[string]int) (*core.Allocation, error)
}
