package agent

import (
	"context"
	"fmt"
	"sync"

	"github.com/reliefmesh/reliefmesh/core"
	"github.com/reliefmesh/reliefmesh/logging"
	"github.com/reliefmesh/reliefmesh/tool"
)

// Retrieval gathers situational findings for each plan step through the
// registry's search capability. Findings are deduplicated by source
// identifier, keeping the highest-confidence entry on collision, and sorted
// by source identifier so the memory trace is identical whether the
// searches ran sequentially or concurrently.
type Retrieval struct {
	name       string
	registry   *tool.Registry
	toolName   string
	concurrent bool
	logger     logging.Logger
}

// RetrievalOptions configures a Retrieval agent.
type RetrievalOptions struct {
	// ToolName is the registry name of the search capability, default
	// "search".
	ToolName string
	// ConcurrentSearch fans the per-step searches out to goroutines. Purely
	// an optimization: the merged, sorted output is identical either way.
	ConcurrentSearch bool
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// NewRetrieval constructs the retrieval stage bound to a tool registry.
func NewRetrieval(registry *tool.Registry, optFns ...func(o *RetrievalOptions)) *Retrieval {
	opts := RetrievalOptions{ToolName: "search", Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Retrieval{
		name:       "retrieval",
		registry:   registry,
		toolName:   opts.ToolName,
		concurrent: opts.ConcurrentSearch,
		logger:     opts.Logger,
	}
}

// Name implements Agent.
func (r *Retrieval) Name() string { return r.name }

// Role implements Agent.
func (r *Retrieval) Role() core.Role { return core.RoleRetrieval }

// Run implements Agent.
func (r *Retrieval) Run(ctx context.Context, in *Input) (core.Payload, error) {
	if in.Plan == nil || len(in.Plan.Steps) == 0 {
		return &core.RetrievalResult{Query: in.Goal.Objective}, nil
	}

	queries := make([]string, 0, len(in.Plan.Steps))
	for _, step := range in.Plan.Steps {
		queries = append(queries, fmt.Sprintf("%s %s", in.Goal.Objective, step.Kind))
	}

	var (
		sets []([]core.Finding)
		err  error
	)
	if r.concurrent {
		sets, err = r.searchConcurrent(ctx, queries)
	} else {
		sets, err = r.searchSequential(ctx, queries)
	}
	if err != nil {
		return nil, err
	}

	result := &core.RetrievalResult{
		Query:    in.Goal.Objective,
		Findings: core.MergeFindings(sets...),
	}

	r.logger.Info("retrieval.done", "iteration", in.Iteration, "queries", len(queries), "findings", len(result.Findings))

	return result, nil
}

func (r *Retrieval) searchSequential(ctx context.Context, queries []string) ([][]core.Finding, error) {
	sets := make([][]core.Finding, 0, len(queries))
	for _, q := range queries {
		res, err := r.registry.Search(ctx, r.toolName, q)
		if err != nil {
			return nil, err
		}
		sets = append(sets, res.Findings)
	}
	return sets, nil
}

func (r *Retrieval) searchConcurrent(ctx context.Context, queries []string) ([][]core.Finding, error) {
	sets := make([][]core.Finding, len(queries))
	errs := make([]error, len(queries))

	var wg sync.WaitGroup
	for i, q := range queries {
		wg.Add(1)
		go func(i int, q string) {
			defer wg.Done()
			res, err := r.registry.Search(ctx, r.toolName, q)
			if err != nil {
				errs[i] = err
				return
			}
			sets[i] = res.Findings
		}(i, q)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return sets, nil
}
