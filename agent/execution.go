package agent

import (
	"context"
	"fmt"

	"github.com/reliefmesh/reliefmesh/core"
	"github.com/reliefmesh/reliefmesh/logging"
	"github.com/reliefmesh/reliefmesh/tool"
)

// Execution applies the plan against the available supply through the
// registry's allocation capability. An oversubscribed demand surfaces as
// *core.InsufficientSupplyError inside the tool-execution wrap; the
// orchestrator treats that as a re-planning trigger, not a fatal failure.
type Execution struct {
	name     string
	registry *tool.Registry
	toolName string
	logger   logging.Logger
}

// ExecutionOptions configures an Execution agent.
type ExecutionOptions struct {
	// ToolName is the registry name of the allocation capability, default
	// "allocate".
	ToolName string
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// NewExecution constructs the execution stage bound to a tool registry.
func NewExecution(registry *tool.Registry, optFns ...func(o *ExecutionOptions)) *Execution {
	opts := ExecutionOptions{ToolName: "allocate", Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Execution{name: "execution", registry: registry, toolName: opts.ToolName, logger: opts.Logger}
}

// Name implements Agent.
func (e *Execution) Name() string { return e.name }

// Role implements Agent.
func (e *Execution) Role() core.Role { return core.RoleExecution }

// Run implements Agent.
func (e *Execution) Run(ctx context.Context, in *Input) (core.Payload, error) {
	if in.Plan == nil {
		return nil, fmt.Errorf("execution requires a plan")
	}

	alloc, err := e.registry.Allocate(ctx, e.toolName, in.Plan, in.Available)
	if err != nil {
		return nil, err
	}

	if err := alloc.CheckConservation(in.Available); err != nil {
		return nil, &core.ToolExecutionError{Tool: e.toolName, Err: err}
	}

	e.logger.Info("execution.done", "iteration", in.Iteration, "allocated", alloc.TotalAllocated(), "remaining", alloc.TotalRemaining())

	return alloc, nil
}
