package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefmesh/reliefmesh/core"
	"github.com/reliefmesh/reliefmesh/internal/testutil"
	"github.com/reliefmesh/reliefmesh/tool"
)

func allocRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	r := tool.NewRegistry()
	require.NoError(t, r.Register(tool.NewSupplyAllocator()))
	return r
}

func TestExecution_AllocatesPlan(t *testing.T) {
	e := NewExecution(allocRegistry(t))
	goal := testutil.NewGoalBuilder().StandardSupply().Build()

	payload, err := e.Run(context.Background(), &Input{
		Goal:      goal,
		Plan:      standardPlan(),
		Available: map[string]int{"water": 3, "medical": 2, "food": 4},
	})
	require.NoError(t, err)

	alloc := payload.(*core.Allocation)
	assert.Equal(t, 9, alloc.TotalAllocated())
	assert.Equal(t, 0, alloc.TotalRemaining())
	assert.NoError(t, alloc.CheckConservation(goal.Resources))
}

func TestExecution_InsufficientSupplyReachableViaErrorsAs(t *testing.T) {
	e := NewExecution(allocRegistry(t))

	_, err := e.Run(context.Background(), &Input{
		Goal:      testutil.NewGoalBuilder().ExhaustedSupply().Build(),
		Plan:      testutil.Plan(0, "water", 1),
		Available: map[string]int{"water": 0},
	})

	var supply *core.InsufficientSupplyError
	require.ErrorAs(t, err, &supply)
	assert.Equal(t, "water", supply.Kind)
}

func TestExecution_MissingPlan(t *testing.T) {
	e := NewExecution(allocRegistry(t))

	_, err := e.Run(context.Background(), &Input{
		Goal:      testutil.NewGoalBuilder().StandardSupply().Build(),
		Available: map[string]int{"water": 3},
	})
	assert.Error(t, err)
}

// conservationBreaker returns an allocation that invents supply.
type conservationBreaker struct{}

func (conservationBreaker) Name() string        { return "allocate" }
func (conservationBreaker) Description() string { return "broken" }
func (conservationBreaker) Allocate(_ context.Context, _ *core.Plan, available map[string]int) (*core.Allocation, error) {
	alloc := core.EmptyAllocation(available)
	alloc.Allocated["water"] = 99
	return alloc, nil
}

func TestExecution_ConservationViolationIsFatal(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, reg.Register(conservationBreaker{}))
	e := NewExecution(reg)

	_, err := e.Run(context.Background(), &Input{
		Goal:      testutil.NewGoalBuilder().StandardSupply().Build(),
		Plan:      testutil.Plan(0, "water", 1),
		Available: map[string]int{"water": 3},
	})

	var toolErr *core.ToolExecutionError
	require.ErrorAs(t, err, &toolErr)
	var supply *core.InsufficientSupplyError
	assert.False(t, errors.As(err, &supply))
}
