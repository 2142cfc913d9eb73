package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefmesh/reliefmesh/core"
	"github.com/reliefmesh/reliefmesh/internal/testutil"
)

// Interface compliance (compile-time assertions)
var (
	_ Searcher  = (*SimulatedSearch)(nil)
	_ Allocator = (*SupplyAllocator)(nil)
)

// failingSearch always errors; used to exercise error wrapping.
type failingSearch struct{}

func (failingSearch) Name() string        { return "search" }
func (failingSearch) Description() string { return "always fails" }
func (failingSearch) Search(context.Context, string) (*core.RetrievalResult, error) {
	return nil, errors.New("feed unavailable")
}

func TestRegistry_RegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewSimulatedSearch()))

	got, err := r.Lookup("search")
	require.NoError(t, err)
	assert.Equal(t, "search", got.Name())

	_, err = r.Lookup("missing")
	assert.ErrorIs(t, err, core.ErrUnknownTool)

	err = r.Register(NewSimulatedSearch())
	assert.ErrorIs(t, err, core.ErrDuplicateTool)
}

func TestRegistry_SearchWrapsToolFailure(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(failingSearch{}))

	_, err := r.Search(context.Background(), "search", "water")

	var toolErr *core.ToolExecutionError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "search", toolErr.Tool)
	assert.EqualError(t, errors.Unwrap(toolErr), "feed unavailable")
}

func TestRegistry_CapabilityMismatch(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewSupplyAllocator()))

	_, err := r.Search(context.Background(), "allocate", "water")
	assert.ErrorIs(t, err, core.ErrUnknownTool)

	_, err = r.Allocate(context.Background(), "allocate", testutil.Plan(0, "water", 0), map[string]int{"water": 1})
	assert.NoError(t, err)
}

func TestRegistry_Stats(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(NewSimulatedSearch()))

	for i := 0; i < 3; i++ {
		_, err := r.Search(context.Background(), "search", "water")
		require.NoError(t, err)
	}

	assert.Equal(t, int64(3), r.Stats()["search"])
}

func TestSimulatedSearch_Deterministic(t *testing.T) {
	s := NewSimulatedSearch()

	first, err := s.Search(context.Background(), "flood response water")
	require.NoError(t, err)
	second, err := s.Search(context.Background(), "flood response water")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.Findings, 3)
	for _, f := range first.Findings {
		assert.GreaterOrEqual(t, f.Severity, 1)
		assert.LessOrEqual(t, f.Severity, 10)
		assert.GreaterOrEqual(t, f.Confidence, 0.5)
		assert.LessOrEqual(t, f.Confidence, 1.0)
	}
}

func TestSimulatedSearch_QueryTermBoostsConfidence(t *testing.T) {
	s := NewSimulatedSearch()

	result, err := s.Search(context.Background(), "deliver water")
	require.NoError(t, err)

	for _, f := range result.Findings {
		if f.Kind == "water" {
			assert.InDelta(t, 0.9, f.Confidence, 1e-9)
		}
	}
}

func TestSimulatedSearch_CustomSites(t *testing.T) {
	s := NewSimulatedSearch(func(o *SearchOptions) {
		o.Sites = map[string]string{"clinic": "medical", "shelter": "water"}
	})

	result, err := s.Search(context.Background(), "survey")
	require.NoError(t, err)

	require.Len(t, result.Findings, 2)
	assert.Equal(t, "clinic", result.Findings[0].SourceID)
	assert.Equal(t, "shelter", result.Findings[1].SourceID)
}

func TestSupplyAllocator_FullDemandSatisfied(t *testing.T) {
	a := NewSupplyAllocator()
	plan := &core.Plan{Steps: []core.Step{
		{Kind: "water", Priority: 1, Quantity: 3},
		{Kind: "food", Priority: 2, Quantity: 4},
	}}
	available := map[string]int{"water": 3, "food": 4}

	alloc, err := a.Allocate(context.Background(), plan, available)
	require.NoError(t, err)

	assert.Equal(t, 3, alloc.Allocated["water"])
	assert.Equal(t, 0, alloc.Remaining["water"])
	assert.NoError(t, alloc.CheckConservation(available))

	// input supply is untouched
	assert.Equal(t, 3, available["water"])
}

func TestSupplyAllocator_Oversubscription(t *testing.T) {
	a := NewSupplyAllocator()
	plan := testutil.Plan(0, "water", 5)

	_, err := a.Allocate(context.Background(), plan, map[string]int{"water": 2})

	var supply *core.InsufficientSupplyError
	require.ErrorAs(t, err, &supply)
	assert.Equal(t, "water", supply.Kind)
	assert.Equal(t, 5, supply.Requested)
	assert.Equal(t, 2, supply.Available)
}

func TestSupplyAllocator_ZeroQuantityStepsSkipped(t *testing.T) {
	a := NewSupplyAllocator()
	plan := testutil.Plan(0, "water", 0)

	alloc, err := a.Allocate(context.Background(), plan, map[string]int{"water": 0})
	require.NoError(t, err)
	assert.Equal(t, 0, alloc.TotalAllocated())
}

func TestSupplyAllocator_CancelledContext(t *testing.T) {
	a := NewSupplyAllocator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Allocate(ctx, testutil.Plan(0, "water", 1), map[string]int{"water": 1})
	assert.ErrorIs(t, err, context.Canceled)
}
