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

func searchRegistry(t *testing.T) *tool.Registry {
	t.Helper()
	r := tool.NewRegistry()
	require.NoError(t, r.Register(tool.NewSimulatedSearch()))
	return r
}

func standardPlan() *core.Plan {
	return &core.Plan{Steps: []core.Step{
		{Kind: "food", Priority: 1, Weight: 0.5, Quantity: 4},
		{Kind: "water", Priority: 2, Weight: 0.33, Quantity: 3},
		{Kind: "medical", Priority: 3, Weight: 0.17, Quantity: 2},
	}}
}

func TestRetrieval_OneQueryPerStepDeduplicated(t *testing.T) {
	reg := searchRegistry(t)
	r := NewRetrieval(reg)
	goal := testutil.NewGoalBuilder().StandardSupply().Build()

	payload, err := r.Run(context.Background(), &Input{Goal: goal, Plan: standardPlan()})
	require.NoError(t, err)

	result := payload.(*core.RetrievalResult)
	assert.Equal(t, goal.Objective, result.Query)

	// three sites, three queries, still three unique findings
	require.Len(t, result.Findings, 3)
	assert.Equal(t, int64(3), reg.Stats()["search"])

	seen := map[string]bool{}
	for _, f := range result.Findings {
		assert.False(t, seen[f.SourceID])
		seen[f.SourceID] = true
	}
}

func TestRetrieval_ConcurrentMatchesSequential(t *testing.T) {
	goal := testutil.NewGoalBuilder().StandardSupply().Build()
	in := &Input{Goal: goal, Plan: standardPlan()}

	seq := NewRetrieval(searchRegistry(t))
	conc := NewRetrieval(searchRegistry(t), func(o *RetrievalOptions) { o.ConcurrentSearch = true })

	seqOut, err := seq.Run(context.Background(), in)
	require.NoError(t, err)
	concOut, err := conc.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, seqOut, concOut)
}

func TestRetrieval_EmptyPlan(t *testing.T) {
	r := NewRetrieval(searchRegistry(t))
	goal := testutil.NewGoalBuilder().StandardSupply().Build()

	payload, err := r.Run(context.Background(), &Input{Goal: goal, Plan: &core.Plan{}})
	require.NoError(t, err)

	result := payload.(*core.RetrievalResult)
	assert.Empty(t, result.Findings)
}

type brokenSearch struct{}

func (brokenSearch) Name() string        { return "search" }
func (brokenSearch) Description() string { return "always fails" }
func (brokenSearch) Search(context.Context, string) (*core.RetrievalResult, error) {
	return nil, errors.New("feed unavailable")
}

func TestRetrieval_ToolFailureSurfacesWrapped(t *testing.T) {
	reg := tool.NewRegistry()
	require.NoError(t, reg.Register(brokenSearch{}))
	r := NewRetrieval(reg)

	_, err := r.Run(context.Background(), &Input{
		Goal: testutil.NewGoalBuilder().StandardSupply().Build(),
		Plan: standardPlan(),
	})

	var toolErr *core.ToolExecutionError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, "search", toolErr.Tool)
}

func TestRetrieval_UnknownToolName(t *testing.T) {
	r := NewRetrieval(tool.NewRegistry())

	_, err := r.Run(context.Background(), &Input{
		Goal: testutil.NewGoalBuilder().StandardSupply().Build(),
		Plan: standardPlan(),
	})

	assert.ErrorIs(t, err, core.ErrUnknownTool)
}
