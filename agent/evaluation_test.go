package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefmesh/reliefmesh/core"
	"github.com/reliefmesh/reliefmesh/internal/testutil"
)

func fullAllocation() *core.Allocation {
	return &core.Allocation{
		Allocated: map[string]int{"water": 3, "medical": 2, "food": 4},
		Remaining: map[string]int{"water": 0, "medical": 0, "food": 0},
	}
}

func TestExpressionScorer_FullCoverageScoresOne(t *testing.T) {
	scorer := MustExpressionScorer("")

	score, err := scorer.Score(fullAllocation(), standardPlan(), map[string]int{"water": 3, "medical": 2, "food": 4})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, score, 1e-9)
}

func TestExpressionScorer_PartialCoverage(t *testing.T) {
	scorer := MustExpressionScorer("")
	plan := testutil.Plan(0, "water", 4)
	alloc := &core.Allocation{
		Allocated: map[string]int{"water": 2},
		Remaining: map[string]int{"water": 0},
	}

	score, err := scorer.Score(alloc, plan, map[string]int{"water": 2})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestExpressionScorer_EmptyPlanScoresZero(t *testing.T) {
	scorer := MustExpressionScorer("")

	score, err := scorer.Score(core.EmptyAllocation(nil), &core.Plan{}, nil)
	require.NoError(t, err)
	assert.Zero(t, score)
}

func TestExpressionScorer_CustomExpression(t *testing.T) {
	scorer, err := NewExpressionScorer("remaining / initial")
	require.NoError(t, err)

	plan := testutil.Plan(0, "water", 2)
	alloc := &core.Allocation{
		Allocated: map[string]int{"water": 2},
		Remaining: map[string]int{"water": 2},
	}

	score, err := scorer.Score(alloc, plan, map[string]int{"water": 4})
	require.NoError(t, err)
	assert.InDelta(t, 0.5, score, 1e-9)
}

func TestExpressionScorer_InvalidExpression(t *testing.T) {
	_, err := NewExpressionScorer("allocated +* demand")
	assert.Error(t, err)
}

func TestEvaluation_AboveThresholdNoCritique(t *testing.T) {
	e := NewEvaluation()
	goal := testutil.NewGoalBuilder().StandardSupply().Build()

	payload, err := e.Run(context.Background(), &Input{
		Goal:       goal,
		Plan:       standardPlan(),
		Allocation: fullAllocation(),
	})
	require.NoError(t, err)

	result := payload.(*core.EvaluationResult)
	assert.InDelta(t, 1.0, result.Score, 1e-9)
	assert.Empty(t, result.Critique)
	assert.Equal(t, 9, result.TotalAllocated)
	assert.Equal(t, 0, result.TotalRemaining)
}

func TestEvaluation_BelowThresholdNamesWeakestKind(t *testing.T) {
	e := NewEvaluation()
	goal := testutil.NewGoalBuilder().StandardSupply().Build()

	alloc := &core.Allocation{
		Allocated: map[string]int{"water": 3, "medical": 0, "food": 1},
		Remaining: map[string]int{"water": 0, "medical": 2, "food": 3},
	}

	payload, err := e.Run(context.Background(), &Input{
		Goal:       goal,
		Plan:       standardPlan(),
		Allocation: alloc,
	})
	require.NoError(t, err)

	result := payload.(*core.EvaluationResult)
	assert.Less(t, result.Score, 0.7)
	assert.Equal(t, "medical", result.WeakestKind)
	assert.Contains(t, result.Critique, "medical")
}

func TestEvaluation_Idempotent(t *testing.T) {
	e := NewEvaluation()
	in := &Input{
		Goal:       testutil.NewGoalBuilder().StandardSupply().Build(),
		Plan:       standardPlan(),
		Allocation: fullAllocation(),
	}

	first, err := e.Run(context.Background(), in)
	require.NoError(t, err)
	second, err := e.Run(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestEvaluation_RequiresPlanAndAllocation(t *testing.T) {
	e := NewEvaluation()

	_, err := e.Run(context.Background(), &Input{Plan: standardPlan()})
	assert.Error(t, err)

	_, err = e.Run(context.Background(), &Input{Allocation: fullAllocation()})
	assert.Error(t, err)
}
