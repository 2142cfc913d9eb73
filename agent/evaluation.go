package agent

import (
	"context"
	"fmt"
	"sort"

	"github.com/Knetic/govaluate"

	"github.com/reliefmesh/reliefmesh/core"
	"github.com/reliefmesh/reliefmesh/logging"
)

// DefaultScoreExpression is the effectiveness formula applied per demanded
// resource kind: the proportion of demand met, capped at full coverage. The
// per-kind values are combined as a weight-normalized sum over the plan's
// steps.
const DefaultScoreExpression = "(allocated >= demand) ? 1.0 : allocated / demand"

// Scorer computes the normalized effectiveness score of an allocation. Score
// must be a pure function: identical inputs yield identical results.
type Scorer interface {
	Score(alloc *core.Allocation, plan *core.Plan, initial map[string]int) (float64, error)
}

// ExpressionScorer evaluates a configurable expression per demanded kind
// with the parameters allocated, demand, initial, remaining and weight, then
// takes the weight-normalized sum. Kinds without demand contribute nothing;
// a plan demanding nothing scores zero.
type ExpressionScorer struct {
	expr *govaluate.EvaluableExpression
}

// NewExpressionScorer compiles a scoring expression. An empty expression
// selects DefaultScoreExpression.
func NewExpressionScorer(expression string) (*ExpressionScorer, error) {
	if expression == "" {
		expression = DefaultScoreExpression
	}
	expr, err := govaluate.NewEvaluableExpression(expression)
	if err != nil {
		return nil, fmt.Errorf("invalid score expression: %w", err)
	}
	return &ExpressionScorer{expr: expr}, nil
}

// MustExpressionScorer is NewExpressionScorer for known-good expressions.
func MustExpressionScorer(expression string) *ExpressionScorer {
	s, err := NewExpressionScorer(expression)
	if err != nil {
		panic(err)
	}
	return s
}

// Score implements Scorer.
func (s *ExpressionScorer) Score(alloc *core.Allocation, plan *core.Plan, initial map[string]int) (float64, error) {
	var weighted, weightSum float64
	for _, step := range plan.Steps {
		if step.Quantity <= 0 {
			continue
		}
		params := map[string]interface{}{
			"allocated": float64(alloc.Allocated[step.Kind]),
			"demand":    float64(step.Quantity),
			"initial":   float64(initial[step.Kind]),
			"remaining": float64(alloc.Remaining[step.Kind]),
			"weight":    step.Weight,
		}
		val, err := s.expr.Evaluate(params)
		if err != nil {
			return 0, fmt.Errorf("score expression failed for %s: %w", step.Kind, err)
		}
		f, ok := val.(float64)
		if !ok {
			return 0, fmt.Errorf("score expression for %s returned %T, want float64", step.Kind, val)
		}
		weighted += step.Weight * clamp01(f)
		weightSum += step.Weight
	}
	if weightSum == 0 {
		return 0, nil
	}
	return clamp01(weighted / weightSum), nil
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// Evaluation scores the iteration's allocation against the original supply
// and produces the critique fed back to the planner when the score falls
// below the threshold. Scoring is idempotent; the agent holds no run state.
type Evaluation struct {
	name      string
	scorer    Scorer
	threshold float64
	logger    logging.Logger
}

// EvaluationOptions configures an Evaluation agent.
type EvaluationOptions struct {
	// Scorer defaults to an ExpressionScorer over DefaultScoreExpression.
	Scorer Scorer
	// Threshold is the score below which a critique is produced.
	Threshold float64
	// Logger defaults to NoOpLogger.
	Logger logging.Logger
}

// NewEvaluation constructs the evaluation stage.
func NewEvaluation(optFns ...func(o *EvaluationOptions)) *Evaluation {
	opts := EvaluationOptions{Threshold: 0.7, Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Scorer == nil {
		opts.Scorer = MustExpressionScorer("")
	}
	return &Evaluation{name: "evaluation", scorer: opts.Scorer, threshold: opts.Threshold, logger: opts.Logger}
}

// Name implements Agent.
func (e *Evaluation) Name() string { return e.name }

// Role implements Agent.
func (e *Evaluation) Role() core.Role { return core.RoleEvaluation }

// Run implements Agent.
func (e *Evaluation) Run(ctx context.Context, in *Input) (core.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if in.Allocation == nil || in.Plan == nil {
		return nil, fmt.Errorf("evaluation requires a plan and an allocation")
	}

	score, err := e.scorer.Score(in.Allocation, in.Plan, in.Goal.Resources)
	if err != nil {
		return nil, err
	}

	result := &core.EvaluationResult{
		Score:          score,
		WeakestKind:    weakestKind(in.Allocation, in.Plan),
		TotalAllocated: in.Allocation.TotalAllocated(),
		TotalRemaining: in.Allocation.TotalRemaining(),
	}
	if score < e.threshold && result.WeakestKind != "" {
		result.Critique = fmt.Sprintf("coverage is weakest for %s; increase its priority", result.WeakestKind)
	}

	e.logger.Info("evaluation.done", "iteration", in.Iteration, "score", score, "weakest", result.WeakestKind)

	return result, nil
}

// weakestKind returns the demanded kind with the lowest coverage ratio, ties
// broken by name. Empty when the plan demands nothing.
func weakestKind(alloc *core.Allocation, plan *core.Plan) string {
	weakest := ""
	worst := 2.0
	steps := make([]core.Step, len(plan.Steps))
	copy(steps, plan.Steps)
	sort.Slice(steps, func(i, j int) bool { return steps[i].Kind < steps[j].Kind })
	for _, step := range steps {
		if step.Quantity <= 0 {
			continue
		}
		ratio := float64(alloc.Allocated[step.Kind]) / float64(step.Quantity)
		if ratio < worst {
			worst = ratio
			weakest = step.Kind
		}
	}
	return weakest
}
