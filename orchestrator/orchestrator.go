package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/reliefmesh/reliefmesh/agent"
	"github.com/reliefmesh/reliefmesh/bus"
	"github.com/reliefmesh/reliefmesh/core"
	"github.com/reliefmesh/reliefmesh/internal/util"
	"github.com/reliefmesh/reliefmesh/logging"
	"github.com/reliefmesh/reliefmesh/memory"
	"github.com/reliefmesh/reliefmesh/model"
	"github.com/reliefmesh/reliefmesh/tool"
)

// Options holds dependency + configuration overrides passed to New().
type Options struct {
	// MaxIterations bounds the passes through PLANNING.
	MaxIterations int
	// ScoreThreshold is the effectiveness score at which the loop stops
	// iterating.
	ScoreThreshold float64
	// AgentTimeout bounds each individual agent invocation.
	AgentTimeout time.Duration
	// MemoryMaxEntries / MemoryMaxChars bound the session memory.
	MemoryMaxEntries int
	MemoryMaxChars   int
	// SearchToolName / AllocateToolName select the registry capabilities.
	SearchToolName   string
	AllocateToolName string
	// ScoreExpression overrides the default effectiveness formula, see
	// agent.DefaultScoreExpression.
	ScoreExpression string
	// ConcurrentRetrieval fans out per-step searches; output ordering is
	// unaffected.
	ConcurrentRetrieval bool
	// Narrator optionally phrases plan rationales via a language model.
	Narrator model.Model
	// OnTransition receives one event per state machine edge.
	OnTransition TransitionFunc
	// Logger defaults to NoOpLogger.
	Logger logging.Logger

	// Stage overrides for substitution in tests or bespoke pipelines. Nil
	// fields get the default implementation.
	Planner    agent.Agent
	Retrieval  agent.Agent
	Execution  agent.Agent
	Evaluation agent.Agent
}

// Orchestrator coordinates runs. It is safe for concurrent use: all per-run
// state lives in the run struct, only the registry and options are shared.
type Orchestrator struct {
	registry *tool.Registry
	opts     Options

	planner    agent.Agent
	retrieval  agent.Agent
	execution  agent.Agent
	evaluation agent.Agent
}

// New constructs an orchestrator over a tool registry with optional
// overrides. It fails only on an invalid score expression.
func New(registry *tool.Registry, optFns ...func(o *Options)) (*Orchestrator, error) {
	opts := Options{
		MaxIterations:    3,
		ScoreThreshold:   0.7,
		AgentTimeout:     30 * time.Second,
		MemoryMaxEntries: 64,
		MemoryMaxChars:   16 * 1024,
		SearchToolName:   "search",
		AllocateToolName: "allocate",
		Logger:           logging.NoOpLogger{},
	}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxIterations < 1 {
		opts.MaxIterations = 1
	}

	o := &Orchestrator{registry: registry, opts: opts}

	o.planner = opts.Planner
	if o.planner == nil {
		o.planner = agent.NewPlanner(func(po *agent.PlannerOptions) {
			po.Logger = opts.Logger
			po.Narrator = opts.Narrator
		})
	}
	o.retrieval = opts.Retrieval
	if o.retrieval == nil {
		o.retrieval = agent.NewRetrieval(registry, func(ro *agent.RetrievalOptions) {
			ro.ToolName = opts.SearchToolName
			ro.ConcurrentSearch = opts.ConcurrentRetrieval
			ro.Logger = opts.Logger
		})
	}
	o.execution = opts.Execution
	if o.execution == nil {
		o.execution = agent.NewExecution(registry, func(eo *agent.ExecutionOptions) {
			eo.ToolName = opts.AllocateToolName
			eo.Logger = opts.Logger
		})
	}
	o.evaluation = opts.Evaluation
	if o.evaluation == nil {
		scorer, err := agent.NewExpressionScorer(opts.ScoreExpression)
		if err != nil {
			return nil, err
		}
		o.evaluation = agent.NewEvaluation(func(eo *agent.EvaluationOptions) {
			eo.Scorer = scorer
			eo.Threshold = opts.ScoreThreshold
			eo.Logger = opts.Logger
		})
	}

	return o, nil
}

// Orchestrate executes one run for the goal: the sole inbound entry point.
// On failure the returned Result still carries the partial trace and the
// triggering error.
func (o *Orchestrator) Orchestrate(ctx context.Context, goal core.Goal) (*Result, error) {
	if err := goal.Validate(); err != nil {
		return nil, err
	}

	r := &run{
		o:     o,
		goal:  goal,
		id:    uuid.NewString(),
		state: StatePlanning,
	}
	r.logger = logging.WithRun(o.opts.Logger, r.id)
	r.mem = memory.NewSession(func(mo *memory.Options) {
		mo.MaxEntries = o.opts.MemoryMaxEntries
		mo.MaxChars = o.opts.MemoryMaxChars
	})
	r.bus = bus.New(r.id)

	r.logger.Info("orchestrator.start", "goal", goal.Objective, "kinds", len(goal.Resources))

	// Entry 0 is the goal anchor; compaction always retains it.
	if err := r.mem.Append(core.NewEntry(core.RoleSystem, 0, core.Note("goal: "+goal.Summary()))); err != nil {
		return r.failed(err)
	}

	return r.loop(ctx)
}

// passVerdict tells the loop what a pass decided.
type passVerdict int

const (
	passIterate passVerdict = iota
	passDone
)

// run is the per-invocation state of one orchestration.
type run struct {
	o      *Orchestrator
	goal   core.Goal
	id     string
	mem    *memory.Session
	bus    *bus.Bus
	logger logging.Logger

	state      State
	iteration  int
	iterations int

	plan     *core.Plan
	findings *core.RetrievalResult
	alloc    *core.Allocation
	eval     *core.EvaluationResult
	feedback *core.Feedback

	limitReached bool
}

func (r *run) loop(ctx context.Context) (*Result, error) {
	max := r.o.opts.MaxIterations
	for r.iteration = 0; r.iteration < max; r.iteration++ {
		r.iterations = r.iteration + 1

		verdict, err := r.pass(ctx)
		if err != nil {
			return r.failed(err)
		}
		if verdict == passDone {
			return r.done(), nil
		}
	}
	// Unreachable: the final pass always ends in passDone or an error.
	r.limitReached = true
	return r.done(), nil
}

// pass runs one PLANNING → EVALUATING sequence.
func (r *run) pass(ctx context.Context) (passVerdict, error) {
	// Cancellation is honored before every agent invocation; an in-flight
	// call is only interrupted through its own context.
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// PLANNING
	payload, err := r.o.invoke(ctx, r.o.planner, &agent.Input{
		Goal:      r.goal,
		Entries:   r.mem.Entries(),
		Iteration: r.iteration,
		Feedback:  r.feedback,
	})
	if err != nil {
		return r.recover(ctx, StatePlanning, err)
	}
	plan, ok := payload.(*core.Plan)
	if !ok {
		return 0, fmt.Errorf("planner returned %T, want *core.Plan", payload)
	}
	r.plan = plan
	if err := r.record(core.RolePlanner, r.o.planner.Name(), plan, bus.DirectionDown); err != nil {
		return 0, err
	}
	r.transition(StateRetrieving)

	// RETRIEVING
	payload, err = r.o.invoke(ctx, r.o.retrieval, &agent.Input{
		Goal:      r.goal,
		Entries:   r.mem.Entries(),
		Iteration: r.iteration,
		Plan:      r.plan,
	})
	if err != nil {
		return r.recover(ctx, StateRetrieving, err)
	}
	findings, ok := payload.(*core.RetrievalResult)
	if !ok {
		return 0, fmt.Errorf("retrieval returned %T, want *core.RetrievalResult", payload)
	}
	r.findings = findings
	if err := r.record(core.RoleRetrieval, r.o.retrieval.Name(), findings, bus.DirectionDown); err != nil {
		return 0, err
	}
	r.transition(StateExecuting)

	// EXECUTING — each pass allocates against a fresh copy of the initial
	// supply; the goal itself stays immutable.
	payload, err = r.o.invoke(ctx, r.o.execution, &agent.Input{
		Goal:      r.goal,
		Entries:   r.mem.Entries(),
		Iteration: r.iteration,
		Plan:      r.plan,
		Findings:  r.findings,
		Available: util.CopyCounts(r.goal.Resources),
	})
	if err != nil {
		return r.recover(ctx, StateExecuting, err)
	}
	alloc, ok := payload.(*core.Allocation)
	if !ok {
		return 0, fmt.Errorf("execution returned %T, want *core.Allocation", payload)
	}
	r.alloc = alloc
	if err := r.record(core.RoleExecution, r.o.execution.Name(), alloc, bus.DirectionDown); err != nil {
		return 0, err
	}
	r.transition(StateEvaluating)

	return r.evaluate(ctx)
}

// evaluate runs the EVALUATING stage and decides DONE vs. another pass.
func (r *run) evaluate(ctx context.Context) (passVerdict, error) {
	payload, err := r.o.invoke(ctx, r.o.evaluation, &agent.Input{
		Goal:       r.goal,
		Entries:    r.mem.Entries(),
		Iteration:  r.iteration,
		Plan:       r.plan,
		Allocation: r.alloc,
	})
	if err != nil {
		return r.recover(ctx, StateEvaluating, err)
	}
	eval, ok := payload.(*core.EvaluationResult)
	if !ok {
		return 0, fmt.Errorf("evaluation returned %T, want *core.EvaluationResult", payload)
	}
	return r.finishEvaluation(eval)
}

// finishEvaluation records the evaluation and applies the iterate/done
// decision shared by the normal and the degraded paths.
func (r *run) finishEvaluation(eval *core.EvaluationResult) (passVerdict, error) {
	r.eval = eval
	if err := r.record(core.RoleEvaluation, r.o.evaluation.Name(), eval, bus.DirectionUp); err != nil {
		return 0, err
	}

	if eval.Score >= r.o.opts.ScoreThreshold {
		r.transition(StateDone)
		return passDone, nil
	}
	if r.iteration == r.o.opts.MaxIterations-1 {
		r.limitReached = true
		r.transition(StateDone)
		return passDone, nil
	}

	r.feedback = &core.Feedback{Text: eval.Critique, BoostKind: eval.WeakestKind}
	r.transition(StatePlanning)
	return passIterate, nil
}

// recover routes a stage failure: insufficient supply and timeouts become
// re-planning feedback counted against the iteration budget, anything else
// is unrecoverable. When the budget is already exhausted the run degrades to
// scoring the empty allocation so it still ends DONE.
func (r *run) recover(_ context.Context, from State, err error) (passVerdict, error) {
	var (
		supplyErr  *core.InsufficientSupplyError
		timeoutErr *core.AgentTimeoutError
	)
	switch {
	case errors.As(err, &supplyErr):
		r.feedback = &core.Feedback{
			Text:       fmt.Sprintf("reduce demand for %s", supplyErr.Kind),
			ReduceKind: supplyErr.Kind,
		}
	case errors.As(err, &timeoutErr):
		r.feedback = &core.Feedback{Text: timeoutErr.Error()}
	default:
		return 0, err
	}

	r.logger.Warn("orchestrator.recover", "from", string(from), "iteration", r.iteration, "feedback", r.feedback.Text)

	note := core.Note("recoverable failure: " + r.feedback.Text)
	if recordErr := r.record(core.RoleSystem, "orchestrator", note, bus.DirectionUp); recordErr != nil {
		return 0, recordErr
	}

	if r.iteration == r.o.opts.MaxIterations-1 {
		r.limitReached = true
		if r.plan == nil {
			r.plan = &core.Plan{Iteration: r.iteration}
		}
		r.alloc = core.EmptyAllocation(r.goal.Resources)
		if r.state != StateEvaluating {
			r.transition(StateEvaluating)
		}
		// Score the empty allocation directly: nothing was assigned, so the
		// effectiveness is zero by definition and re-invoking the
		// evaluation agent cannot fail the same way again.
		return r.finishEvaluation(&core.EvaluationResult{
			Score:          0,
			TotalAllocated: 0,
			TotalRemaining: r.alloc.TotalRemaining(),
		})
	}

	r.transition(StatePlanning)
	return passIterate, nil
}

// record appends an agent output to memory and publishes it on the bus.
// Memory overflow here is unrecoverable.
func (r *run) record(role core.Role, sender string, payload core.Payload, dir bus.Direction) error {
	if err := r.mem.Append(core.NewEntry(role, r.iteration, payload)); err != nil {
		return err
	}
	r.bus.Publish(sender, role, dir, r.iteration, payload)
	return nil
}

// transition moves the state machine and emits the observability event.
func (r *run) transition(to State) {
	tr := Transition{
		RunID:     r.id,
		From:      r.state,
		To:        to,
		Iteration: r.iteration,
		Timestamp: time.Now().UTC(),
	}
	r.state = to

	r.logger.Debug("orchestrator.transition", "from", string(tr.From), "to", string(tr.To), "iteration", tr.Iteration)
	if r.o.opts.OnTransition != nil {
		r.o.opts.OnTransition(tr)
	}
}

func (r *run) done() *Result {
	res := r.result(StatusDone, nil)
	r.logger.Info("orchestrator.done", "score", res.Score, "iterations", res.Iterations, "limit_reached", res.LimitReached)
	return res
}

func (r *run) failed(err error) (*Result, error) {
	if r.state != StateFailed {
		r.transition(StateFailed)
	}
	res := r.result(StatusFailed, err)
	r.logger.Error("orchestrator.failed", "error", err.Error(), "iterations", res.Iterations)
	return res, err
}

func (r *run) result(status Status, err error) *Result {
	res := &Result{
		RunID:        r.id,
		Status:       status,
		Plan:         r.plan,
		Iterations:   r.iterations,
		LimitReached: r.limitReached,
		Trace:        r.mem.Entries(),
		Conversation: r.bus.Summary(),
		Err:          err,
	}
	if r.alloc != nil {
		res.Allocation = util.CopyCounts(r.alloc.Allocated)
		res.Remaining = util.CopyCounts(r.alloc.Remaining)
	} else {
		res.Allocation = map[string]int{}
		res.Remaining = util.CopyCounts(r.goal.Resources)
	}
	if r.eval != nil {
		res.Score = r.eval.Score
	}
	return res
}

// invoke runs one agent under the configured timeout. A deadline hit maps to
// *core.AgentTimeoutError; parent-context cancellation passes through
// unchanged.
func (o *Orchestrator) invoke(ctx context.Context, ag agent.Agent, in *agent.Input) (core.Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agentCtx, cancel := context.WithTimeout(ctx, o.opts.AgentTimeout)
	defer cancel()

	type outcome struct {
		payload core.Payload
		err     error
	}
	ch := make(chan outcome, 1)
	go func() {
		payload, err := ag.Run(agentCtx, in)
		ch <- outcome{payload: payload, err: err}
	}()

	select {
	case <-agentCtx.Done():
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &core.AgentTimeoutError{Agent: ag.Name(), Timeout: o.opts.AgentTimeout}
	case out := <-ch:
		if out.err != nil {
			if errors.Is(out.err, context.DeadlineExceeded) && ctx.Err() == nil {
				return nil, &core.AgentTimeoutError{Agent: ag.Name(), Timeout: o.opts.AgentTimeout}
			}
			return nil, out.err
		}
		return out.payload, nil
	}
}
