// Package reliefmesh provides a high-level façade over the orchestrator and
// its supporting services (tool registry, simulated field tools, logging)
// enabling rapid construction of relief coordination runs. Most applications
// interact with this package by:
//  1. Creating a Mesh via New() (optionally overriding tools, model, logger)
//  2. Describing the mission as a core.Goal (objective + available supply)
//  3. Running it with Orchestrate and inspecting the returned Result
//
// The façade delegates the planning/retrieval/execution/evaluation loop to
// orchestrator.Orchestrator while keeping setup ergonomics concise. All
// defaults are safe for local development and testing: a deterministic
// simulated search tool, an in-memory supply allocator and a no-op logger.
// Production deployments typically register real field tools and supply a
// structured logger.
package reliefmesh

import (
	"context"

	"github.com/reliefmesh/reliefmesh/core"
	"github.com/reliefmesh/reliefmesh/logging"
	"github.com/reliefmesh/reliefmesh/model"
	"github.com/reliefmesh/reliefmesh/orchestrator"
	"github.com/reliefmesh/reliefmesh/tool"
)

// Options configures the Mesh instance.
type Options struct {
	// Orchestrator configuration (iteration budget, threshold, timeouts).
	OrchestratorOptions []func(o *orchestrator.Options)

	// Tools registered before the defaults. Registering a tool named
	// "search" or "allocate" replaces the built-in simulation.
	Tools []tool.Tool

	// Narrator optionally phrases plan rationales via a language model.
	Narrator model.Model

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating the orchestrator and its tool
// registry.
type Mesh struct {
	opts         Options
	registry     *tool.Registry
	orchestrator *orchestrator.Orchestrator
}

// New creates a Mesh with optional overrides. The default registry carries a
// deterministic simulated search tool and a supply allocator, so a bare
// New() is immediately runnable.
func New(optFns ...func(o *Options)) (*Mesh, error) {
	opts := Options{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	registry := tool.NewRegistry()
	for _, t := range opts.Tools {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}
	if _, err := registry.Lookup("search"); err != nil {
		if err := registry.Register(tool.NewSimulatedSearch()); err != nil {
			return nil, err
		}
	}
	if _, err := registry.Lookup("allocate"); err != nil {
		if err := registry.Register(tool.NewSupplyAllocator()); err != nil {
			return nil, err
		}
	}

	orchFns := append([]func(o *orchestrator.Options){func(o *orchestrator.Options) {
		o.Logger = opts.Logger
		o.Narrator = opts.Narrator
	}}, opts.OrchestratorOptions...)

	orch, err := orchestrator.New(registry, orchFns...)
	if err != nil {
		return nil, err
	}

	return &Mesh{opts: opts, registry: registry, orchestrator: orch}, nil
}

// Registry exposes the tool registry, e.g. for call statistics.
func (m *Mesh) Registry() *tool.Registry { return m.registry }

// Orchestrate runs one mission to completion and returns its result. The
// context bounds the whole run; individual agent invocations additionally
// honor the configured agent timeout.
func (m *Mesh) Orchestrate(ctx context.Context, goal core.Goal) (*orchestrator.Result, error) {
	return m.orchestrator.Orchestrate(ctx, goal)
}
