package tool

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/atomic"

	"github.com/reliefmesh/reliefmesh/core"
)

// Registry binds capability names to tools. It is shared by concurrent
// orchestration runs and therefore safe for concurrent registration, lookup
// and invocation; it retains no run-specific state beyond invocation
// counters.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
	calls map[string]*atomic.Int64
}

// NewRegistry constructs an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		tools: make(map[string]Tool),
		calls: make(map[string]*atomic.Int64),
	}
}

// Register binds a tool under its name. Registering a name twice fails with
// core.ErrDuplicateTool.
func (r *Registry) Register(t Tool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tools[t.Name()]; exists {
		return fmt.Errorf("%w: %s", core.ErrDuplicateTool, t.Name())
	}
	r.tools[t.Name()] = t
	r.calls[t.Name()] = atomic.NewInt64(0)
	return nil
}

// Lookup returns the tool registered under name, or core.ErrUnknownTool.
func (r *Registry) Lookup(name string) (Tool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", core.ErrUnknownTool, name)
	}
	return t, nil
}

// Search invokes the named search capability. A tool that is registered but
// does not implement Searcher is a configuration error reported as
// core.ErrUnknownTool; a failure inside the tool is wrapped as
// *core.ToolExecutionError with the cause preserved.
func (r *Registry) Search(ctx context.Context, name, query string) (*core.RetrievalResult, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	s, ok := t.(Searcher)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not a search capability", core.ErrUnknownTool, name)
	}
	r.count(name)
	result, err := s.Search(ctx, query)
	if err != nil {
		return nil, &core.ToolExecutionError{Tool: name, Err: err}
	}
	return result, nil
}

// Allocate invokes the named allocation capability with the same lookup and
// wrapping semantics as Search.
func (r *Registry) Allocate(ctx context.Context, name string, plan *core.Plan, available map[string]int) (*core.Allocation, error) {
	t, err := r.Lookup(name)
	if err != nil {
		return nil, err
	}
	a, ok := t.(Allocator)
	if !ok {
		return nil, fmt.Errorf("%w: %s is not an allocation capability", core.ErrUnknownTool, name)
	}
	r.count(name)
	alloc, err := a.Allocate(ctx, plan, available)
	if err != nil {
		return nil, &core.ToolExecutionError{Tool: name, Err: err}
	}
	return alloc, nil
}

// Stats returns the invocation count per registered tool.
func (r *Registry) Stats() map[string]int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	stats := make(map[string]int64, len(r.calls))
	for name, c := range r.calls {
		stats[name] = c.Load()
	}
	return stats
}

func (r *Registry) count(name string) {
	r.mu.RLock()
	c := r.calls[name]
	r.mu.RUnlock()
	if c != nil {
		c.Inc()
	}
}
