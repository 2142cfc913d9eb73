package tool

import (
	"context"

	"github.com/reliefmesh/reliefmesh/core"
)

// SupplyAllocator assigns plan step quantities against the available supply.
// It mutates nothing: the available map is read-only input and the returned
// Allocation carries fresh maps. A demand exceeding the available quantity
// fails with *core.InsufficientSupplyError; partial fulfilment is never
// silently substituted.
type SupplyAllocator struct {
	name string
}

// AllocatorOptions configures the supply allocator.
type AllocatorOptions struct {
	// Name overrides the registry name, default "allocate".
	Name string
}

// NewSupplyAllocator constructs the allocation tool.
func NewSupplyAllocator(optFns ...func(o *AllocatorOptions)) *SupplyAllocator {
	opts := AllocatorOptions{Name: "allocate"}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &SupplyAllocator{name: opts.Name}
}

// Name implements Tool.
func (a *SupplyAllocator) Name() string { return a.name }

// Description implements Tool.
func (a *SupplyAllocator) Description() string {
	return "Allocates planned resource quantities against available supply"
}

// Allocate implements Allocator. Steps are applied in plan order; the first
// oversubscribed kind aborts the whole allocation.
func (a *SupplyAllocator) Allocate(ctx context.Context, plan *core.Plan, available map[string]int) (*core.Allocation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	alloc := core.EmptyAllocation(available)
	for _, step := range plan.Steps {
		if step.Quantity == 0 {
			continue
		}
		left := alloc.Remaining[step.Kind]
		if step.Quantity > left {
			return nil, &core.InsufficientSupplyError{
				Kind:      step.Kind,
				Requested: step.Quantity,
				Available: left,
			}
		}
		alloc.Allocated[step.Kind] += step.Quantity
		alloc.Remaining[step.Kind] = left - step.Quantity
	}
	return alloc, nil
}
