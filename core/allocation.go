package core

import (
	"fmt"
)

// Allocation is the Execution stage's output: how many units of each kind
// were assigned and how many remain. For every kind k the invariant
// Allocated[k] + Remaining[k] == initial[k] holds and both sides are
// non-negative; over-allocating is an error at the allocator, never a clamp.
type Allocation struct {
	Allocated map[string]int `json:"allocated"`
	Remaining map[string]int `json:"remaining"`
}

func (*Allocation) isPayload() {}

// Summary implements Payload.
func (a *Allocation) Summary() string {
	return fmt.Sprintf("allocated %d units, %d remaining", a.TotalAllocated(), a.TotalRemaining())
}

// EmptyAllocation returns a zero allocation leaving the full supply
// untouched. Used when the iteration budget runs out before any feasible
// plan was found.
func EmptyAllocation(available map[string]int) *Allocation {
	alloc := &Allocation{
		Allocated: make(map[string]int, len(available)),
		Remaining: make(map[string]int, len(available)),
	}
	for k, v := range available {
		alloc.Allocated[k] = 0
		alloc.Remaining[k] = v
	}
	return alloc
}

// TotalAllocated sums assigned units over all kinds.
func (a *Allocation) TotalAllocated() int {
	total := 0
	for _, v := range a.Allocated {
		total += v
	}
	return total
}

// TotalRemaining sums leftover units over all kinds.
func (a *Allocation) TotalRemaining() int {
	total := 0
	for _, v := range a.Remaining {
		total += v
	}
	return total
}

// CheckConservation verifies Allocated[k] + Remaining[k] == initial[k] and
// non-negativity for every kind of the initial supply.
func (a *Allocation) CheckConservation(initial map[string]int) error {
	for k, init := range initial {
		got, rem := a.Allocated[k], a.Remaining[k]
		if got < 0 || rem < 0 {
			return fmt.Errorf("allocation for %s is negative: allocated=%d remaining=%d", k, got, rem)
		}
		if got+rem != init {
			return fmt.Errorf("allocation for %s not conserved: %d + %d != %d", k, got, rem, init)
		}
	}
	return nil
}
