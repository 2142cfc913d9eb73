package testutil

import (
	"github.com/reliefmesh/reliefmesh/core"
)

// GoalBuilder provides a fluent helper for constructing goals in tests.
// Example:
//
//	goal := NewGoalBuilder().Objective("flood response").Resource("water", 3).Build()
//
// Chain only the parts you need; sensible defaults are applied.
type GoalBuilder struct {
	objective string
	resources map[string]int
}

// NewGoalBuilder creates a builder with a default objective and no supply.
func NewGoalBuilder() *GoalBuilder {
	return &GoalBuilder{objective: "coordinate disaster response", resources: map[string]int{}}
}

// Objective sets the mission objective (chainable).
func (b *GoalBuilder) Objective(o string) *GoalBuilder { b.objective = o; return b }

// Resource sets the available count for one supply kind (chainable).
func (b *GoalBuilder) Resource(kind string, count int) *GoalBuilder {
	b.resources[kind] = count
	return b
}

// StandardSupply sets the three-kind supply used by most scenario tests
// (chainable).
func (b *GoalBuilder) StandardSupply() *GoalBuilder {
	b.resources = map[string]int{"water": 3, "medical": 2, "food": 4}
	return b
}

// ExhaustedSupply zeroes every kind of the standard supply (chainable).
func (b *GoalBuilder) ExhaustedSupply() *GoalBuilder {
	b.resources = map[string]int{"water": 0, "medical": 0, "food": 0}
	return b
}

// Build produces the goal.
func (b *GoalBuilder) Build() core.Goal {
	resources := make(map[string]int, len(b.resources))
	for k, v := range b.resources {
		resources[k] = v
	}
	return core.Goal{Objective: b.objective, Resources: resources}
}
