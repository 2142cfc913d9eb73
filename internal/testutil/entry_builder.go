package testutil

import (
	"fmt"

	"github.com/reliefmesh/reliefmesh/core"
)

// EntryBuilder provides a fluent helper for constructing memory entries in
// tests. Example:
//
//	e := NewEntryBuilder().Role(core.RolePlanner).Iteration(1).Note("planned").Build()
type EntryBuilder struct {
	role      core.Role
	iteration int
	payload   core.Payload
}

// NewEntryBuilder creates a builder with default role system and a small
// note payload.
func NewEntryBuilder() *EntryBuilder {
	return &EntryBuilder{role: core.RoleSystem, payload: core.Note("note")}
}

// Role sets the entry role (chainable).
func (b *EntryBuilder) Role(r core.Role) *EntryBuilder { b.role = r; return b }

// Iteration sets the loop iteration (chainable).
func (b *EntryBuilder) Iteration(i int) *EntryBuilder { b.iteration = i; return b }

// Note sets a plain-text payload (chainable).
func (b *EntryBuilder) Note(text string) *EntryBuilder { b.payload = core.Note(text); return b }

// NoteSized sets a note payload of exactly n characters (chainable). Useful
// for exercising character-bounded compaction.
func (b *EntryBuilder) NoteSized(n int) *EntryBuilder {
	text := make([]byte, n)
	for i := range text {
		text[i] = 'x'
	}
	b.payload = core.Note(text)
	return b
}

// Payload sets an arbitrary payload (chainable).
func (b *EntryBuilder) Payload(p core.Payload) *EntryBuilder { b.payload = p; return b }

// Build produces the entry.
func (b *EntryBuilder) Build() core.Entry {
	return core.NewEntry(b.role, b.iteration, b.payload)
}

// Entries builds n sequential entries with distinct notes, iterations
// 0..n-1. Handy for filling session memory.
func Entries(n int) []core.Entry {
	out := make([]core.Entry, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, NewEntryBuilder().
			Role(core.RolePlanner).
			Iteration(i).
			Note(fmt.Sprintf("entry %d", i)).
			Build())
	}
	return out
}

// Plan constructs a single-step plan demanding quantity units of kind.
func Plan(iteration int, kind string, quantity int) *core.Plan {
	return &core.Plan{
		Iteration: iteration,
		Rationale: fmt.Sprintf("demand %d %s", quantity, kind),
		Steps: []core.Step{{
			Kind:     kind,
			Priority: 1,
			Weight:   1.0,
			Quantity: quantity,
		}},
	}
}
