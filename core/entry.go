package core

import (
	"time"

	"github.com/rs/xid"
)

// Role identifies which stage authored a memory entry or bus envelope.
type Role string

const (
	// RoleSystem marks orchestrator-authored entries: the goal anchor,
	// compaction summaries and recoverable-failure notes.
	RoleSystem Role = "system"
	// RolePlanner marks Plan entries.
	RolePlanner Role = "planner"
	// RoleRetrieval marks RetrievalResult entries.
	RoleRetrieval Role = "retrieval"
	// RoleExecution marks Allocation entries.
	RoleExecution Role = "execution"
	// RoleEvaluation marks EvaluationResult entries.
	RoleEvaluation Role = "evaluation"
)

// Entry is one ordered record of the session memory. Entries are append-only:
// after Append they are never reordered or mutated, only compaction may
// replace a run of older entries with a single system summary.
type Entry struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Iteration int       `json:"iteration"`
	Timestamp time.Time `json:"timestamp"`
	Content   Payload   `json:"content"`
}

// NewEntry creates an entry authored by role for the given loop iteration.
func NewEntry(role Role, iteration int, content Payload) Entry {
	return Entry{
		ID:        xid.New().String(),
		Role:      role,
		Iteration: iteration,
		Timestamp: time.Now().UTC(),
		Content:   content,
	}
}

// Size reports the character footprint charged against the memory budget.
func (e Entry) Size() int {
	if e.Content == nil {
		return 0
	}
	return len(e.Content.Summary())
}
