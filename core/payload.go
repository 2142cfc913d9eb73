package core

// Payload represents the structured content of a memory entry or bus
// envelope. Concrete payload types implement the unexported isPayload marker
// enabling a closed set, mirroring how agent outputs form a tagged union:
// exactly one payload shape per agent stage plus Note for system text.
type Payload interface {
	isPayload()

	// Summary renders the payload as a short single line. Memory compaction
	// accounts character budgets against this rendering and the bus uses it
	// for conversation summaries.
	Summary() string
}

// Note is a free-text payload authored by the orchestrator itself: the goal
// anchor, compaction summaries and recoverable-failure critiques.
type Note string

func (Note) isPayload() {}

// Summary implements Payload.
func (n Note) Summary() string { return string(n) }
