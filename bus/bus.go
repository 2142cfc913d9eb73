package bus

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reliefmesh/reliefmesh/core"
)

// Direction indicates which way an envelope travels through the pipeline.
type Direction string

const (
	// DirectionDown carries an agent's output to the next stage.
	DirectionDown Direction = "down"
	// DirectionUp carries evaluation or failure feedback back to the planner.
	DirectionUp Direction = "up"
)

// Envelope is the unit of communication on the bus. After publication it is
// treated as immutable.
type Envelope struct {
	ID        string       `json:"id"`
	RunID     string       `json:"run_id"`
	Sender    string       `json:"sender"`
	Role      core.Role    `json:"role"`
	Direction Direction    `json:"direction"`
	Iteration int          `json:"iteration"`
	Timestamp time.Time    `json:"timestamp"`
	Payload   core.Payload `json:"payload"`
}

// NewEnvelope constructs an envelope bound to a run. Prefer Bus.Publish
// helpers in orchestration code.
func NewEnvelope(runID, sender string, role core.Role, dir Direction, iteration int, payload core.Payload) Envelope {
	return Envelope{
		ID:        uuid.NewString(),
		RunID:     runID,
		Sender:    sender,
		Role:      role,
		Direction: dir,
		Iteration: iteration,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// Bus retains the ordered envelope history of one run. Safe for concurrent
// use.
type Bus struct {
	runID     string
	mu        sync.RWMutex
	envelopes []Envelope
}

// New creates an empty bus for a run.
func New(runID string) *Bus {
	return &Bus{runID: runID}
}

// Publish appends an envelope constructed from the arguments and returns it.
func (b *Bus) Publish(sender string, role core.Role, dir Direction, iteration int, payload core.Payload) Envelope {
	env := NewEnvelope(b.runID, sender, role, dir, iteration, payload)
	b.mu.Lock()
	b.envelopes = append(b.envelopes, env)
	b.mu.Unlock()
	return env
}

// History returns a defensive copy of all envelopes in publish order.
func (b *Bus) History() []Envelope {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]Envelope, len(b.envelopes))
	copy(out, b.envelopes)
	return out
}

// Recent returns the newest n envelopes in publish order.
func (b *Bus) Recent(n int) []Envelope {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if n > len(b.envelopes) {
		n = len(b.envelopes)
	}
	out := make([]Envelope, n)
	copy(out, b.envelopes[len(b.envelopes)-n:])
	return out
}

// Len returns the number of published envelopes.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.envelopes)
}

// summaryWindow bounds how many envelopes Summary renders.
const summaryWindow = 12

// Summary renders the most recent envelopes as one line each, oldest first.
func (b *Bus) Summary() string {
	recent := b.Recent(summaryWindow)
	lines := make([]string, 0, len(recent))
	for _, env := range recent {
		lines = append(lines, fmt.Sprintf("[%s] %s: %s", env.Role, env.Sender, env.Payload.Summary()))
	}
	return strings.Join(lines, "\n")
}
