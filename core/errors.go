package core

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors for registry misconfiguration. These indicate programming
// errors: the orchestrator surfaces them immediately and fails the run.
var (
	// ErrUnknownTool is returned when invoking a capability name that was
	// never registered.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrDuplicateTool is returned when registering a name twice.
	ErrDuplicateTool = errors.New("duplicate tool")
)

// ToolExecutionError wraps a failure raised by a registered tool. The
// underlying cause stays reachable through Unwrap so callers can match
// recoverable conditions (e.g. InsufficientSupplyError) with errors.As.
type ToolExecutionError struct {
	Tool string
	Err  error
}

func (e *ToolExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed: %v", e.Tool, e.Err)
}

func (e *ToolExecutionError) Unwrap() error { return e.Err }

// InsufficientSupplyError reports a plan step demanding more of a kind than
// the available supply. It is recoverable: the orchestrator converts it into
// a "reduce demand" critique and re-plans.
type InsufficientSupplyError struct {
	Kind      string
	Requested int
	Available int
}

func (e *InsufficientSupplyError) Error() string {
	return fmt.Sprintf("insufficient supply of %s: requested %d, available %d", e.Kind, e.Requested, e.Available)
}

// MemoryOverflowError reports that compaction could not bring the session
// memory under its configured bounds, typically because a single entry alone
// exceeds the character budget. Memory is never truncated mid-entry.
type MemoryOverflowError struct {
	Entries    int
	MaxEntries int
	Chars      int
	MaxChars   int
}

func (e *MemoryOverflowError) Error() string {
	return fmt.Sprintf("session memory overflow: %d entries (max %d), %d chars (max %d)",
		e.Entries, e.MaxEntries, e.Chars, e.MaxChars)
}

// AgentTimeoutError reports that an agent invocation exceeded its configured
// deadline. It is recoverable and counts against the iteration budget.
type AgentTimeoutError struct {
	Agent   string
	Timeout time.Duration
}

func (e *AgentTimeoutError) Error() string {
	return fmt.Sprintf("agent %s timed out after %s", e.Agent, e.Timeout)
}
