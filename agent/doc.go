// Package agent implements the four pipeline stages of an orchestration run:
// Planner, Retrieval, Execution and Evaluation. Every stage satisfies the
// same Agent interface so any of them can be substituted (e.g. a mock
// evaluation in tests) without touching the orchestrator.
//
// Agents are stateless per call: they read the input snapshot, call tools
// through the shared registry where needed, and return a typed payload. The
// orchestrator owns the memory; agents never mutate it.
package agent
