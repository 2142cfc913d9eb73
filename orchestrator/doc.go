// Package orchestrator drives the relief pipeline: it sequences the Planner,
// Retrieval, Execution and Evaluation agents through an explicit state
// machine, owns the per-run session memory and message bus, converts
// recoverable failures into re-planning feedback, enforces the iteration
// budget and agent timeouts, and assembles the final result.
//
// One orchestrator instance may serve many concurrent runs; runs share only
// the tool registry.
package orchestrator
