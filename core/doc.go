// Package core defines the leaf data model shared by every reliefmesh
// component: the relief Goal, the typed agent payloads (Plan,
// RetrievalResult, Allocation, EvaluationResult), the session memory
// entry/role model and the error taxonomy.
//
// Nothing in this package performs I/O or holds run state; the types are
// plain values consumed by the memory, bus, tool, agent and orchestrator
// packages.
package core
