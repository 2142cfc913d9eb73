// Package memory implements the per-run session memory: an append-only,
// ordered log of typed entries with automatic compaction that keeps the log
// within configured entry and character bounds. The goal anchor (entry 0)
// and the most recent tail survive compaction verbatim; dropped middle
// entries are folded into a single synthetic system summary.
package memory
