// Package tool implements the capability subsystem: typed tool interfaces
// for the known capability categories (search, allocate), a concurrency-safe
// registry keyed by name, and the simulated implementations backing the
// default pipeline. Real data sources or MCP-style tool servers plug in by
// implementing the same capability interfaces.
package tool
