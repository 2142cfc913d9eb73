// Package logging provides a tiny abstraction over slog so downstream code
// can depend on a minimal interface (Logger) while allowing callers to plug
// any structured logger. A NoOpLogger keeps logging optional everywhere.
package logging
