// Package bus implements the structured message bus carrying agent outputs
// downward through the pipeline and evaluation feedback upward to the
// planner. Envelopes are retained in publish order per run, giving the
// conversation summary attached to the final result.
package bus
