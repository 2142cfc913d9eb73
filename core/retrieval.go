package core

import (
	"fmt"
	"sort"
)

// Finding is one situational fact gathered by the Retrieval agent: a site
// (SourceID) needing a resource Kind at some Severity, with the reporting
// tool's Confidence in [0,1].
type Finding struct {
	SourceID   string  `json:"source_id"`
	Kind       string  `json:"kind"`
	Severity   int     `json:"severity"`
	Confidence float64 `json:"confidence"`
}

// RetrievalResult aggregates the findings gathered for one iteration.
// Findings are unique per SourceID and sorted by SourceID so the memory
// trace is deterministic regardless of how the searches were dispatched.
type RetrievalResult struct {
	Query    string    `json:"query"`
	Findings []Finding `json:"findings"`
}

func (*RetrievalResult) isPayload() {}

// Summary implements Payload.
func (r *RetrievalResult) Summary() string {
	return fmt.Sprintf("retrieved %d findings for %q", len(r.Findings), r.Query)
}

// MergeFindings combines finding sets, deduplicating by SourceID and keeping
// the highest-confidence entry on collision. The result is sorted by
// SourceID.
func MergeFindings(sets ...[]Finding) []Finding {
	best := make(map[string]Finding)
	for _, set := range sets {
		for _, f := range set {
			if cur, ok := best[f.SourceID]; !ok || f.Confidence > cur.Confidence {
				best[f.SourceID] = f
			}
		}
	}
	merged := make([]Finding, 0, len(best))
	for _, f := range best {
		merged = append(merged, f)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].SourceID < merged[j].SourceID })
	return merged
}
