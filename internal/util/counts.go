// Package util holds small shared helpers with no domain knowledge.
package util

// CopyCounts returns an independent copy of a resource-count map.
func CopyCounts(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
