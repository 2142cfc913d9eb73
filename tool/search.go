package tool

import (
	"context"
	"hash/fnv"
	"sort"
	"strings"

	"github.com/reliefmesh/reliefmesh/core"
)

// site is one entry of the simulated situational picture.
type site struct {
	id   string
	need string
}

// defaultSites mirrors the simulated relief theatre: three sites, each with
// one dominant need.
var defaultSites = []site{
	{id: "site-alpha", need: "water"},
	{id: "site-bravo", need: "medical"},
	{id: "site-charlie", need: "food"},
}

// SimulatedSearch is a deterministic stand-in for a live situational data
// source. Severity and confidence are derived from a hash of query and site
// so identical queries always return identical findings; swap in a real
// Searcher for live feeds.
type SimulatedSearch struct {
	name  string
	sites []site
}

// SearchOptions configures the simulated search.
type SearchOptions struct {
	// Name overrides the registry name, default "search".
	Name string
	// Sites overrides the simulated site table (id -> dominant need).
	Sites map[string]string
}

// NewSimulatedSearch constructs the simulated search tool.
func NewSimulatedSearch(optFns ...func(o *SearchOptions)) *SimulatedSearch {
	opts := SearchOptions{Name: "search"}
	for _, fn := range optFns {
		fn(&opts)
	}
	s := &SimulatedSearch{name: opts.Name, sites: defaultSites}
	if len(opts.Sites) > 0 {
		s.sites = nil
		for _, id := range sortedKeys(opts.Sites) {
			s.sites = append(s.sites, site{id: id, need: opts.Sites[id]})
		}
	}
	return s
}

// Name implements Tool.
func (s *SimulatedSearch) Name() string { return s.name }

// Description implements Tool.
func (s *SimulatedSearch) Description() string {
	return "Simulated situational search returning per-site needs with severity and confidence"
}

// Search implements Searcher. Sites whose need matches a term of the query
// report higher confidence; every site reports something so retrieval always
// has a picture to work with.
func (s *SimulatedSearch) Search(ctx context.Context, query string) (*core.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	terms := strings.Fields(strings.ToLower(query))
	findings := make([]core.Finding, 0, len(s.sites))
	for _, st := range s.sites {
		severity := 1 + int(hash(query+"|"+st.id)%10)
		confidence := 0.5 + float64(hash(st.id+"|"+query)%50)/100.0
		if containsTerm(terms, st.need) {
			confidence = 0.9
		}
		findings = append(findings, core.Finding{
			SourceID:   st.id,
			Kind:       st.need,
			Severity:   severity,
			Confidence: confidence,
		})
	}

	return &core.RetrievalResult{Query: query, Findings: findings}, nil
}

func hash(s string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(s))
	return h.Sum32()
}

func containsTerm(terms []string, want string) bool {
	for _, t := range terms {
		if t == want {
			return true
		}
	}
	return false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
