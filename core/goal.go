package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// Goal is the disaster-relief objective submitted for one orchestration run:
// a free-text objective plus the initial supply count per resource kind
// (water, medical, food, ...). A Goal is immutable once the loop starts; the
// orchestrator copies the counts map and never writes back.
type Goal struct {
	Objective string         `json:"objective" yaml:"goal" validate:"required"`
	Resources map[string]int `json:"resources" yaml:"resources" validate:"required,min=1,dive,gte=0"`
}

// Validate checks the structural constraints: a non-empty objective and at
// least one resource kind, every count non-negative.
func (g Goal) Validate() error {
	if err := validate.Struct(g); err != nil {
		return fmt.Errorf("invalid goal: %w", err)
	}
	return nil
}

// Kinds returns the resource kinds in lexical order. Agents iterate kinds in
// this order so runs are reproducible regardless of map iteration order.
func (g Goal) Kinds() []string {
	kinds := make([]string, 0, len(g.Resources))
	for k := range g.Resources {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// Summary renders the goal as a single line for memory and bus traces.
func (g Goal) Summary() string {
	var b strings.Builder
	b.WriteString(g.Objective)
	b.WriteString(" [")
	for i, kind := range g.Kinds() {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", kind, g.Resources[kind])
	}
	b.WriteString("]")
	return b.String()
}
