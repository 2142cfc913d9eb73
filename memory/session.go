package memory

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/reliefmesh/reliefmesh/core"
)

// Options bound the session memory. Both limits apply together; compaction
// runs whenever either would be exceeded.
type Options struct {
	// MaxEntries caps the number of retained entries, counting the goal
	// anchor and the compaction summary. Minimum effective value is 3
	// (anchor + summary + one live entry).
	MaxEntries int
	// MaxChars caps the sum of entry summary lengths.
	MaxChars int
}

// Session is the append-only memory of one orchestration run. It is safe for
// concurrent access; agents receive read-only snapshots via Entries.
//
// Contract:
//   - Entries are never reordered or mutated after append.
//   - Compaction removes entries only from the older end, never entry 0.
//   - Repeated compactions fold into one summary slot at index 1.
//   - Append fails with *core.MemoryOverflowError when compaction cannot
//     satisfy the bounds (a single oversized entry); the log is left as it
//     was before the failing append.
type Session struct {
	mu      sync.RWMutex
	entries []core.Entry

	maxEntries int
	maxChars   int

	summarized   bool
	dropped      int
	droppedRoles map[core.Role]int
	spanFirst    int
	spanLast     int
}

// NewSession constructs a session memory with optional bound overrides.
// Defaults: 64 entries, 16 KiB of summary characters.
func NewSession(optFns ...func(o *Options)) *Session {
	opts := Options{MaxEntries: 64, MaxChars: 16 * 1024}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.MaxEntries < 3 {
		opts.MaxEntries = 3
	}
	return &Session{
		maxEntries:   opts.MaxEntries,
		maxChars:     opts.MaxChars,
		droppedRoles: make(map[core.Role]int),
	}
}

// Append adds an entry to the tail, compacting older entries first when the
// bounds would be exceeded.
func (s *Session) Append(e core.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries, e)
	if err := s.compactLocked(); err != nil {
		s.entries = s.entries[:len(s.entries)-1]
		return err
	}
	return nil
}

// Entries returns a defensive copy of the full ordered log.
func (s *Session) Entries() []core.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]core.Entry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

// Len returns the number of retained entries.
func (s *Session) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Chars returns the summed character footprint of retained entries.
func (s *Session) Chars() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.charsLocked()
}

// Dropped reports how many entries compaction has removed so far.
func (s *Session) Dropped() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dropped
}

func (s *Session) charsLocked() int {
	total := 0
	for _, e := range s.entries {
		total += e.Size()
	}
	return total
}

func (s *Session) overLocked() bool {
	return len(s.entries) > s.maxEntries || s.charsLocked() > s.maxChars
}

// firstDroppableLocked returns the index of the oldest entry that compaction
// may remove: everything after the goal anchor and the summary slot.
func (s *Session) firstDroppableLocked() int {
	if s.summarized {
		return 2
	}
	return 1
}

func (s *Session) compactLocked() error {
	for s.overLocked() {
		idx := s.firstDroppableLocked()
		// Never drop the newest entry; if only the anchor, the summary and
		// the newest entry are left the bounds cannot be met.
		if idx >= len(s.entries)-1 {
			return &core.MemoryOverflowError{
				Entries:    len(s.entries),
				MaxEntries: s.maxEntries,
				Chars:      s.charsLocked(),
				MaxChars:   s.maxChars,
			}
		}

		victim := s.entries[idx]
		s.dropped++
		s.droppedRoles[victim.Role]++
		if s.dropped == 1 || victim.Iteration < s.spanFirst {
			s.spanFirst = victim.Iteration
		}
		if victim.Iteration > s.spanLast {
			s.spanLast = victim.Iteration
		}

		s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
		s.writeSummaryLocked()
	}
	return nil
}

// writeSummaryLocked inserts or rewrites the synthetic system summary at
// index 1 describing everything dropped so far.
func (s *Session) writeSummaryLocked() {
	summary := core.NewEntry(core.RoleSystem, s.spanLast, core.Note(s.summaryTextLocked()))
	if s.summarized {
		s.entries[1] = summary
		return
	}
	s.entries = append(s.entries[:1], append([]core.Entry{summary}, s.entries[1:]...)...)
	s.summarized = true
}

func (s *Session) summaryTextLocked() string {
	roles := make([]string, 0, len(s.droppedRoles))
	for role := range s.droppedRoles {
		roles = append(roles, string(role))
	}
	sort.Strings(roles)

	var b strings.Builder
	fmt.Fprintf(&b, "compacted %d older entries (", s.dropped)
	for i, role := range roles {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(&b, "%s=%d", role, s.droppedRoles[core.Role(role)])
	}
	fmt.Fprintf(&b, ") spanning iterations %d-%d", s.spanFirst, s.spanLast)
	return b.String()
}
