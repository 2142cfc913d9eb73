package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reliefmesh/reliefmesh/core"
	"github.com/reliefmesh/reliefmesh/internal/testutil"
)

func anchor() core.Entry {
	return core.NewEntry(core.RoleSystem, 0, core.Note("goal: flood response [water=3]"))
}

func TestSession_AppendWithinBounds(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Append(anchor()))
	for _, e := range testutil.Entries(5) {
		require.NoError(t, s.Append(e))
	}

	assert.Equal(t, 6, s.Len())
	assert.Equal(t, 0, s.Dropped())

	entries := s.Entries()
	assert.Equal(t, "entry 0", entries[1].Content.Summary())
	assert.Equal(t, "entry 4", entries[5].Content.Summary())
}

func TestSession_EntriesIsACopy(t *testing.T) {
	s := NewSession()
	require.NoError(t, s.Append(anchor()))

	entries := s.Entries()
	entries[0] = core.NewEntry(core.RolePlanner, 9, core.Note("mutated"))

	assert.Equal(t, core.RoleSystem, s.Entries()[0].Role)
}

func TestSession_CompactionPreservesAnchorAndTail(t *testing.T) {
	s := NewSession(func(o *Options) { o.MaxEntries = 5 })
	require.NoError(t, s.Append(anchor()))
	for _, e := range testutil.Entries(10) {
		require.NoError(t, s.Append(e))
	}

	entries := s.Entries()
	require.LessOrEqual(t, len(entries), 5)

	// anchor stays at index 0
	assert.Equal(t, core.RoleSystem, entries[0].Role)
	assert.Contains(t, entries[0].Content.Summary(), "goal:")

	// summary sits at index 1 and accounts for everything dropped
	assert.Equal(t, core.RoleSystem, entries[1].Role)
	assert.Contains(t, entries[1].Content.Summary(), "compacted")
	assert.Contains(t, entries[1].Content.Summary(), fmt.Sprintf("%d older entries", s.Dropped()))

	// newest entries survive verbatim, in order
	assert.Equal(t, "entry 8", entries[len(entries)-2].Content.Summary())
	assert.Equal(t, "entry 9", entries[len(entries)-1].Content.Summary())
	assert.Positive(t, s.Dropped())
}

func TestSession_CompactionByChars(t *testing.T) {
	s := NewSession(func(o *Options) { o.MaxChars = 400 })
	require.NoError(t, s.Append(anchor()))
	for i := 0; i < 8; i++ {
		e := testutil.NewEntryBuilder().Role(core.RolePlanner).Iteration(i).NoteSized(100).Build()
		require.NoError(t, s.Append(e))
	}

	assert.LessOrEqual(t, s.Chars(), 400)
	assert.Positive(t, s.Dropped())

	// the newest oversized-ish entry is still verbatim
	entries := s.Entries()
	assert.Equal(t, 100, entries[len(entries)-1].Size())
}

func TestSession_RepeatedCompactionsFoldIntoOneSummary(t *testing.T) {
	s := NewSession(func(o *Options) { o.MaxEntries = 4 })
	require.NoError(t, s.Append(anchor()))
	for _, e := range testutil.Entries(12) {
		require.NoError(t, s.Append(e))
	}

	summaries := 0
	for _, e := range s.Entries() {
		if e.Role == core.RoleSystem && e.Iteration != 0 {
			summaries++
		}
	}
	assert.Equal(t, 1, summaries)
}

func TestSession_OverflowLeavesLogIntact(t *testing.T) {
	s := NewSession(func(o *Options) { o.MaxChars = 50 })
	require.NoError(t, s.Append(anchor()))

	before := s.Len()
	big := testutil.NewEntryBuilder().NoteSized(500).Build()
	err := s.Append(big)

	var overflow *core.MemoryOverflowError
	require.ErrorAs(t, err, &overflow)
	assert.Equal(t, before, s.Len())
}

func TestSession_ConcurrentAppendAndRead(t *testing.T) {
	s := NewSession(func(o *Options) { o.MaxEntries = 16 })
	require.NoError(t, s.Append(anchor()))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = s.Append(testutil.NewEntryBuilder().Iteration(n).Note("concurrent").Build())
			}
		}(i)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				_ = s.Entries()
				_ = s.Chars()
			}
		}()
	}
	wg.Wait()

	assert.LessOrEqual(t, s.Len(), 16)
	assert.Equal(t, core.RoleSystem, s.Entries()[0].Role)
}
