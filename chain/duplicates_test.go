package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectDuplicatesClusters(t *testing.T) {
	entries := []HistoryEntry{
		{ID: "r1", ComputedAt: "2026-03-01T10:00:00Z", InputHash: "abc"},
		{ID: "r2", ComputedAt: "2026-03-01T10:05:00Z", InputHash: "abc"},
		{ID: "r3", ComputedAt: "2026-03-01T10:10:00Z", InputHash: "abc"},
		{ID: "r4", ComputedAt: "2026-03-02T09:00:00Z", InputHash: "xyz"},
		{ID: "r5", ComputedAt: "2026-03-02T09:30:00Z", InputHash: "xyz"},
		{ID: "r6", ComputedAt: "2026-03-03T08:00:00Z", InputHash: "solo"},
	}

	report := DetectDuplicates(entries)

	assert.True(t, report.HasDuplicates)
	assert.Equal(t, 6, report.TotalEntries)
	assert.Equal(t, 3, report.TotalUniqueHashes)
	require.Len(t, report.Duplicates, 2)

	abc := report.Duplicates[0]
	assert.Equal(t, "abc", abc.InputHash)
	assert.Equal(t, 3, abc.Count)
	assert.Equal(t, []string{"r1", "r2", "r3"}, abc.EntryIDs)
	assert.Equal(t, []string{
		"2026-03-01T10:00:00Z", "2026-03-01T10:05:00Z", "2026-03-01T10:10:00Z",
	}, abc.Timestamps)

	xyz := report.Duplicates[1]
	assert.Equal(t, "xyz", xyz.InputHash)
	assert.Equal(t, 2, xyz.Count)
}

func TestDetectDuplicatesEmptyHashNeverClustered(t *testing.T) {
	entries := []HistoryEntry{
		{ID: "r1", InputHash: ""},
		{ID: "r2", InputHash: ""},
		{ID: "r3", InputHash: ""},
	}

	report := DetectDuplicates(entries)

	assert.False(t, report.HasDuplicates)
	assert.Empty(t, report.Duplicates)
	assert.Equal(t, 3, report.TotalEntries)
	assert.Equal(t, 0, report.TotalUniqueHashes)
}

func TestDetectDuplicatesOrderInvariant(t *testing.T) {
	entries := []HistoryEntry{
		{ID: "r1", ComputedAt: "2026-03-01T10:00:00Z", InputHash: "abc"},
		{ID: "r2", ComputedAt: "2026-03-01T10:05:00Z", InputHash: "abc"},
		{ID: "r4", ComputedAt: "2026-03-02T09:00:00Z", InputHash: "xyz"},
		{ID: "r5", ComputedAt: "2026-03-02T09:30:00Z", InputHash: "xyz"},
	}
	reversed := []HistoryEntry{entries[3], entries[2], entries[1], entries[0]}

	assert.Equal(t, DetectDuplicates(entries), DetectDuplicates(reversed))
}

func TestDetectDuplicatesNoEntries(t *testing.T) {
	report := DetectDuplicates(nil)
	assert.False(t, report.HasDuplicates)
	assert.Equal(t, 0, report.TotalEntries)
	assert.Empty(t, report.Duplicates)
}
