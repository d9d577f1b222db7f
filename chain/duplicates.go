package chain

import (
	"sort"
)

// DuplicateCluster groups entries computed from identical input state: same
// input_hash, more than one run.
type DuplicateCluster struct {
	InputHash  string   `json:"input_hash"`
	Count      int      `json:"count"`
	EntryIDs   []string `json:"entry_ids"`
	Timestamps []string `json:"timestamps"`
}

// DuplicateReport summarizes redundant computations in an export window.
// It is a descriptive signal only: the underlying history stays append-only
// and authoritative, nothing is deduplicated.
type DuplicateReport struct {
	Duplicates        []DuplicateCluster `json:"duplicates"`
	TotalUniqueHashes int                `json:"total_unique_hashes"`
	TotalEntries      int                `json:"total_entries"`
	HasDuplicates     bool               `json:"has_duplicates"`
}

// DetectDuplicates groups entries by input_hash and reports every cluster
// with more than one member. Entries with an empty input_hash are counted in
// TotalEntries but never clustered: an absent hash is unknown input state,
// not shared input state.
//
// Input order does not affect the report; clusters and their members are
// emitted in sorted order.
func DetectDuplicates(entries []HistoryEntry) DuplicateReport {
	report := DuplicateReport{
		Duplicates:   []DuplicateCluster{},
		TotalEntries: len(entries),
	}

	groups := make(map[string][]HistoryEntry)
	for _, e := range entries {
		if e.InputHash == "" {
			continue
		}
		groups[e.InputHash] = append(groups[e.InputHash], e)
	}
	report.TotalUniqueHashes = len(groups)

	for hash, members := range groups {
		if len(members) < 2 {
			continue
		}
		sort.Slice(members, func(i, j int) bool {
			if members[i].ComputedAt != members[j].ComputedAt {
				return members[i].ComputedAt < members[j].ComputedAt
			}
			return members[i].ID < members[j].ID
		})

		cluster := DuplicateCluster{
			InputHash:  hash,
			Count:      len(members),
			EntryIDs:   make([]string, 0, len(members)),
			Timestamps: make([]string, 0, len(members)),
		}
		for _, m := range members {
			cluster.EntryIDs = append(cluster.EntryIDs, m.ID)
			cluster.Timestamps = append(cluster.Timestamps, m.ComputedAt)
		}
		report.Duplicates = append(report.Duplicates, cluster)
	}

	sort.Slice(report.Duplicates, func(i, j int) bool {
		return report.Duplicates[i].InputHash < report.Duplicates[j].InputHash
	})

	report.HasDuplicates = len(report.Duplicates) > 0
	return report
}
