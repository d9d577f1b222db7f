package chain

import (
	"sort"
)

// BrokenLink records an entry whose previous_run_id references an id that
// exists neither in the verified window nor in the caller's known-id set.
type BrokenLink struct {
	EntryID           string `json:"entry_id"`
	MissingPreviousID string `json:"missing_previous_id"`
}

// Fork records a parent with more than one child: two computations ran
// against the same ancestor, typically from a concurrent duplicate run.
// Forks are surfaced, never resolved into a single timeline.
type Fork struct {
	ParentID string   `json:"parent_id"`
	ChildIDs []string `json:"child_ids"`
}

// IntegrityReport is the result of verifying one export window of history.
//
// Orphans and broken links differ: a broken link references an id that is
// unknown everywhere, while an orphan merely has no root ancestor reachable
// inside the window. When an export covers a truncated suffix of the full
// history, orphans are expected and do not invalidate the export; IsValid
// depends on broken links only.
type IntegrityReport struct {
	IsValid         bool         `json:"is_valid"`
	BrokenLinks     []BrokenLink `json:"broken_links"`
	OrphanedEntries []string     `json:"orphaned_entries"`
	Forks           []Fork       `json:"forks"`
	TotalEntries    int          `json:"total_entries"`
	VerifiedEntries int          `json:"verified_entries"`
}

// VerifyChain validates the linkage of an export window with no knowledge of
// ids outside the window. Equivalent to VerifyChainWindow(entries, nil).
func VerifyChain(entries []HistoryEntry) IntegrityReport {
	return VerifyChainWindow(entries, nil)
}

// VerifyChainWindow validates the linkage of an export window. knownIDs, if
// non-nil, is the full set of entry ids that exist in the backing store; a
// previous_run_id outside the window but inside knownIDs is a truncation,
// not a broken link. Supplying knownIDs is how callers disambiguate "parent
// fell outside a limited export" from "parent does not exist".
//
// The input order of entries never affects the report: verification projects
// the list into an id-keyed lookup before reasoning, and all report slices
// are emitted in sorted order.
func VerifyChainWindow(entries []HistoryEntry, knownIDs map[string]bool) IntegrityReport {
	report := IntegrityReport{
		BrokenLinks:     []BrokenLink{},
		OrphanedEntries: []string{},
		Forks:           []Fork{},
		TotalEntries:    len(entries),
	}

	lookup := make(map[string]HistoryEntry, len(entries))
	for _, e := range entries {
		if e.ID != "" {
			lookup[e.ID] = e
		}
	}

	children := make(map[string][]string)

	for _, e := range entries {
		if e.IsRoot() {
			report.VerifiedEntries++
			continue
		}

		children[e.PreviousRunID] = append(children[e.PreviousRunID], e.ID)

		if _, inWindow := lookup[e.PreviousRunID]; inWindow {
			report.VerifiedEntries++
			continue
		}
		if knownIDs != nil && knownIDs[e.PreviousRunID] {
			// Truncated: the parent exists, it just fell outside this export.
			continue
		}
		report.BrokenLinks = append(report.BrokenLinks, BrokenLink{
			EntryID:           e.ID,
			MissingPreviousID: e.PreviousRunID,
		})
	}

	// Orphans: non-root entries with no root ancestor reachable inside the
	// window. Iterative walk with memoization keeps this stack-safe for long
	// histories and terminates on reference cycles.
	rooted := make(map[string]int, len(lookup)) // 0 unknown, 1 rooted, -1 not rooted
	for _, e := range entries {
		if e.ID == "" || e.IsRoot() {
			continue
		}
		if !hasRootInWindow(e.ID, lookup, rooted) {
			report.OrphanedEntries = append(report.OrphanedEntries, e.ID)
		}
	}

	for parent, childIDs := range children {
		if len(childIDs) > 1 {
			sort.Strings(childIDs)
			report.Forks = append(report.Forks, Fork{ParentID: parent, ChildIDs: childIDs})
		}
	}

	sort.Slice(report.BrokenLinks, func(i, j int) bool {
		return report.BrokenLinks[i].EntryID < report.BrokenLinks[j].EntryID
	})
	sort.Strings(report.OrphanedEntries)
	sort.Slice(report.Forks, func(i, j int) bool {
		return report.Forks[i].ParentID < report.Forks[j].ParentID
	})

	report.IsValid = len(report.BrokenLinks) == 0
	return report
}

// hasRootInWindow walks parent pointers inside the window until it reaches a
// root, leaves the window, or closes a reference cycle. Results are memoized
// in rooted (1 rooted, -1 not rooted, -2 walk in progress) so shared ancestry
// is walked once per chain, not once per entry.
func hasRootInWindow(id string, lookup map[string]HistoryEntry, rooted map[string]int) bool {
	var path []string
	cur := id

	for {
		if state, ok := rooted[cur]; ok && state != 0 {
			// -2 means we walked back into our own path: a cycle, no root.
			return settle(path, state == 1, rooted)
		}

		e, ok := lookup[cur]
		if !ok {
			// Walked out of the window without reaching a root.
			return settle(path, false, rooted)
		}

		if e.IsRoot() {
			return settle(append(path, cur), true, rooted)
		}

		rooted[cur] = -2
		path = append(path, cur)
		cur = e.PreviousRunID
	}
}

func settle(path []string, isRooted bool, rooted map[string]int) bool {
	state := -1
	if isRooted {
		state = 1
	}
	for _, id := range path {
		rooted[id] = state
	}
	return isRooted
}
