package diff

import (
	"time"

	"github.com/caselight/caselight/canonical"
)

// ExcludedHashFields returns the dot paths stripped from a diff result
// before hashing: the export timestamp and the hash field itself, mirroring
// packet hashing.
func ExcludedHashFields() []string {
	return []string{"exportedAt", "diffHash"}
}

// Hash computes the content hash of a diff result with its volatile export
// fields excluded, so a finalized diff can be independently re-verified.
func Hash(r *Result) (string, error) {
	return canonical.HashExcluding(r, ExcludedHashFields())
}

// Finalize stamps the result for tamper-evident export: sets ExportedAt to
// the current wall clock and DiffHash to the result's content hash. Neither
// field feeds the hash, so finalizing is repeatable without drift in
// DiffHash.
func Finalize(r *Result) error {
	h, err := Hash(r)
	if err != nil {
		return err
	}
	r.ExportedAt = time.Now().UTC().Format(time.RFC3339)
	r.DiffHash = h
	return nil
}
