package export

import (
	"time"

	"github.com/google/uuid"

	"github.com/caselight/caselight/canonical"
	"github.com/caselight/caselight/chain"
	"github.com/caselight/caselight/errors"
)

// Options controls export assembly.
type Options struct {
	// IncludePayload keeps the bulky per-entry payload in the export. It is
	// a size/privacy tradeoff only: verification uses id, previous_run_id,
	// and input_hash, none of which are affected.
	IncludePayload bool

	// KnownIDs is the full id set available in the backing store, used to
	// distinguish window truncation from broken links. Nil means the window
	// is all the verifier knows.
	KnownIDs map[string]bool

	// Signer, when set, attaches a signature block over the export's
	// canonical hash.
	Signer *Signer
}

// Metadata identifies one export document.
type Metadata struct {
	ExportID       string `json:"export_id"`
	ExportedAt     string `json:"exported_at"`
	EntryCount     int    `json:"entry_count"`
	IncludePayload bool   `json:"include_payload"`
}

// Canonicalization echoes exactly how the export's hash was derived so a
// third party can strip the same fields, re-canonicalize, and re-digest
// without trusting this implementation.
type Canonicalization struct {
	Algorithm     string   `json:"algorithm"`
	Hash          string   `json:"hash"`
	ExcludeFields []string `json:"exclude_fields"`
}

// Response is the exportable integrity report for one case's history window.
type Response struct {
	Metadata          Metadata              `json:"metadata"`
	IntegrityCheck    chain.IntegrityReport `json:"integrity_check"`
	DuplicateAnalysis chain.DuplicateReport `json:"duplicate_analysis"`
	History           []chain.HistoryEntry  `json:"history"`
	Signature         *SignatureBlock       `json:"signature,omitempty"`
	Canonicalization  *Canonicalization     `json:"canonicalization,omitempty"`
}

// ExcludedHashFields returns the dot paths stripped from an export before
// hashing: the per-export identifiers and wall clock, plus the signature and
// canonicalization blocks themselves, which both derive from the hash.
func ExcludedHashFields() []string {
	return []string{
		"metadata.export_id",
		"metadata.exported_at",
		"signature",
		"canonicalization",
	}
}

// Hash computes the export's canonical content hash.
func Hash(resp *Response) (string, error) {
	return canonical.HashExcluding(resp, ExcludedHashFields())
}

// BuildExport runs chain verification and duplicate detection over the
// supplied entries and assembles the export document. The entries are never
// mutated; payload stripping copies first.
func BuildExport(entries []chain.HistoryEntry, opts Options) (*Response, error) {
	history := make([]chain.HistoryEntry, len(entries))
	copy(history, entries)
	if !opts.IncludePayload {
		for i := range history {
			history[i].Payload = nil
		}
	}

	resp := &Response{
		Metadata: Metadata{
			ExportID:       uuid.NewString(),
			ExportedAt:     time.Now().UTC().Format(time.RFC3339),
			EntryCount:     len(entries),
			IncludePayload: opts.IncludePayload,
		},
		IntegrityCheck:    chain.VerifyChainWindow(entries, opts.KnownIDs),
		DuplicateAnalysis: chain.DetectDuplicates(entries),
		History:           history,
	}

	h, err := Hash(resp)
	if err != nil {
		return nil, errors.Wrap(err, "failed to hash export")
	}
	resp.Canonicalization = &Canonicalization{
		Algorithm:     "sha256",
		Hash:          h,
		ExcludeFields: ExcludedHashFields(),
	}

	if opts.Signer != nil {
		block := opts.Signer.Sign(h)
		resp.Signature = &block
	}

	return resp, nil
}

// VerifySignature recomputes the export's canonical hash and checks the
// attached signature block against it. It also cross-checks the echoed
// canonicalization hash, so any post-signing edit to the report body fails
// even before the cryptographic check.
func VerifySignature(resp *Response) error {
	h, err := Hash(resp)
	if err != nil {
		return errors.Wrap(err, "failed to re-hash export")
	}
	if resp.Canonicalization != nil && resp.Canonicalization.Hash != h {
		return errors.Wrapf(errors.ErrSignature,
			"export body hash %s does not match echoed hash %s", h, resp.Canonicalization.Hash)
	}
	return verifyBlock(resp.Signature, h)
}
