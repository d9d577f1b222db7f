// Package chain verifies the integrity of a case's decision-intelligence
// history: a singly linked, append-only sequence of computation records tied
// together by previous_run_id back-references.
//
// The verifier is a reporter, not a validator: malformed entries degrade to
// safe defaults (a missing previous_run_id is a chain root, a missing
// input_hash is excluded from duplicate grouping) and every inconsistency is
// returned as a finding in the report rather than as an error.
package chain

// Trigger identifies what caused a computation to run.
type Trigger string

// Recognized computation triggers.
const (
	TriggerManual      Trigger = "manual"
	TriggerSubmission  Trigger = "submission"
	TriggerEvidence    Trigger = "evidence"
	TriggerRequestInfo Trigger = "request_info"
	TriggerDecision    Trigger = "decision"
	TriggerUnknown     Trigger = "unknown"
)

// Normalize maps unrecognized trigger values to TriggerUnknown.
func (t Trigger) Normalize() Trigger {
	switch t {
	case TriggerManual, TriggerSubmission, TriggerEvidence, TriggerRequestInfo, TriggerDecision:
		return t
	default:
		return TriggerUnknown
	}
}

// HistoryEntry is one computation of decision intelligence for a case.
// Entries are created once, never mutated, never deleted; this package only
// reads them.
//
// PreviousRunID is the back-reference forming the chain; empty means chain
// root. A JSON null or missing field decodes to empty, so malformed input
// degrades to "root" by construction instead of crashing the verifier.
type HistoryEntry struct {
	ID              string         `json:"id"`
	ComputedAt      string         `json:"computed_at"`
	ConfidenceScore float64        `json:"confidence_score"`
	ConfidenceBand  string         `json:"confidence_band"`
	RulesPassed     int            `json:"rules_passed"`
	RulesTotal      int            `json:"rules_total"`
	GapCount        int            `json:"gap_count"`
	BiasCount       int            `json:"bias_count"`
	Trigger         Trigger        `json:"trigger"`
	ActorRole       string         `json:"actor_role"`
	PreviousRunID   string         `json:"previous_run_id,omitempty"`
	InputHash       string         `json:"input_hash,omitempty"`
	PolicyVersion   string         `json:"policy_version,omitempty"`
	PolicyHash      string         `json:"policy_hash,omitempty"`
	Payload         map[string]any `json:"payload,omitempty"`
}

// IsRoot reports whether the entry claims to be the start of its chain.
func (e HistoryEntry) IsRoot() bool {
	return e.PreviousRunID == ""
}
