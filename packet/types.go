// Package packet defines the audit packet: a point-in-time, self-contained
// snapshot of one compliance decision, assembled from caller-supplied case
// state, decision output, timeline, evidence, and human actions.
//
// The packet is plain data. Building and hashing are separate explicit steps
// so callers choose when to snapshot; see Build and Hash.
package packet

// AuditPacket is a self-contained snapshot of one decision.
// Timestamps are carried as the backend supplied them (RFC 3339 strings);
// the core never reinterprets wall-clock values.
type AuditPacket struct {
	Metadata       Metadata        `json:"metadata"`
	PacketHash     string          `json:"packetHash,omitempty"`
	CaseSnapshot   CaseSnapshot    `json:"caseSnapshot"`
	Decision       Decision        `json:"decision"`
	Explainability Explainability  `json:"explainability"`
	TimelineEvents []TimelineEvent `json:"timelineEvents"`
	EvidenceIndex  []Evidence      `json:"evidenceIndex"`
	HumanActions   HumanActions    `json:"humanActions"`
}

// Metadata identifies the packet. GeneratedAt is wall-clock and excluded
// from the packet's content hash.
type Metadata struct {
	CaseID      string `json:"caseId"`
	DecisionID  string `json:"decisionId"`
	GeneratedAt string `json:"generatedAt"`
}

// CaseSnapshot holds denormalized case fields at snapshot time. These are
// content: updatedAt participates in the hash, unlike metadata.generatedAt.
type CaseSnapshot struct {
	Title     string `json:"title"`
	Status    string `json:"status"`
	RiskLevel string `json:"riskLevel"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Decision is the machine decision under review.
type Decision struct {
	DecisionID  string  `json:"decisionId"`
	Status      string  `json:"status"`
	Confidence  float64 `json:"confidence"`
	RiskLevel   string  `json:"riskLevel"`
	LastUpdated string  `json:"lastUpdated"`
}

// Explainability carries the narrative the decision engine produced.
type Explainability struct {
	Summary   string     `json:"summary"`
	TraceID   string     `json:"traceId"`
	RuleTrace []RuleEval `json:"ruleTrace"`
	Notes     string     `json:"notes"`
}

// RuleEval is one rule evaluation in the trace.
type RuleEval struct {
	RuleID string `json:"ruleId"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// TimelineEvent is one append-only case timeline entry. Order is meaningful
// and preserved as supplied.
type TimelineEvent struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Timestamp string         `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}

// Evidence describes one piece of evidence attached to the case. ID may be
// empty for evidence the backend indexed without an identifier; diffing falls
// back to a composite signature in that case.
type Evidence struct {
	ID        string         `json:"id,omitempty"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Timestamp string         `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
	Reviewed  bool           `json:"reviewed"`
	Note      string         `json:"note,omitempty"`
}

// HumanActions groups reviewer activity: free-text audit notes plus the
// ordered list of reviewer-performed events.
type HumanActions struct {
	Notes  string       `json:"notes"`
	Events []HumanEvent `json:"events"`
}

// HumanEvent is one reviewer-performed event.
type HumanEvent struct {
	ID        string         `json:"id,omitempty"`
	Type      string         `json:"type"`
	Actor     string         `json:"actor"`
	Timestamp string         `json:"timestamp"`
	Payload   map[string]any `json:"payload,omitempty"`
}
