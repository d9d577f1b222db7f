package packet

import (
	"strings"
	"time"
)

// CaseItem is the case summary record supplied by the case-management
// backend. The core treats it as opaque input; only the fields snapshotted
// into the packet are declared.
type CaseItem struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Status    string `json:"status"`
	RiskLevel string `json:"riskLevel"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// DecisionOutput is the decision engine's already-computed output record.
type DecisionOutput struct {
	Status      string     `json:"status"`
	Confidence  float64    `json:"confidence"`
	RiskLevel   string     `json:"riskLevel"`
	LastUpdated string     `json:"lastUpdated"`
	Summary     string     `json:"summary"`
	TraceID     string     `json:"traceId"`
	RuleTrace   []RuleEval `json:"ruleTrace"`
	Notes       string     `json:"notes"`
}

// EvidenceItem is one evidence record from the backend, before reviewer
// annotations are folded in.
type EvidenceItem struct {
	ID        string         `json:"id,omitempty"`
	Type      string         `json:"type"`
	Source    string         `json:"source"`
	Timestamp string         `json:"timestamp"`
	Details   map[string]any `json:"details,omitempty"`
}

// Annotation is a reviewer's mark on one evidence item, keyed by evidence id.
type Annotation struct {
	Reviewed bool   `json:"reviewed"`
	Note     string `json:"note,omitempty"`
}

// Build assembles an AuditPacket from collaborator data. It is a pure
// mapping: no hashing, no persistence. Hashing is a separate explicit step
// (see Hash) so callers choose when to snapshot.
//
// Re-running Build on unchanged inputs reproduces the same decision id,
// since the id is derived from the case id and the decision's last-updated
// timestamp rather than from randomness.
func Build(caseItem CaseItem, decision DecisionOutput, timeline []TimelineEvent, evidence []EvidenceItem, annotations map[string]Annotation, notes string, humanEvents []HumanEvent) *AuditPacket {
	decisionID := DeriveDecisionID(caseItem.ID, decision.LastUpdated)

	evidenceIndex := make([]Evidence, 0, len(evidence))
	for _, item := range evidence {
		ev := Evidence{
			ID:        item.ID,
			Type:      item.Type,
			Source:    item.Source,
			Timestamp: item.Timestamp,
			Details:   item.Details,
		}
		if ann, ok := annotations[item.ID]; ok && item.ID != "" {
			ev.Reviewed = ann.Reviewed
			ev.Note = ann.Note
		}
		evidenceIndex = append(evidenceIndex, ev)
	}

	if timeline == nil {
		timeline = []TimelineEvent{}
	}
	if humanEvents == nil {
		humanEvents = []HumanEvent{}
	}

	ruleTrace := decision.RuleTrace
	if ruleTrace == nil {
		ruleTrace = []RuleEval{}
	}

	return &AuditPacket{
		Metadata: Metadata{
			CaseID:      caseItem.ID,
			DecisionID:  decisionID,
			GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		},
		CaseSnapshot: CaseSnapshot{
			Title:     caseItem.Title,
			Status:    caseItem.Status,
			RiskLevel: caseItem.RiskLevel,
			CreatedAt: caseItem.CreatedAt,
			UpdatedAt: caseItem.UpdatedAt,
		},
		Decision: Decision{
			DecisionID:  decisionID,
			Status:      decision.Status,
			Confidence:  decision.Confidence,
			RiskLevel:   decision.RiskLevel,
			LastUpdated: decision.LastUpdated,
		},
		Explainability: Explainability{
			Summary:   decision.Summary,
			TraceID:   decision.TraceID,
			RuleTrace: ruleTrace,
			Notes:     decision.Notes,
		},
		TimelineEvents: timeline,
		EvidenceIndex:  evidenceIndex,
		HumanActions: HumanActions{
			Notes:  notes,
			Events: humanEvents,
		},
	}
}

// DeriveDecisionID builds the deterministic decision identifier from the case
// id and the decision's last-updated timestamp. Separators are stripped from
// the timestamp so the id is filesystem and URL safe.
func DeriveDecisionID(caseID, lastUpdated string) string {
	sanitized := sanitizeTimestamp(lastUpdated)
	if sanitized == "" {
		sanitized = "unknown"
	}
	return caseID + "-" + sanitized
}

// sanitizeTimestamp keeps only alphanumeric characters from a timestamp
// string, dropping separators like '-', ':', '.' and '+'.
func sanitizeTimestamp(ts string) string {
	var sb strings.Builder
	for _, r := range ts {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}
