// Package diff compares two audit packets structurally.
//
// Array-position diffing is unsound here: the backend does not guarantee a
// stable insertion order for evidence or human actions across fetches. The
// engine therefore derives a stable, content-based signature per item (its
// id when present, a composite of identifying fields otherwise) and diffs by
// signature set membership. The one-per-packet decision record is compared
// field by field instead.
//
// Timeline events are append-only and high-volume, so the engine reports the
// set of newly appearing event types plus raw counts rather than
// manufacturing per-event entries.
package diff

import (
	"fmt"
	"sort"
	"strings"

	"github.com/caselight/caselight/packet"
)

// Identity names one side of a comparison.
type Identity struct {
	CaseID     string `json:"caseId"`
	DecisionID string `json:"decisionId"`
	PacketHash string `json:"packetHash,omitempty"`
}

// FieldChange reports one decision field that differs.
type FieldChange struct {
	Field string `json:"field"`
	Left  any    `json:"left"`
	Right any    `json:"right"`
}

// EvidenceChange reports an evidence item present on both sides whose
// comparison fields differ.
type EvidenceChange struct {
	Signature string          `json:"signature"`
	Left      packet.Evidence `json:"left"`
	Right     packet.Evidence `json:"right"`
}

// EvidenceChanges groups evidence set differences.
type EvidenceChanges struct {
	Added   []packet.Evidence `json:"added"`
	Removed []packet.Evidence `json:"removed"`
	Changed []EvidenceChange  `json:"changed"`
}

// HumanActionChanges groups human-action set differences. Human events are
// immutable once recorded, so only membership changes are reported.
type HumanActionChanges struct {
	Added   []packet.HumanEvent `json:"added"`
	Removed []packet.HumanEvent `json:"removed"`
}

// TimelineChanges reports the type-set delta and raw counts.
type TimelineChanges struct {
	AddedTypes []string `json:"addedTypes"`
	LeftCount  int      `json:"leftCount"`
	RightCount int      `json:"rightCount"`
}

// Changes is the full structural delta between two packets.
type Changes struct {
	Decision     []FieldChange      `json:"decision"`
	Evidence     EvidenceChanges    `json:"evidence"`
	HumanActions HumanActionChanges `json:"humanActions"`
	Timeline     TimelineChanges    `json:"timeline"`
}

// Summary counts the delta for quick triage.
type Summary struct {
	HasChanges          bool `json:"hasChanges"`
	DecisionChanges     int  `json:"decisionChanges"`
	EvidenceAdded       int  `json:"evidenceAdded"`
	EvidenceRemoved     int  `json:"evidenceRemoved"`
	EvidenceChanged     int  `json:"evidenceChanged"`
	HumanActionsAdded   int  `json:"humanActionsAdded"`
	HumanActionsRemoved int  `json:"humanActionsRemoved"`
	NewTimelineTypes    int  `json:"newTimelineTypes"`
}

// Result is the comparison artifact. It is ephemeral: the core never
// persists it, though callers may after Finalize stamps it for export.
type Result struct {
	Left       Identity `json:"left"`
	Right      Identity `json:"right"`
	Summary    Summary  `json:"summary"`
	Changes    Changes  `json:"changes"`
	ExportedAt string   `json:"exportedAt,omitempty"`
	DiffHash   string   `json:"diffHash,omitempty"`
}

// Compare diffs two audit packets. Packets from different cases are not
// rejected; whether such a comparison is meaningful is the caller's call.
func Compare(left, right *packet.AuditPacket) *Result {
	r := &Result{
		Left:  identityOf(left),
		Right: identityOf(right),
		Changes: Changes{
			Decision: diffDecision(left.Decision, right.Decision),
			Evidence: diffEvidence(left.EvidenceIndex, right.EvidenceIndex),
			HumanActions: diffHumanActions(
				left.HumanActions.Events, right.HumanActions.Events),
			Timeline: diffTimeline(left.TimelineEvents, right.TimelineEvents),
		},
	}

	r.Summary = Summary{
		DecisionChanges:     len(r.Changes.Decision),
		EvidenceAdded:       len(r.Changes.Evidence.Added),
		EvidenceRemoved:     len(r.Changes.Evidence.Removed),
		EvidenceChanged:     len(r.Changes.Evidence.Changed),
		HumanActionsAdded:   len(r.Changes.HumanActions.Added),
		HumanActionsRemoved: len(r.Changes.HumanActions.Removed),
		NewTimelineTypes:    len(r.Changes.Timeline.AddedTypes),
	}
	// A same-type event volume change would slip past the type-set diff, so
	// a raw count mismatch flags changes on its own.
	r.Summary.HasChanges = r.Summary.DecisionChanges > 0 ||
		r.Summary.EvidenceAdded > 0 ||
		r.Summary.EvidenceRemoved > 0 ||
		r.Summary.EvidenceChanged > 0 ||
		r.Summary.HumanActionsAdded > 0 ||
		r.Summary.HumanActionsRemoved > 0 ||
		r.Summary.NewTimelineTypes > 0 ||
		r.Changes.Timeline.LeftCount != r.Changes.Timeline.RightCount

	return r
}

func identityOf(p *packet.AuditPacket) Identity {
	return Identity{
		CaseID:     p.Metadata.CaseID,
		DecisionID: p.Metadata.DecisionID,
		PacketHash: p.PacketHash,
	}
}

// diffDecision compares the scalar decision fields directly. There is
// exactly one decision per packet, so signatures would add nothing.
func diffDecision(left, right packet.Decision) []FieldChange {
	changes := []FieldChange{}
	if left.Status != right.Status {
		changes = append(changes, FieldChange{Field: "status", Left: left.Status, Right: right.Status})
	}
	if left.RiskLevel != right.RiskLevel {
		changes = append(changes, FieldChange{Field: "riskLevel", Left: left.RiskLevel, Right: right.RiskLevel})
	}
	if left.Confidence != right.Confidence {
		changes = append(changes, FieldChange{Field: "confidence", Left: left.Confidence, Right: right.Confidence})
	}
	return changes
}

// EvidenceSignature derives the stable identity of an evidence item: its id
// when present, otherwise a composite of the fields that identify it.
func EvidenceSignature(e packet.Evidence) string {
	if e.ID != "" {
		return e.ID
	}
	return strings.Join([]string{e.Type, e.Source, e.Timestamp, evidenceTitle(e)}, "|")
}

// evidenceTitle pulls a human-readable title out of the nested detail
// fields, trying the keys backends actually use.
func evidenceTitle(e packet.Evidence) string {
	for _, key := range []string{"title", "name", "filename"} {
		if v, ok := e.Details[key]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s
			}
		}
	}
	return ""
}

func diffEvidence(left, right []packet.Evidence) EvidenceChanges {
	changes := EvidenceChanges{
		Added:   []packet.Evidence{},
		Removed: []packet.Evidence{},
		Changed: []EvidenceChange{},
	}

	leftBySig := make(map[string]packet.Evidence, len(left))
	for _, e := range left {
		leftBySig[EvidenceSignature(e)] = e
	}
	rightBySig := make(map[string]packet.Evidence, len(right))
	for _, e := range right {
		rightBySig[EvidenceSignature(e)] = e
	}

	for sig, r := range rightBySig {
		l, ok := leftBySig[sig]
		if !ok {
			changes.Added = append(changes.Added, r)
			continue
		}
		if evidenceDiffers(l, r) {
			changes.Changed = append(changes.Changed, EvidenceChange{Signature: sig, Left: l, Right: r})
		}
	}
	for sig, l := range leftBySig {
		if _, ok := rightBySig[sig]; !ok {
			changes.Removed = append(changes.Removed, l)
		}
	}

	sortEvidence(changes.Added)
	sortEvidence(changes.Removed)
	sort.Slice(changes.Changed, func(i, j int) bool {
		return changes.Changed[i].Signature < changes.Changed[j].Signature
	})
	return changes
}

// evidenceDiffers compares the fields that identify and describe an item.
// Only id-matched items can reach this comparison: for composite-signature
// items any change to these fields changes the signature itself and shows
// up as an add/remove pair instead.
func evidenceDiffers(l, r packet.Evidence) bool {
	return l.Type != r.Type ||
		l.Source != r.Source ||
		l.Timestamp != r.Timestamp ||
		evidenceTitle(l) != evidenceTitle(r)
}

func sortEvidence(items []packet.Evidence) {
	sort.Slice(items, func(i, j int) bool {
		return EvidenceSignature(items[i]) < EvidenceSignature(items[j])
	})
}

// HumanActionSignature derives the stable identity of a reviewer event: its
// id when present, otherwise type, timestamp, and the sorted payload key
// list. Payload values are deliberately left out: key shape identifies the
// event, values would make the signature churn on re-serialization noise.
func HumanActionSignature(e packet.HumanEvent) string {
	if e.ID != "" {
		return e.ID
	}
	keys := make([]string, 0, len(e.Payload))
	for k := range e.Payload {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return fmt.Sprintf("%s|%s|%s", e.Type, e.Timestamp, strings.Join(keys, ","))
}

func diffHumanActions(left, right []packet.HumanEvent) HumanActionChanges {
	changes := HumanActionChanges{
		Added:   []packet.HumanEvent{},
		Removed: []packet.HumanEvent{},
	}

	leftBySig := make(map[string]packet.HumanEvent, len(left))
	for _, e := range left {
		leftBySig[HumanActionSignature(e)] = e
	}
	rightBySig := make(map[string]packet.HumanEvent, len(right))
	for _, e := range right {
		rightBySig[HumanActionSignature(e)] = e
	}

	for sig, e := range rightBySig {
		if _, ok := leftBySig[sig]; !ok {
			changes.Added = append(changes.Added, e)
		}
	}
	for sig, e := range leftBySig {
		if _, ok := rightBySig[sig]; !ok {
			changes.Removed = append(changes.Removed, e)
		}
	}

	sortHumanEvents(changes.Added)
	sortHumanEvents(changes.Removed)
	return changes
}

func sortHumanEvents(items []packet.HumanEvent) {
	sort.Slice(items, func(i, j int) bool {
		return HumanActionSignature(items[i]) < HumanActionSignature(items[j])
	})
}

func diffTimeline(left, right []packet.TimelineEvent) TimelineChanges {
	leftTypes := make(map[string]bool, len(left))
	for _, e := range left {
		leftTypes[e.Type] = true
	}

	addedTypes := []string{}
	seen := make(map[string]bool)
	for _, e := range right {
		if !leftTypes[e.Type] && !seen[e.Type] {
			addedTypes = append(addedTypes, e.Type)
			seen[e.Type] = true
		}
	}
	sort.Strings(addedTypes)

	return TimelineChanges{
		AddedTypes: addedTypes,
		LeftCount:  len(left),
		RightCount: len(right),
	}
}
