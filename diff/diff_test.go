package diff

import (
	"testing"

	"github.com/caselight/caselight/packet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func basePacket() *packet.AuditPacket {
	return &packet.AuditPacket{
		Metadata: packet.Metadata{
			CaseID:      "case-9",
			DecisionID:  "case-9-20260301T120000Z",
			GeneratedAt: "2026-03-05T00:00:00Z",
		},
		CaseSnapshot: packet.CaseSnapshot{Status: "in_review", RiskLevel: "medium"},
		Decision: packet.Decision{
			DecisionID: "case-9-20260301T120000Z",
			Status:     "approved",
			Confidence: 0.9,
			RiskLevel:  "medium",
		},
		TimelineEvents: []packet.TimelineEvent{
			{ID: "t1", Type: "case_created", Timestamp: "2026-03-01T09:00:00Z"},
			{ID: "t2", Type: "decision_run", Timestamp: "2026-03-01T12:00:00Z"},
		},
		EvidenceIndex: []packet.Evidence{
			{ID: "ev-1", Type: "document", Source: "upload", Timestamp: "2026-03-01T10:00:00Z"},
		},
		HumanActions: packet.HumanActions{
			Events: []packet.HumanEvent{
				{ID: "ha-1", Type: "status_change", Actor: "alice", Timestamp: "2026-03-01T11:00:00Z"},
			},
		},
	}
}

func clonePacket(t *testing.T, p *packet.AuditPacket) *packet.AuditPacket {
	t.Helper()
	c := *p
	c.TimelineEvents = append([]packet.TimelineEvent(nil), p.TimelineEvents...)
	c.EvidenceIndex = append([]packet.Evidence(nil), p.EvidenceIndex...)
	c.HumanActions.Events = append([]packet.HumanEvent(nil), p.HumanActions.Events...)
	return &c
}

func TestCompareIdenticalPackets(t *testing.T) {
	a := basePacket()
	r := Compare(a, clonePacket(t, a))

	assert.False(t, r.Summary.HasChanges)
	assert.Empty(t, r.Changes.Decision)
	assert.Empty(t, r.Changes.Evidence.Added)
	assert.Empty(t, r.Changes.Evidence.Removed)
	assert.Empty(t, r.Changes.Evidence.Changed)
	assert.Empty(t, r.Changes.HumanActions.Added)
	assert.Empty(t, r.Changes.HumanActions.Removed)
	assert.Empty(t, r.Changes.Timeline.AddedTypes)
}

func TestCompareEvidenceAddedAndSymmetry(t *testing.T) {
	a := basePacket()
	b := clonePacket(t, a)
	extra := packet.Evidence{ID: "ev-2", Type: "screenshot", Source: "portal", Timestamp: "2026-03-02T10:00:00Z"}
	b.EvidenceIndex = append(b.EvidenceIndex, extra)

	forward := Compare(a, b)
	require.Len(t, forward.Changes.Evidence.Added, 1)
	assert.Equal(t, "ev-2", forward.Changes.Evidence.Added[0].ID)
	assert.Empty(t, forward.Changes.Evidence.Removed)
	assert.True(t, forward.Summary.HasChanges)

	backward := Compare(b, a)
	require.Len(t, backward.Changes.Evidence.Removed, 1)
	assert.Equal(t, "ev-2", backward.Changes.Evidence.Removed[0].ID)
	assert.Empty(t, backward.Changes.Evidence.Added)
}

func TestCompareEvidenceOrderDoesNotMatter(t *testing.T) {
	a := basePacket()
	a.EvidenceIndex = []packet.Evidence{
		{ID: "ev-1", Type: "document", Source: "upload", Timestamp: "2026-03-01T10:00:00Z"},
		{ID: "ev-2", Type: "screenshot", Source: "portal", Timestamp: "2026-03-02T10:00:00Z"},
	}
	b := clonePacket(t, a)
	b.EvidenceIndex = []packet.Evidence{b.EvidenceIndex[1], b.EvidenceIndex[0]}

	r := Compare(a, b)
	assert.False(t, r.Summary.HasChanges, "reordering a fetch must not register as change")
}

func TestCompareEvidenceChanged(t *testing.T) {
	a := basePacket()
	b := clonePacket(t, a)
	b.EvidenceIndex[0].Source = "email"

	r := Compare(a, b)
	require.Len(t, r.Changes.Evidence.Changed, 1)
	change := r.Changes.Evidence.Changed[0]
	assert.Equal(t, "ev-1", change.Signature)
	assert.Equal(t, "upload", change.Left.Source)
	assert.Equal(t, "email", change.Right.Source)
	assert.True(t, r.Summary.HasChanges)
}

func TestEvidenceSignatureCompositeFallback(t *testing.T) {
	withID := packet.Evidence{ID: "ev-1", Type: "document"}
	assert.Equal(t, "ev-1", EvidenceSignature(withID))

	anonymous := packet.Evidence{
		Type: "document", Source: "upload", Timestamp: "2026-03-01T10:00:00Z",
		Details: map[string]any{"title": "registration.pdf"},
	}
	assert.Equal(t, "document|upload|2026-03-01T10:00:00Z|registration.pdf", EvidenceSignature(anonymous))

	// The title falls back through name and filename detail keys.
	named := anonymous
	named.Details = map[string]any{"filename": "scan.png"}
	assert.Equal(t, "document|upload|2026-03-01T10:00:00Z|scan.png", EvidenceSignature(named))
}

func TestCompareDecisionFields(t *testing.T) {
	a := basePacket()
	b := clonePacket(t, a)
	b.Decision.Status = "blocked"
	b.Decision.Confidence = 0.4

	r := Compare(a, b)
	require.Len(t, r.Changes.Decision, 2)
	assert.Equal(t, "status", r.Changes.Decision[0].Field)
	assert.Equal(t, "approved", r.Changes.Decision[0].Left)
	assert.Equal(t, "blocked", r.Changes.Decision[0].Right)
	assert.Equal(t, "confidence", r.Changes.Decision[1].Field)
	assert.Equal(t, 0.9, r.Changes.Decision[1].Left)
	assert.Equal(t, 0.4, r.Changes.Decision[1].Right)
}

func TestCompareHumanActions(t *testing.T) {
	a := basePacket()
	b := clonePacket(t, a)
	b.HumanActions.Events = append(b.HumanActions.Events, packet.HumanEvent{
		Type: "note_added", Actor: "bob", Timestamp: "2026-03-03T09:00:00Z",
		Payload: map[string]any{"note": "checked registry", "caseId": "case-9"},
	})

	r := Compare(a, b)
	require.Len(t, r.Changes.HumanActions.Added, 1)
	assert.Equal(t, "note_added", r.Changes.HumanActions.Added[0].Type)
	assert.Empty(t, r.Changes.HumanActions.Removed)
}

func TestHumanActionSignatureUsesSortedPayloadKeys(t *testing.T) {
	e := packet.HumanEvent{
		Type: "note_added", Timestamp: "2026-03-03T09:00:00Z",
		Payload: map[string]any{"note": "x", "caseId": "c"},
	}
	assert.Equal(t, "note_added|2026-03-03T09:00:00Z|caseId,note", HumanActionSignature(e))

	withID := packet.HumanEvent{ID: "ha-1", Type: "note_added"}
	assert.Equal(t, "ha-1", HumanActionSignature(withID))
}

func TestCompareTimelineTypeSet(t *testing.T) {
	a := basePacket()
	b := clonePacket(t, a)
	b.TimelineEvents = append(b.TimelineEvents,
		packet.TimelineEvent{ID: "t3", Type: "evidence_uploaded", Timestamp: "2026-03-02T10:00:00Z"},
		packet.TimelineEvent{ID: "t4", Type: "evidence_uploaded", Timestamp: "2026-03-02T11:00:00Z"},
	)

	r := Compare(a, b)
	assert.Equal(t, []string{"evidence_uploaded"}, r.Changes.Timeline.AddedTypes)
	assert.Equal(t, 2, r.Changes.Timeline.LeftCount)
	assert.Equal(t, 4, r.Changes.Timeline.RightCount)
	assert.True(t, r.Summary.HasChanges)
}

func TestCompareTimelineCountMismatchAlone(t *testing.T) {
	// Same type set, more events of an existing type: the type-set diff is
	// blind to this, the raw count rule is not.
	a := basePacket()
	b := clonePacket(t, a)
	b.TimelineEvents = append(b.TimelineEvents,
		packet.TimelineEvent{ID: "t3", Type: "decision_run", Timestamp: "2026-03-02T10:00:00Z"})

	r := Compare(a, b)
	assert.Empty(t, r.Changes.Timeline.AddedTypes)
	assert.True(t, r.Summary.HasChanges)
}

func TestCompareUnrelatedCasesStillDiffs(t *testing.T) {
	a := basePacket()
	b := basePacket()
	b.Metadata.CaseID = "case-10"
	b.Decision.Status = "blocked"

	r := Compare(a, b)
	assert.Equal(t, "case-9", r.Left.CaseID)
	assert.Equal(t, "case-10", r.Right.CaseID)
	assert.True(t, r.Summary.HasChanges)
}

func TestFinalizeStampsStableHash(t *testing.T) {
	a := basePacket()
	b := clonePacket(t, a)
	b.Decision.Status = "blocked"

	r := Compare(a, b)
	require.NoError(t, Finalize(r))
	first := r.DiffHash
	require.Len(t, first, 64)
	require.NotEmpty(t, r.ExportedAt)

	// Re-finalizing changes only the wall clock, never the hash.
	require.NoError(t, Finalize(r))
	assert.Equal(t, first, r.DiffHash)

	// The stamped result hashes back to its own DiffHash.
	recomputed, err := Hash(r)
	require.NoError(t, err)
	assert.Equal(t, first, recomputed)
}
