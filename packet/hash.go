package packet

import (
	"github.com/caselight/caselight/canonical"
)

// ExcludedHashFields returns the dot paths stripped from a packet before
// hashing: the wall-clock generation timestamp (not semantic) and the
// packet's own hash field (avoids self-reference). Exports echo this list so
// third parties can recompute the hash independently.
func ExcludedHashFields() []string {
	return []string{"metadata.generatedAt", "packetHash"}
}

// Hash computes the packet's content hash: lowercase hex SHA-256 over the
// canonical serialization with the volatile fields excluded. Two packets
// that are semantically identical hash identically regardless of field
// order; any semantic change produces a different hash.
func Hash(p *AuditPacket) (string, error) {
	return canonical.HashExcluding(p, ExcludedHashFields())
}

// Seal computes the packet's content hash and stores it on the packet.
// The stored hash does not feed its own input, so sealing is idempotent:
// sealing twice yields the same hash.
func Seal(p *AuditPacket) error {
	h, err := Hash(p)
	if err != nil {
		return err
	}
	p.PacketHash = h
	return nil
}
