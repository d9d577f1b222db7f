package canonical

import (
	"crypto/sha256"
	"encoding/hex"
)

// Digest computes the lowercase hex SHA-256 of a canonical string.
// Pure: identical input always yields the identical 64-character digest.
func Digest(canonical string) string {
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}

// HashExcluding canonicalizes v with the given exclusion paths and digests
// the result in one step. This is the standard way to derive a content hash
// for a record whose volatile fields must not feed its own hash.
func HashExcluding(v any, excludeFields []string) (string, error) {
	canonicalStr, err := CanonicalizeExcluding(v, excludeFields)
	if err != nil {
		return "", err
	}
	return Digest(canonicalStr), nil
}
