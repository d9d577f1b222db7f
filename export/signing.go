// Package export composes integrity, duplicate, and history data into a
// single exportable report, optionally signed so a third party can verify
// the export was not altered after assembly.
package export

import (
	"crypto/ed25519"
	"crypto/rand"
	"time"

	"github.com/mr-tron/base58"

	"github.com/caselight/caselight/errors"
)

// SignatureBlock binds an export to a signer identity. Value is the ed25519
// signature over the export's canonical hash; KeyID is the signer's did:key.
type SignatureBlock struct {
	Alg      string `json:"alg"`
	KeyID    string `json:"key_id"`
	Value    string `json:"value"`
	SignedAt string `json:"signed_at"`
}

// Signer holds the signing identity for exports. Key material management is
// the trust root's problem, not this package's: callers construct a Signer
// from whatever seed storage they operate.
type Signer struct {
	PrivateKey ed25519.PrivateKey
	DID        string
}

// NewSigner wraps an existing private key, deriving the did:key identity
// from its public half.
func NewSigner(priv ed25519.PrivateKey) *Signer {
	pub := priv.Public().(ed25519.PublicKey)
	return &Signer{PrivateKey: priv, DID: EncodeDIDKey(pub)}
}

// NewSignerFromSeed builds a Signer from a 32-byte ed25519 seed.
func NewSignerFromSeed(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, errors.Newf("signing seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	return NewSigner(ed25519.NewKeyFromSeed(seed)), nil
}

// GenerateSigner creates a fresh random signing identity.
func GenerateSigner() (*Signer, error) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, errors.Wrap(err, "failed to generate signing key")
	}
	return NewSigner(priv), nil
}

// Sign produces a signature block over a canonical hash.
func (s *Signer) Sign(canonicalHash string) SignatureBlock {
	sig := ed25519.Sign(s.PrivateKey, []byte(canonicalHash))
	return SignatureBlock{
		Alg:      "ed25519",
		KeyID:    s.DID,
		Value:    base58.Encode(sig),
		SignedAt: time.Now().UTC().Format(time.RFC3339),
	}
}

// verifyBlock checks a signature block against a canonical hash.
func verifyBlock(block *SignatureBlock, canonicalHash string) error {
	if block == nil {
		return errors.Wrap(errors.ErrSignature, "export is unsigned")
	}
	if block.Alg != "ed25519" {
		return errors.Wrapf(errors.ErrSignature, "unsupported signature algorithm %q", block.Alg)
	}

	pub, err := DecodeDIDKey(block.KeyID)
	if err != nil {
		return errors.Wrapf(err, "failed to decode signer key id %s", block.KeyID)
	}

	sig, err := base58.Decode(block.Value)
	if err != nil {
		return errors.Wrap(errors.ErrSignature, "signature value is not valid base58")
	}

	if !ed25519.Verify(pub, []byte(canonicalHash), sig) {
		return errors.Wrapf(errors.ErrSignature, "signature from %s does not match export hash", block.KeyID)
	}
	return nil
}

// EncodeDIDKey renders an ed25519 public key as a did:key identifier:
// did:key:z + base58btc(0xed 0x01 + 32-byte pubkey).
func EncodeDIDKey(pub ed25519.PublicKey) string {
	buf := make([]byte, 2+len(pub))
	buf[0] = 0xed
	buf[1] = 0x01
	copy(buf[2:], pub)
	return "did:key:z" + base58.Encode(buf)
}

// DecodeDIDKey extracts the ed25519 public key from a did:key:z... identifier.
func DecodeDIDKey(did string) (ed25519.PublicKey, error) {
	const prefix = "did:key:z"
	if len(did) < len(prefix) || did[:len(prefix)] != prefix {
		return nil, errors.Newf("invalid did:key format: %s", did)
	}

	decoded, err := base58.Decode(did[len(prefix):])
	if err != nil {
		return nil, errors.Wrapf(err, "failed to base58-decode did:key %s", did)
	}

	// Expect multicodec prefix 0xed 0x01 followed by 32-byte ed25519 public key
	if len(decoded) != 34 {
		return nil, errors.Newf("unexpected decoded length %d for did:key %s (expected 34)", len(decoded), did)
	}
	if decoded[0] != 0xed || decoded[1] != 0x01 {
		return nil, errors.Newf("unexpected multicodec prefix [%x %x] for did:key %s", decoded[0], decoded[1], did)
	}

	return ed25519.PublicKey(decoded[2:]), nil
}
