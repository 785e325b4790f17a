package ledger

import (
	"crypto/ed25519"
	"fmt"

	"github.com/mr-tron/base58"

	"github.com/veritrace/supplyview/internal/domain"
)

// Signer is the opaque signing capability bound to a signing-mode handle.
// The view layer never inspects private key material; it only asks for a
// signature over a proposed transaction message.
type Signer interface {
	// Identity returns the signer's public address.
	Identity() domain.Address

	// Sign produces a 64-byte signature over the message bytes.
	Sign(message []byte) ([]byte, error)
}

// keypairSigner signs with an in-process ed25519 keypair.
type keypairSigner struct {
	identity domain.Address
	key      ed25519.PrivateKey
}

// NewKeypairSigner wraps an ed25519 private key as a Signer.
func NewKeypairSigner(key ed25519.PrivateKey) (Signer, error) {
	if len(key) != ed25519.PrivateKeySize {
		return nil, &domain.ValidationError{
			Reason: fmt.Sprintf("invalid keypair length %d, want %d", len(key), ed25519.PrivateKeySize),
		}
	}
	pub, ok := key.Public().(ed25519.PublicKey)
	if !ok {
		return nil, &domain.ValidationError{Reason: "keypair has no ed25519 public half"}
	}
	identity, err := domain.AddressFromBytes(pub)
	if err != nil {
		return nil, err
	}
	return &keypairSigner{identity: identity, key: key}, nil
}

// ParseKeypair decodes a base58-encoded 64-byte keypair (seed followed by
// public key, the ledger's standard export format) into a Signer.
func ParseKeypair(encoded string) (Signer, error) {
	raw, err := base58.Decode(encoded)
	if err != nil {
		return nil, &domain.ValidationError{Reason: fmt.Sprintf("invalid keypair encoding: %v", err)}
	}
	return NewKeypairSigner(ed25519.PrivateKey(raw))
}

func (s *keypairSigner) Identity() domain.Address {
	return s.identity
}

func (s *keypairSigner) Sign(message []byte) ([]byte, error) {
	return ed25519.Sign(s.key, message), nil
}
