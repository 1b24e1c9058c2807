// Package crypto holds the keys accounts sign transactions with. Only
// ed25519 is supported.
package crypto

import (
	"github.com/iov-one/lockdrop"
)

// ExtensionName is used for the conditions we get from signatures
const ExtensionName = "sigs"

// PubKey represents a crypto public key we use
type PubKey interface {
	Verify(message []byte, sig *Signature) bool
	Condition() lockdrop.Condition
}

// Signer is the functionality we use from a private key
// No serializing to support hardware devices as well.
type Signer interface {
	Sign(message []byte) (*Signature, error)
	PublicKey() *PublicKey
}

// PublicKey is the serialized form of a public key.
type PublicKey struct {
	Ed25519 []byte `json:"ed25519"`
}

// PrivateKey is the serialized form of a private key.
type PrivateKey struct {
	Ed25519 []byte `json:"ed25519"`
}

// Signature is the serialized form of a signature.
type Signature struct {
	Ed25519 []byte `json:"ed25519"`
}

// Address returns the address of the condition a signature of this key
// grants.
func (p *PublicKey) Address() lockdrop.Address {
	return p.Condition().Address()
}

// Equals returns true if both keys are the same.
func (p *PublicKey) Equals(o *PublicKey) bool {
	if p == nil || o == nil {
		return p == o
	}
	return string(p.Ed25519) == string(o.Ed25519)
}
