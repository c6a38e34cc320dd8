package services

import (
	"supplychain/internal/core/domain/model/kernel"

	"golang.org/x/crypto/sha3"
)

// CommitmentVerifier binds a secret value to a nonce with a Keccak-256 digest.
// The digest is computed over the concatenation value||nonce, the same
// construction a Solidity contract gets from keccak256(abi.encodePacked(value, nonce)).
//
// Example:
//
//	verifier := services.NewCommitmentVerifier()
//	c := verifier.Commit("1250.00", "n-4f1c")
//	ok := verifier.Verify("1250.00", "n-4f1c", c) // true
type CommitmentVerifier struct{}

// NewCommitmentVerifier creates a verifier. It is stateless and safe for concurrent use.
func NewCommitmentVerifier() CommitmentVerifier {
	return CommitmentVerifier{}
}

// Commit returns the Keccak-256 commitment of value followed by nonce.
// Clients compute the same digest off-line when they create an order.
func (CommitmentVerifier) Commit(value, nonce string) kernel.Commitment {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(value))
	h.Write([]byte(nonce))

	// Keccak-256 always yields kernel.CommitmentSize bytes.
	c, _ := kernel.NewCommitment(h.Sum(nil))
	return c
}

// Verify recomputes the commitment and compares it with stored in constant
// time. An unconstructed stored commitment never verifies.
func (v CommitmentVerifier) Verify(value, nonce string, stored kernel.Commitment) bool {
	if stored.Validate() != nil {
		return false
	}
	return v.Commit(value, nonce).IsEqual(stored)
}
