package kernel

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"

	"supplychain/internal/pkg/errs"
)

// CommitmentSize is the digest length in bytes.
const CommitmentSize = 32

// ErrCommitmentIsNotConstructed is returned by Validate on the zero Commitment.
var ErrCommitmentIsNotConstructed = errs.NewValueIsRequiredError(
	"commitment must be created via NewCommitment or CommitmentFromString")

// Commitment is a 32 byte one-way digest binding a secret value and a nonce.
// Its text form is 0x-prefixed lowercase hex.
type Commitment struct {
	digest      [CommitmentSize]byte
	constructed bool
}

// NewCommitment wraps a raw digest. The bytes are copied.
//
// Parameters:
//   - digest: exactly CommitmentSize bytes
//
// Returns:
//   - Commitment: the wrapped digest
//   - error: errs.ValueIsInvalidError for any other length
//
// Example:
//
//	sum := sha3.Sum256(append([]byte(value), nonce...))
//	c, err := kernel.NewCommitment(sum[:])
func NewCommitment(digest []byte) (Commitment, error) {
	if len(digest) != CommitmentSize {
		return Commitment{}, errs.NewValueIsInvalidErrorWithCause(
			"commitment", fmt.Errorf("digest must be %d bytes, got %d", CommitmentSize, len(digest)))
	}

	c := Commitment{constructed: true}
	copy(c.digest[:], digest)
	return c, nil
}

// CommitmentFromString parses a hex digest with or without the 0x prefix.
func CommitmentFromString(s string) (Commitment, error) {
	trimmed := strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	raw, err := hex.DecodeString(trimmed)
	if err != nil {
		return Commitment{}, errs.NewValueIsInvalidErrorWithCause("commitment", err)
	}
	return NewCommitment(raw)
}

func (c Commitment) Validate() error {
	if !c.constructed {
		return ErrCommitmentIsNotConstructed
	}
	return nil
}

func (c Commitment) String() string {
	return "0x" + hex.EncodeToString(c.digest[:])
}

func (c Commitment) Bytes() []byte {
	out := make([]byte, CommitmentSize)
	copy(out, c.digest[:])
	return out
}

// IsEqual compares digests in constant time.
func (c Commitment) IsEqual(other Commitment) bool {
	if !c.constructed || !other.constructed {
		return false
	}
	return subtle.ConstantTimeCompare(c.digest[:], other.digest[:]) == 1
}
