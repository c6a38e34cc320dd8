package kernel

import (
	"fmt"

	"supplychain/internal/pkg/errs"

	"github.com/google/uuid"
)

// ErrUUIDIsNotConstructed is returned when validating a zero-value UUID.
var ErrUUIDIsNotConstructed = errs.NewValueIsRequiredError(
	"UUID must be created via NewUUID, NewTimeOrderedUUID or UUIDFromString")

// UUID is an immutable identifier value object backed by github.com/google/uuid.
// Orders use random (v4) identifiers; events use time-ordered (v7) identifiers so
// that lexical order follows creation order.
//
// The zero value is invalid.
type UUID struct {
	id uuid.UUID
}

// NewUUID generates a random version 4 UUID.
func NewUUID() UUID {
	return UUID{id: uuid.New()}
}

// NewTimeOrderedUUID generates a version 7 UUID whose leading bits carry the
// current Unix time in milliseconds.
func NewTimeOrderedUUID() UUID {
	id, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails when the random source fails.
		return NewUUID()
	}
	return UUID{id: id}
}

// UUIDFromString parses a UUID from its canonical string representation.
//
// Example:
//
//	id, err := kernel.UUIDFromString(c.Param("id"))
//	if err != nil {
//	    return errs.NewValueIsInvalidErrorWithCause("orderID", err)
//	}
func UUIDFromString(s string) (UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return UUID{}, fmt.Errorf("invalid UUID format: %w", err)
	}

	parsed := UUID{id: id}
	if err = parsed.Validate(); err != nil {
		return UUID{}, err
	}
	return parsed, nil
}

// String returns the canonical 36 character form.
func (u UUID) String() string {
	return u.id.String()
}

// Bytes returns the underlying google UUID.
func (u UUID) Bytes() uuid.UUID {
	return u.id
}

// IsEqual reports whether both identifiers are the same.
func (u UUID) IsEqual(other UUID) bool {
	return u.id == other.id
}

// Validate fails for the zero value.
func (u UUID) Validate() error {
	if u.id == uuid.Nil {
		return ErrUUIDIsNotConstructed
	}
	return nil
}
