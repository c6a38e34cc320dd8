package ports

import (
	"context"

	"supplychain/internal/core/domain/model/kernel"
)

// PartyDirectory resolves the location associated with a supplier, buyer or
// logistics provider. Unknown parties are reported with found == false, not
// as an error.
type PartyDirectory interface {
	Location(ctx context.Context, partyID string) (loc kernel.Location, found bool, err error)
}
