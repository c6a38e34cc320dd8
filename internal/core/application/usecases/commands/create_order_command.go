package commands

import (
	"errors"
	"strings"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/core/domain/model/order"
	"supplychain/internal/pkg/guard"
)

var ErrCreateOrderCommandIsNotConstructed = errors.New(
	"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
)

// CreateOrderParams carries the raw fields of a create request. Empty
// commitment strings mean the commitment is absent.
type CreateOrderParams struct {
	SupplierID         string
	BuyerID            string
	LogisticsID        string
	Quantity           int
	EncryptedPrice     string
	PriceCommitment    string
	QuantityCommitment string
	DestinationLat     float64
	DestinationLng     float64
}

// CreateOrderCommand represents a request to open a new purchase order between
// a supplier and a buyer.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(CreateOrderParams{
//	    SupplierID:      "acme",
//	    BuyerID:         "globex",
//	    Quantity:        100,
//	    EncryptedPrice:  "enc:9f2c...",
//	    PriceCommitment: "0x4e03657a...",
//	    DestinationLat:  52.52,
//	    DestinationLng:  13.40,
//	})
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	parties     order.Parties
	terms       order.Terms
	destination kernel.Location

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand validates every field and reports all problems at once.
func NewCreateOrderCommand(p CreateOrderParams) (CreateOrderCommand, error) {
	cmd := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	priceCommitment, priceErr := parseOptionalCommitment(p.PriceCommitment)
	quantityCommitment, quantityErr := parseOptionalCommitment(p.QuantityCommitment)
	if err := errors.Join(priceErr, quantityErr); err != nil {
		return CreateOrderCommand{}, err
	}

	parties, partiesErr := order.NewParties(p.SupplierID, p.BuyerID, p.LogisticsID)
	terms, termsErr := order.NewTerms(p.Quantity, p.EncryptedPrice, priceCommitment, quantityCommitment)
	destination, destinationErr := kernel.NewLocation(p.DestinationLat, p.DestinationLng)
	if err := errors.Join(partiesErr, termsErr, destinationErr); err != nil {
		return CreateOrderCommand{}, err
	}

	cmd.parties = parties
	cmd.terms = terms
	cmd.destination = destination
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

func (c CreateOrderCommand) Parties() order.Parties {
	return c.parties
}

func (c CreateOrderCommand) Terms() order.Terms {
	return c.terms
}

func (c CreateOrderCommand) Destination() kernel.Location {
	return c.destination
}

func parseOptionalCommitment(s string) (kernel.Commitment, error) {
	if strings.TrimSpace(s) == "" {
		return kernel.Commitment{}, nil
	}
	return kernel.CommitmentFromString(s)
}
