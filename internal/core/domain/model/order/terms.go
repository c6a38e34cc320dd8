package order

import (
	"errors"
	"fmt"
	"strings"

	"supplychain/internal/core/domain/model/kernel"
	"supplychain/internal/pkg/errs"
	"supplychain/internal/pkg/guard"
)

// ErrTermsIsNotConstructed is returned when Terms was not created through NewTerms.
var ErrTermsIsNotConstructed = errs.NewValueIsRequiredError("terms must be created via NewTerms constructor")

// Terms are the commercial terms of an order. The encrypted price is carried as
// an opaque blob and never decrypted here. Commitments are optional; pass the
// zero kernel.Commitment to omit one.
type Terms struct {
	quantity           int
	encryptedPrice     string
	priceCommitment    kernel.Commitment
	quantityCommitment kernel.Commitment
	guard              guard.ConstructorGuard
}

// NewTerms creates validated commercial terms.
//
// Parameters:
//   - quantity: number of units, at least 1
//   - encryptedPrice: non-empty opaque price blob
//   - priceCommitment: optional digest the buyer's approval proof is checked against
//   - quantityCommitment: optional digest used when no price commitment is given
//
// Returns:
//   - Terms: the validated terms
//   - error: every invalid argument joined
//
// Example:
//
//	c, _ := kernel.CommitmentFromString(req.PriceCommitment)
//	terms, err := order.NewTerms(req.Quantity, req.EncryptedPrice, c, kernel.Commitment{})
func NewTerms(
	quantity int,
	encryptedPrice string,
	priceCommitment kernel.Commitment,
	quantityCommitment kernel.Commitment,
) (Terms, error) {
	t := Terms{
		priceCommitment:    priceCommitment,
		quantityCommitment: quantityCommitment,
		guard:              guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		t.setQuantity(quantity),
		t.setEncryptedPrice(encryptedPrice),
	); err != nil {
		return Terms{}, err
	}

	return t, nil
}

func (t Terms) Validate() error {
	return t.guard.Validate(ErrTermsIsNotConstructed)
}

func (t Terms) Quantity() int {
	return t.quantity
}

func (t Terms) EncryptedPrice() string {
	return t.encryptedPrice
}

// PriceCommitment returns the price commitment and whether one was given.
func (t Terms) PriceCommitment() (kernel.Commitment, bool) {
	return t.priceCommitment, t.priceCommitment.Validate() == nil
}

func (t Terms) QuantityCommitment() (kernel.Commitment, bool) {
	return t.quantityCommitment, t.quantityCommitment.Validate() == nil
}

func (t *Terms) setQuantity(quantity int) error {
	if quantity < 1 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is less than 1", quantity))
	}
	t.quantity = quantity
	return nil
}

func (t *Terms) setEncryptedPrice(blob string) error {
	if strings.TrimSpace(blob) == "" {
		return errs.NewValueIsRequiredError("encryptedPrice")
	}
	t.encryptedPrice = blob
	return nil
}
