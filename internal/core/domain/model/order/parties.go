package order

import (
	"errors"
	"fmt"
	"strings"

	"supplychain/internal/pkg/errs"
	"supplychain/internal/pkg/guard"
)

// Role selects one of the parties of an order.
type Role string

const (
	RoleSupplier  Role = "supplier"
	RoleBuyer     Role = "buyer"
	RoleLogistics Role = "logistics"
)

// ParseRole converts a role name into a Role, ignoring case and surrounding
// whitespace.
//
// Returns:
//   - Role: one of RoleSupplier, RoleBuyer, RoleLogistics
//   - error: errs.ValueIsInvalidError for any other name
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleSupplier, RoleBuyer, RoleLogistics:
		return r, nil
	default:
		return "", errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", s))
	}
}

// ErrPartiesIsNotConstructed is returned when Parties was not created through NewParties.
var ErrPartiesIsNotConstructed = errs.NewValueIsRequiredError("parties must be created via NewParties constructor")

// Parties holds the opaque identifiers of everyone involved in an order.
// Supplier and buyer are mandatory, logistics is optional.
type Parties struct {
	supplier  string
	buyer     string
	logistics string
	guard     guard.ConstructorGuard
}

// NewParties creates the party set of an order. Identifiers are trimmed and
// not resolved against the directory here; the engine checks locations later.
//
// Parameters:
//   - supplierID: required
//   - buyerID: required
//   - logisticsID: optional, "" when no provider is assigned
//
// Returns:
//   - Parties: the validated party set
//   - error: errs.ValueIsRequiredError for each missing mandatory party
//
// Example:
//
//	parties, err := order.NewParties("acme-steel", "northwind", "")
func NewParties(supplierID, buyerID, logisticsID string) (Parties, error) {
	p := Parties{guard: guard.NewConstructorGuard()}

	if err := errors.Join(
		p.setSupplier(supplierID),
		p.setBuyer(buyerID),
	); err != nil {
		return Parties{}, err
	}
	p.logistics = strings.TrimSpace(logisticsID)

	return p, nil
}

// Validate reports whether p was built by NewParties.
func (p Parties) Validate() error {
	return p.guard.Validate(ErrPartiesIsNotConstructed)
}

func (p Parties) Supplier() string {
	return p.supplier
}

func (p Parties) Buyer() string {
	return p.buyer
}

// Logistics returns an empty string when no logistics provider is assigned.
func (p Parties) Logistics() string {
	return p.logistics
}

// Involves reports whether partyID fills role.
func (p Parties) Involves(role Role, partyID string) bool {
	if partyID == "" {
		return false
	}
	switch role {
	case RoleSupplier:
		return p.supplier == partyID
	case RoleBuyer:
		return p.buyer == partyID
	case RoleLogistics:
		return p.logistics == partyID
	default:
		return false
	}
}

// setSupplier sets the supplier with validation.
// This is a private method used only during construction.
func (p *Parties) setSupplier(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errs.NewValueIsRequiredError("supplierID")
	}
	p.supplier = id
	return nil
}

func (p *Parties) setBuyer(id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return errs.NewValueIsRequiredError("buyerID")
	}
	p.buyer = id
	return nil
}
