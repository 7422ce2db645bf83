package kernel

import (
	"errors"
	"strings"

	"kayayo/internal/pkg/errs"
	"kayayo/internal/pkg/guard"
)

// ErrAddressIsNotConstructed is returned when validating a zero-value Address.
var ErrAddressIsNotConstructed = errs.NewValueIsRequiredError("address must be created via NewAddress")

// Address is the delivery destination captured at checkout. It never changes
// after the order is created.
type Address struct { //nolint:recvcheck //using for validation
	street   string
	city     string
	landmark string
	guard    guard.ConstructorGuard
}

// NewAddress trims its inputs and requires street and city.
func NewAddress(street, city, landmark string) (Address, error) {
	a := Address{
		landmark: strings.TrimSpace(landmark),
		guard:    guard.NewConstructorGuard(),
	}
	if err := errors.Join(a.setStreet(street), a.setCity(city)); err != nil {
		return Address{}, err
	}
	return a, nil
}

// Validate rejects zero values that bypassed NewAddress.
func (a Address) Validate() error {
	return a.guard.Validate(ErrAddressIsNotConstructed)
}

func (a Address) Street() string   { return a.street }
func (a Address) City() string     { return a.city }
func (a Address) Landmark() string { return a.landmark }

// String renders a single-line label.
func (a Address) String() string {
	parts := []string{a.street, a.city}
	if a.landmark != "" {
		parts = append(parts, "near "+a.landmark)
	}
	return strings.Join(parts, ", ")
}

func (a *Address) setStreet(street string) error {
	street = strings.TrimSpace(street)
	if street == "" {
		return errs.NewValueIsRequiredError("street")
	}
	a.street = street
	return nil
}

func (a *Address) setCity(city string) error {
	city = strings.TrimSpace(city)
	if city == "" {
		return errs.NewValueIsRequiredError("city")
	}
	a.city = city
	return nil
}
