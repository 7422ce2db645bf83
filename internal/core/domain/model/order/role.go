package order

import (
	"fmt"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/pkg/errs"
)

// Role is the capacity an identity acts in. Identity resolution happens at the
// edge of the system; the core only receives (id, role) pairs.
type Role int

const (
	RoleUnknown Role = iota
	Buyer
	Seller
	Runner
	Courier
)

func getRoleStrings() map[Role]string {
	return map[Role]string{
		RoleUnknown: "unknown",
		Buyer:       "buyer",
		Seller:      "seller",
		Runner:      "runner",
		Courier:     "courier",
	}
}

// ParseRole converts "buyer", "seller", "runner" or "courier" into a Role.
func ParseRole(s string) (Role, error) {
	for role, name := range getRoleStrings() {
		if role != RoleUnknown && name == s {
			return role, nil
		}
	}
	return RoleUnknown, errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%q is not a valid role", s))
}

func (r Role) Validate() error {
	if r <= RoleUnknown || r > Courier {
		return errs.NewValueIsInvalidErrorWithCause("role", fmt.Errorf("%d is not a valid role", r))
	}
	return nil
}

func (r Role) String() string {
	if str, ok := getRoleStrings()[r]; ok {
		return str
	}
	return "unknown"
}

// Actor is an authenticated caller: who they are and which role they act in.
type Actor struct {
	ID   kernel.UUID
	Role Role
}

// NewActor validates both parts of the identity.
func NewActor(id kernel.UUID, role Role) (Actor, error) {
	if err := id.Validate(); err != nil {
		return Actor{}, err
	}
	if err := role.Validate(); err != nil {
		return Actor{}, err
	}
	return Actor{ID: id, Role: role}, nil
}

func (a Actor) String() string {
	return fmt.Sprintf("%s:%s", a.Role, a.ID)
}
