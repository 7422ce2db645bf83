package order

import (
	"errors"
	"fmt"
	"strings"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/pkg/errs"
	"kayayo/internal/pkg/guard"
)

// ErrItemIsNotConstructed is returned for an Item built without NewItem/RestoreItem.
var ErrItemIsNotConstructed = errors.New("item must be created via NewItem or RestoreItem")

// Item is one line of an order, attributed to the seller that stocks the product.
//
// Two independent flags drive the handover gates:
//   - sellerReady: the seller has staged the item for the runner;
//   - runnerCollected: the runner physically holds the item.
//
// An item can only be collected after it is ready.
type Item struct {
	id               kernel.UUID
	productID        kernel.UUID
	sellerID         kernel.UUID
	quantity         int
	unitPrice        kernel.Money
	substitutionNote string
	sellerReady      bool
	runnerCollected  bool
	guard            guard.ConstructorGuard
}

// NewItem creates an item with both flags cleared.
//
// Example:
//
//	price, _ := kernel.MoneyFromString("12.00")
//	item, err := order.NewItem(kernel.NewUUID(), productID, sellerID, 3, price, "any brand is fine")
func NewItem(
	id kernel.UUID,
	productID kernel.UUID,
	sellerID kernel.UUID,
	quantity int,
	unitPrice kernel.Money,
	substitutionNote string,
) (*Item, error) {
	return RestoreItem(id, productID, sellerID, quantity, unitPrice, substitutionNote, false, false)
}

// RestoreItem rebuilds an item from storage, including its flags.
func RestoreItem(
	id kernel.UUID,
	productID kernel.UUID,
	sellerID kernel.UUID,
	quantity int,
	unitPrice kernel.Money,
	substitutionNote string,
	sellerReady bool,
	runnerCollected bool,
) (*Item, error) {
	item := &Item{
		substitutionNote: strings.TrimSpace(substitutionNote),
		sellerReady:      sellerReady,
		runnerCollected:  runnerCollected,
		guard:            guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		item.setID(id),
		item.setProductID(productID),
		item.setSellerID(sellerID),
		item.setQuantity(quantity),
		item.setUnitPrice(unitPrice),
	); err != nil {
		return nil, err
	}

	if runnerCollected && !sellerReady {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"item flags",
			fmt.Errorf("item %s is collected but not ready", id),
		)
	}

	return item, nil
}

func (i *Item) Validate() error {
	if i == nil {
		return ErrItemIsNotConstructed
	}
	return i.guard.Validate(ErrItemIsNotConstructed)
}

func (i *Item) ID() kernel.UUID          { return i.id }
func (i *Item) ProductID() kernel.UUID   { return i.productID }
func (i *Item) SellerID() kernel.UUID    { return i.sellerID }
func (i *Item) Quantity() int            { return i.quantity }
func (i *Item) UnitPrice() kernel.Money  { return i.unitPrice }
func (i *Item) SubstitutionNote() string { return i.substitutionNote }
func (i *Item) IsSellerReady() bool      { return i.sellerReady }
func (i *Item) IsRunnerCollected() bool  { return i.runnerCollected }

// Subtotal is unit price times quantity.
func (i *Item) Subtotal() kernel.Money {
	return i.unitPrice.Mul(i.quantity)
}

// IsOwnedBy reports whether sellerID stocks this item.
func (i *Item) IsOwnedBy(sellerID kernel.UUID) bool {
	return i.sellerID.IsEqual(sellerID)
}

func (i *Item) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	i.id = id
	return nil
}

func (i *Item) setProductID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("product id", err)
	}
	i.productID = id
	return nil
}

func (i *Item) setSellerID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("seller id", err)
	}
	i.sellerID = id
	return nil
}

func (i *Item) setQuantity(quantity int) error {
	if quantity <= 0 {
		return errs.NewValueIsInvalidErrorWithCause("quantity", fmt.Errorf("%d is not greater than 0", quantity))
	}
	i.quantity = quantity
	return nil
}

func (i *Item) setUnitPrice(price kernel.Money) error {
	if err := price.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("unit price", err)
	}
	i.unitPrice = price
	return nil
}
