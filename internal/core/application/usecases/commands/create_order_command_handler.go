package commands

import (
	"context"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/core/ports"
	"kayayo/internal/pkg/errs"
)

// CreateOrderCommandHandler persists the pending order handed over by
// checkout. Products are resolved to seller and price through the catalog,
// fees come from the configured schedule, and an order_created event goes
// to the outbox with the order.
type CreateOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	catalog    ports.CatalogReader
	fees       order.FeeSchedule
}

func NewCreateOrderCommandHandler(
	uowFactory OrderUoWFactory,
	catalog ports.CatalogReader,
	fees order.FeeSchedule,
) CreateOrderCommandHandler {
	return CreateOrderCommandHandler{
		uowFactory: uowFactory,
		catalog:    catalog,
		fees:       fees,
	}
}

// Handle creates the order. A product missing from the catalog yields
// errs.ErrObjectNotFound.
func (h CreateOrderCommandHandler) Handle(ctx context.Context, cmd CreateOrderCommand) (*order.Order, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	products, err := h.catalog.GetProducts(ctx, cmd.ProductIDs())
	if err != nil {
		return nil, err
	}

	items := make([]*order.Item, 0, len(cmd.Lines()))
	itemsTotal := kernel.ZeroMoney()
	for _, line := range cmd.Lines() {
		product, ok := products[line.ProductID]
		if !ok {
			return nil, errs.NewObjectNotFoundError("product", line.ProductID)
		}
		item, err := order.NewItem(kernel.NewUUID(), product.ID, product.SellerID, line.Quantity, product.UnitPrice, line.SubstitutionNote)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
		itemsTotal = itemsTotal.Add(item.Subtotal())
	}

	fees, err := h.fees.Apply(itemsTotal)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(cmd.OrderID(), cmd.Buyer().ID, cmd.Address(), fees, items, time.Now())
	if err != nil {
		return nil, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.OrderRepository().Add(ctx, o); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return o, nil
}
