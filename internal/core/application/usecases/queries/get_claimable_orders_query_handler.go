package queries

import (
	"context"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type GetClaimableOrdersQueryHandler struct {
	db *gorm.DB
}

func NewGetClaimableOrdersQueryHandler(db *gorm.DB) GetClaimableOrdersQueryHandler {
	return GetClaimableOrdersQueryHandler{db: db}
}

func (h GetClaimableOrdersQueryHandler) Handle(
	ctx context.Context,
	query GetClaimableOrdersQuery,
) ([]GetClaimableOrdersQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	status, slot := order.SellerConfirmed, "runner_id"
	if query.Caller().Role == order.Courier {
		status, slot = order.ReadyForPickup, "courier_id"
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.address_street,
			o.address_city,
			o.address_landmark,
			o.items_total,
			o.runner_fee,
			o.delivery_fee,
			o.created_at,
			(SELECT count(*) FROM order_items i WHERE i.order_id = o.id)
		FROM orders o
		WHERE o.status = ? AND o.`+slot+` IS NULL
		ORDER BY o.created_at, o.id
		LIMIT ?
	`, status.String(), query.Limit()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]GetClaimableOrdersQueryResponse, 0)
	for rows.Next() {
		var (
			id                              uuid.UUID
			street, city, landmark          string
			itemsTotal, runnerFee, delivery decimal.Decimal
			createdAt                       time.Time
			itemCount                       int
		)
		if err = rows.Scan(&id, &street, &city, &landmark, &itemsTotal, &runnerFee, &delivery, &createdAt, &itemCount); err != nil {
			return nil, err
		}

		resp := GetClaimableOrdersQueryResponse{Status: status, ItemCount: itemCount, CreatedAt: createdAt}
		if resp.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
			return nil, err
		}
		if resp.Address, err = kernel.NewAddress(street, city, landmark); err != nil {
			return nil, err
		}
		if resp.ItemsTotal, err = kernel.NewMoney(itemsTotal); err != nil {
			return nil, err
		}
		if resp.RunnerFee, err = kernel.NewMoney(runnerFee); err != nil {
			return nil, err
		}
		if resp.DeliveryFee, err = kernel.NewMoney(delivery); err != nil {
			return nil, err
		}
		orders = append(orders, resp)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}
