package queries

import (
	"context"
	"database/sql"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/core/domain/services"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderHistoryQueryHandler reads order_status_history after checking the
// caller may see the order.
type GetOrderHistoryQueryHandler struct {
	db     *gorm.DB
	orders OrderReader
	guard  services.OwnershipGuard
}

func NewGetOrderHistoryQueryHandler(db *gorm.DB, orders OrderReader, guard services.OwnershipGuard) GetOrderHistoryQueryHandler {
	return GetOrderHistoryQueryHandler{db: db, orders: orders, guard: guard}
}

func (h GetOrderHistoryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderHistoryQuery,
) ([]GetOrderHistoryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	o, err := h.orders.Get(ctx, query.OrderID())
	if err != nil {
		return nil, err
	}
	if err = h.guard.CheckView(o, query.Caller()); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT from_status, to_status, actor_id, actor_role, occurred_at
		FROM order_status_history
		WHERE order_id = ?
		ORDER BY id
	`, o.ID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := make([]GetOrderHistoryQueryResponse, 0)
	for rows.Next() {
		var (
			from, actorRole sql.NullString
			to              string
			actorID         uuid.NullUUID
			occurredAt      time.Time
		)
		if err = rows.Scan(&from, &to, &actorID, &actorRole, &occurredAt); err != nil {
			return nil, err
		}

		entry := GetOrderHistoryQueryResponse{OccurredAt: occurredAt}
		if from.Valid {
			if entry.From, err = order.ParseStatus(from.String); err != nil {
				return nil, err
			}
		}
		if entry.To, err = order.ParseStatus(to); err != nil {
			return nil, err
		}
		if actorID.Valid && actorRole.Valid {
			id, idErr := kernel.UUIDFromBytes(actorID.UUID[:])
			if idErr != nil {
				return nil, idErr
			}
			role, roleErr := order.ParseRole(actorRole.String)
			if roleErr != nil {
				return nil, roleErr
			}
			entry.Actor = order.Actor{ID: id, Role: role}
		}
		history = append(history, entry)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return history, nil
}
