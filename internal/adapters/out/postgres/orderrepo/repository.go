package orderrepo

import (
	"context"
	"errors"
	"fmt"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/errs"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

// GormOrderRepository implements ports.OrderRepository using GORM.
type GormOrderRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker collects aggregates whose events must reach the outbox.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

func NewGormOrderRepository(db *gorm.DB, tracker aggregateTracker) *GormOrderRepository {
	return &GormOrderRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add inserts the order and its items.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return errs.NewValueIsInvalidErrorWithCause("order id",
				fmt.Errorf("order %s already exists", aggregate.ID()))
		}
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get loads an order with its items in checkout order.
func (r *GormOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		First(&dto, "id = ?", id.Bytes()).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// UpdateIfStatus writes status, timestamps, handover flags and item flags
// when the stored status still equals expected. Slots are never written
// here; they belong to the claim methods.
func (r *GormOrderRepository) UpdateIfStatus(ctx context.Context, aggregate *order.Order, expected order.Status) (bool, error) {
	if err := aggregate.Validate(); err != nil {
		return false, err
	}

	dto := fromDomain(aggregate)
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ?", dto.ID, expected.String()).
		Updates(map[string]any{
			"status":           dto.Status,
			"runner_verified":  dto.RunnerVerified,
			"courier_verified": dto.CourierVerified,
			"confirmed_at":     dto.ConfirmedAt,
			"delivered_at":     dto.DeliveredAt,
			"cancelled_at":     dto.CancelledAt,
		})
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected == 0 {
		return false, nil
	}

	for _, item := range dto.Items {
		err := r.db.WithContext(ctx).
			Model(&OrderItemDTO{}).
			Where("id = ? AND order_id = ?", item.ID, dto.ID).
			Updates(map[string]any{
				"seller_ready":     item.SellerReady,
				"runner_collected": item.RunnerCollected,
			}).Error
		if err != nil {
			return false, err
		}
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return true, nil
}

// ClaimRunner binds the aggregate's runner if the slot is still free at
// seller_confirmed.
func (r *GormOrderRepository) ClaimRunner(ctx context.Context, aggregate *order.Order) (bool, error) {
	runnerID := aggregate.RunnerID()
	if runnerID == nil {
		return false, errs.NewValueIsRequiredError("runner id")
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ? AND runner_id IS NULL", aggregate.ID().Bytes(), order.SellerConfirmed.String()).
		Updates(map[string]any{
			"runner_id": runnerID.Bytes(),
			"status":    order.RunnerAccepted.String(),
		})
	return r.claimed(aggregate, result)
}

// ClaimCourier binds the aggregate's courier if the slot is still free at
// ready_for_pickup. The status is left as is.
func (r *GormOrderRepository) ClaimCourier(ctx context.Context, aggregate *order.Order) (bool, error) {
	courierID := aggregate.CourierID()
	if courierID == nil {
		return false, errs.NewValueIsRequiredError("courier id")
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status = ? AND courier_id IS NULL", aggregate.ID().Bytes(), order.ReadyForPickup.String()).
		Update("courier_id", courierID.Bytes())
	return r.claimed(aggregate, result)
}

func (r *GormOrderRepository) claimed(aggregate *order.Order, result *gorm.DB) (bool, error) {
	if result.Error != nil {
		return false, result.Error
	}
	if result.RowsAffected != 1 {
		return false, nil
	}
	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return true, nil
}

// RecordHistory appends a history row for every status-changing event.
func (r *GormOrderRepository) RecordHistory(ctx context.Context, events []order.Event) error {
	rows := make([]HistoryDTO, 0, len(events))
	for _, event := range events {
		if row, ok := historyFromEvent(event); ok {
			rows = append(rows, row)
		}
	}
	if len(rows) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}
