package outboxrepo

import (
	"context"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOutboxRepository implements ports.OutboxRepository using GORM.
type GormOutboxRepository struct {
	db *gorm.DB
}

func NewGormOutboxRepository(db *gorm.DB) *GormOutboxRepository {
	return &GormOutboxRepository{db: db}
}

func (r *GormOutboxRepository) Append(ctx context.Context, events []order.Event) error {
	if len(events) == 0 {
		return nil
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, event := range events {
		dto, err := fromDomain(event)
		if err != nil {
			return err
		}
		dtos = append(dtos, dto)
	}
	return r.db.WithContext(ctx).Create(&dtos).Error
}

// FetchUnstreamed locks the oldest events not yet handed to live subscribers.
func (r *GormOutboxRepository) FetchUnstreamed(ctx context.Context, limit int) ([]order.Event, error) {
	return r.fetch(ctx, "streamed_at IS NULL", limit)
}

func (r *GormOutboxRepository) MarkStreamed(ctx context.Context, ids []kernel.UUID, at time.Time) error {
	return r.stamp(ctx, "streamed_at", ids, at)
}

// FetchUnpublished locks the oldest unpublished events. Rows held by another
// relay are skipped rather than waited for.
func (r *GormOutboxRepository) FetchUnpublished(ctx context.Context, limit int) ([]order.Event, error) {
	return r.fetch(ctx, "published_at IS NULL", limit)
}

func (r *GormOutboxRepository) MarkPublished(ctx context.Context, ids []kernel.UUID, at time.Time) error {
	return r.stamp(ctx, "published_at", ids, at)
}

func (r *GormOutboxRepository) fetch(ctx context.Context, pending string, limit int) ([]order.Event, error) {
	var dtos []EventDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
		Where(pending).
		Order("seq").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}

	events := make([]order.Event, 0, len(dtos))
	for _, dto := range dtos {
		event, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *GormOutboxRepository) stamp(ctx context.Context, column string, ids []kernel.UUID, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}

	raw := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		raw = append(raw, id.Bytes())
	}
	return r.db.WithContext(ctx).
		Model(&EventDTO{}).
		Where("id IN ?", raw).
		Update(column, at).Error
}

func (r *GormOutboxRepository) PurgePublished(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("streamed_at IS NOT NULL AND published_at IS NOT NULL AND published_at < ?", cutoff).
		Delete(&EventDTO{})
	return result.RowsAffected, result.Error
}
