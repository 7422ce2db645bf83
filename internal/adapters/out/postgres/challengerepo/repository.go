package challengerepo

import (
	"context"
	"errors"
	"time"

	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormChallengeRepository implements ports.ChallengeRepository using GORM.
type GormChallengeRepository struct {
	db *gorm.DB
}

func NewGormChallengeRepository(db *gorm.DB) *GormChallengeRepository {
	return &GormChallengeRepository{db: db}
}

// GetOpen locks and returns the unconsumed challenge of the handover, so
// concurrent verifications of the same code are serialised.
func (r *GormChallengeRepository) GetOpen(ctx context.Context, orderID kernel.UUID, stage handover.Stage) (*handover.Challenge, error) {
	if err := errors.Join(orderID.Validate(), stage.Validate()); err != nil {
		return nil, err
	}

	var dto ChallengeDTO
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("order_id = ? AND stage = ? AND consumed_at IS NULL", orderID.Bytes(), stage.String()).
		First(&dto).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("handover challenge", orderID.String()+"/"+stage.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Add inserts c unless another open challenge holds the handover.
func (r *GormChallengeRepository) Add(ctx context.Context, c *handover.Challenge) (bool, error) {
	if err := c.Validate(); err != nil {
		return false, err
	}

	dto := fromDomain(c)
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:     []clause.Column{{Name: "order_id"}, {Name: "stage"}},
			TargetWhere: clause.Where{Exprs: []clause.Expression{clause.Expr{SQL: "consumed_at IS NULL"}}},
			DoNothing:   true,
		}).
		Create(&dto)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (r *GormChallengeRepository) Delete(ctx context.Context, id kernel.UUID) error {
	return r.db.WithContext(ctx).Delete(&ChallengeDTO{}, "id = ?", id.Bytes()).Error
}

// RecordFailure writes the attempt counter and cooldown of an open challenge.
func (r *GormChallengeRepository) RecordFailure(ctx context.Context, c *handover.Challenge) error {
	dto := fromDomain(c)
	return r.db.WithContext(ctx).
		Model(&ChallengeDTO{}).
		Where("id = ? AND consumed_at IS NULL", dto.ID).
		Updates(map[string]any{
			"failed_attempts": dto.FailedAttempts,
			"cooldown_until":  dto.CooldownUntil,
		}).Error
}

// Consume marks c consumed. The row must still be open, unexpired at the
// consume time and hold the same code.
func (r *GormChallengeRepository) Consume(ctx context.Context, c *handover.Challenge) (bool, error) {
	dto := fromDomain(c)
	if dto.ConsumedAt == nil || dto.VerifierID == nil {
		return false, errs.NewValueIsRequiredError("consumed challenge")
	}

	result := r.db.WithContext(ctx).
		Model(&ChallengeDTO{}).
		Where("id = ? AND consumed_at IS NULL AND expires_at > ? AND code = ?", dto.ID, *dto.ConsumedAt, dto.Code).
		Updates(map[string]any{
			"consumed_at": dto.ConsumedAt,
			"verifier_id": dto.VerifierID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// PurgeExpired deletes unconsumed challenges that expired before cutoff.
func (r *GormChallengeRepository) PurgeExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("consumed_at IS NULL AND expires_at < ?", cutoff).
		Delete(&ChallengeDTO{})
	return result.RowsAffected, result.Error
}
