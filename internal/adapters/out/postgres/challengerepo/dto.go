// Package challengerepo persists handover challenges.
package challengerepo

import (
	"time"

	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/kernel"

	"github.com/google/uuid"
)

// ChallengeDTO is a row of handover_challenges. A partial unique index on
// (order_id, stage) WHERE consumed_at IS NULL keeps one open challenge per
// handover.
type ChallengeDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID        uuid.UUID `gorm:"type:uuid"`
	Stage          string
	Code           string `gorm:"type:varchar(6)"`
	IssuerID       uuid.UUID `gorm:"type:uuid"`
	IssuedAt       time.Time
	ExpiresAt      time.Time
	FailedAttempts int
	CooldownUntil  *time.Time
	ConsumedAt     *time.Time
	VerifierID     *uuid.UUID `gorm:"type:uuid"`
}

func (ChallengeDTO) TableName() string {
	return "handover_challenges"
}

func fromDomain(c *handover.Challenge) ChallengeDTO {
	var verifierID *uuid.UUID
	if id := c.VerifierID(); id != nil {
		raw := id.Bytes()
		verifierID = &raw
	}

	return ChallengeDTO{
		ID:             c.ID().Bytes(),
		OrderID:        c.OrderID().Bytes(),
		Stage:          c.Stage().String(),
		Code:           c.Code().String(),
		IssuerID:       c.IssuerID().Bytes(),
		IssuedAt:       c.IssuedAt(),
		ExpiresAt:      c.ExpiresAt(),
		FailedAttempts: c.FailedAttempts(),
		CooldownUntil:  c.CooldownUntil(),
		ConsumedAt:     c.ConsumedAt(),
		VerifierID:     verifierID,
	}
}

func toDomain(dto ChallengeDTO) (*handover.Challenge, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	orderID, err := kernel.UUIDFromBytes(dto.OrderID[:])
	if err != nil {
		return nil, err
	}
	issuerID, err := kernel.UUIDFromBytes(dto.IssuerID[:])
	if err != nil {
		return nil, err
	}
	stage, err := handover.ParseStage(dto.Stage)
	if err != nil {
		return nil, err
	}
	code, err := handover.CodeFromString(dto.Code)
	if err != nil {
		return nil, err
	}

	var verifierID *kernel.UUID
	if dto.VerifierID != nil {
		vID, vErr := kernel.UUIDFromBytes(dto.VerifierID[:])
		if vErr != nil {
			return nil, vErr
		}
		verifierID = &vID
	}

	return handover.RestoreChallenge(handover.Snapshot{
		ID:             id,
		OrderID:        orderID,
		Stage:          stage,
		Code:           code,
		IssuerID:       issuerID,
		IssuedAt:       dto.IssuedAt,
		ExpiresAt:      dto.ExpiresAt,
		FailedAttempts: dto.FailedAttempts,
		CooldownUntil:  dto.CooldownUntil,
		ConsumedAt:     dto.ConsumedAt,
		VerifierID:     verifierID,
	})
}
