package handover

import (
	"errors"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/pkg/errs"
	"kayayo/internal/pkg/guard"
)

// Challenge is one displayed code for one (order, stage). At most one open
// (unconsumed) challenge exists per pair; a consumed challenge stays behind
// as the record of the verification.
type Challenge struct {
	id             kernel.UUID
	orderID        kernel.UUID
	stage          Stage
	code           Code
	issuerID       kernel.UUID
	issuedAt       time.Time
	expiresAt      time.Time
	failedAttempts int
	cooldownUntil  *time.Time
	consumedAt     *time.Time
	verifierID     *kernel.UUID
	guard          guard.ConstructorGuard
}

// Snapshot is the persisted state of a challenge.
type Snapshot struct {
	ID             kernel.UUID
	OrderID        kernel.UUID
	Stage          Stage
	Code           Code
	IssuerID       kernel.UUID
	IssuedAt       time.Time
	ExpiresAt      time.Time
	FailedAttempts int
	CooldownUntil  *time.Time
	ConsumedAt     *time.Time
	VerifierID     *kernel.UUID
}

// NewChallenge issues a fresh code valid for ttl from now.
func NewChallenge(orderID kernel.UUID, stage Stage, issuerID kernel.UUID, code Code, now time.Time, ttl time.Duration) (*Challenge, error) {
	now = now.UTC()
	return RestoreChallenge(Snapshot{
		ID:        kernel.NewUUID(),
		OrderID:   orderID,
		Stage:     stage,
		Code:      code,
		IssuerID:  issuerID,
		IssuedAt:  now,
		ExpiresAt: now.Add(ttl),
	})
}

// RestoreChallenge rebuilds a challenge from storage.
func RestoreChallenge(s Snapshot) (*Challenge, error) {
	if err := errors.Join(
		s.ID.Validate(),
		s.OrderID.Validate(),
		s.Stage.Validate(),
		s.Code.Validate(),
		s.IssuerID.Validate(),
	); err != nil {
		return nil, err
	}
	if !s.ExpiresAt.After(s.IssuedAt) {
		return nil, errs.NewValueIsInvalidError("challenge expiry must follow issuance")
	}
	if s.FailedAttempts < 0 {
		return nil, errs.NewValueIsOutOfRangeError("failed attempts", s.FailedAttempts, 0, "max attempts")
	}

	return &Challenge{
		id:             s.ID,
		orderID:        s.OrderID,
		stage:          s.Stage,
		code:           s.Code,
		issuerID:       s.IssuerID,
		issuedAt:       s.IssuedAt,
		expiresAt:      s.ExpiresAt,
		failedAttempts: s.FailedAttempts,
		cooldownUntil:  s.CooldownUntil,
		consumedAt:     s.ConsumedAt,
		verifierID:     s.VerifierID,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c *Challenge) Validate() error {
	if c == nil {
		return ErrChallengeIsNotConstructed
	}
	return c.guard.Validate(ErrChallengeIsNotConstructed)
}

func (c *Challenge) ID() kernel.UUID              { return c.id }
func (c *Challenge) OrderID() kernel.UUID         { return c.orderID }
func (c *Challenge) Stage() Stage                 { return c.stage }
func (c *Challenge) Code() Code                   { return c.code }
func (c *Challenge) IssuerID() kernel.UUID        { return c.issuerID }
func (c *Challenge) IssuedAt() time.Time          { return c.issuedAt }
func (c *Challenge) ExpiresAt() time.Time         { return c.expiresAt }
func (c *Challenge) FailedAttempts() int          { return c.failedAttempts }
func (c *Challenge) CooldownUntil() *time.Time    { return c.cooldownUntil }
func (c *Challenge) ConsumedAt() *time.Time       { return c.consumedAt }
func (c *Challenge) VerifierID() *kernel.UUID     { return c.verifierID }
func (c *Challenge) IsConsumed() bool             { return c.consumedAt != nil }
func (c *Challenge) IsExpired(now time.Time) bool { return !now.Before(c.expiresAt) }

// IsBurned reports whether the challenge used up its attempts.
func (c *Challenge) IsBurned(p Policy) bool {
	return c.failedAttempts >= p.MaxAttempts
}

// CanBeRedisplayed reports whether Issue may return this challenge unchanged:
// it is open, unexpired, not burned and was issued to issuerID.
func (c *Challenge) CanBeRedisplayed(issuerID kernel.UUID, now time.Time, p Policy) bool {
	return !c.IsConsumed() && !c.IsExpired(now) && !c.IsBurned(p) && c.issuerID.IsEqual(issuerID)
}

// Verify checks submitted against the code.
//
// Checks run in this order: consumed (NoChallengeIssued), burned
// (VerificationFailed), expired (ChallengeExpired), cooling down
// (VerificationThrottled), mismatch. A mismatch counts a failed attempt and
// starts a cooldown; that state must be persisted even though Verify returns
// an error. A match consumes the challenge.
func (c *Challenge) Verify(submitted Code, verifierID kernel.UUID, now time.Time, p Policy) error {
	now = now.UTC()
	switch {
	case c.IsConsumed():
		return ErrNoChallengeIssued
	case c.IsBurned(p):
		return &VerificationFailedError{Stage: c.stage}
	case c.IsExpired(now):
		return ErrChallengeExpired
	case c.cooldownUntil != nil && now.Before(*c.cooldownUntil):
		return &ThrottledError{Stage: c.stage, RetryAfter: c.cooldownUntil.Sub(now)}
	}

	if !c.code.Matches(submitted) {
		c.failedAttempts++
		until := now.Add(p.Cooldown(c.failedAttempts))
		c.cooldownUntil = &until
		return &VerificationFailedError{Stage: c.stage, RemainingAttempts: p.MaxAttempts - c.failedAttempts}
	}

	c.consumedAt = &now
	c.verifierID = &verifierID
	return nil
}
