package handover

import (
	"time"

	"kayayo/internal/pkg/errs"
)

const (
	DefaultTTL         = 5 * time.Minute
	DefaultMaxAttempts = 5
	DefaultMaxCooldown = 30 * time.Second
)

// Policy bounds how long a code lives and how fast it can be guessed at.
type Policy struct {
	TTL         time.Duration
	MaxAttempts int
	MaxCooldown time.Duration
}

func DefaultPolicy() Policy {
	return Policy{TTL: DefaultTTL, MaxAttempts: DefaultMaxAttempts, MaxCooldown: DefaultMaxCooldown}
}

func (p Policy) Validate() error {
	if p.TTL < time.Minute || p.TTL > time.Hour {
		return errs.NewValueIsOutOfRangeError("handover ttl", p.TTL, time.Minute, time.Hour)
	}
	if p.MaxAttempts < 1 || p.MaxAttempts > 10 {
		return errs.NewValueIsOutOfRangeError("handover max attempts", p.MaxAttempts, 1, 10)
	}
	if p.MaxCooldown <= 0 {
		return errs.NewValueIsOutOfRangeError("handover max cooldown", p.MaxCooldown, time.Second, "unbounded")
	}
	return nil
}

// Cooldown after the n-th failed attempt: 2^n seconds, capped at MaxCooldown.
func (p Policy) Cooldown(failedAttempts int) time.Duration {
	if failedAttempts <= 0 {
		return 0
	}
	if failedAttempts >= 16 {
		return p.MaxCooldown
	}
	return min(time.Duration(1<<failedAttempts)*time.Second, p.MaxCooldown)
}
