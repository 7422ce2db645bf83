package handover

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrChallengeExpired means the displayed code is past its validity window.
	ErrChallengeExpired = errors.New("challenge expired")

	// ErrVerificationFailed means the submitted code did not match, or the
	// challenge was burned by too many failed attempts.
	ErrVerificationFailed = errors.New("verification failed")

	// ErrNoChallengeIssued means no open challenge exists for the stage.
	ErrNoChallengeIssued = errors.New("no challenge issued")

	// ErrVerificationThrottled means a failed attempt is cooling down.
	ErrVerificationThrottled = errors.New("verification throttled")

	// ErrStageAlreadyVerified means the handover for the stage already happened.
	ErrStageAlreadyVerified = errors.New("handover stage already verified")

	// ErrChallengeIsNotConstructed is returned for a Challenge built without a constructor.
	ErrChallengeIsNotConstructed = errors.New("challenge must be created via NewChallenge or RestoreChallenge")
)

// VerificationFailedError reports how many attempts remain before the
// challenge is burned.
type VerificationFailedError struct {
	Stage             Stage
	RemainingAttempts int
}

func (e *VerificationFailedError) Error() string {
	if e.RemainingAttempts <= 0 {
		return fmt.Sprintf("%s: %s code burned, request a new one", ErrVerificationFailed, e.Stage)
	}
	return fmt.Sprintf("%s: %s code mismatch, %d attempts left", ErrVerificationFailed, e.Stage, e.RemainingAttempts)
}

func (e *VerificationFailedError) Unwrap() error {
	return ErrVerificationFailed
}

// ThrottledError tells the caller when the next attempt is accepted.
type ThrottledError struct {
	Stage      Stage
	RetryAfter time.Duration
}

func (e *ThrottledError) Error() string {
	return fmt.Sprintf("%s: %s retry after %s", ErrVerificationThrottled, e.Stage, e.RetryAfter.Round(time.Second))
}

func (e *ThrottledError) Unwrap() error {
	return ErrVerificationThrottled
}
