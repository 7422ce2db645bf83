package http

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strconv"

	"kayayo/internal/core/application/usecases/commands"
	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/errs"

	"github.com/labstack/echo/v4"
)

// Machine readable error codes returned in ErrorResponse.Code.
const (
	codeValidationFailed      = "validation_failed"
	codeUnauthenticated       = "unauthenticated"
	codeUnauthorized          = "unauthorized"
	codeInvalidTransition     = "invalid_transition"
	codeAlreadyClaimed        = "already_claimed"
	codeChallengeConflict     = "challenge_conflict"
	codeStageAlreadyVerified  = "stage_already_verified"
	codeChallengeExpired      = "challenge_expired"
	codeVerificationFailed    = "verification_failed"
	codeVerificationThrottled = "verification_throttled"
	codeNoChallengeIssued     = "no_challenge_issued"
	codeNotFound              = "not_found"
	codeInternal              = "internal_error"
)

type ErrorResponse struct {
	Code              string `json:"code"`
	Message           string `json:"message"`
	RemainingAttempts *int   `json:"remainingAttempts,omitempty"`
}

// errorStatus maps a use case error to its HTTP status and body. The order
// of checks matters: a lost claim race is reported as already_claimed even
// though it also describes an illegal edge.
func errorStatus(err error) (int, ErrorResponse) {
	resp := ErrorResponse{Message: err.Error()}

	switch {
	case errors.Is(err, order.ErrAlreadyClaimed):
		resp.Code = codeAlreadyClaimed
		return http.StatusConflict, resp
	case errors.Is(err, order.ErrInvalidTransition):
		resp.Code = codeInvalidTransition
		return http.StatusConflict, resp
	case errors.Is(err, commands.ErrChallengeConflict):
		resp.Code = codeChallengeConflict
		return http.StatusConflict, resp
	case errors.Is(err, handover.ErrStageAlreadyVerified):
		resp.Code = codeStageAlreadyVerified
		return http.StatusConflict, resp
	case errors.Is(err, order.ErrUnauthorized):
		resp.Code = codeUnauthorized
		return http.StatusForbidden, resp
	case errors.Is(err, handover.ErrChallengeExpired):
		resp.Code = codeChallengeExpired
		return http.StatusGone, resp
	case errors.Is(err, handover.ErrVerificationFailed):
		resp.Code = codeVerificationFailed
		var failed *handover.VerificationFailedError
		if errors.As(err, &failed) {
			remaining := max(failed.RemainingAttempts, 0)
			resp.RemainingAttempts = &remaining
		}
		return http.StatusUnprocessableEntity, resp
	case errors.Is(err, handover.ErrVerificationThrottled):
		resp.Code = codeVerificationThrottled
		return http.StatusTooManyRequests, resp
	case errors.Is(err, handover.ErrNoChallengeIssued):
		resp.Code = codeNoChallengeIssued
		return http.StatusNotFound, resp
	case errors.Is(err, errs.ErrObjectNotFound):
		resp.Code = codeNotFound
		return http.StatusNotFound, resp
	case errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, commands.ErrOrderLinesAreRequired):
		resp.Code = codeValidationFailed
		return http.StatusBadRequest, resp
	default:
		return http.StatusInternalServerError, ErrorResponse{
			Code:    codeInternal,
			Message: "internal error",
		}
	}
}

// fail writes the mapped error. Throttled attempts carry Retry-After in
// whole seconds. Unexpected errors are logged with the request context.
func (s *Server) fail(c echo.Context, err error) error {
	status, resp := errorStatus(err)

	var throttled *handover.ThrottledError
	if errors.As(err, &throttled) {
		seconds := int(math.Ceil(throttled.RetryAfter.Seconds()))
		c.Response().Header().Set("Retry-After", strconv.Itoa(max(seconds, 1)))
	}

	if status == http.StatusInternalServerError {
		s.logger.ErrorContext(c.Request().Context(), "request failed",
			"method", c.Request().Method,
			"path", c.Path(),
			"error", err,
		)
	} else {
		s.logger.DebugContext(c.Request().Context(), "request rejected",
			slog.Int("status", status),
			slog.String("code", resp.Code),
		)
	}

	return c.JSON(status, resp)
}
