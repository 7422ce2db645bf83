package http

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"

	"github.com/labstack/echo/v4"
)

// Identity headers set by the trusted gateway in front of the service.
const (
	HeaderActorID   = "X-Actor-ID"
	HeaderActorRole = "X-Actor-Role"
)

const actorContextKey = "kayayo.actor"

var errActorMissing = errors.New("caller identity is missing")

// ActorMiddleware resolves the caller from the identity headers and stores
// it on the echo context. Requests without a valid identity stop here.
func ActorMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, err := actorFromHeaders(c.Request().Header)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, ErrorResponse{
					Code:    codeUnauthenticated,
					Message: err.Error(),
				})
			}
			c.Set(actorContextKey, actor)
			return next(c)
		}
	}
}

func actorFromHeaders(h http.Header) (order.Actor, error) {
	rawID, rawRole := h.Get(HeaderActorID), h.Get(HeaderActorRole)
	if rawID == "" || rawRole == "" {
		return order.Actor{}, errActorMissing
	}
	id, err := kernel.UUIDFromString(rawID)
	if err != nil {
		return order.Actor{}, fmt.Errorf("%s: %w", HeaderActorID, err)
	}
	role, err := order.ParseRole(rawRole)
	if err != nil {
		return order.Actor{}, fmt.Errorf("%s: %w", HeaderActorRole, err)
	}
	return order.NewActor(id, role)
}

// actorFrom returns the caller stored by ActorMiddleware.
func actorFrom(c echo.Context) order.Actor {
	actor, _ := c.Get(actorContextKey).(order.Actor)
	return actor
}

// ErrorHandler renders echo errors (unknown routes, bad parameters, panics
// recovered upstream) in the same body shape as use case errors.
func ErrorHandler(logger *slog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := http.StatusInternalServerError
		resp := ErrorResponse{Code: codeInternal, Message: "internal error"}

		var he *echo.HTTPError
		if errors.As(err, &he) {
			status = he.Code
			resp.Message = fmt.Sprint(he.Message)
			switch status {
			case http.StatusBadRequest:
				resp.Code = codeValidationFailed
			case http.StatusNotFound:
				resp.Code = codeNotFound
			case http.StatusInternalServerError:
				resp.Message = "internal error"
			default:
				resp.Code = http.StatusText(status)
			}
		}

		if status == http.StatusInternalServerError {
			logger.ErrorContext(c.Request().Context(), "unhandled error", "path", c.Path(), "error", err)
		}

		var writeErr error
		if c.Request().Method == http.MethodHead {
			writeErr = c.NoContent(status)
		} else {
			writeErr = c.JSON(status, resp)
		}
		if writeErr != nil {
			logger.ErrorContext(c.Request().Context(), "write error response", "error", writeErr)
		}
	}
}
