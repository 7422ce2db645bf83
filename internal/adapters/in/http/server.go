// Package http is the echo transport of the order lifecycle API.
//
// Server implements ServerInterface; the operations, parameters and bodies
// are described by the embedded openapi.yaml, which also validates incoming
// requests and is served under /swagger.
package http

import (
	"context"
	"log/slog"
	"net/http"

	"kayayo/internal/adapters/out/fanout"
	"kayayo/internal/core/application/usecases/commands"
	"kayayo/internal/core/application/usecases/queries"
	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

type (
	OrderCreator interface {
		Handle(ctx context.Context, cmd commands.CreateOrderCommand) (*order.Order, error)
	}
	TransitionRequester interface {
		Handle(ctx context.Context, cmd commands.RequestTransitionCommand) (*order.Order, error)
	}
	OrderClaimer interface {
		Handle(ctx context.Context, cmd commands.ClaimOrderCommand) (*order.Order, error)
	}
	ItemMarker interface {
		HandleReady(ctx context.Context, cmd commands.MarkItemReadyCommand) (*order.Order, error)
		HandleCollected(ctx context.Context, cmd commands.MarkItemCollectedCommand) (*order.Order, error)
	}
	ChallengeIssuer interface {
		Handle(ctx context.Context, cmd commands.IssueHandoverChallengeCommand) (*handover.Challenge, error)
	}
	ChallengeVerifier interface {
		Handle(ctx context.Context, cmd commands.VerifyHandoverChallengeCommand) (*order.Order, error)
	}
	OrderGetter interface {
		Handle(ctx context.Context, query queries.GetOrderQuery) (*order.Order, error)
	}
	ClaimableOrdersGetter interface {
		Handle(ctx context.Context, query queries.GetClaimableOrdersQuery) ([]queries.GetClaimableOrdersQueryResponse, error)
	}
	OrderHistoryGetter interface {
		Handle(ctx context.Context, query queries.GetOrderHistoryQuery) ([]queries.GetOrderHistoryQueryResponse, error)
	}
)

// Handlers groups the use cases the server dispatches to.
type Handlers struct {
	CreateOrder       OrderCreator
	RequestTransition TransitionRequester
	ClaimOrder        OrderClaimer
	MarkItem          ItemMarker
	IssueChallenge    ChallengeIssuer
	VerifyChallenge   ChallengeVerifier
	GetOrder          OrderGetter
	GetClaimable      ClaimableOrdersGetter
	GetHistory        OrderHistoryGetter
}

// Server implements ServerInterface and the event stream.
type Server struct {
	handlers Handlers
	hub      *fanout.Hub
	logger   *slog.Logger
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(handlers Handlers, hub *fanout.Hub, logger *slog.Logger) *Server {
	return &Server{
		handlers: handlers,
		hub:      hub,
		logger:   logger.With("component", "http_server"),
	}
}

// CreateOrder handles POST /api/v1/orders. The caller becomes the buyer.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var body CreateOrderRequest
	if err := ctx.Bind(&body); err != nil {
		return s.fail(ctx, errs.NewValueIsInvalidErrorWithCause("request body", err))
	}

	orderID := kernel.NewUUID()
	if body.OrderID != nil {
		parsed, err := kernel.UUIDFromString(*body.OrderID)
		if err != nil {
			return s.fail(ctx, errs.NewValueIsInvalidErrorWithCause("orderId", err))
		}
		orderID = parsed
	}

	address, err := kernel.NewAddress(body.Address.Street, body.Address.City, body.Address.Landmark)
	if err != nil {
		return s.fail(ctx, err)
	}

	lines := make([]commands.OrderLine, 0, len(body.Items))
	for _, item := range body.Items {
		productID, parseErr := kernel.UUIDFromString(item.ProductID)
		if parseErr != nil {
			return s.fail(ctx, errs.NewValueIsInvalidErrorWithCause("productId", parseErr))
		}
		lines = append(lines, commands.OrderLine{
			ProductID:        productID,
			Quantity:         item.Quantity,
			SubstitutionNote: item.SubstitutionNote,
		})
	}

	cmd, err := commands.NewCreateOrderCommand(orderID, actorFrom(ctx), address, lines)
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.CreateOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusCreated, orderToResponse(o))
}

// GetClaimableOrders handles GET /api/v1/orders/claimable.
func (s *Server) GetClaimableOrders(ctx echo.Context, params GetClaimableOrdersParams) error {
	limit := 0
	if params.Limit != nil {
		limit = *params.Limit
	}
	query, err := queries.NewGetClaimableOrdersQuery(actorFrom(ctx), limit)
	if err != nil {
		return s.fail(ctx, err)
	}

	rows, err := s.handlers.GetClaimable.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, claimableToResponse(rows))
}

// GetOrder handles GET /api/v1/orders/{orderId}.
func (s *Server) GetOrder(ctx echo.Context, orderID uuid.UUID) error {
	id, err := toKernelUUID(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetOrderQuery(id, actorFrom(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.GetOrder.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, orderToResponse(o))
}

// GetOrderHistory handles GET /api/v1/orders/{orderId}/history.
func (s *Server) GetOrderHistory(ctx echo.Context, orderID uuid.UUID) error {
	id, err := toKernelUUID(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}
	query, err := queries.NewGetOrderHistoryQuery(id, actorFrom(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	rows, err := s.handlers.GetHistory.Handle(ctx.Request().Context(), query)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, historyToResponse(rows))
}

// RequestTransition handles POST /api/v1/orders/{orderId}/transitions.
func (s *Server) RequestTransition(ctx echo.Context, orderID uuid.UUID) error {
	var body TransitionRequest
	if err := ctx.Bind(&body); err != nil {
		return s.fail(ctx, errs.NewValueIsInvalidErrorWithCause("request body", err))
	}
	target, err := order.ParseStatus(body.TargetStatus)
	if err != nil {
		return s.fail(ctx, err)
	}
	id, err := toKernelUUID(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}

	cmd, err := commands.NewRequestTransitionCommand(id, actorFrom(ctx), target)
	if err != nil {
		return s.fail(ctx, err)
	}
	o, err := s.handlers.RequestTransition.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, orderToResponse(o))
}

// ClaimOrder handles POST /api/v1/orders/{orderId}/claim.
func (s *Server) ClaimOrder(ctx echo.Context, orderID uuid.UUID) error {
	id, err := toKernelUUID(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewClaimOrderCommand(id, actorFrom(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.ClaimOrder.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, orderToResponse(o))
}

// MarkItemReady handles POST /api/v1/orders/{orderId}/items/{itemId}/ready.
func (s *Server) MarkItemReady(ctx echo.Context, orderID uuid.UUID, itemID uuid.UUID) error {
	oid, iid, err := toKernelUUIDs(orderID, itemID)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewMarkItemReadyCommand(oid, iid, actorFrom(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.MarkItem.HandleReady(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, orderToResponse(o))
}

// MarkItemCollected handles POST /api/v1/orders/{orderId}/items/{itemId}/collected.
func (s *Server) MarkItemCollected(ctx echo.Context, orderID uuid.UUID, itemID uuid.UUID) error {
	oid, iid, err := toKernelUUIDs(orderID, itemID)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewMarkItemCollectedCommand(oid, iid, actorFrom(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.MarkItem.HandleCollected(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, orderToResponse(o))
}

// IssueHandoverChallenge handles POST /api/v1/orders/{orderId}/handovers/{stage}/challenge.
// Calling it again before expiry returns the same code.
func (s *Server) IssueHandoverChallenge(ctx echo.Context, orderID uuid.UUID, stage string) error {
	id, err := toKernelUUID(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}
	parsed, err := handover.ParseStage(stage)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewIssueHandoverChallengeCommand(id, parsed, actorFrom(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	challenge, err := s.handlers.IssueChallenge.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, challengeToResponse(challenge))
}

// VerifyHandoverChallenge handles POST /api/v1/orders/{orderId}/handovers/{stage}/verify.
func (s *Server) VerifyHandoverChallenge(ctx echo.Context, orderID uuid.UUID, stage string) error {
	var body VerifyRequest
	if err := ctx.Bind(&body); err != nil {
		return s.fail(ctx, errs.NewValueIsInvalidErrorWithCause("request body", err))
	}
	id, err := toKernelUUID(orderID)
	if err != nil {
		return s.fail(ctx, err)
	}
	parsed, err := handover.ParseStage(stage)
	if err != nil {
		return s.fail(ctx, err)
	}
	cmd, err := commands.NewVerifyHandoverChallengeCommand(id, parsed, body.Code, actorFrom(ctx))
	if err != nil {
		return s.fail(ctx, err)
	}

	o, err := s.handlers.VerifyChallenge.Handle(ctx.Request().Context(), cmd)
	if err != nil {
		return s.fail(ctx, err)
	}
	return ctx.JSON(http.StatusOK, orderToResponse(o))
}

func toKernelUUID(id uuid.UUID) (kernel.UUID, error) {
	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause("id", err)
	}
	return parsed, nil
}

func toKernelUUIDs(orderID, itemID uuid.UUID) (kernel.UUID, kernel.UUID, error) {
	oid, err := toKernelUUID(orderID)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	iid, err := toKernelUUID(itemID)
	if err != nil {
		return kernel.UUID{}, kernel.UUID{}, err
	}
	return oid, iid, nil
}
