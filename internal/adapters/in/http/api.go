package http

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// ServerInterface lists the operations of openapi.yaml. Path and query
// parameters arrive already bound and typed.
type ServerInterface interface {
	// (POST /api/v1/orders)
	CreateOrder(ctx echo.Context) error
	// (GET /api/v1/orders/claimable)
	GetClaimableOrders(ctx echo.Context, params GetClaimableOrdersParams) error
	// (GET /api/v1/orders/{orderId})
	GetOrder(ctx echo.Context, orderID uuid.UUID) error
	// (GET /api/v1/orders/{orderId}/history)
	GetOrderHistory(ctx echo.Context, orderID uuid.UUID) error
	// (POST /api/v1/orders/{orderId}/transitions)
	RequestTransition(ctx echo.Context, orderID uuid.UUID) error
	// (POST /api/v1/orders/{orderId}/claim)
	ClaimOrder(ctx echo.Context, orderID uuid.UUID) error
	// (POST /api/v1/orders/{orderId}/items/{itemId}/ready)
	MarkItemReady(ctx echo.Context, orderID uuid.UUID, itemID uuid.UUID) error
	// (POST /api/v1/orders/{orderId}/items/{itemId}/collected)
	MarkItemCollected(ctx echo.Context, orderID uuid.UUID, itemID uuid.UUID) error
	// (POST /api/v1/orders/{orderId}/handovers/{stage}/challenge)
	IssueHandoverChallenge(ctx echo.Context, orderID uuid.UUID, stage string) error
	// (POST /api/v1/orders/{orderId}/handovers/{stage}/verify)
	VerifyHandoverChallenge(ctx echo.Context, orderID uuid.UUID, stage string) error
}

type GetClaimableOrdersParams struct {
	Limit *int `form:"limit,omitempty" json:"limit,omitempty"`
}

// ServerInterfaceWrapper converts echo contexts to typed parameters.
type ServerInterfaceWrapper struct {
	Handler ServerInterface
}

func (w *ServerInterfaceWrapper) CreateOrder(ctx echo.Context) error {
	return w.Handler.CreateOrder(ctx)
}

func (w *ServerInterfaceWrapper) GetClaimableOrders(ctx echo.Context) error {
	var params GetClaimableOrdersParams
	err := runtime.BindQueryParameter("form", true, false, "limit", ctx.QueryParams(), &params.Limit)
	if err != nil {
		return badParameter("limit", err)
	}
	return w.Handler.GetClaimableOrders(ctx, params)
}

func (w *ServerInterfaceWrapper) GetOrder(ctx echo.Context) error {
	orderID, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.GetOrder(ctx, orderID)
}

func (w *ServerInterfaceWrapper) GetOrderHistory(ctx echo.Context) error {
	orderID, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.GetOrderHistory(ctx, orderID)
}

func (w *ServerInterfaceWrapper) RequestTransition(ctx echo.Context) error {
	orderID, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.RequestTransition(ctx, orderID)
}

func (w *ServerInterfaceWrapper) ClaimOrder(ctx echo.Context) error {
	orderID, err := bindUUID(ctx, "orderId")
	if err != nil {
		return err
	}
	return w.Handler.ClaimOrder(ctx, orderID)
}

func (w *ServerInterfaceWrapper) MarkItemReady(ctx echo.Context) error {
	orderID, itemID, err := bindItemPath(ctx)
	if err != nil {
		return err
	}
	return w.Handler.MarkItemReady(ctx, orderID, itemID)
}

func (w *ServerInterfaceWrapper) MarkItemCollected(ctx echo.Context) error {
	orderID, itemID, err := bindItemPath(ctx)
	if err != nil {
		return err
	}
	return w.Handler.MarkItemCollected(ctx, orderID, itemID)
}

func (w *ServerInterfaceWrapper) IssueHandoverChallenge(ctx echo.Context) error {
	orderID, stage, err := bindStagePath(ctx)
	if err != nil {
		return err
	}
	return w.Handler.IssueHandoverChallenge(ctx, orderID, stage)
}

func (w *ServerInterfaceWrapper) VerifyHandoverChallenge(ctx echo.Context) error {
	orderID, stage, err := bindStagePath(ctx)
	if err != nil {
		return err
	}
	return w.Handler.VerifyHandoverChallenge(ctx, orderID, stage)
}

// EchoRouter is satisfied by both *echo.Echo and *echo.Group.
type EchoRouter interface {
	GET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
	POST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) *echo.Route
}

// RegisterHandlersWithBaseURL mounts every operation under baseURL.
func RegisterHandlersWithBaseURL(router EchoRouter, si ServerInterface, baseURL string) {
	w := ServerInterfaceWrapper{Handler: si}

	router.POST(baseURL+"/orders", w.CreateOrder)
	router.GET(baseURL+"/orders/claimable", w.GetClaimableOrders)
	router.GET(baseURL+"/orders/:orderId", w.GetOrder)
	router.GET(baseURL+"/orders/:orderId/history", w.GetOrderHistory)
	router.POST(baseURL+"/orders/:orderId/transitions", w.RequestTransition)
	router.POST(baseURL+"/orders/:orderId/claim", w.ClaimOrder)
	router.POST(baseURL+"/orders/:orderId/items/:itemId/ready", w.MarkItemReady)
	router.POST(baseURL+"/orders/:orderId/items/:itemId/collected", w.MarkItemCollected)
	router.POST(baseURL+"/orders/:orderId/handovers/:stage/challenge", w.IssueHandoverChallenge)
	router.POST(baseURL+"/orders/:orderId/handovers/:stage/verify", w.VerifyHandoverChallenge)
}

func bindUUID(ctx echo.Context, name string) (uuid.UUID, error) {
	var id uuid.UUID
	err := runtime.BindStyledParameterWithOptions("simple", name, ctx.Param(name), &id, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return uuid.Nil, badParameter(name, err)
	}
	return id, nil
}

func bindItemPath(ctx echo.Context) (uuid.UUID, uuid.UUID, error) {
	orderID, err := bindUUID(ctx, "orderId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	itemID, err := bindUUID(ctx, "itemId")
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return orderID, itemID, nil
}

func bindStagePath(ctx echo.Context) (uuid.UUID, string, error) {
	orderID, err := bindUUID(ctx, "orderId")
	if err != nil {
		return uuid.Nil, "", err
	}
	var stage string
	err = runtime.BindStyledParameterWithOptions("simple", "stage", ctx.Param("stage"), &stage, runtime.BindStyledParameterOptions{
		ParamLocation: runtime.ParamLocationPath,
		Explode:       false,
		Required:      true,
	})
	if err != nil {
		return uuid.Nil, "", badParameter("stage", err)
	}
	return orderID, stage, nil
}

func badParameter(name string, err error) error {
	return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid format for parameter %s: %s", name, err))
}
