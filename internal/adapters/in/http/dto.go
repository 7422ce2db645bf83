package http

import (
	"time"

	"kayayo/internal/core/application/usecases/queries"
	"kayayo/internal/core/domain/model/handover"
	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
)

type AddressDTO struct {
	Street   string `json:"street"`
	City     string `json:"city"`
	Landmark string `json:"landmark,omitempty"`
}

type CreateOrderItemDTO struct {
	ProductID        string `json:"productId"`
	Quantity         int    `json:"quantity"`
	SubstitutionNote string `json:"substitutionNote,omitempty"`
}

type CreateOrderRequest struct {
	OrderID *string              `json:"orderId,omitempty"`
	Address AddressDTO           `json:"address"`
	Items   []CreateOrderItemDTO `json:"items"`
}

type TransitionRequest struct {
	TargetStatus string `json:"targetStatus"`
}

type VerifyRequest struct {
	Code string `json:"code"`
}

type FeesDTO struct {
	ItemsTotal  string `json:"itemsTotal"`
	RunnerFee   string `json:"runnerFee"`
	DeliveryFee string `json:"deliveryFee"`
	PlatformFee string `json:"platformFee"`
	Total       string `json:"total"`
}

type ItemDTO struct {
	ID               string `json:"id"`
	ProductID        string `json:"productId"`
	SellerID         string `json:"sellerId"`
	Quantity         int    `json:"quantity"`
	UnitPrice        string `json:"unitPrice"`
	Subtotal         string `json:"subtotal"`
	SubstitutionNote string `json:"substitutionNote,omitempty"`
	SellerReady      bool   `json:"sellerReady"`
	RunnerCollected  bool   `json:"runnerCollected"`
}

type OrderResponse struct {
	ID              string     `json:"id"`
	BuyerID         string     `json:"buyerId"`
	RunnerID        *string    `json:"runnerId,omitempty"`
	CourierID       *string    `json:"courierId,omitempty"`
	Status          string     `json:"status"`
	Fees            FeesDTO    `json:"fees"`
	Address         AddressDTO `json:"address"`
	Items           []ItemDTO  `json:"items"`
	RunnerVerified  bool       `json:"runnerVerified"`
	CourierVerified bool       `json:"courierVerified"`
	CreatedAt       time.Time  `json:"createdAt"`
	ConfirmedAt     *time.Time `json:"confirmedAt,omitempty"`
	DeliveredAt     *time.Time `json:"deliveredAt,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`
}

type ClaimableOrderResponse struct {
	ID          string     `json:"id"`
	Status      string     `json:"status"`
	Address     AddressDTO `json:"address"`
	ItemCount   int        `json:"itemCount"`
	ItemsTotal  string     `json:"itemsTotal"`
	RunnerFee   string     `json:"runnerFee"`
	DeliveryFee string     `json:"deliveryFee"`
	CreatedAt   time.Time  `json:"createdAt"`
}

type HistoryEntryResponse struct {
	From       string    `json:"from,omitempty"`
	To         string    `json:"to"`
	ActorID    string    `json:"actorId,omitempty"`
	ActorRole  string    `json:"actorRole,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

type ChallengeResponse struct {
	OrderID   string    `json:"orderId"`
	Stage     string    `json:"stage"`
	Code      string    `json:"code"`
	IssuedAt  time.Time `json:"issuedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// EventResponse is the data of one server-sent event.
type EventResponse struct {
	ID             string    `json:"id"`
	OrderID        string    `json:"orderId"`
	Kind           string    `json:"kind"`
	Status         string    `json:"status"`
	PreviousStatus string    `json:"previousStatus,omitempty"`
	Stage          string    `json:"stage,omitempty"`
	OccurredAt     time.Time `json:"occurredAt"`
}

func addressToDTO(a kernel.Address) AddressDTO {
	return AddressDTO{Street: a.Street(), City: a.City(), Landmark: a.Landmark()}
}

func idPtr(id *kernel.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func orderToResponse(o *order.Order) OrderResponse {
	fees := o.Fees()
	items := make([]ItemDTO, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, ItemDTO{
			ID:               item.ID().String(),
			ProductID:        item.ProductID().String(),
			SellerID:         item.SellerID().String(),
			Quantity:         item.Quantity(),
			UnitPrice:        item.UnitPrice().String(),
			Subtotal:         item.Subtotal().String(),
			SubstitutionNote: item.SubstitutionNote(),
			SellerReady:      item.IsSellerReady(),
			RunnerCollected:  item.IsRunnerCollected(),
		})
	}

	return OrderResponse{
		ID:        o.ID().String(),
		BuyerID:   o.BuyerID().String(),
		RunnerID:  idPtr(o.RunnerID()),
		CourierID: idPtr(o.CourierID()),
		Status:    o.Status().String(),
		Fees: FeesDTO{
			ItemsTotal:  fees.ItemsTotal().String(),
			RunnerFee:   fees.RunnerFee().String(),
			DeliveryFee: fees.DeliveryFee().String(),
			PlatformFee: fees.PlatformFee().String(),
			Total:       fees.Total().String(),
		},
		Address:         addressToDTO(o.Address()),
		Items:           items,
		RunnerVerified:  o.IsRunnerVerified(),
		CourierVerified: o.IsCourierVerified(),
		CreatedAt:       o.CreatedAt(),
		ConfirmedAt:     o.ConfirmedAt(),
		DeliveredAt:     o.DeliveredAt(),
		CancelledAt:     o.CancelledAt(),
	}
}

func claimableToResponse(rows []queries.GetClaimableOrdersQueryResponse) []ClaimableOrderResponse {
	resp := make([]ClaimableOrderResponse, 0, len(rows))
	for _, row := range rows {
		resp = append(resp, ClaimableOrderResponse{
			ID:          row.ID.String(),
			Status:      row.Status.String(),
			Address:     addressToDTO(row.Address),
			ItemCount:   row.ItemCount,
			ItemsTotal:  row.ItemsTotal.String(),
			RunnerFee:   row.RunnerFee.String(),
			DeliveryFee: row.DeliveryFee.String(),
			CreatedAt:   row.CreatedAt,
		})
	}
	return resp
}

func historyToResponse(rows []queries.GetOrderHistoryQueryResponse) []HistoryEntryResponse {
	resp := make([]HistoryEntryResponse, 0, len(rows))
	for _, row := range rows {
		entry := HistoryEntryResponse{
			To:         row.To.String(),
			OccurredAt: row.OccurredAt,
		}
		if row.From != order.Unknown {
			entry.From = row.From.String()
		}
		if !row.Actor.ID.IsZero() {
			entry.ActorID = row.Actor.ID.String()
			entry.ActorRole = row.Actor.Role.String()
		}
		resp = append(resp, entry)
	}
	return resp
}

func challengeToResponse(c *handover.Challenge) ChallengeResponse {
	return ChallengeResponse{
		OrderID:   c.OrderID().String(),
		Stage:     c.Stage().String(),
		Code:      c.Code().String(),
		IssuedAt:  c.IssuedAt(),
		ExpiresAt: c.ExpiresAt(),
	}
}

func eventToResponse(e order.Event) EventResponse {
	resp := EventResponse{
		ID:         e.ID.String(),
		OrderID:    e.OrderID.String(),
		Kind:       string(e.Kind),
		Status:     e.Status.String(),
		Stage:      e.Stage,
		OccurredAt: e.OccurredAt,
	}
	if e.PreviousStatus != order.Unknown {
		resp.PreviousStatus = e.PreviousStatus.String()
	}
	return resp
}
