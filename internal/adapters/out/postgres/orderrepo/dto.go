// Package orderrepo persists order aggregates, their items and status history.
package orderrepo

import (
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO is a row of the orders table.
type OrderDTO struct {
	ID              uuid.UUID  `gorm:"type:uuid;primaryKey"`
	BuyerID         uuid.UUID  `gorm:"type:uuid;index"`
	RunnerID        *uuid.UUID `gorm:"type:uuid;index"`
	CourierID       *uuid.UUID `gorm:"type:uuid;index"`
	Status          string     `gorm:"index"`
	Fees            FeesDTO    `gorm:"embedded"`
	Address         AddressDTO `gorm:"embedded;embeddedPrefix:address_"`
	RunnerVerified  bool
	CourierVerified bool
	CreatedAt       time.Time
	ConfirmedAt     *time.Time
	DeliveredAt     *time.Time
	CancelledAt     *time.Time
	Items           []OrderItemDTO `gorm:"foreignKey:OrderID"`
}

func (OrderDTO) TableName() string {
	return "orders"
}

// FeesDTO holds the fee breakdown; the total is derived.
type FeesDTO struct {
	ItemsTotal  decimal.Decimal `gorm:"type:numeric(12,2)"`
	RunnerFee   decimal.Decimal `gorm:"type:numeric(12,2)"`
	DeliveryFee decimal.Decimal `gorm:"type:numeric(12,2)"`
	PlatformFee decimal.Decimal `gorm:"type:numeric(12,2)"`
}

type AddressDTO struct {
	Street   string
	City     string
	Landmark string
}

// OrderItemDTO is a row of the order_items table. Position keeps the
// checkout order of lines.
type OrderItemDTO struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID `gorm:"type:uuid;index"`
	Position         int
	ProductID        uuid.UUID `gorm:"type:uuid"`
	SellerID         uuid.UUID `gorm:"type:uuid;index"`
	Quantity         int
	UnitPrice        decimal.Decimal `gorm:"type:numeric(12,2)"`
	SubstitutionNote string
	SellerReady      bool
	RunnerCollected  bool
}

func (OrderItemDTO) TableName() string {
	return "order_items"
}

// HistoryDTO is a row of order_status_history.
type HistoryDTO struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID `gorm:"type:uuid;index"`
	FromStatus *string
	ToStatus   string
	ActorID    *uuid.UUID `gorm:"type:uuid"`
	ActorRole  *string
	OccurredAt time.Time
}

func (HistoryDTO) TableName() string {
	return "order_status_history"
}

func fromDomain(o *order.Order) OrderDTO {
	items := o.Items()
	itemDTOs := make([]OrderItemDTO, 0, len(items))
	for i, item := range items {
		itemDTOs = append(itemDTOs, itemFromDomain(o.ID(), i, item))
	}

	fees := o.Fees()
	address := o.Address()
	return OrderDTO{
		ID:        o.ID().Bytes(),
		BuyerID:   o.BuyerID().Bytes(),
		RunnerID:  uuidPtr(o.RunnerID()),
		CourierID: uuidPtr(o.CourierID()),
		Status:    o.Status().String(),
		Fees: FeesDTO{
			ItemsTotal:  fees.ItemsTotal().Decimal(),
			RunnerFee:   fees.RunnerFee().Decimal(),
			DeliveryFee: fees.DeliveryFee().Decimal(),
			PlatformFee: fees.PlatformFee().Decimal(),
		},
		Address: AddressDTO{
			Street:   address.Street(),
			City:     address.City(),
			Landmark: address.Landmark(),
		},
		RunnerVerified:  o.IsRunnerVerified(),
		CourierVerified: o.IsCourierVerified(),
		CreatedAt:       o.CreatedAt(),
		ConfirmedAt:     o.ConfirmedAt(),
		DeliveredAt:     o.DeliveredAt(),
		CancelledAt:     o.CancelledAt(),
		Items:           itemDTOs,
	}
}

func itemFromDomain(orderID kernel.UUID, position int, item *order.Item) OrderItemDTO {
	return OrderItemDTO{
		ID:               item.ID().Bytes(),
		OrderID:          orderID.Bytes(),
		Position:         position,
		ProductID:        item.ProductID().Bytes(),
		SellerID:         item.SellerID().Bytes(),
		Quantity:         item.Quantity(),
		UnitPrice:        item.UnitPrice().Decimal(),
		SubstitutionNote: item.SubstitutionNote(),
		SellerReady:      item.IsSellerReady(),
		RunnerCollected:  item.IsRunnerCollected(),
	}
}

func toDomain(dto OrderDTO) (*order.Order, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	buyerID, err := kernel.UUIDFromBytes(dto.BuyerID[:])
	if err != nil {
		return nil, err
	}
	runnerID, err := kernelPtr(dto.RunnerID)
	if err != nil {
		return nil, err
	}
	courierID, err := kernelPtr(dto.CourierID)
	if err != nil {
		return nil, err
	}
	status, err := order.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}
	fees, err := feesToDomain(dto.Fees)
	if err != nil {
		return nil, err
	}
	address, err := kernel.NewAddress(dto.Address.Street, dto.Address.City, dto.Address.Landmark)
	if err != nil {
		return nil, err
	}

	items := make([]*order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, itemErr := itemToDomain(itemDTO)
		if itemErr != nil {
			return nil, itemErr
		}
		items = append(items, item)
	}

	return order.RestoreOrder(order.Snapshot{
		ID:              id,
		BuyerID:         buyerID,
		RunnerID:        runnerID,
		CourierID:       courierID,
		Status:          status,
		Fees:            fees,
		Address:         address,
		Items:           items,
		CreatedAt:       dto.CreatedAt,
		ConfirmedAt:     dto.ConfirmedAt,
		DeliveredAt:     dto.DeliveredAt,
		CancelledAt:     dto.CancelledAt,
		RunnerVerified:  dto.RunnerVerified,
		CourierVerified: dto.CourierVerified,
	})
}

func feesToDomain(dto FeesDTO) (order.Fees, error) {
	itemsTotal, err := kernel.NewMoney(dto.ItemsTotal)
	if err != nil {
		return order.Fees{}, err
	}
	runnerFee, err := kernel.NewMoney(dto.RunnerFee)
	if err != nil {
		return order.Fees{}, err
	}
	deliveryFee, err := kernel.NewMoney(dto.DeliveryFee)
	if err != nil {
		return order.Fees{}, err
	}
	platformFee, err := kernel.NewMoney(dto.PlatformFee)
	if err != nil {
		return order.Fees{}, err
	}
	return order.NewFees(itemsTotal, runnerFee, deliveryFee, platformFee)
}

func itemToDomain(dto OrderItemDTO) (*order.Item, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}
	productID, err := kernel.UUIDFromBytes(dto.ProductID[:])
	if err != nil {
		return nil, err
	}
	sellerID, err := kernel.UUIDFromBytes(dto.SellerID[:])
	if err != nil {
		return nil, err
	}
	unitPrice, err := kernel.NewMoney(dto.UnitPrice)
	if err != nil {
		return nil, err
	}
	return order.RestoreItem(id, productID, sellerID, dto.Quantity, unitPrice, dto.SubstitutionNote,
		dto.SellerReady, dto.RunnerCollected)
}

// historyFromEvent maps a status-changing event to a history row. Events
// that leave the status unchanged are skipped.
func historyFromEvent(event order.Event) (HistoryDTO, bool) {
	var from *string
	switch {
	case event.Kind == order.EventOrderCreated:
	case event.PreviousStatus != event.Status:
		name := event.PreviousStatus.String()
		from = &name
	default:
		return HistoryDTO{}, false
	}

	dto := HistoryDTO{
		OrderID:    event.OrderID.Bytes(),
		FromStatus: from,
		ToStatus:   event.Status.String(),
		OccurredAt: event.OccurredAt,
	}
	if !event.Actor.ID.IsZero() {
		actorID := event.Actor.ID.Bytes()
		role := event.Actor.Role.String()
		dto.ActorID = &actorID
		dto.ActorRole = &role
	}
	return dto, true
}

func uuidPtr(id *kernel.UUID) *uuid.UUID {
	if id == nil {
		return nil
	}
	raw := id.Bytes()
	return &raw
}

func kernelPtr(id *uuid.UUID) (*kernel.UUID, error) {
	if id == nil {
		return nil, nil //nolint:nilnil // absent slot
	}
	parsed, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}
