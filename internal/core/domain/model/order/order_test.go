package order_test

import (
	"testing"
	"time"

	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

func money(t *testing.T, s string) kernel.Money {
	t.Helper()
	m, err := kernel.MoneyFromString(s)
	require.NoError(t, err)
	return m
}

func address(t *testing.T) kernel.Address {
	t.Helper()
	a, err := kernel.NewAddress("12 Ring Road", "Accra", "")
	require.NoError(t, err)
	return a
}

type fixture struct {
	buyer   order.Actor
	seller  order.Actor
	seller2 order.Actor
	runner  order.Actor
	courier order.Actor
	itemIDs []kernel.UUID
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	f := fixture{
		buyer:   order.Actor{ID: kernel.NewUUID(), Role: order.Buyer},
		seller:  order.Actor{ID: kernel.NewUUID(), Role: order.Seller},
		seller2: order.Actor{ID: kernel.NewUUID(), Role: order.Seller},
		runner:  order.Actor{ID: kernel.NewUUID(), Role: order.Runner},
		courier: order.Actor{ID: kernel.NewUUID(), Role: order.Courier},
		itemIDs: []kernel.UUID{kernel.NewUUID(), kernel.NewUUID()},
	}
	return f
}

// items builds fresh line items so flag changes never leak between orders.
func (f fixture) items(t *testing.T) []*order.Item {
	t.Helper()
	i1, err := order.NewItem(f.itemIDs[0], kernel.NewUUID(), f.seller.ID, 2, money(t, "5.00"), "")
	require.NoError(t, err)
	i2, err := order.NewItem(f.itemIDs[1], kernel.NewUUID(), f.seller2.ID, 1, money(t, "3.50"), "ripe ones")
	require.NoError(t, err)
	return []*order.Item{i1, i2}
}

func (f fixture) newOrder(t *testing.T) *order.Order {
	t.Helper()
	fees, err := order.NewFees(money(t, "13.50"), money(t, "2.00"), money(t, "4.00"), money(t, "0.68"))
	require.NoError(t, err)
	o, err := order.NewOrder(kernel.NewUUID(), f.buyer.ID, address(t), fees, f.items(t), now)
	require.NoError(t, err)
	return o
}

func (f fixture) advance(t *testing.T, o *order.Order, to order.Status) {
	t.Helper()
	for o.Status() != to {
		var err error
		switch o.Status() { //nolint:exhaustive // test walks the forward path only
		case order.Pending:
			err = o.ApplyTransition(order.Edge{From: order.Pending, To: order.SellerConfirmed}, f.seller, now)
		case order.SellerConfirmed:
			err = o.ClaimRunner(f.runner, now)
		case order.RunnerAccepted:
			err = o.ApplyTransition(order.Edge{From: order.RunnerAccepted, To: order.Shopping}, f.runner, now)
		case order.Shopping:
			require.NoError(t, o.MarkRunnerVerified(f.seller, now))
			for _, item := range o.Items() {
				seller := order.Actor{ID: item.SellerID(), Role: order.Seller}
				_, err = o.MarkItemReady(item.ID(), seller)
				require.NoError(t, err)
				_, err = o.MarkItemCollected(item.ID(), f.runner)
				require.NoError(t, err)
			}
			err = o.ApplyTransition(order.Edge{From: order.Shopping, To: order.ReadyForPickup}, f.runner, now)
		case order.ReadyForPickup:
			require.NoError(t, o.ClaimCourier(f.courier, now))
			require.NoError(t, o.MarkCourierVerified(f.runner, now))
			err = o.ApplyTransition(order.Edge{From: order.ReadyForPickup, To: order.InTransit}, f.courier, now)
		case order.InTransit:
			err = o.ApplyTransition(order.Edge{From: order.InTransit, To: order.Delivered}, f.courier, now)
		default:
			t.Fatalf("cannot advance from %s", o.Status())
		}
		require.NoError(t, err)
	}
	o.ClearEvents()
}

func TestNewOrder(t *testing.T) {
	f := newFixture(t)

	t.Run("should create pending order and record order_created", func(t *testing.T) {
		o := f.newOrder(t)

		require.NoError(t, o.Validate())
		assert.Equal(t, order.Pending, o.Status())
		assert.True(t, o.BuyerID().IsEqual(f.buyer.ID))
		assert.Nil(t, o.RunnerID())
		assert.Nil(t, o.CourierID())
		assert.Equal(t, "20.18", o.Fees().Total().String())
		assert.Len(t, o.Items(), 2)

		events := o.Events()
		require.Len(t, events, 1)
		assert.Equal(t, order.EventOrderCreated, events[0].Kind)
		assert.Equal(t, order.Pending, events[0].Status)
		assert.Equal(t, []kernel.UUID{f.buyer.ID}, events[0].Recipients)
	})

	t.Run("should reject items total mismatch", func(t *testing.T) {
		fees, err := order.NewFees(money(t, "99"), kernel.ZeroMoney(), kernel.ZeroMoney(), kernel.ZeroMoney())
		require.NoError(t, err)

		o, err := order.NewOrder(kernel.NewUUID(), f.buyer.ID, address(t), fees, f.items(t), now)

		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "does not match item subtotals 13.50")
	})

	t.Run("should report every missing part", func(t *testing.T) {
		o, err := order.NewOrder(kernel.UUID{}, kernel.UUID{}, kernel.Address{}, order.Fees{}, nil, now)

		require.Error(t, err)
		assert.Nil(t, o)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "buyer id")
		assert.Contains(t, err.Error(), "address must be created")
		assert.Contains(t, err.Error(), "fees must be created")
		assert.Contains(t, err.Error(), "items")
	})
}

func TestRestoreOrder(t *testing.T) {
	f := newFixture(t)
	fees, err := order.NewFees(money(t, "13.50"), kernel.ZeroMoney(), kernel.ZeroMoney(), kernel.ZeroMoney())
	require.NoError(t, err)
	base := order.Snapshot{
		ID:        kernel.NewUUID(),
		BuyerID:   f.buyer.ID,
		Status:    order.Shopping,
		RunnerID:  f.runner.ID.Ptr(),
		Fees:      fees,
		Address:   address(t),
		Items:     f.items(t),
		CreatedAt: now,
	}

	t.Run("should restore consistent state without events", func(t *testing.T) {
		o, err := order.RestoreOrder(base)

		require.NoError(t, err)
		assert.Equal(t, order.Shopping, o.Status())
		assert.True(t, o.HasRunner(f.runner.ID))
		assert.Empty(t, o.Events())
	})

	tests := []struct {
		name   string
		mutate func(s *order.Snapshot)
		want   string
	}{
		{"runner missing while shopping", func(s *order.Snapshot) { s.RunnerID = nil }, "order has no runner"},
		{"runner bound while pending", func(s *order.Snapshot) { s.Status = order.Pending }, "cannot have a runner"},
		{"courier bound while shopping", func(s *order.Snapshot) { s.CourierID = f.courier.ID.Ptr() }, "cannot have a courier"},
		{"courier missing in transit", func(s *order.Snapshot) { s.Status = order.InTransit }, "order has no courier"},
		{"unknown status", func(s *order.Snapshot) { s.Status = order.Unknown }, "not a valid status"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base
			tt.mutate(&s)

			o, err := order.RestoreOrder(s)

			require.ErrorIs(t, err, errs.ErrValueIsInvalid)
			assert.Nil(t, o)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("cancelled order may keep its slots", func(t *testing.T) {
		s := base
		s.Status = order.Cancelled
		s.CourierID = f.courier.ID.Ptr()

		_, err := order.RestoreOrder(s)
		require.NoError(t, err)
	})
}

func TestOrder_ApplyTransition(t *testing.T) {
	f := newFixture(t)

	t.Run("seller confirmation stamps confirmedAt", func(t *testing.T) {
		o := f.newOrder(t)
		o.ClearEvents()

		err := o.ApplyTransition(order.Edge{From: order.Pending, To: order.SellerConfirmed}, f.seller, now)

		require.NoError(t, err)
		assert.Equal(t, order.SellerConfirmed, o.Status())
		require.NotNil(t, o.ConfirmedAt())
		events := o.Events()
		require.Len(t, events, 1)
		assert.Equal(t, order.EventStatusChanged, events[0].Kind)
		assert.Equal(t, order.Pending, events[0].PreviousStatus)
		assert.Equal(t, order.SellerConfirmed, events[0].Status)
		assert.Equal(t, f.seller, events[0].Actor)
	})

	t.Run("stale from status is an invalid transition", func(t *testing.T) {
		o := f.newOrder(t)

		err := o.ApplyTransition(order.Edge{From: order.Shopping, To: order.ReadyForPickup}, f.runner, now)

		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Equal(t, order.Pending, o.Status())
	})

	t.Run("missing edge is an invalid transition", func(t *testing.T) {
		o := f.newOrder(t)

		err := o.ApplyTransition(order.Edge{From: order.Pending, To: order.Delivered}, f.courier, now)

		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "no such edge")
	})

	t.Run("first claim edge cannot be applied directly", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.SellerConfirmed)

		err := o.ApplyTransition(order.Edge{From: order.SellerConfirmed, To: order.RunnerAccepted}, f.runner, now)

		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Nil(t, o.RunnerID())
	})

	t.Run("ready_for_pickup needs every item collected", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.Shopping)
		require.NoError(t, o.MarkRunnerVerified(f.seller, now))
		_, err := o.MarkItemReady(f.itemIDs[0], f.seller)
		require.NoError(t, err)
		_, err = o.MarkItemCollected(f.itemIDs[0], f.runner)
		require.NoError(t, err)

		err = o.ApplyTransition(order.Edge{From: order.Shopping, To: order.ReadyForPickup}, f.runner, now)

		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "not every item is collected")
		assert.Equal(t, order.Shopping, o.Status())
	})

	t.Run("in_transit needs a claimed and verified courier", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.ReadyForPickup)
		edge := order.Edge{From: order.ReadyForPickup, To: order.InTransit}

		err := o.ApplyTransition(edge, f.courier, now)
		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "no courier has claimed")

		require.NoError(t, o.ClaimCourier(f.courier, now))
		err = o.ApplyTransition(edge, f.courier, now)
		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "courier handover is not verified")

		require.NoError(t, o.MarkCourierVerified(f.runner, now))
		require.NoError(t, o.ApplyTransition(edge, f.courier, now))
		assert.Equal(t, order.InTransit, o.Status())
	})

	t.Run("delivery and cancellation are stamped", func(t *testing.T) {
		delivered := f.newOrder(t)
		f.advance(t, delivered, order.Delivered)
		assert.NotNil(t, delivered.DeliveredAt())
		assert.Len(t, delivered.Recipients(), 3)

		cancelled := f.newOrder(t)
		require.NoError(t, cancelled.ApplyTransition(order.Edge{From: order.Pending, To: order.Cancelled}, f.buyer, now))
		assert.NotNil(t, cancelled.CancelledAt())
		assert.True(t, cancelled.Status().IsTerminal())
	})
}

func TestOrder_Claims(t *testing.T) {
	f := newFixture(t)

	t.Run("runner claim binds slot and accepts the order", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.SellerConfirmed)

		require.NoError(t, o.ClaimRunner(f.runner, now))

		assert.Equal(t, order.RunnerAccepted, o.Status())
		assert.True(t, o.HasRunner(f.runner.ID))
		events := o.Events()
		require.Len(t, events, 1)
		assert.Equal(t, order.EventRunnerAssigned, events[0].Kind)
		assert.ElementsMatch(t, []kernel.UUID{f.buyer.ID, f.runner.ID}, events[0].Recipients)
	})

	t.Run("second runner is told the slot is taken", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.RunnerAccepted)
		other := order.Actor{ID: kernel.NewUUID(), Role: order.Runner}

		err := o.ClaimRunner(other, now)

		require.ErrorIs(t, err, order.ErrAlreadyClaimed)
		assert.True(t, o.HasRunner(f.runner.ID))
	})

	t.Run("claiming before seller confirmation is an invalid transition", func(t *testing.T) {
		o := f.newOrder(t)

		require.ErrorIs(t, o.ClaimRunner(f.runner, now), order.ErrInvalidTransition)
	})

	t.Run("claims are role checked", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.SellerConfirmed)

		require.ErrorIs(t, o.ClaimRunner(f.courier, now), order.ErrUnauthorized)
		require.ErrorIs(t, o.ClaimCourier(f.runner, now), order.ErrUnauthorized)
	})

	t.Run("courier claim keeps ready_for_pickup", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.ReadyForPickup)

		require.NoError(t, o.ClaimCourier(f.courier, now))

		assert.Equal(t, order.ReadyForPickup, o.Status())
		assert.True(t, o.HasCourier(f.courier.ID))
		require.ErrorIs(t, o.ClaimCourier(f.courier, now), order.ErrAlreadyClaimed)
	})

	t.Run("ClaimConflict on unknown slot", func(t *testing.T) {
		o := f.newOrder(t)
		require.ErrorIs(t, o.ClaimConflict(order.Buyer), errs.ErrValueIsInvalid)
	})
}

func TestOrder_ItemFlags(t *testing.T) {
	f := newFixture(t)

	t.Run("seller marks own item ready once", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.SellerConfirmed)

		changed, err := o.MarkItemReady(f.itemIDs[0], f.seller)
		require.NoError(t, err)
		assert.True(t, changed)

		changed, err = o.MarkItemReady(f.itemIDs[0], f.seller)
		require.NoError(t, err)
		assert.False(t, changed)

		assert.True(t, o.SellerItemsReady(f.seller.ID))
		assert.False(t, o.SellerItemsReady(f.seller2.ID))
	})

	t.Run("seller cannot stage another seller's item", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.SellerConfirmed)

		_, err := o.MarkItemReady(f.itemIDs[1], f.seller)
		require.ErrorIs(t, err, order.ErrUnauthorized)
	})

	t.Run("staging is closed while pending", func(t *testing.T) {
		o := f.newOrder(t)

		_, err := o.MarkItemReady(f.itemIDs[0], f.seller)
		require.ErrorIs(t, err, order.ErrInvalidTransition)
	})

	t.Run("unknown item", func(t *testing.T) {
		o := f.newOrder(t)

		_, err := o.MarkItemReady(kernel.NewUUID(), f.seller)
		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("collection needs verified handover and a ready item", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.Shopping)
		itemID := f.itemIDs[0]

		_, err := o.MarkItemCollected(itemID, f.runner)
		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "seller handover is not verified")

		require.NoError(t, o.MarkRunnerVerified(f.seller, now))
		_, err = o.MarkItemCollected(itemID, f.runner)
		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Contains(t, err.Error(), "is not ready")

		_, err = o.MarkItemReady(itemID, f.seller)
		require.NoError(t, err)
		changed, err := o.MarkItemCollected(itemID, f.runner)
		require.NoError(t, err)
		assert.True(t, changed)
	})

	t.Run("only the bound runner collects", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.Shopping)
		other := order.Actor{ID: kernel.NewUUID(), Role: order.Runner}

		_, err := o.MarkItemCollected(f.itemIDs[0], other)
		require.ErrorIs(t, err, order.ErrUnauthorized)
	})
}

func TestOrder_HandoverFlags(t *testing.T) {
	f := newFixture(t)

	t.Run("runner handover verified once", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.RunnerAccepted)

		require.NoError(t, o.MarkRunnerVerified(f.seller, now))
		assert.True(t, o.IsRunnerVerified())
		events := o.Events()
		require.Len(t, events, 1)
		assert.Equal(t, order.EventHandoverVerified, events[0].Kind)
		assert.Equal(t, order.StageSellerToRunner, events[0].Stage)

		require.ErrorIs(t, o.MarkRunnerVerified(f.seller, now), order.ErrInvalidTransition)
	})

	t.Run("courier handover needs a claimed courier", func(t *testing.T) {
		o := f.newOrder(t)
		f.advance(t, o, order.ReadyForPickup)

		require.ErrorIs(t, o.MarkCourierVerified(f.runner, now), order.ErrInvalidTransition)
		assert.False(t, o.IsCourierVerified())
	})
}

func TestOrder_IsVisibleTo(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)
	f.advance(t, o, order.RunnerAccepted)

	assert.True(t, o.IsVisibleTo(f.buyer))
	assert.True(t, o.IsVisibleTo(f.seller2))
	assert.True(t, o.IsVisibleTo(f.runner))
	assert.False(t, o.IsVisibleTo(f.courier))
	assert.False(t, o.IsVisibleTo(order.Actor{ID: kernel.NewUUID(), Role: order.Buyer}))
}

func TestFeeSchedule_Apply(t *testing.T) {
	schedule := order.FeeSchedule{
		RunnerFee:          money(t, "2.00"),
		DeliveryFee:        money(t, "4.00"),
		PlatformFeePercent: decimal.NewFromInt(5),
	}

	fees, err := schedule.Apply(money(t, "13.50"))

	require.NoError(t, err)
	assert.Equal(t, "0.68", fees.PlatformFee().String())
	assert.Equal(t, "20.18", fees.Total().String())

	schedule.PlatformFeePercent = decimal.NewFromInt(101)
	_, err = schedule.Apply(money(t, "13.50"))
	require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
}

func TestOrder_FullLifecycle(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)

	f.advance(t, o, order.Delivered)

	assert.Equal(t, order.Delivered, o.Status())
	assert.True(t, o.Status().IsTerminal())
	assert.True(t, o.HasRunner(f.runner.ID))
	assert.True(t, o.HasCourier(f.courier.ID))
	assert.True(t, o.IsRunnerVerified())
	assert.True(t, o.IsCourierVerified())
	assert.True(t, o.AllItemsCollected())
	assert.NotNil(t, o.ConfirmedAt())
	assert.NotNil(t, o.DeliveredAt())
	assert.Nil(t, o.CancelledAt())

	err := o.ApplyTransition(order.Edge{From: order.Delivered, To: order.Cancelled}, f.buyer, now)
	require.ErrorIs(t, err, order.ErrInvalidTransition)
	assert.Empty(t, o.Events())
}

func TestOrder_RecipientsAreASet(t *testing.T) {
	f := newFixture(t)
	o := f.newOrder(t)
	f.advance(t, o, order.SellerConfirmed)
	buyerAsRunner := order.Actor{ID: f.buyer.ID, Role: order.Runner}

	require.NoError(t, o.ClaimRunner(buyerAsRunner, now))

	assert.Equal(t, []kernel.UUID{f.buyer.ID}, o.Recipients())
	events := o.Events()
	require.Len(t, events, 1)
	assert.Equal(t, []kernel.UUID{f.buyer.ID}, events[0].Recipients)
}
