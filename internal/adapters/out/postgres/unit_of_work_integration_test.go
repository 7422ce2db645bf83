package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "kayayo/internal/adapters/out/postgres"
	"kayayo/internal/adapters/out/postgres/orderrepo"
	"kayayo/internal/adapters/out/postgres/pgtest"
	"kayayo/internal/core/domain/model/kernel"
	"kayayo/internal/core/domain/model/order"
	"kayayo/internal/core/ports"

	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite covers transactions, the outbox flush on
// commit and the relay's view of the outbox.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	container, db, err := pgtest.Start(context.Background())
	suite.container = container
	suite.Require().NoError(err)
	suite.db = db
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(pgtest.Truncate(suite.db))
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransactionLifecycle() {
	ctx := suite.T().Context()
	uow := suite.factory.Create()

	suite.Require().Error(uow.Commit(ctx), "commit without begin")
	suite.Require().Error(uow.Rollback(ctx), "rollback without begin")

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "begin twice is a no-op")
	suite.Require().NoError(uow.Commit(ctx))
	suite.Require().Error(uow.Rollback(ctx), "rollback after commit")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_WritesEventsToOutboxAndHistory() {
	ctx := suite.T().Context()
	o := newOrder(suite)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Empty(o.Events(), "flushed events are cleared from the aggregate")
	suite.Equal(int64(1), suite.count(&orderrepo.HistoryDTO{}))

	events := suite.fetchAndPublish(ctx)
	suite.Require().Len(events, 1)
	suite.Equal(order.EventOrderCreated, events[0].Kind)
	suite.True(events[0].OrderID.IsEqual(o.ID()))
	suite.Require().Len(events[0].Recipients, 1)
	suite.True(events[0].Recipients[0].IsEqual(o.BuyerID()))
	suite.Equal(order.Buyer, events[0].Actor.Role)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsOrderAndEvents() {
	ctx := suite.T().Context()
	o := newOrder(suite)

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Rollback(ctx))

	_, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().Error(err)
	suite.Zero(suite.countOutbox())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestLostClaimWritesNoEvent() {
	ctx := suite.T().Context()
	o := newOrder(suite)
	suite.commitAdd(ctx, o)

	// The claim loses: the order is still pending.
	runner := order.Actor{ID: kernel.NewUUID(), Role: order.Runner}
	stale, err := order.RestoreOrder(order.Snapshot{
		ID:        o.ID(),
		BuyerID:   o.BuyerID(),
		Status:    order.SellerConfirmed,
		Fees:      o.Fees(),
		Address:   o.Address(),
		Items:     o.Items(),
		CreatedAt: o.CreatedAt(),
	})
	suite.Require().NoError(err)
	suite.Require().NoError(stale.ClaimRunner(runner, time.Now()))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	won, err := uow.OrderRepository().ClaimRunner(ctx, stale)
	suite.Require().NoError(err)
	suite.False(won)
	suite.Require().NoError(uow.Commit(ctx))

	suite.Equal(int64(1), suite.countOutbox(), "only order_created")
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOutbox_ConcurrentRelaysDoNotShareRows() {
	ctx := suite.T().Context()
	for range 3 {
		suite.commitAdd(ctx, newOrder(suite))
	}

	first := suite.factory.Create()
	suite.Require().NoError(first.Begin(ctx))
	defer func() { _ = first.Rollback(ctx) }()
	locked, err := first.OutboxRepository().FetchUnpublished(ctx, 2)
	suite.Require().NoError(err)
	suite.Require().Len(locked, 2)

	second := suite.factory.Create()
	suite.Require().NoError(second.Begin(ctx))
	defer func() { _ = second.Rollback(ctx) }()
	rest, err := second.OutboxRepository().FetchUnpublished(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(rest, 1)
	for _, e := range locked {
		suite.False(e.ID.IsEqual(rest[0].ID))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOutbox_PurgePublished() {
	ctx := suite.T().Context()
	suite.commitAdd(ctx, newOrder(suite))
	suite.commitAdd(ctx, newOrder(suite))

	suite.Len(suite.fetchAndPublish(ctx), 2)
	suite.Empty(suite.fetchAndPublish(ctx), "published events are not handed out again")

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	purged, err := uow.OutboxRepository().PurgePublished(ctx, time.Now().Add(time.Minute))
	suite.Require().NoError(err)
	suite.Require().NoError(uow.Commit(ctx))

	suite.Equal(int64(2), purged)
	suite.Zero(suite.countOutbox())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestOutbox_CursorsAdvanceIndependently() {
	ctx := suite.T().Context()
	suite.commitAdd(ctx, newOrder(suite))

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	streamed, err := uow.OutboxRepository().FetchUnstreamed(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(streamed, 1)
	suite.Require().NoError(uow.OutboxRepository().MarkStreamed(ctx, ids(streamed), time.Now()))
	suite.Require().NoError(uow.Commit(ctx))

	uow = suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()
	again, err := uow.OutboxRepository().FetchUnstreamed(ctx, 10)
	suite.Require().NoError(err)
	suite.Empty(again, "streamed events are not streamed twice")
	unpublished, err := uow.OutboxRepository().FetchUnpublished(ctx, 10)
	suite.Require().NoError(err)
	suite.Require().Len(unpublished, 1, "streaming leaves the broker cursor alone")
	suite.True(unpublished[0].ID.IsEqual(streamed[0].ID))

	purged, err := uow.OutboxRepository().PurgePublished(ctx, time.Now().Add(time.Minute))
	suite.Require().NoError(err)
	suite.Zero(purged, "unpublished events are kept")
}

func (suite *UnitOfWorkIntegrationTestSuite) commitAdd(ctx context.Context, o *order.Order) {
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.Commit(ctx))
}

// fetchAndPublish plays one relay run over both cursors and returns the
// events the broker side saw.
func (suite *UnitOfWorkIntegrationTestSuite) fetchAndPublish(ctx context.Context) []order.Event {
	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	defer func() { _ = uow.Rollback(ctx) }()

	outbox := uow.OutboxRepository()
	unstreamed, err := outbox.FetchUnstreamed(ctx, 100)
	suite.Require().NoError(err)
	suite.Require().NoError(outbox.MarkStreamed(ctx, ids(unstreamed), time.Now()))

	events, err := outbox.FetchUnpublished(ctx, 100)
	suite.Require().NoError(err)
	suite.Require().NoError(outbox.MarkPublished(ctx, ids(events), time.Now()))
	suite.Require().NoError(uow.Commit(ctx))
	return events
}

func ids(events []order.Event) []kernel.UUID {
	out := make([]kernel.UUID, 0, len(events))
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func (suite *UnitOfWorkIntegrationTestSuite) countOutbox() int64 {
	var n int64
	suite.Require().NoError(suite.db.Table("order_events_outbox").Count(&n).Error)
	return n
}

func (suite *UnitOfWorkIntegrationTestSuite) count(model any) int64 {
	var n int64
	suite.Require().NoError(suite.db.Model(model).Count(&n).Error)
	return n
}

func newOrder(suite *UnitOfWorkIntegrationTestSuite) *order.Order {
	price, err := kernel.MoneyFromString("6.00")
	suite.Require().NoError(err)
	item, err := order.NewItem(kernel.NewUUID(), kernel.NewUUID(), kernel.NewUUID(), 1, price, "")
	suite.Require().NoError(err)
	fees, err := order.NewFees(price, kernel.ZeroMoney(), kernel.ZeroMoney(), kernel.ZeroMoney())
	suite.Require().NoError(err)
	address, err := kernel.NewAddress("3 Liberation Rd", "Accra", "")
	suite.Require().NoError(err)
	o, err := order.NewOrder(kernel.NewUUID(), kernel.NewUUID(), address, fees, []*order.Item{item}, time.Now())
	suite.Require().NoError(err)
	return o
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
