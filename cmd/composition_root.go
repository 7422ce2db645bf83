package cmd

import (
	"context"
	"fmt"
	"log/slog"

	apihttp "kayayo/internal/adapters/in/http"
	"kayayo/internal/adapters/out/fanout"
	"kayayo/internal/adapters/out/kafka"
	"kayayo/internal/adapters/out/postgres"
	"kayayo/internal/adapters/out/postgres/catalogrepo"
	"kayayo/internal/core/application/usecases/commands"
	"kayayo/internal/core/application/usecases/queries"
	"kayayo/internal/core/domain/services"
	"kayayo/internal/core/ports"
	"kayayo/internal/jobs"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg        Config
	gormDB     *gorm.DB
	uowFactory *postgres.GormUnitOfWorkFactory
	guard      services.OwnershipGuard
	hub        *fanout.Hub
	broker     ports.EventPublisher
	kafka      *kafka.Publisher
	logger     *slog.Logger
}

// NewCompositionRoot wires the adapters. The in-process hub always streams
// events; Kafka publishing is enabled only when brokers are configured.
func NewCompositionRoot(cfg Config, gormDB *gorm.DB, logger *slog.Logger) (*CompositionRoot, error) {
	root := &CompositionRoot{
		cfg:        cfg,
		gormDB:     gormDB,
		uowFactory: postgres.NewGormUnitOfWorkFactory(gormDB),
		guard:      services.NewOwnershipGuard(),
		hub:        fanout.NewHub(cfg.EventBuffer, logger),
		logger:     logger,
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer, err := kafka.NewSyncProducer(cfg.KafkaBrokers)
		if err != nil {
			return nil, fmt.Errorf("connect to kafka: %w", err)
		}
		root.kafka = kafka.NewPublisher(producer, cfg.KafkaOrderEventsTopic, logger)
		root.broker = root.kafka
	}

	return root, nil
}

func (c *CompositionRoot) orderUoWFactory() commands.OrderUoWFactory {
	return FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) handoverUoWFactory() commands.HandoverUoWFactory {
	return FuncHandoverUoWFactory(func() commands.HandoverUoW {
		return c.uowFactory.Create()
	})
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(
		c.orderUoWFactory(),
		catalogrepo.NewGormCatalogReader(c.gormDB),
		c.cfg.Fees,
	)
}

func (c *CompositionRoot) CreateRequestTransitionCommandHandler() commands.RequestTransitionCommandHandler {
	return commands.NewRequestTransitionCommandHandler(c.orderUoWFactory(), c.guard)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	return commands.NewClaimOrderCommandHandler(c.orderUoWFactory(), c.guard)
}

func (c *CompositionRoot) CreateMarkItemCommandHandler() commands.MarkItemCommandHandler {
	return commands.NewMarkItemCommandHandler(c.orderUoWFactory())
}

func (c *CompositionRoot) CreateIssueHandoverChallengeCommandHandler() commands.IssueHandoverChallengeCommandHandler {
	return commands.NewIssueHandoverChallengeCommandHandler(c.handoverUoWFactory(), c.guard, c.cfg.Handover)
}

func (c *CompositionRoot) CreateVerifyHandoverChallengeCommandHandler() commands.VerifyHandoverChallengeCommandHandler {
	return commands.NewVerifyHandoverChallengeCommandHandler(c.handoverUoWFactory(), c.guard, c.cfg.Handover)
}

func (c *CompositionRoot) CreateRelayEventsCommandHandler() commands.RelayEventsCommandHandler {
	var f commands.OutboxUoWFactory = FuncOutboxUoWFactory(func() commands.OutboxUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRelayEventsCommandHandler(f, c.hub, c.broker)
}

func (c *CompositionRoot) CreatePurgeChallengesCommandHandler() commands.PurgeChallengesCommandHandler {
	var f commands.PurgeUoWFactory = FuncPurgeUoWFactory(func() commands.PurgeUoW {
		return c.uowFactory.Create()
	})
	return commands.NewPurgeChallengesCommandHandler(f)
}

// orderReader reads outside of any transaction; the repository falls back
// to the plain connection when no transaction was begun.
func (c *CompositionRoot) orderReader() queries.OrderReader {
	return c.uowFactory.Create().OrderRepository()
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.orderReader(), c.guard)
}

func (c *CompositionRoot) CreateGetClaimableOrdersQueryHandler() queries.GetClaimableOrdersQueryHandler {
	return queries.NewGetClaimableOrdersQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetOrderHistoryQueryHandler() queries.GetOrderHistoryQueryHandler {
	return queries.NewGetOrderHistoryQueryHandler(c.gormDB, c.orderReader(), c.guard)
}

// CreateJobManager wires the relay and purge jobs.
func (c *CompositionRoot) CreateJobManager() *jobs.JobManager {
	return jobs.NewJobManager(
		c.CreateRelayEventsCommandHandler(),
		c.CreatePurgeChallengesCommandHandler(),
		jobs.Settings{
			RelayBatchSize:     c.cfg.OutboxBatchSize,
			ChallengeRetention: c.cfg.ChallengeRetention,
			OutboxRetention:    c.cfg.OutboxRetention,
		},
		c.logger,
	)
}

// CreateEcho builds the HTTP router with every use case mounted.
func (c *CompositionRoot) CreateEcho(doc *openapi3.T) (*echo.Echo, error) {
	markItem := c.CreateMarkItemCommandHandler()
	server := apihttp.NewServer(apihttp.Handlers{
		CreateOrder:       c.CreateCreateOrderCommandHandler(),
		RequestTransition: c.CreateRequestTransitionCommandHandler(),
		ClaimOrder:        c.CreateClaimOrderCommandHandler(),
		MarkItem:          markItem,
		IssueChallenge:    c.CreateIssueHandoverChallengeCommandHandler(),
		VerifyChallenge:   c.CreateVerifyHandoverChallengeCommandHandler(),
		GetOrder:          c.CreateGetOrderQueryHandler(),
		GetClaimable:      c.CreateGetClaimableOrdersQueryHandler(),
		GetHistory:        c.CreateGetOrderHistoryQueryHandler(),
	}, c.hub, c.logger)

	return apihttp.NewEcho(server, doc, c.healthCheck, c.logger)
}

func (c *CompositionRoot) healthCheck() error {
	sqlDB, err := c.gormDB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(context.Background())
}

// CloseStreams ends open event streams ahead of HTTP shutdown.
func (c *CompositionRoot) CloseStreams() {
	c.hub.Close()
}

// Close releases the Kafka producer.
func (c *CompositionRoot) Close() error {
	if c.kafka != nil {
		return c.kafka.Close()
	}
	return nil
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncHandoverUoWFactory func() commands.HandoverUoW

func (f FuncHandoverUoWFactory) Create() commands.HandoverUoW {
	return f()
}

type FuncOutboxUoWFactory func() commands.OutboxUoW

func (f FuncOutboxUoWFactory) Create() commands.OutboxUoW {
	return f()
}

type FuncPurgeUoWFactory func() commands.PurgeUoW

func (f FuncPurgeUoWFactory) Create() commands.PurgeUoW {
	return f()
}
