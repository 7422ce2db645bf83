package jobs

import (
	"context"
	"log/slog"

	"kayayo/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

// EventRelayer publishes a batch of committed outbox events.
type EventRelayer interface {
	Handle(ctx context.Context, cmd commands.RelayEventsCommand) (int, error)
}

// EventRelayJob drains the outbox every second. A run that fills a whole
// batch is repeated immediately so a burst does not wait for the next tick.
type EventRelayJob struct {
	handler   EventRelayer
	batchSize int
	cron      *cron.Cron
	logger    *slog.Logger
}

func NewEventRelayJob(handler EventRelayer, batchSize int, logger *slog.Logger) *EventRelayJob {
	return &EventRelayJob{
		handler:   handler,
		batchSize: batchSize,
		cron:      cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:    logger.With("component", "event_relay_job"),
	}
}

// Start begins the event relay job to run every second.
func (j *EventRelayJob) Start() error {
	cmd, err := commands.NewRelayEventsCommand(j.batchSize)
	if err != nil {
		return err
	}

	if _, err = j.cron.AddFunc("* * * * * *", func() {
		j.run(context.Background(), cmd)
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Event relay job started (running every second)", "batch_size", j.batchSize)
	return nil
}

func (j *EventRelayJob) run(ctx context.Context, cmd commands.RelayEventsCommand) {
	for {
		published, err := j.handler.Handle(ctx, cmd)
		if published > 0 {
			j.logger.DebugContext(ctx, "events relayed", "count", published)
		}
		if err != nil {
			j.logger.ErrorContext(ctx, "Event relay job failed", "error", err, "published", published)
			return
		}
		if published < cmd.BatchSize() {
			return
		}
	}
}

// Stop stops the relay and waits for a running batch to finish.
func (j *EventRelayJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Event relay job stopped")
}
