package jobs

import (
	"context"
	"log/slog"
	"time"

	"kayayo/internal/core/application/usecases/commands"

	"github.com/robfig/cron/v3"
)

type ChallengePurger interface {
	Handle(ctx context.Context, cmd commands.PurgeChallengesCommand) (commands.PurgeResult, error)
}

// ChallengePurgeJob removes long-expired challenges and old published outbox
// rows once a minute. It only keeps tables small; expiry itself is enforced
// when a code is verified.
type ChallengePurgeJob struct {
	handler            ChallengePurger
	challengeRetention time.Duration
	outboxRetention    time.Duration
	cron               *cron.Cron
	logger             *slog.Logger
}

func NewChallengePurgeJob(
	handler ChallengePurger,
	challengeRetention, outboxRetention time.Duration,
	logger *slog.Logger,
) *ChallengePurgeJob {
	return &ChallengePurgeJob{
		handler:            handler,
		challengeRetention: challengeRetention,
		outboxRetention:    outboxRetention,
		cron:               cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		logger:             logger.With("component", "challenge_purge_job"),
	}
}

// Start begins the purge job at second zero of every minute.
func (j *ChallengePurgeJob) Start() error {
	cmd, err := commands.NewPurgeChallengesCommand(j.challengeRetention, j.outboxRetention)
	if err != nil {
		return err
	}

	if _, err = j.cron.AddFunc("0 * * * * *", func() {
		j.run(context.Background(), cmd)
	}); err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Challenge purge job started (running every minute)")
	return nil
}

func (j *ChallengePurgeJob) run(ctx context.Context, cmd commands.PurgeChallengesCommand) {
	result, err := j.handler.Handle(ctx, cmd)
	if err != nil {
		j.logger.ErrorContext(ctx, "Challenge purge job failed", "error", err)
		return
	}
	if result.Challenges > 0 || result.Events > 0 {
		j.logger.InfoContext(ctx, "purged",
			"challenges", result.Challenges,
			"events", result.Events,
		)
	}
}

func (j *ChallengePurgeJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Challenge purge job stopped")
}
