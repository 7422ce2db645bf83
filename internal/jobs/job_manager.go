package jobs

import (
	"fmt"
	"log/slog"
	"time"
)

// Settings configures the scheduled jobs.
type Settings struct {
	RelayBatchSize     int
	ChallengeRetention time.Duration
	OutboxRetention    time.Duration
}

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	eventRelayJob     *EventRelayJob
	challengePurgeJob *ChallengePurgeJob
}

// NewJobManager creates a new job manager with all required jobs.
// Takes command handlers as dependencies to wire up the job execution.
func NewJobManager(
	relayHandler EventRelayer,
	purgeHandler ChallengePurger,
	settings Settings,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		eventRelayJob:     NewEventRelayJob(relayHandler, settings.RelayBatchSize, logger),
		challengePurgeJob: NewChallengePurgeJob(purgeHandler, settings.ChallengeRetention, settings.OutboxRetention, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.eventRelayJob.Start(); err != nil {
		return fmt.Errorf("failed to start event relay job: %w", err)
	}

	if err := jm.challengePurgeJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.eventRelayJob.Stop()
		return fmt.Errorf("failed to start challenge purge job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.challengePurgeJob.Stop()
	jm.eventRelayJob.Stop()
}
