// Package jobs provides scheduled background tasks for the order lifecycle.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// 1. EventRelayJob - Runs every second and moves committed events from the
// outbox to the in-process fan-out and, when configured, to Kafka. Each sink
// has its own cursor in the outbox.
// 2. ChallengePurgeJob - Runs every minute and deletes long-expired handover
// challenges and old published outbox rows.
//
// # Usage
//
//	jobManager := jobs.NewJobManager(relayHandler, purgeHandler, jobs.Settings{
//		RelayBatchSize:     100,
//		ChallengeRetention: 24 * time.Hour,
//		OutboxRetention:    7 * 24 * time.Hour,
//	}, logger)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - A relay failure is logged; unpublished events stay in the outbox and are
// picked up by the next tick. Events already streamed are not streamed again
// - Runs never overlap: a tick is skipped while the previous one is running
// - Failed job starts will stop any already running jobs
package jobs
