package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"kayayo/internal/core/application/usecases/commands"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockEventRelayer struct{ mock.Mock }

func (m *MockEventRelayer) Handle(ctx context.Context, cmd commands.RelayEventsCommand) (int, error) {
	args := m.Called(ctx, cmd)
	return args.Int(0), args.Error(1)
}

type MockChallengePurger struct{ mock.Mock }

func (m *MockChallengePurger) Handle(ctx context.Context, cmd commands.PurgeChallengesCommand) (commands.PurgeResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.PurgeResult), args.Error(1)
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestEventRelayJob_RepeatsWhileBatchesAreFull(t *testing.T) {
	t.Parallel()

	relayer := new(MockEventRelayer)
	cmd, err := commands.NewRelayEventsCommand(10)
	require.NoError(t, err)
	mock.InOrder(
		relayer.On("Handle", mock.Anything, cmd).Return(10, nil).Once(),
		relayer.On("Handle", mock.Anything, cmd).Return(10, nil).Once(),
		relayer.On("Handle", mock.Anything, cmd).Return(3, nil).Once(),
	)

	NewEventRelayJob(relayer, 10, discard()).run(t.Context(), cmd)

	relayer.AssertExpectations(t)
}

func TestEventRelayJob_StopsOnError(t *testing.T) {
	t.Parallel()

	relayer := new(MockEventRelayer)
	cmd, err := commands.NewRelayEventsCommand(10)
	require.NoError(t, err)
	relayer.On("Handle", mock.Anything, cmd).Return(10, errors.New("broker down")).Once()

	NewEventRelayJob(relayer, 10, discard()).run(t.Context(), cmd)

	relayer.AssertNumberOfCalls(t, "Handle", 1)
}

func TestEventRelayJob_StartRejectsInvalidBatch(t *testing.T) {
	t.Parallel()

	job := NewEventRelayJob(new(MockEventRelayer), 0, discard())

	require.Error(t, job.Start())
}

func TestChallengePurgeJob_Run(t *testing.T) {
	t.Parallel()

	purger := new(MockChallengePurger)
	cmd, err := commands.NewPurgeChallengesCommand(time.Hour, 24*time.Hour)
	require.NoError(t, err)
	purger.On("Handle", mock.Anything, cmd).Return(commands.PurgeResult{Challenges: 2, Events: 5}, nil).Once()

	NewChallengePurgeJob(purger, time.Hour, 24*time.Hour, discard()).run(t.Context(), cmd)

	purger.AssertExpectations(t)
}

func TestJobManager_StartAndStop(t *testing.T) {
	t.Parallel()

	relayer := new(MockEventRelayer)
	relayer.On("Handle", mock.Anything, mock.Anything).Return(0, nil).Maybe()
	purger := new(MockChallengePurger)
	purger.On("Handle", mock.Anything, mock.Anything).Return(commands.PurgeResult{}, nil).Maybe()

	manager := NewJobManager(relayer, purger, Settings{
		RelayBatchSize:     50,
		ChallengeRetention: time.Hour,
		OutboxRetention:    time.Hour,
	}, discard())

	require.NoError(t, manager.StartAll())
	assert.NotPanics(t, manager.StopAll)
}

func TestJobManager_StartFailsOnBadRetention(t *testing.T) {
	t.Parallel()

	manager := NewJobManager(new(MockEventRelayer), new(MockChallengePurger), Settings{RelayBatchSize: 50}, discard())

	require.Error(t, manager.StartAll())
}
