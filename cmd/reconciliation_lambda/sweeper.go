package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/scheduler"
)

// StaleSagaLister finds sagas that stopped moving.
type StaleSagaLister interface {
	ListStaleSagas(ctx context.Context, maxAge time.Duration) ([]models.Saga, error)
}

// Sweeper re-enqueues sagas left behind by crashed or timed out processes.
type Sweeper struct {
	Sagas          StaleSagaLister
	Scheduler      scheduler.Scheduler
	StaleSagaAfter time.Duration
}

// HandleRequest is triggered by an EventBridge Schedule.
func (s *Sweeper) HandleRequest(ctx context.Context) error {
	slog.Info("starting reconciliation of stale sagas")

	stale, err := s.Sagas.ListStaleSagas(ctx, s.StaleSagaAfter)
	if err != nil {
		return fmt.Errorf("failed to list stale sagas: %w", err)
	}

	if len(stale) == 0 {
		slog.Info("no stale sagas found")
		return nil
	}

	slog.Info("re-enqueuing stale sagas", "count", len(stale))

	failed := 0
	for _, saga := range stale {
		if err := s.Scheduler.ScheduleSaga(ctx, saga.Key, 0); err != nil {
			// Keep going; the next sweep picks it up again.
			slog.Error("failed to re-enqueue saga", "sagaKey", saga.Key, "error", err)
			failed++
			continue
		}
		slog.Info("re-enqueued saga", "sagaKey", saga.Key, "state", saga.State, "updatedAt", saga.UpdatedAt)
	}

	slog.Info("reconciliation finished", "enqueued", len(stale)-failed, "failed", failed)
	return nil
}
