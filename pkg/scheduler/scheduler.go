package scheduler

import (
	"context"
	"time"
)

// Scheduler defines the interface for a component that schedules a saga to be resumed later.
type Scheduler interface {
	// ScheduleSaga enqueues the saga key for asynchronous resumption after delay.
	ScheduleSaga(ctx context.Context, key string, delay time.Duration) error
}

// SagaMessage is the body of a resume request.
type SagaMessage struct {
	Key string `json:"saga_key"`
}
