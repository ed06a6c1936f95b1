package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/account-transfers/pkg/bootstrap"
	"github.com/chris/account-transfers/pkg/config"
	"github.com/chris/account-transfers/pkg/scheduler"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.SagaQueueURL == "" {
		slog.Error("SQS_SAGA_QUEUE_URL environment variable not set")
		os.Exit(1)
	}

	deps, err := bootstrap.NewAWS(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize AWS clients", "error", err)
		os.Exit(1)
	}

	sweeper := &Sweeper{
		Sagas:          deps.Store,
		Scheduler:      scheduler.NewSQSScheduler(deps.SQS, cfg.SagaQueueURL),
		StaleSagaAfter: cfg.StaleSagaAfter,
	}
	lambda.Start(sweeper.HandleRequest)
}
