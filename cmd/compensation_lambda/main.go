package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/chris/account-transfers/pkg/bootstrap"
	"github.com/chris/account-transfers/pkg/config"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	deps, err := bootstrap.NewAWS(context.Background(), cfg)
	if err != nil {
		slog.Error("failed to initialize AWS clients", "error", err)
		os.Exit(1)
	}

	worker := &Worker{Sagas: deps.Orchestrator(cfg)}
	lambda.Start(worker.HandleRequest)
}
