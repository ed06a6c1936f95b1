package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/chris/account-transfers/pkg/config"
	"github.com/chris/account-transfers/pkg/idempotency"
	"github.com/chris/account-transfers/pkg/ledger"
	"github.com/chris/account-transfers/pkg/movements"
	"github.com/chris/account-transfers/pkg/notify"
	"github.com/chris/account-transfers/pkg/scheduler"
	dydbstore "github.com/chris/account-transfers/pkg/storage/dynamodb"
	"github.com/chris/account-transfers/pkg/transfers"
)

// AWS holds the clients built from the default AWS configuration.
type AWS struct {
	Store *dydbstore.Store
	SQS   *sqs.Client
}

// NewAWS loads the AWS configuration and creates the DynamoDB store and SQS client.
func NewAWS(ctx context.Context, cfg *config.Config) (*AWS, error) {
	if err := cfg.RequireTables(); err != nil {
		return nil, err
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load SDK config: %w", err)
	}

	store := dydbstore.New(dynamodb.NewFromConfig(awsCfg), dydbstore.Tables{
		Accounts:    cfg.AccountsTable,
		Movements:   cfg.MovementsTable,
		Idempotency: cfg.IdempotencyTable,
		Transfers:   cfg.TransfersTable,
		Sagas:       cfg.SagasTable,
	})

	return &AWS{Store: store, SQS: sqs.NewFromConfig(awsCfg)}, nil
}

// MovementService wires the movement service over the DynamoDB store.
func (a *AWS) MovementService() *movements.Service {
	return movements.NewService(a.Store, idempotency.NewGuard(a.Store), ledger.New(a.Store))
}

// Orchestrator wires the transfer orchestrator. Legs run against the account
// service over HTTP when its URL is configured, and in-process otherwise.
func (a *AWS) Orchestrator(cfg *config.Config) *transfers.Orchestrator {
	var legs transfers.Executor
	if cfg.AccountsServiceURL != "" {
		slog.Info("running transfer legs against the account service", "url", cfg.AccountsServiceURL)
		legs = transfers.NewHTTPExecutor(cfg.AccountsServiceURL, &http.Client{})
	} else {
		legs = &transfers.LocalExecutor{Movements: a.MovementService()}
	}
	legs = transfers.NewRetryingExecutor(legs, cfg.LegTimeout, cfg.LegMaxRetries)

	var sched scheduler.Scheduler = scheduler.NoOpScheduler{}
	if cfg.SagaQueueURL != "" {
		sched = scheduler.NewSQSScheduler(a.SQS, cfg.SagaQueueURL)
	}

	var publisher notify.Publisher = &notify.LogPublisher{Logger: slog.Default()}
	if cfg.EventsQueueURL != "" {
		publisher = notify.NewSQSPublisher(a.SQS, cfg.EventsQueueURL)
	}

	return transfers.NewOrchestrator(
		a.Store,
		idempotency.NewGuard(a.Store),
		a.Store,
		a.Store,
		legs,
		sched,
		publisher,
		transfers.Config{
			MaxCompensationAttempts: cfg.MaxCompensationAttempts,
			MaxResumeAttempts:       cfg.MaxResumeAttempts,
			ResumeDelay:             cfg.ResumeDelay,
		},
	)
}
