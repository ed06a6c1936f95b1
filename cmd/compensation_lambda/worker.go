package main

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/scheduler"
)

// SagaResumer continues a saga from its last persisted state.
type SagaResumer interface {
	Resume(ctx context.Context, key string) error
}

// Worker resumes the sagas whose keys arrive on the saga queue.
type Worker struct {
	Sagas SagaResumer
}

// HandleRequest processes SQS messages and resumes the sagas they name. Only
// messages that failed on infrastructure errors are reported back for redelivery.
func (w *Worker) HandleRequest(ctx context.Context, sqsEvent events.SQSEvent) (events.SQSEventResponse, error) {
	var response events.SQSEventResponse

	for _, message := range sqsEvent.Records {
		var msg scheduler.SagaMessage
		if err := json.Unmarshal([]byte(message.Body), &msg); err != nil || msg.Key == "" {
			// Redelivering a malformed message cannot help.
			slog.Error("dropping malformed saga message", "messageId", message.MessageId, "error", err)
			continue
		}

		err := w.Sagas.Resume(ctx, msg.Key)
		switch {
		case err == nil:
			slog.Info("saga resumed to completion", "sagaKey", msg.Key)
		case models.IsRejection(err):
			// The saga reached a business outcome or rescheduled itself.
			slog.Info("saga resumed", "sagaKey", msg.Key, "outcome", err.Error())
		default:
			slog.Error("failed to resume saga", "sagaKey", msg.Key, "messageId", message.MessageId, "error", err)
			response.BatchItemFailures = append(response.BatchItemFailures, events.SQSBatchItemFailure{
				ItemIdentifier: message.MessageId,
			})
		}
	}

	return response, nil
}
