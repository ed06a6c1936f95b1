package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// maxDelay is the longest delivery delay SQS supports.
const maxDelay = 15 * time.Minute

// SQSAPI is the subset of the SQS client used by the SQSScheduler.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSScheduler implements the Scheduler interface using AWS SQS.
type SQSScheduler struct {
	Client   SQSAPI
	QueueURL string
}

// NewSQSScheduler creates a new SQSScheduler.
func NewSQSScheduler(client SQSAPI, queueURL string) *SQSScheduler {
	return &SQSScheduler{
		Client:   client,
		QueueURL: queueURL,
	}
}

// Make sure we conform to the interface
var _ Scheduler = (*SQSScheduler)(nil)

// ScheduleSaga sends the saga key to an SQS queue for later processing.
func (s *SQSScheduler) ScheduleSaga(ctx context.Context, key string, delay time.Duration) error {
	// Marshal the message to JSON.
	body, err := json.Marshal(SagaMessage{Key: key})
	if err != nil {
		return fmt.Errorf("failed to marshal saga message for SQS: %w", err)
	}

	if delay > maxDelay {
		delay = maxDelay
	}
	if delay < 0 {
		delay = 0
	}

	// Send the message to SQS.
	_, err = s.Client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:     aws.String(s.QueueURL),
		MessageBody:  aws.String(string(body)),
		DelaySeconds: int32(delay / time.Second),
	})

	if err != nil {
		return fmt.Errorf("failed to send message to SQS: %w", err)
	}

	return nil
}

// NoOpScheduler drops every request. Stale sagas are still picked up by the
// reconciliation sweep.
type NoOpScheduler struct{}

// ScheduleSaga does nothing.
func (NoOpScheduler) ScheduleSaga(ctx context.Context, key string, delay time.Duration) error {
	return nil
}
