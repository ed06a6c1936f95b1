package main

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-lambda-go/events"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockResumer struct {
	mock.Mock
}

func (m *mockResumer) Resume(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func TestHandleRequest(t *testing.T) {
	t.Run("Resumes Every Saga", func(t *testing.T) {
		resumer := new(mockResumer)
		resumer.On("Resume", mock.Anything, "t-1").Return(nil).Once()
		resumer.On("Resume", mock.Anything, "t-2").Return(models.ErrCreditFailed).Once()
		resumer.On("Resume", mock.Anything, "t-3").Return(models.ErrTransferPending).Once()
		worker := &Worker{Sagas: resumer}

		resp, err := worker.HandleRequest(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
			{MessageId: "m-1", Body: `{"saga_key":"t-1"}`},
			{MessageId: "m-2", Body: `{"saga_key":"t-2"}`},
			{MessageId: "m-3", Body: `{"saga_key":"t-3"}`},
		}})

		assert.NoError(t, err)
		assert.Empty(t, resp.BatchItemFailures)
		resumer.AssertExpectations(t)
	})

	t.Run("Infrastructure Failures Are Redelivered", func(t *testing.T) {
		resumer := new(mockResumer)
		resumer.On("Resume", mock.Anything, "t-1").Return(errors.New("dynamodb unavailable")).Once()
		resumer.On("Resume", mock.Anything, "t-2").Return(nil).Once()
		worker := &Worker{Sagas: resumer}

		resp, err := worker.HandleRequest(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
			{MessageId: "m-1", Body: `{"saga_key":"t-1"}`},
			{MessageId: "m-2", Body: `{"saga_key":"t-2"}`},
		}})

		assert.NoError(t, err)
		assert.Equal(t, []events.SQSBatchItemFailure{{ItemIdentifier: "m-1"}}, resp.BatchItemFailures)
		resumer.AssertExpectations(t)
	})

	t.Run("Malformed Messages Are Dropped", func(t *testing.T) {
		resumer := new(mockResumer)
		worker := &Worker{Sagas: resumer}

		resp, err := worker.HandleRequest(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
			{MessageId: "m-1", Body: `not json`},
			{MessageId: "m-2", Body: `{}`},
		}})

		assert.NoError(t, err)
		assert.Empty(t, resp.BatchItemFailures)
		resumer.AssertNotCalled(t, "Resume", mock.Anything, mock.Anything)
	})
}
