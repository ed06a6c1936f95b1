package transfers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chris/account-transfers/pkg/api"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/movements"
	"github.com/chris/account-transfers/pkg/transfers/mocks"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func creditLeg() movements.Request {
	return movements.Request{
		Requestor:      "acc-x",
		AccountId:      "acc-y",
		Amount:         decimal.RequireFromString("50"),
		Type:           models.CREDIT,
		IdempotencyKey: "t-1:credit",
		Origin:         movements.OriginTransfer,
	}
}

func newTestRetryingExecutor(next Executor, maxRetries uint64) *RetryingExecutor {
	e := NewRetryingExecutor(next, time.Second, maxRetries)
	e.NewBackOff = func() backoff.BackOff { return &backoff.ZeroBackOff{} }
	return e
}

func TestRetryingExecutor(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		next := new(mocks.Executor)
		next.On("Execute", mock.MatchedBy(func(ctx context.Context) bool {
			_, ok := ctx.Deadline()
			return ok
		}), mock.Anything).Return(nil).Once()

		err := newTestRetryingExecutor(next, 3).Execute(ctx, creditLeg())

		assert.NoError(t, err)
		next.AssertExpectations(t)
	})

	t.Run("Rejection Is Not Retried", func(t *testing.T) {
		next := new(mocks.Executor)
		next.On("Execute", mock.Anything, mock.Anything).Return(models.ErrInactiveAccount).Once()

		err := newTestRetryingExecutor(next, 3).Execute(ctx, creditLeg())

		assert.ErrorIs(t, err, models.ErrInactiveAccount)
		next.AssertNumberOfCalls(t, "Execute", 1)
	})

	t.Run("Transient Failure Is Retried", func(t *testing.T) {
		next := new(mocks.Executor)
		next.On("Execute", mock.Anything, mock.Anything).Return(errors.New("timeout")).Twice()
		next.On("Execute", mock.Anything, mock.Anything).Return(nil).Once()

		err := newTestRetryingExecutor(next, 3).Execute(ctx, creditLeg())

		assert.NoError(t, err)
		next.AssertNumberOfCalls(t, "Execute", 3)
	})

	t.Run("Retries Exhausted", func(t *testing.T) {
		next := new(mocks.Executor)
		next.On("Execute", mock.Anything, mock.Anything).Return(errors.New("timeout"))

		err := newTestRetryingExecutor(next, 2).Execute(ctx, creditLeg())

		assert.Error(t, err)
		assert.False(t, models.IsRejection(err))
		next.AssertNumberOfCalls(t, "Execute", 3)
	})

	t.Run("Breaker Opens", func(t *testing.T) {
		next := new(mocks.Executor)
		next.On("Execute", mock.Anything, mock.Anything).Return(errors.New("timeout"))
		e := newTestRetryingExecutor(next, 0)

		for i := 0; i < 5; i++ {
			assert.Error(t, e.Execute(ctx, creditLeg()))
		}
		err := e.Execute(ctx, creditLeg())

		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
		next.AssertNumberOfCalls(t, "Execute", 5)
	})

	t.Run("Rejections Keep Breaker Closed", func(t *testing.T) {
		next := new(mocks.Executor)
		next.On("Execute", mock.Anything, mock.Anything).Return(models.ErrUnauthorized)
		e := newTestRetryingExecutor(next, 0)

		for i := 0; i < 10; i++ {
			assert.ErrorIs(t, e.Execute(ctx, creditLeg()), models.ErrUnauthorized)
		}
		assert.Equal(t, gobreaker.StateClosed, e.Breaker.State())
	})
}

func TestHTTPExecutor(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/accounts/movements", r.URL.Path)
			assert.Equal(t, "acc-x", r.Header.Get(api.AccountIdHeader))
			assert.Equal(t, "transfer", r.Header.Get(api.MovementOriginHeader))

			var body api.NewMovement
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "t-1:credit", body.IdempotencyKey)
			assert.Equal(t, api.MovementType("C"), body.Type)
			if assert.NotNil(t, body.AccountId) {
				assert.Equal(t, "acc-y", *body.AccountId)
			}
			assert.True(t, body.Amount.Equal(decimal.NewFromInt(50)))

			w.WriteHeader(http.StatusNoContent)
		}))
		defer server.Close()

		err := NewHTTPExecutor(server.URL+"/", server.Client()).Execute(ctx, creditLeg())

		assert.NoError(t, err)
	})

	t.Run("Rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(api.Error{Kind: "INACTIVE_ACCOUNT", Message: "account is inactive"})
		}))
		defer server.Close()

		err := NewHTTPExecutor(server.URL, nil).Execute(ctx, creditLeg())

		kind, ok := models.KindOf(err)
		require.True(t, ok)
		assert.Equal(t, models.KindInactiveAccount, kind)
	})

	t.Run("Server Error Is Not A Rejection", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusInternalServerError)
		}))
		defer server.Close()

		err := NewHTTPExecutor(server.URL, nil).Execute(ctx, creditLeg())

		assert.Error(t, err)
		assert.False(t, models.IsRejection(err))
		assert.Contains(t, err.Error(), "500")
	})

	t.Run("Client Error Without Kind", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		err := NewHTTPExecutor(server.URL, nil).Execute(ctx, creditLeg())

		assert.Error(t, err)
		assert.False(t, models.IsRejection(err))
	})

	t.Run("Unreachable", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close()

		err := NewHTTPExecutor(server.URL, nil).Execute(ctx, creditLeg())

		assert.Error(t, err)
		assert.False(t, models.IsRejection(err))
	})
}
