package transfers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/chris/account-transfers/pkg/api"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/movements"
	"github.com/sony/gobreaker"
)

// Executor runs one leg of a transfer against the account service. A
// *models.Error return is a definitive rejection; any other error means the
// outcome of the leg is unknown.
type Executor interface {
	Execute(ctx context.Context, req movements.Request) error
}

// LocalExecutor runs legs in-process.
type LocalExecutor struct {
	Movements *movements.Service
}

// Execute runs the movement directly.
func (e *LocalExecutor) Execute(ctx context.Context, req movements.Request) error {
	return e.Movements.Execute(ctx, req)
}

// HTTPExecutor runs legs against a remote account service.
type HTTPExecutor struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPExecutor creates a new HTTPExecutor.
func NewHTTPExecutor(baseURL string, client *http.Client) *HTTPExecutor {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPExecutor{BaseURL: strings.TrimSuffix(baseURL, "/"), Client: client}
}

// Execute posts the movement to the account service on behalf of the requestor.
func (e *HTTPExecutor) Execute(ctx context.Context, req movements.Request) error {
	body := api.NewMovement{
		IdempotencyKey: req.IdempotencyKey,
		AccountNumber:  req.AccountNumber,
		Amount:         req.Amount,
		Type:           api.MovementType(req.Type),
	}
	if req.AccountId != "" {
		body.AccountId = &req.AccountId
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal movement: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/accounts/movements", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build movement request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set(api.AccountIdHeader, req.Requestor)
	if req.Origin != "" {
		httpReq.Header.Set(api.MovementOriginHeader, string(req.Origin))
	}

	resp, err := e.Client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to call account service: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		var apiErr api.Error
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err != nil || apiErr.Kind == "" {
			return fmt.Errorf("account service returned %d without an error kind", resp.StatusCode)
		}
		return &models.Error{Kind: models.ErrorKind(apiErr.Kind), Message: apiErr.Message}
	default:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("account service returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
}

// RetryingExecutor bounds every attempt with a timeout and retries failures
// whose outcome is unknown. Legs are idempotency-keyed, so a retry can never
// apply a movement twice.
type RetryingExecutor struct {
	Next       Executor
	Timeout    time.Duration
	MaxRetries uint64
	Breaker    *gobreaker.CircuitBreaker
	NewBackOff func() backoff.BackOff
}

// NewRetryingExecutor creates a new RetryingExecutor with an exponential
// backoff and a circuit breaker shared by every leg.
func NewRetryingExecutor(next Executor, timeout time.Duration, maxRetries uint64) *RetryingExecutor {
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "account-service",
		MaxRequests: 1,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			slog.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
		// Rejections prove the account service is healthy.
		IsSuccessful: func(err error) bool {
			return err == nil || models.IsRejection(err)
		},
	})

	return &RetryingExecutor{
		Next:       next,
		Timeout:    timeout,
		MaxRetries: maxRetries,
		Breaker:    breaker,
		NewBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 100 * time.Millisecond
			b.MaxInterval = 2 * time.Second
			return b
		},
	}
}

// Execute runs the leg until it succeeds, is rejected, or retries run out.
func (e *RetryingExecutor) Execute(ctx context.Context, req movements.Request) error {
	start := time.Now()
	attempts := 0

	operation := func() error {
		attempts++
		_, err := e.Breaker.Execute(func() (interface{}, error) {
			attemptCtx, cancel := context.WithTimeout(ctx, e.Timeout)
			defer cancel()
			return nil, e.Next.Execute(attemptCtx, req)
		})
		if err == nil {
			return nil
		}
		if models.IsRejection(err) {
			return backoff.Permanent(err)
		}
		slog.Warn("leg attempt failed", "idempotencyKey", req.IdempotencyKey, "attempt", attempts, "error", err)
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(e.NewBackOff(), e.MaxRetries), ctx)
	err := backoff.Retry(operation, b)
	observeLeg(req.Type, err, time.Since(start))

	if err != nil && !models.IsRejection(err) && errors.Is(err, gobreaker.ErrOpenState) {
		return fmt.Errorf("account service unavailable: %w", err)
	}
	return err
}
