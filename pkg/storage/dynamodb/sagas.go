package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/storage"
	"github.com/shopspring/decimal"
)

const staleSagaIndex = "state-updated_at-index"

type sagaItem struct {
	SagaKey              string                `dynamodbav:"saga_key"`
	SourceAccountID      string                `dynamodbav:"source_account_id"`
	DestinationAccountID string                `dynamodbav:"destination_account_id"`
	Amount               attributevalue.Number `dynamodbav:"amount"`
	State                string                `dynamodbav:"state"`
	ResumeAttempts       int                   `dynamodbav:"resume_attempts"`
	CompensationAttempts int                   `dynamodbav:"compensation_attempts"`
	LastError            string                `dynamodbav:"last_error,omitempty"`
	CreatedAt            time.Time             `dynamodbav:"created_at"`
	UpdatedAt            time.Time             `dynamodbav:"updated_at"`
}

func toSagaItem(saga *models.Saga) sagaItem {
	return sagaItem{
		SagaKey:              saga.Key,
		SourceAccountID:      saga.SourceAccountId,
		DestinationAccountID: saga.DestinationAccountId,
		Amount:               attributevalue.Number(saga.Amount.StringFixed(2)),
		State:                string(saga.State),
		ResumeAttempts:       saga.ResumeAttempts,
		CompensationAttempts: saga.CompensationAttempts,
		LastError:            saga.LastError,
		CreatedAt:            saga.CreatedAt,
		UpdatedAt:            saga.UpdatedAt,
	}
}

func (i sagaItem) toModel() (models.Saga, error) {
	amount, err := decimal.NewFromString(string(i.Amount))
	if err != nil {
		return models.Saga{}, fmt.Errorf("failed to parse amount of saga %s: %w", i.SagaKey, err)
	}
	return models.Saga{
		Key:                  i.SagaKey,
		SourceAccountId:      i.SourceAccountID,
		DestinationAccountId: i.DestinationAccountID,
		Amount:               amount,
		State:                models.SagaState(i.State),
		ResumeAttempts:       i.ResumeAttempts,
		CompensationAttempts: i.CompensationAttempts,
		LastError:            i.LastError,
		CreatedAt:            i.CreatedAt,
		UpdatedAt:            i.UpdatedAt,
	}, nil
}

// CreateSaga writes a new saga unless its key is already taken.
func (s *Store) CreateSaga(ctx context.Context, saga *models.Saga) error {
	item, err := attributevalue.MarshalMap(toSagaItem(saga))
	if err != nil {
		return fmt.Errorf("failed to marshal saga: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.SagasTableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(saga_key)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("saga %s: %w", saga.Key, storage.ErrSagaExists)
		}
		return fmt.Errorf("failed to put saga: %w", err)
	}

	return nil
}

// GetSaga retrieves a saga by its key with a strongly consistent read.
func (s *Store) GetSaga(ctx context.Context, key string) (*models.Saga, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.SagasTableName),
		Key: map[string]types.AttributeValue{
			"saga_key": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get saga from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("saga %s: %w", key, storage.ErrSagaNotFound)
	}

	var item sagaItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal saga: %w", err)
	}

	saga, err := item.toModel()
	if err != nil {
		return nil, err
	}
	return &saga, nil
}

// TransitionSaga persists the mutable fields of saga, guarded on the stored
// state still being from. Two workers resuming the same saga cannot both win.
func (s *Store) TransitionSaga(ctx context.Context, saga *models.Saga, from models.SagaState) error {
	updatedAt, err := attributevalue.Marshal(saga.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to marshal saga timestamp: %w", err)
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.SagasTableName),
		Key: map[string]types.AttributeValue{
			"saga_key": &types.AttributeValueMemberS{Value: saga.Key},
		},
		UpdateExpression:    aws.String("SET #state = :to, resume_attempts = :resume_attempts, compensation_attempts = :compensation_attempts, last_error = :last_error, updated_at = :updated_at"),
		ConditionExpression: aws.String("#state = :from"),
		ExpressionAttributeNames: map[string]string{
			"#state": "state",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":to":                    &types.AttributeValueMemberS{Value: string(saga.State)},
			":from":                  &types.AttributeValueMemberS{Value: string(from)},
			":resume_attempts":       &types.AttributeValueMemberN{Value: strconv.Itoa(saga.ResumeAttempts)},
			":compensation_attempts": &types.AttributeValueMemberN{Value: strconv.Itoa(saga.CompensationAttempts)},
			":last_error":            &types.AttributeValueMemberS{Value: saga.LastError},
			":updated_at":            updatedAt,
		},
	}

	if _, err := s.Client.UpdateItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("saga %s left %s: %w", saga.Key, from, storage.ErrSagaStateConflict)
		}
		return fmt.Errorf("failed to update saga state to %s: %w", saga.State, err)
	}

	return nil
}

// ListStaleSagas queries every resumable state for sagas that have not been
// updated within maxAge.
func (s *Store) ListStaleSagas(ctx context.Context, maxAge time.Duration) ([]models.Saga, error) {
	cutoff, err := attributevalue.Marshal(time.Now().UTC().Add(-maxAge))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal cutoff time: %w", err)
	}

	var sagas []models.Saga
	for _, state := range models.PendingSagaStates {
		input := &dynamodb.QueryInput{
			TableName:              aws.String(s.SagasTableName),
			IndexName:              aws.String(staleSagaIndex),
			KeyConditionExpression: aws.String("#state = :state AND updated_at < :cutoff"),
			ExpressionAttributeNames: map[string]string{
				"#state": "state",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":state":  &types.AttributeValueMemberS{Value: string(state)},
				":cutoff": cutoff,
			},
		}

		for {
			result, err := s.Client.Query(ctx, input)
			if err != nil {
				return nil, fmt.Errorf("failed to query for stale sagas in state %s: %w", state, err)
			}

			var items []sagaItem
			if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
				return nil, fmt.Errorf("failed to unmarshal stale sagas: %w", err)
			}
			for _, item := range items {
				saga, err := item.toModel()
				if err != nil {
					return nil, err
				}
				sagas = append(sagas, saga)
			}

			if len(result.LastEvaluatedKey) == 0 {
				break
			}
			input.ExclusiveStartKey = result.LastEvaluatedKey
		}
	}

	return sagas, nil
}
