package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/storage"
)

// idempotencyRecordTTL bounds how long a key is remembered.
const idempotencyRecordTTL = 7 * 24 * time.Hour

// ClaimKey inserts the idempotency record unless its key already exists.
// The conditional put is the only arbiter of concurrent claims: exactly one
// caller gets a nil record back.
func (s *Store) ClaimKey(ctx context.Context, record *models.IdempotencyRecord) (*models.IdempotencyRecord, error) {
	now := time.Now().UTC()
	record.Status = models.IN_PROGRESS
	record.Outcome = nil
	record.CreatedAt = now
	record.CompletedAt = nil
	record.TTL = now.Add(idempotencyRecordTTL).Unix()

	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal idempotency record: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:                           aws.String(s.IdempotencyTableName),
		Item:                                item,
		ConditionExpression:                 aws.String("attribute_not_exists(idempotency_key)"),
		ReturnValuesOnConditionCheckFailure: types.ReturnValuesOnConditionCheckFailureAllOld,
	}

	_, err = s.Client.PutItem(ctx, input)
	if err == nil {
		return nil, nil
	}

	var condCheckFailed *types.ConditionalCheckFailedException
	if !errors.As(err, &condCheckFailed) {
		return nil, fmt.Errorf("failed to claim idempotency key: %w", err)
	}

	if condCheckFailed.Item != nil {
		var existing models.IdempotencyRecord
		if err := attributevalue.UnmarshalMap(condCheckFailed.Item, &existing); err != nil {
			return nil, fmt.Errorf("failed to unmarshal existing idempotency record: %w", err)
		}
		return &existing, nil
	}

	existing, err := s.getIdempotencyRecord(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// The record expired between the failed put and the read.
		return nil, fmt.Errorf("idempotency key %s vanished while claiming", record.Key)
	}
	return existing, nil
}

// CompleteKey marks a claimed key as completed. Completing again with the
// same outcome succeeds without changes.
func (s *Store) CompleteKey(ctx context.Context, key string, outcome *string) error {
	now := time.Now().UTC()
	nowAV, err := attributevalue.Marshal(now)
	if err != nil {
		return fmt.Errorf("failed to marshal completion timestamp: %w", err)
	}

	values := map[string]types.AttributeValue{
		":completed":   &types.AttributeValueMemberS{Value: string(models.COMPLETED)},
		":in_progress": &types.AttributeValueMemberS{Value: string(models.IN_PROGRESS)},
		":now":         nowAV,
	}

	update := "SET #status = :completed, completed_at = :now"
	sameOutcome := "attribute_not_exists(outcome)"
	if outcome != nil {
		update += ", outcome = :outcome"
		sameOutcome = "outcome = :outcome"
		values[":outcome"] = &types.AttributeValueMemberS{Value: *outcome}
	}

	input := &dynamodb.UpdateItemInput{
		TableName: aws.String(s.IdempotencyTableName),
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
		UpdateExpression:    aws.String(update),
		ConditionExpression: aws.String("attribute_exists(idempotency_key) AND (#status = :in_progress OR (#status = :completed AND " + sameOutcome + "))"),
		ExpressionAttributeNames: map[string]string{
			"#status": "status",
		},
		ExpressionAttributeValues: values,
	}

	_, err = s.Client.UpdateItem(ctx, input)
	if err == nil {
		return nil
	}

	var condCheckFailed *types.ConditionalCheckFailedException
	if !errors.As(err, &condCheckFailed) {
		return fmt.Errorf("failed to complete idempotency key: %w", err)
	}

	existing, err := s.getIdempotencyRecord(ctx, key)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("idempotency key %s: %w", key, storage.ErrIdempotencyKeyNotFound)
	}
	return fmt.Errorf("idempotency key %s: %w", key, storage.ErrOutcomeConflict)
}

func (s *Store) getIdempotencyRecord(ctx context.Context, key string) (*models.IdempotencyRecord, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.IdempotencyTableName),
		Key: map[string]types.AttributeValue{
			"idempotency_key": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency record from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, nil
	}

	var record models.IdempotencyRecord
	if err := attributevalue.UnmarshalMap(result.Item, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal idempotency record: %w", err)
	}

	return &record, nil
}
