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
	"github.com/shopspring/decimal"
)

const movementsAccountIndex = "account_id-index"

// movementItem is the DynamoDB representation of a movement. Amounts are
// stored as numbers so that they stay exact.
type movementItem struct {
	MovementID string                `dynamodbav:"movement_id"`
	AccountID  string                `dynamodbav:"account_id"`
	Type       string                `dynamodbav:"type"`
	Amount     attributevalue.Number `dynamodbav:"amount"`
	CreatedAt  time.Time             `dynamodbav:"created_at"`
}

func toMovementItem(m *models.Movement) movementItem {
	return movementItem{
		MovementID: m.Id,
		AccountID:  m.AccountId,
		Type:       string(m.Type),
		Amount:     attributevalue.Number(m.Amount.StringFixed(2)),
		CreatedAt:  m.CreatedAt,
	}
}

func (i movementItem) toModel() (models.Movement, error) {
	amount, err := decimal.NewFromString(string(i.Amount))
	if err != nil {
		return models.Movement{}, fmt.Errorf("failed to parse amount of movement %s: %w", i.MovementID, err)
	}
	return models.Movement{
		Id:        i.MovementID,
		AccountId: i.AccountID,
		Type:      models.MovementType(i.Type),
		Amount:    amount,
		CreatedAt: i.CreatedAt,
	}, nil
}

// AppendMovement writes a movement unless its id is already taken.
func (s *Store) AppendMovement(ctx context.Context, movement *models.Movement) error {
	item, err := attributevalue.MarshalMap(toMovementItem(movement))
	if err != nil {
		return fmt.Errorf("failed to marshal movement: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.MovementsTableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(movement_id)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("movement %s: %w", movement.Id, storage.ErrMovementExists)
		}
		return fmt.Errorf("failed to put movement: %w", err)
	}

	return nil
}

// ListMovements retrieves every movement of an account, oldest first.
func (s *Store) ListMovements(ctx context.Context, accountID string) ([]models.Movement, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.MovementsTableName),
		IndexName:              aws.String(movementsAccountIndex),
		KeyConditionExpression: aws.String("account_id = :account_id"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":account_id": &types.AttributeValueMemberS{Value: accountID},
		},
		ScanIndexForward: aws.Bool(true),
	}

	var movements []models.Movement
	for {
		result, err := s.Client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query movements: %w", err)
		}

		var items []movementItem
		if err := attributevalue.UnmarshalListOfMaps(result.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal movements: %w", err)
		}

		for _, item := range items {
			m, err := item.toModel()
			if err != nil {
				return nil, err
			}
			movements = append(movements, m)
		}

		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		input.ExclusiveStartKey = result.LastEvaluatedKey
	}

	return movements, nil
}
