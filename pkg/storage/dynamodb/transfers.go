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

type transferItem struct {
	TransferID           string                `dynamodbav:"transfer_id"`
	SourceAccountID      string                `dynamodbav:"source_account_id"`
	DestinationAccountID string                `dynamodbav:"destination_account_id"`
	Amount               attributevalue.Number `dynamodbav:"amount"`
	CreatedAt            time.Time             `dynamodbav:"created_at"`
}

// CreateTransfer writes the transfer record unless its id is already taken.
func (s *Store) CreateTransfer(ctx context.Context, transfer *models.Transfer) error {
	item, err := attributevalue.MarshalMap(transferItem{
		TransferID:           transfer.Id,
		SourceAccountID:      transfer.SourceAccountId,
		DestinationAccountID: transfer.DestinationAccountId,
		Amount:               attributevalue.Number(transfer.Amount.StringFixed(2)),
		CreatedAt:            transfer.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal transfer: %w", err)
	}

	input := &dynamodb.PutItemInput{
		TableName:           aws.String(s.TransfersTableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(transfer_id)"),
	}

	if _, err := s.Client.PutItem(ctx, input); err != nil {
		var condCheckFailed *types.ConditionalCheckFailedException
		if errors.As(err, &condCheckFailed) {
			return fmt.Errorf("transfer %s: %w", transfer.Id, storage.ErrTransferExists)
		}
		return fmt.Errorf("failed to put transfer: %w", err)
	}

	return nil
}

// GetTransfer retrieves a transfer by its id.
func (s *Store) GetTransfer(ctx context.Context, transferID string) (*models.Transfer, error) {
	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.TransfersTableName),
		Key: map[string]types.AttributeValue{
			"transfer_id": &types.AttributeValueMemberS{Value: transferID},
		},
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get transfer from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("transfer %s: %w", transferID, storage.ErrTransferNotFound)
	}

	var item transferItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transfer: %w", err)
	}

	amount, err := decimal.NewFromString(string(item.Amount))
	if err != nil {
		return nil, fmt.Errorf("failed to parse amount of transfer %s: %w", transferID, err)
	}

	return &models.Transfer{
		Id:                   item.TransferID,
		SourceAccountId:      item.SourceAccountID,
		DestinationAccountId: item.DestinationAccountID,
		Amount:               amount,
		CreatedAt:            item.CreatedAt,
	}, nil
}
