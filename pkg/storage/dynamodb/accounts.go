package dynamodb

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/storage"
)

const accountNumberIndex = "number-index"

// GetAccount retrieves an account from DynamoDB by its id.
func (s *Store) GetAccount(ctx context.Context, accountID string) (*models.Account, error) {
	key, err := attributevalue.MarshalMap(map[string]string{"account_id": accountID})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account ID: %w", err)
	}

	input := &dynamodb.GetItemInput{
		TableName: aws.String(s.AccountsTableName),
		Key:       key,
	}

	result, err := s.Client.GetItem(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to get account from DynamoDB: %w", err)
	}

	if result.Item == nil {
		return nil, fmt.Errorf("account %s: %w", accountID, storage.ErrAccountNotFound)
	}

	var account models.Account
	if err := attributevalue.UnmarshalMap(result.Item, &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}

// GetAccountByNumber retrieves an account through the number index.
func (s *Store) GetAccountByNumber(ctx context.Context, number int64) (*models.Account, error) {
	input := &dynamodb.QueryInput{
		TableName:              aws.String(s.AccountsTableName),
		IndexName:              aws.String(accountNumberIndex),
		KeyConditionExpression: aws.String("#number = :number"),
		ExpressionAttributeNames: map[string]string{
			"#number": "number",
		},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":number": &types.AttributeValueMemberN{Value: strconv.FormatInt(number, 10)},
		},
		Limit: aws.Int32(1),
	}

	result, err := s.Client.Query(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("failed to query account by number: %w", err)
	}

	if len(result.Items) == 0 {
		return nil, fmt.Errorf("account number %d: %w", number, storage.ErrAccountNotFound)
	}

	var account models.Account
	if err := attributevalue.UnmarshalMap(result.Items[0], &account); err != nil {
		return nil, fmt.Errorf("failed to unmarshal account: %w", err)
	}

	return &account, nil
}
