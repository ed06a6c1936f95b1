package dynamodb

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/chris/account-transfers/pkg/models"
	"github.com/chris/account-transfers/pkg/storage"
	"github.com/chris/account-transfers/pkg/storage/dynamodb/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestGetAccount(t *testing.T) {
	account := &models.Account{Id: "acc-a", Number: 1001, Name: "Alice", Active: true}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		item, err := attributevalue.MarshalMap(account)
		require.NoError(t, err)
		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: item}, nil).Once()

		result, err := store.GetAccount(context.Background(), "acc-a")

		assert.NoError(t, err)
		assert.Equal(t, account, result)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(&dynamodb.GetItemOutput{Item: nil}, nil).Once()

		_, err := store.GetAccount(context.Background(), "acc-a")

		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		mockClient.AssertExpectations(t)
	})

	t.Run("Storage Error", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		mockClient.On("GetItem", mock.Anything, mock.Anything).Return(nil, errors.New("get item failed")).Once()

		_, err := store.GetAccount(context.Background(), "acc-a")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to get account from DynamoDB")
		mockClient.AssertExpectations(t)
	})
}

func TestGetAccountByNumber(t *testing.T) {
	account := &models.Account{Id: "acc-b", Number: 2002, Name: "Bob", Active: false}

	t.Run("Success", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		item, err := attributevalue.MarshalMap(account)
		require.NoError(t, err)
		mockClient.On("Query", mock.Anything, mock.MatchedBy(func(input *dynamodb.QueryInput) bool {
			number := input.ExpressionAttributeValues[":number"].(*types.AttributeValueMemberN)
			return *input.IndexName == accountNumberIndex && number.Value == "2002"
		})).Return(&dynamodb.QueryOutput{Items: []map[string]types.AttributeValue{item}}, nil).Once()

		result, err := store.GetAccountByNumber(context.Background(), 2002)

		assert.NoError(t, err)
		assert.Equal(t, account, result)
		mockClient.AssertExpectations(t)
	})

	t.Run("Not Found", func(t *testing.T) {
		mockClient := new(mocks.DynamoDBAPI)
		store := &Store{Client: mockClient, AccountsTableName: "accounts"}

		mockClient.On("Query", mock.Anything, mock.Anything).Return(&dynamodb.QueryOutput{}, nil).Once()

		_, err := store.GetAccountByNumber(context.Background(), 2002)

		assert.ErrorIs(t, err, storage.ErrAccountNotFound)
		mockClient.AssertExpectations(t)
	})
}
