package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/chris/account-transfers/pkg/storage"
)

// DynamoDBAPI is the subset of the DynamoDB client used by the Store.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// Tables holds the table names used by the Store.
type Tables struct {
	Accounts    string
	Movements   string
	Idempotency string
	Transfers   string
	Sagas       string
}

// Store implements the Storage interface using AWS DynamoDB.
type Store struct {
	Client               DynamoDBAPI
	AccountsTableName    string
	MovementsTableName   string
	IdempotencyTableName string
	TransfersTableName   string
	SagasTableName       string
}

// New creates a new Store.
func New(client DynamoDBAPI, tables Tables) *Store {
	return &Store{
		Client:               client,
		AccountsTableName:    tables.Accounts,
		MovementsTableName:   tables.Movements,
		IdempotencyTableName: tables.Idempotency,
		TransfersTableName:   tables.Transfers,
		SagasTableName:       tables.Sagas,
	}
}

// Make sure we conform to the interface
var _ storage.Storage = (*Store)(nil)
