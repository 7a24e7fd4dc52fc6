package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/custodia-labs/briefly/internal/core/domain"
	"github.com/custodia-labs/briefly/internal/core/ports/driven"
)

// Ensure ItemStore implements the interface.
var _ driven.ItemStore = (*ItemStore)(nil)

// DefaultKeyAttribute is the partition key attribute name.
const DefaultKeyAttribute = "jdid"

// API is the subset of the DynamoDB client the store calls.
type API interface {
	PutItem(ctx context.Context, in *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, in *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// Config holds DynamoDB settings.
type Config struct {
	// Table is the table name.
	Table string

	// KeyAttribute is the partition key name. Defaults to DefaultKeyAttribute.
	KeyAttribute string

	// Region overrides the region from the AWS config chain.
	Region string

	// Endpoint targets DynamoDB Local or LocalStack.
	Endpoint string
}

// ItemStore reads and writes items in one DynamoDB table.
type ItemStore struct {
	client  API
	table   string
	keyAttr string
}

// NewItemStore creates a DynamoDB-backed item store from the default AWS config chain.
func NewItemStore(ctx context.Context, cfg Config) (*ItemStore, error) {
	if cfg.Table == "" {
		return nil, fmt.Errorf("%w: dynamodb table is required", domain.ErrInvalidInput)
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})

	return NewItemStoreWithClient(client, cfg.Table, cfg.KeyAttribute), nil
}

// NewItemStoreWithClient wraps an existing client.
func NewItemStoreWithClient(client API, table, keyAttr string) *ItemStore {
	if keyAttr == "" {
		keyAttr = DefaultKeyAttribute
	}
	return &ItemStore{client: client, table: table, keyAttr: keyAttr}
}

// PutItem writes item under key. The key attribute is always set to key.
func (s *ItemStore) PutItem(ctx context.Context, key string, item map[string]any) error {
	record := make(map[string]any, len(item)+1)
	for k, v := range item {
		record[k] = v
	}
	record[s.keyAttr] = key

	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("marshalling item: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("putting item %s: %w", key, err)
	}
	return nil
}

// GetItem reads the item under key with a consistent read.
func (s *ItemStore) GetItem(ctx context.Context, key string) (map[string]any, error) {
	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			s.keyAttr: &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("getting item %s: %w", key, err)
	}
	if len(out.Item) == 0 {
		return nil, domain.ErrNotFound
	}

	var item map[string]any
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("unmarshalling item: %w", err)
	}
	return item, nil
}

// Close is a no-op; the SDK client holds no resources that need releasing.
func (s *ItemStore) Close() error {
	return nil
}
