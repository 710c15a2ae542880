package dynamo

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mirror-ball/mirrorball/internal/awsclient"
	"github.com/mirror-ball/mirrorball/internal/db/models"
	"github.com/mirror-ball/mirrorball/internal/store"
)

const configKeyAttr = "configKey"

var _ store.Configs = (*Configs)(nil)

// configRecord is the stored shape: the config fields next to the key and a timestamp.
type configRecord struct {
	ConfigKey string `dynamodbav:"configKey"`
	models.AppConfig
	UpdatedAt string `dynamodbav:"updatedAt,omitempty"`
}

// Configs stores the global configuration in a table keyed by configKey.
type Configs struct {
	client awsclient.DynamoDBClient
	table  string
}

// NewConfigs returns a config store. An empty table makes every call fail with store.ErrNotConfigured.
func NewConfigs(client awsclient.DynamoDBClient, table string) *Configs {
	return &Configs{client: client, table: table}
}

// Get reads the record stored under key.
func (s *Configs) Get(ctx context.Context, key string) (models.AppConfig, error) {
	if s.table == "" {
		return models.AppConfig{}, store.ErrNotConfigured
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key: map[string]types.AttributeValue{
			configKeyAttr: &types.AttributeValueMemberS{Value: key},
		},
	})
	if err != nil {
		return models.AppConfig{}, fmt.Errorf("get config: %w", err)
	}

	if len(out.Item) == 0 {
		return models.AppConfig{}, store.ErrNotFound
	}

	var rec configRecord
	if err = attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return models.AppConfig{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return rec.AppConfig, nil
}

// Put replaces the record stored under key.
func (s *Configs) Put(ctx context.Context, key string, cfg models.AppConfig, updatedAt time.Time) error {
	if s.table == "" {
		return store.ErrNotConfigured
	}

	item, err := attributevalue.MarshalMap(configRecord{
		ConfigKey: key,
		AppConfig: cfg,
		UpdatedAt: updatedAt.UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if _, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(s.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("put config: %w", err)
	}

	return nil
}
