// Package dynamo implements the store contracts on DynamoDB tables.
package dynamo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/mirror-ball/mirrorball/internal/awsclient"
	"github.com/mirror-ball/mirrorball/internal/db/models"
	"github.com/mirror-ball/mirrorball/internal/store"
)

const imageKeyAttr = "imageId"

var _ store.Images = (*Images)(nil)

// Images stores image metadata in a table keyed by imageId with a title index.
type Images struct {
	client     awsclient.DynamoDBClient
	table      string
	titleIndex string
}

// NewImages returns an image store. An empty table makes every call fail with store.ErrNotConfigured.
func NewImages(client awsclient.DynamoDBClient, table, titleIndex string) *Images {
	return &Images{client: client, table: table, titleIndex: titleIndex}
}

func (s *Images) key(imageID string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		imageKeyAttr: &types.AttributeValueMemberS{Value: imageID},
	}
}

func (s *Images) ready() error {
	if s.table == "" {
		return store.ErrNotConfigured
	}

	return nil
}

// FindByTitle queries the title index with limit 1.
func (s *Images) FindByTitle(ctx context.Context, title string) (*models.Image, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	out, err := s.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                aws.String(s.table),
		IndexName:                aws.String(s.titleIndex),
		KeyConditionExpression:   aws.String("#t = :t"),
		ExpressionAttributeNames: map[string]string{"#t": "title"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":t": &types.AttributeValueMemberS{Value: title},
		},
		Limit: aws.Int32(1),
	})
	if err != nil {
		return nil, fmt.Errorf("query title index: %w", err)
	}

	if len(out.Items) == 0 {
		return nil, store.ErrNotFound
	}

	return decodeImage(out.Items[0])
}

// Create writes the row only if no row with the same id exists.
func (s *Images) Create(ctx context.Context, img *models.Image) error {
	if err := s.ready(); err != nil {
		return err
	}

	item, err := attributevalue.MarshalMap(img)
	if err != nil {
		return fmt.Errorf("marshal image: %w", err)
	}

	_, err = s.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(" + imageKeyAttr + ")"),
	})

	return mapConditionErr(err, store.ErrAlreadyExists, "put image")
}

// Confirm sets status complete on an existing row.
func (s *Images) Confirm(ctx context.Context, imageID string, info store.ObjectInfo) (*models.Image, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	sets := []string{"#s = :s"}
	names := map[string]string{"#s": "status"}
	values := map[string]types.AttributeValue{
		":s": &types.AttributeValueMemberS{Value: models.StatusComplete},
	}

	if info.FileSize != nil {
		sets = append(sets, "#fs = :fs")
		names["#fs"] = "fileSize"
		values[":fs"] = &types.AttributeValueMemberN{Value: fmt.Sprint(*info.FileSize)}
	}

	if info.Dimensions != nil {
		sets = append(sets, "#d = :d")
		names["#d"] = "dimensions"
		values[":d"] = &types.AttributeValueMemberS{Value: *info.Dimensions}
	}

	out, err := s.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(s.table),
		Key:                       s.key(imageID),
		UpdateExpression:          aws.String("SET " + strings.Join(sets, ", ")),
		ConditionExpression:       aws.String("attribute_exists(" + imageKeyAttr + ")"),
		ExpressionAttributeNames:  names,
		ExpressionAttributeValues: values,
		ReturnValues:              types.ReturnValueAllNew,
	})
	if err = mapConditionErr(err, store.ErrNotFound, "confirm image"); err != nil {
		return nil, err
	}

	return decodeImage(out.Attributes)
}

// Get reads one row by id.
func (s *Images) Get(ctx context.Context, imageID string) (*models.Image, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	out, err := s.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(imageID),
	})
	if err != nil {
		return nil, fmt.Errorf("get image: %w", err)
	}

	if len(out.Item) == 0 {
		return nil, store.ErrNotFound
	}

	return decodeImage(out.Item)
}

// List scans at most filter.Limit rows and filters them afterwards,
// so a filtered page may hold fewer rows than the limit.
func (s *Images) List(ctx context.Context, filter store.ImageFilter) ([]models.Image, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}

	in := &dynamodb.ScanInput{TableName: aws.String(s.table)}
	if filter.Limit > 0 {
		in.Limit = aws.Int32(int32(filter.Limit)) //nolint:gosec
	}

	out, err := s.client.Scan(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("scan images: %w", err)
	}

	var all []models.Image
	if err = attributevalue.UnmarshalListOfMaps(out.Items, &all); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}

	images := make([]models.Image, 0, len(all))

	for _, img := range all {
		if filter.Owner != "" && img.Owner != filter.Owner {
			continue
		}

		if filter.DevName != "" && img.DevName != filter.DevName {
			continue
		}

		images = append(images, img)
	}

	return images, nil
}

// Delete removes the row.
func (s *Images) Delete(ctx context.Context, imageID string) error {
	if err := s.ready(); err != nil {
		return err
	}

	if _, err := s.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(s.table),
		Key:       s.key(imageID),
	}); err != nil {
		return fmt.Errorf("delete image: %w", err)
	}

	return nil
}

func decodeImage(item map[string]types.AttributeValue) (*models.Image, error) {
	var img models.Image
	if err := attributevalue.UnmarshalMap(item, &img); err != nil {
		return nil, fmt.Errorf("unmarshal image: %w", err)
	}

	return &img, nil
}

// mapConditionErr turns a failed condition check into sentinel.
func mapConditionErr(err, sentinel error, op string) error {
	if err == nil {
		return nil
	}

	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return sentinel
	}

	return fmt.Errorf("%s: %w", op, err)
}
