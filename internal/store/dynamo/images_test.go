package dynamo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirror-ball/mirrorball/internal/db/models"
	"github.com/mirror-ball/mirrorball/internal/mock"
	"github.com/mirror-ball/mirrorball/internal/store"
	"github.com/mirror-ball/mirrorball/internal/store/dynamo"
)

const imageTable = "images"

func newImages(t *testing.T) (*dynamo.Images, *mock.DynamoDBClient) {
	t.Helper()

	client := mock.NewDynamoDBClient().CreateTable(imageTable, "imageId")

	return dynamo.NewImages(client, imageTable, "TitleIndex"), client
}

func image(id, owner, title string) *models.Image {
	return &models.Image{
		ImageID:          id,
		Owner:            owner,
		DevName:          owner,
		Title:            title,
		OriginalFileName: title + ".png",
		UploadTime:       "2026-01-02T03:04:05Z",
		S3Key:            "images/" + owner + "/" + id + "/" + title + ".png",
		PublicURL:        "https://cdn.example.com/images/" + owner + "/" + id + "/" + title + ".png",
		Status:           models.StatusPending,
	}
}

func TestImagesCreateAndGet(t *testing.T) {
	s, client := newImages(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, image("01A", "alice", "sunset")))
	assert.Equal(t, 1, client.Len(imageTable))

	err := s.Create(ctx, image("01A", "bob", "other"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	got, err := s.Get(ctx, "01A")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Owner)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Nil(t, got.FileSize)

	_, err = s.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestImagesFindByTitle(t *testing.T) {
	s, client := newImages(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, image("01A", "alice", "sunset")))

	got, err := s.FindByTitle(ctx, "sunset")
	require.NoError(t, err)
	assert.Equal(t, "01A", got.ImageID)

	_, err = s.FindByTitle(ctx, "Sunset")
	require.ErrorIs(t, err, store.ErrNotFound)

	assert.Contains(t, client.Calls(), "Query")
}

func TestImagesConfirm(t *testing.T) {
	s, _ := newImages(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, image("01A", "alice", "sunset")))

	got, err := s.Confirm(ctx, "01A", store.ObjectInfo{FileSize: aws.Int64(2048), Dimensions: aws.String("640x480")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusComplete, got.Status)
	assert.Equal(t, int64(2048), aws.ToInt64(got.FileSize))
	assert.Equal(t, "640x480", aws.ToString(got.Dimensions))
	assert.Equal(t, "sunset", got.Title)

	_, err = s.Confirm(ctx, "missing", store.ObjectInfo{})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestImagesList(t *testing.T) {
	s, _ := newImages(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, image("01A", "alice", "a")))
	require.NoError(t, s.Create(ctx, image("01B", "bob", "b")))
	require.NoError(t, s.Create(ctx, image("01C", "alice", "c")))

	tests := []struct {
		name   string
		filter store.ImageFilter
		want   []string
	}{
		{"all", store.ImageFilter{Limit: 50}, []string{"01A", "01B", "01C"}},
		{"owner", store.ImageFilter{Owner: "alice", Limit: 50}, []string{"01A", "01C"}},
		{"dev name", store.ImageFilter{DevName: "bob", Limit: 50}, []string{"01B"}},
		{"limit applies before filter", store.ImageFilter{Owner: "alice", Limit: 2}, []string{"01A"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images, err := s.List(ctx, tt.filter)
			require.NoError(t, err)

			ids := make([]string, 0, len(images))
			for _, img := range images {
				ids = append(ids, img.ImageID)
			}

			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestImagesDelete(t *testing.T) {
	s, client := newImages(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, image("01A", "alice", "a")))
	require.NoError(t, s.Delete(ctx, "01A"))
	assert.Equal(t, 0, client.Len(imageTable))

	require.NoError(t, s.Delete(ctx, "01A"))
}

func TestImagesNotConfigured(t *testing.T) {
	s := dynamo.NewImages(mock.NewDynamoDBClient(), "", "TitleIndex")

	_, err := s.Get(context.Background(), "01A")
	require.ErrorIs(t, err, store.ErrNotConfigured)
}

func TestImagesDownstreamError(t *testing.T) {
	s, client := newImages(t)

	boom := errors.New("throttled") //nolint:err113
	client.FailNext("Scan", boom)

	_, err := s.List(context.Background(), store.ImageFilter{Limit: 10})
	require.ErrorIs(t, err, boom)

	client.FailNext("PutItem", &types.ProvisionedThroughputExceededException{Message: aws.String("slow down")})

	err = s.Create(context.Background(), image("01A", "alice", "a"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrAlreadyExists)
}

func TestConfigs(t *testing.T) {
	client := mock.NewDynamoDBClient().CreateTable("config", "configKey")
	s := dynamo.NewConfigs(client, "config")
	ctx := context.Background()

	_, err := s.Get(ctx, models.GlobalConfigKey)
	require.ErrorIs(t, err, store.ErrNotFound)

	now := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	require.NoError(t, s.Put(ctx, models.GlobalConfigKey, models.AppConfig{UserRestriction: "@example.com"}, now))

	got, err := s.Get(ctx, models.GlobalConfigKey)
	require.NoError(t, err)
	assert.Equal(t, "@example.com", got.UserRestriction)

	item := client.Item("config", models.GlobalConfigKey)
	require.NotNil(t, item)
	assert.Equal(t, &types.AttributeValueMemberS{Value: "2026-03-04T05:06:07Z"}, item["updatedAt"])

	_, err = dynamo.NewConfigs(client, "").Get(ctx, models.GlobalConfigKey)
	require.ErrorIs(t, err, store.ErrNotConfigured)
}
