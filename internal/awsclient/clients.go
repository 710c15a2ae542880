package awsclient

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mirror-ball/mirrorball/internal/config"
	"github.com/mirror-ball/mirrorball/internal/logger/adapter/awssdk"
)

// Clients bundles every AWS client the daemon needs.
type Clients struct {
	DynamoDB  DynamoDBClient
	S3        S3Client
	Presigner S3Presigner
	Cognito   CognitoClient
	IAM       IAMClient
}

// Load resolves the default credential chain for the configured region.
func Load(ctx context.Context, cfg config.AWS) (aws.Config, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithLogger(awssdk.New(log.Logger)),
	}

	if cfg.LogRequests {
		opts = append(opts, awsconfig.WithClientLogMode(aws.LogRetries|aws.LogRequest|aws.LogResponse))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, errors.Wrap(err, "failed to load AWS config")
	}

	return awsCfg, nil
}

// NewClients builds SDK clients from awsCfg.
// A non empty endpoint points every client at a local emulator; S3 then switches to path style addressing.
func NewClients(awsCfg aws.Config, endpoint string) *Clients {
	var base *string
	if endpoint != "" {
		base = aws.String(endpoint)
	}

	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = base
		o.UsePathStyle = base != nil
	})

	return &Clients{
		DynamoDB: dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
			o.BaseEndpoint = base
		}),
		S3:        s3Client,
		Presigner: s3.NewPresignClient(s3Client),
		Cognito: cognitoidentityprovider.NewFromConfig(awsCfg, func(o *cognitoidentityprovider.Options) {
			o.BaseEndpoint = base
		}),
		IAM: iam.NewFromConfig(awsCfg, func(o *iam.Options) {
			o.BaseEndpoint = base
		}),
	}
}
