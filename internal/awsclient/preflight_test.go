package awsclient_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mirror-ball/mirrorball/internal/awsclient"
	"github.com/mirror-ball/mirrorball/internal/mock"
)

func testResources() awsclient.Resources {
	return awsclient.Resources{
		Region:      "us-west-2",
		AccountID:   "123456789012",
		BucketName:  "images-bucket",
		ImageTable:  "images",
		ConfigTable: "config",
		TitleIndex:  "TitleIndex",
		UserPoolID:  "us-west-2_pool",
	}
}

func TestRequirements(t *testing.T) {
	r := testResources()

	base := awsclient.Requirements(r)
	assert.Contains(t, base, awsclient.Requirement{Action: "s3:PutObject", Resource: "arn:aws:s3:::images-bucket/images/*"})
	assert.Contains(t, base, awsclient.Requirement{
		Action:   "dynamodb:Query",
		Resource: "arn:aws:dynamodb:us-west-2:123456789012:table/images/index/TitleIndex",
	})

	r.WithConfigTable = true
	assert.Len(t, awsclient.Requirements(r), len(base)+2)
}

func TestPreflight(t *testing.T) {
	tests := []struct {
		name       string
		client     *mock.IAMClient
		wantErr    error
		wantDenied []string
	}{
		{
			name:   "all allowed",
			client: &mock.IAMClient{},
		},
		{
			name:       "delete denied",
			client:     &mock.IAMClient{Denied: map[string]bool{"s3:DeleteObject": true}},
			wantErr:    awsclient.ErrPermissionDenied,
			wantDenied: []string{"s3:DeleteObject"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decisions, err := awsclient.Preflight(context.Background(), tt.client, "arn:aws:iam::123456789012:role/api", awsclient.Requirements(testResources()))
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			var denied []string

			for _, d := range decisions {
				if !d.Allowed {
					denied = append(denied, d.Action)
				}
			}

			assert.Equal(t, tt.wantDenied, denied)
		})
	}
}

func TestPreflightSimulationError(t *testing.T) {
	_, err := awsclient.Preflight(context.Background(), &mock.IAMClient{Err: errors.New("AccessDenied")}, "arn", awsclient.Requirements(testResources())) //nolint:err113
	require.Error(t, err)
	assert.NotErrorIs(t, err, awsclient.ErrPermissionDenied)
}

func TestAccountID(t *testing.T) {
	tests := []struct {
		name    string
		arn     string
		want    string
		wantErr bool
	}{
		{"role", "arn:aws:iam::123456789012:role/mirrorball-api", "123456789012", false},
		{"user", "arn:aws:iam::210987654321:user/deploy", "210987654321", false},
		{"not an arn", "mirrorball-api", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := awsclient.AccountID(tt.arn)
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
