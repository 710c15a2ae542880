package auth

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"

	"github.com/mirror-ball/mirrorball/internal/awsclient"
)

// GroupAssigner adds users to identity provider groups.
type GroupAssigner interface {
	AddUserToGroup(ctx context.Context, username, group string) error
}

// CognitoGroups assigns groups in one user pool.
type CognitoGroups struct {
	client     awsclient.CognitoClient
	userPoolID string
}

// NewCognitoGroups creates a group assigner for userPoolID.
func NewCognitoGroups(client awsclient.CognitoClient, userPoolID string) *CognitoGroups {
	return &CognitoGroups{client: client, userPoolID: userPoolID}
}

// AddUserToGroup implements GroupAssigner.
func (g *CognitoGroups) AddUserToGroup(ctx context.Context, username, group string) error {
	_, err := g.client.AdminAddUserToGroup(ctx, &cognitoidentityprovider.AdminAddUserToGroupInput{
		UserPoolId: aws.String(g.userPoolID),
		Username:   aws.String(username),
		GroupName:  aws.String(group),
	})
	if err != nil {
		return fmt.Errorf("add %s to group %s: %w", username, group, err)
	}

	return nil
}
