package mock

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"

	"github.com/mirror-ball/mirrorball/internal/awsclient"
)

var _ awsclient.CognitoClient = (*CognitoClient)(nil)

// GroupAssignment is one recorded AdminAddUserToGroup call.
type GroupAssignment struct {
	UserPoolID string
	Username   string
	Group      string
}

// CognitoClient records group assignments.
type CognitoClient struct {
	mu          sync.Mutex
	Assignments []GroupAssignment
	Err         error
}

// AdminAddUserToGroup implements awsclient.CognitoClient.
func (m *CognitoClient) AdminAddUserToGroup(_ context.Context, params *cognitoidentityprovider.AdminAddUserToGroupInput, _ ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.AdminAddUserToGroupOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Assignments = append(m.Assignments, GroupAssignment{
		UserPoolID: aws.ToString(params.UserPoolId),
		Username:   aws.ToString(params.Username),
		Group:      aws.ToString(params.GroupName),
	})

	if m.Err != nil {
		return nil, m.Err
	}

	return &cognitoidentityprovider.AdminAddUserToGroupOutput{}, nil
}

// Calls returns a snapshot of the recorded assignments.
func (m *CognitoClient) Calls() []GroupAssignment {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]GroupAssignment(nil), m.Assignments...)
}
