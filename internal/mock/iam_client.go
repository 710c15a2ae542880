package mock

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"

	"github.com/mirror-ball/mirrorball/internal/awsclient"
)

var _ awsclient.IAMClient = (*IAMClient)(nil)

// IAMClient allows every simulated action except those listed in Denied.
type IAMClient struct {
	Denied map[string]bool
	Err    error
}

// SimulatePrincipalPolicy implements awsclient.IAMClient.
func (m *IAMClient) SimulatePrincipalPolicy(_ context.Context, params *iam.SimulatePrincipalPolicyInput, _ ...func(*iam.Options)) (*iam.SimulatePrincipalPolicyOutput, error) {
	if m.Err != nil {
		return nil, m.Err
	}

	out := &iam.SimulatePrincipalPolicyOutput{}

	for _, action := range params.ActionNames {
		decision := types.PolicyEvaluationDecisionTypeAllowed
		if m.Denied[action] {
			decision = types.PolicyEvaluationDecisionTypeImplicitDeny
		}

		out.EvaluationResults = append(out.EvaluationResults, types.EvaluationResult{
			EvalActionName: aws.String(action),
			EvalDecision:   decision,
		})
	}

	return out, nil
}
