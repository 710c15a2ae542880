package awsclient

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/arn"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/pkg/errors"
)

// ErrPermissionDenied is returned when at least one required action is not allowed.
var ErrPermissionDenied = errors.New("required AWS permissions are missing")

// Requirement is one action on one resource the api needs at runtime.
type Requirement struct {
	Action   string
	Resource string
}

// Decision is the simulated outcome for a requirement.
type Decision struct {
	Requirement
	Allowed  bool
	Decision string
}

// Resources names what the api touches.
type Resources struct {
	Region          string
	AccountID       string
	BucketName      string
	ImageTable      string
	ConfigTable     string
	TitleIndex      string
	UserPoolID      string
	WithConfigTable bool
}

// Requirements lists every action the api performs against the given resources.
func Requirements(r Resources) []Requirement {
	table := func(name string) string {
		return fmt.Sprintf("arn:aws:dynamodb:%s:%s:table/%s", r.Region, r.AccountID, name)
	}

	object := fmt.Sprintf("arn:aws:s3:::%s/images/*", r.BucketName)

	reqs := []Requirement{
		{"s3:PutObject", object},
		{"s3:GetObject", object},
		{"s3:DeleteObject", object},
		{"dynamodb:PutItem", table(r.ImageTable)},
		{"dynamodb:GetItem", table(r.ImageTable)},
		{"dynamodb:UpdateItem", table(r.ImageTable)},
		{"dynamodb:DeleteItem", table(r.ImageTable)},
		{"dynamodb:Scan", table(r.ImageTable)},
		{"dynamodb:Query", table(r.ImageTable) + "/index/" + r.TitleIndex},
		{"cognito-idp:AdminAddUserToGroup", fmt.Sprintf("arn:aws:cognito-idp:%s:%s:userpool/%s", r.Region, r.AccountID, r.UserPoolID)},
	}

	if r.WithConfigTable {
		reqs = append(reqs,
			Requirement{"dynamodb:GetItem", table(r.ConfigTable)},
			Requirement{"dynamodb:PutItem", table(r.ConfigTable)},
		)
	}

	return reqs
}

// Preflight simulates every requirement for principalARN.
// It returns all decisions and ErrPermissionDenied when any of them is not allowed.
func Preflight(ctx context.Context, client IAMClient, principalARN string, reqs []Requirement) ([]Decision, error) {
	decisions := make([]Decision, 0, len(reqs))
	denied := 0

	// one call per requirement keeps action and resource paired
	for _, req := range reqs {
		out, err := client.SimulatePrincipalPolicy(ctx, &iam.SimulatePrincipalPolicyInput{
			PolicySourceArn: aws.String(principalARN),
			ActionNames:     []string{req.Action},
			ResourceArns:    []string{req.Resource},
		})
		if err != nil {
			return nil, errors.Wrapf(err, "failed to simulate %s", req.Action)
		}

		d := Decision{Requirement: req, Decision: string(iamtypes.PolicyEvaluationDecisionTypeImplicitDeny)}

		for _, res := range out.EvaluationResults {
			d.Decision = string(res.EvalDecision)
			d.Allowed = res.EvalDecision == iamtypes.PolicyEvaluationDecisionTypeAllowed
		}

		if !d.Allowed {
			denied++
		}

		decisions = append(decisions, d)
	}

	if denied > 0 {
		return decisions, errors.Wrapf(ErrPermissionDenied, "%d of %d actions denied", denied, len(reqs))
	}

	return decisions, nil
}

// AccountID returns the account of principalARN.
func AccountID(principalARN string) (string, error) {
	parsed, err := arn.Parse(principalARN)
	if err != nil {
		return "", errors.Wrap(err, "invalid principal arn")
	}

	return parsed.AccountID, nil
}
