// Where: curstack/internal/infra/provision/aws_clients_identity.go
// What: AWS SDK adapters for IAM, SNS, and STS.
package provision

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam"
	iamtypes "github.com/aws/aws-sdk-go-v2/service/iam/types"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	snstypes "github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

type awsIAMClient struct {
	client *iam.Client
}

func (c awsIAMClient) RoleARN(ctx context.Context, name string) (string, bool, error) {
	if c.client == nil {
		return "", false, fmt.Errorf("iam client is nil")
	}
	resp, err := c.client.GetRole(ctx, &iam.GetRoleInput{RoleName: aws.String(name)})
	if err != nil {
		var notFound *iamtypes.NoSuchEntityException
		if errors.As(err, &notFound) {
			return "", false, nil
		}
		return "", false, err
	}
	return aws.ToString(resp.Role.Arn), true, nil
}

func (c awsIAMClient) CreateRole(ctx context.Context, input CreateRoleInput) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("iam client is nil")
	}
	tags := make([]iamtypes.Tag, 0, len(input.Tags))
	for _, k := range sortedKeys(input.Tags) {
		tags = append(tags, iamtypes.Tag{Key: aws.String(k), Value: aws.String(input.Tags[k])})
	}
	resp, err := c.client.CreateRole(ctx, &iam.CreateRoleInput{
		RoleName:                 aws.String(input.Name),
		AssumeRolePolicyDocument: aws.String(input.AssumePolicyJSON),
		Tags:                     tags,
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(resp.Role.Arn), nil
}

func (c awsIAMClient) PutRolePolicy(ctx context.Context, role, policyName, policyJSON string) error {
	if c.client == nil {
		return fmt.Errorf("iam client is nil")
	}
	_, err := c.client.PutRolePolicy(ctx, &iam.PutRolePolicyInput{
		RoleName:       aws.String(role),
		PolicyName:     aws.String(policyName),
		PolicyDocument: aws.String(policyJSON),
	})
	return err
}

func (c awsIAMClient) DeleteRolePolicy(ctx context.Context, role, policyName string) error {
	if c.client == nil {
		return fmt.Errorf("iam client is nil")
	}
	_, err := c.client.DeleteRolePolicy(ctx, &iam.DeleteRolePolicyInput{
		RoleName:   aws.String(role),
		PolicyName: aws.String(policyName),
	})
	return ignoreNoSuchEntity(err)
}

func (c awsIAMClient) DeleteRole(ctx context.Context, name string) error {
	if c.client == nil {
		return fmt.Errorf("iam client is nil")
	}
	_, err := c.client.DeleteRole(ctx, &iam.DeleteRoleInput{RoleName: aws.String(name)})
	return ignoreNoSuchEntity(err)
}

func ignoreNoSuchEntity(err error) error {
	var notFound *iamtypes.NoSuchEntityException
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

type awsSNSClient struct {
	client *sns.Client
}

func (c awsSNSClient) CreateTopic(ctx context.Context, name string, tags map[string]string) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("sns client is nil")
	}
	snsTags := make([]snstypes.Tag, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		snsTags = append(snsTags, snstypes.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	resp, err := c.client.CreateTopic(ctx, &sns.CreateTopicInput{
		Name: aws.String(name),
		Tags: snsTags,
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(resp.TopicArn), nil
}

func (c awsSNSClient) SetTopicPolicy(ctx context.Context, topicARN, policyJSON string) error {
	if c.client == nil {
		return fmt.Errorf("sns client is nil")
	}
	_, err := c.client.SetTopicAttributes(ctx, &sns.SetTopicAttributesInput{
		TopicArn:       aws.String(topicARN),
		AttributeName:  aws.String("Policy"),
		AttributeValue: aws.String(policyJSON),
	})
	return err
}

func (c awsSNSClient) DeleteTopic(ctx context.Context, topicARN string) error {
	if c.client == nil {
		return fmt.Errorf("sns client is nil")
	}
	_, err := c.client.DeleteTopic(ctx, &sns.DeleteTopicInput{TopicArn: aws.String(topicARN)})
	var notFound *snstypes.NotFoundException
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

type awsSTSClient struct {
	client *sts.Client
}

func (c awsSTSClient) CallerAccount(ctx context.Context) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("sts client is nil")
	}
	resp, err := c.client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return "", err
	}
	return aws.ToString(resp.Account), nil
}
