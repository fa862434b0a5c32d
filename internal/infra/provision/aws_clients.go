// Where: curstack/internal/infra/provision/aws_clients.go
// What: AWS SDK adapters for S3 and KMS.
// Why: Map internal provisioner types to SDK types.
package provision

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	kmstypes "github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
)

type awsS3Client struct {
	client *s3.Client
}

func (c awsS3Client) BucketExists(ctx context.Context, bucket string) (bool, error) {
	if c.client == nil {
		return false, fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(bucket)})
	if err != nil {
		var notFound *s3types.NotFound
		if errors.As(err, &notFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c awsS3Client) CreateBucket(ctx context.Context, input CreateBucketInput) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	awsInput := &s3.CreateBucketInput{Bucket: aws.String(input.Bucket)}
	// us-east-1 rejects an explicit location constraint.
	if input.Region != "" && input.Region != "us-east-1" {
		awsInput.CreateBucketConfiguration = &s3types.CreateBucketConfiguration{
			LocationConstraint: s3types.BucketLocationConstraint(input.Region),
		}
	}
	_, err := c.client.CreateBucket(ctx, awsInput)
	return err
}

func (c awsS3Client) PutBucketTagging(ctx context.Context, bucket string, tags map[string]string) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.PutBucketTagging(ctx, &s3.PutBucketTaggingInput{
		Bucket:  aws.String(bucket),
		Tagging: &s3types.Tagging{TagSet: mapTagSet(tags)},
	})
	return err
}

func mapTagSet(tags map[string]string) []s3types.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]s3types.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, s3types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func (c awsS3Client) PutBucketVersioning(ctx context.Context, bucket, status string) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.PutBucketVersioning(ctx, &s3.PutBucketVersioningInput{
		Bucket: aws.String(bucket),
		VersioningConfiguration: &s3types.VersioningConfiguration{
			Status: s3types.BucketVersioningStatus(status),
		},
	})
	return err
}

func (c awsS3Client) PutBucketEncryption(ctx context.Context, input BucketEncryptionInput) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.PutBucketEncryption(ctx, &s3.PutBucketEncryptionInput{
		Bucket: aws.String(input.Bucket),
		ServerSideEncryptionConfiguration: &s3types.ServerSideEncryptionConfiguration{
			Rules: []s3types.ServerSideEncryptionRule{
				{
					ApplyServerSideEncryptionByDefault: &s3types.ServerSideEncryptionByDefault{
						SSEAlgorithm:   s3types.ServerSideEncryptionAwsKms,
						KMSMasterKeyID: aws.String(input.KMSKeyARN),
					},
					BucketKeyEnabled: aws.Bool(input.BucketKeyEnabled),
				},
			},
		},
	})
	return err
}

func (c awsS3Client) PutPublicAccessBlock(ctx context.Context, bucket string) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.PutPublicAccessBlock(ctx, &s3.PutPublicAccessBlockInput{
		Bucket: aws.String(bucket),
		PublicAccessBlockConfiguration: &s3types.PublicAccessBlockConfiguration{
			BlockPublicAcls:       aws.Bool(true),
			BlockPublicPolicy:     aws.Bool(true),
			IgnorePublicAcls:      aws.Bool(true),
			RestrictPublicBuckets: aws.Bool(true),
		},
	})
	return err
}

func (c awsS3Client) PutBucketPolicy(ctx context.Context, bucket, policyJSON string) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.PutBucketPolicy(ctx, &s3.PutBucketPolicyInput{
		Bucket: aws.String(bucket),
		Policy: aws.String(policyJSON),
	})
	return err
}

func (c awsS3Client) DeleteBucketPolicy(ctx context.Context, bucket string) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.DeleteBucketPolicy(ctx, &s3.DeleteBucketPolicyInput{Bucket: aws.String(bucket)})
	return ignoreNoSuchBucket(err)
}

func (c awsS3Client) PutBucketReplication(ctx context.Context, input BucketReplicationInput) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	destination := &s3types.Destination{
		Bucket:       aws.String(input.DestinationBucket),
		StorageClass: s3types.StorageClass(input.StorageClass),
	}
	if input.DestinationAccount != "" {
		destination.Account = aws.String(input.DestinationAccount)
		destination.AccessControlTranslation = &s3types.AccessControlTranslation{
			Owner: s3types.OwnerOverrideDestination,
		}
	}
	rule := s3types.ReplicationRule{
		ID:       aws.String("report-replication"),
		Status:   s3types.ReplicationRuleStatusEnabled,
		Priority: aws.Int32(0),
		Filter:   &s3types.ReplicationRuleFilter{Prefix: aws.String("")},
		DeleteMarkerReplication: &s3types.DeleteMarkerReplication{
			Status: s3types.DeleteMarkerReplicationStatusDisabled,
		},
		Destination: destination,
	}
	if input.ReplicaKMSKeyID != "" {
		destination.EncryptionConfiguration = &s3types.EncryptionConfiguration{
			ReplicaKmsKeyID: aws.String(input.ReplicaKMSKeyID),
		}
		rule.SourceSelectionCriteria = &s3types.SourceSelectionCriteria{
			SseKmsEncryptedObjects: &s3types.SseKmsEncryptedObjects{
				Status: s3types.SseKmsEncryptedObjectsStatusEnabled,
			},
		}
	}
	_, err := c.client.PutBucketReplication(ctx, &s3.PutBucketReplicationInput{
		Bucket: aws.String(input.Bucket),
		ReplicationConfiguration: &s3types.ReplicationConfiguration{
			Role:  aws.String(input.RoleARN),
			Rules: []s3types.ReplicationRule{rule},
		},
	})
	return err
}

func (c awsS3Client) DeleteBucketReplication(ctx context.Context, bucket string) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.DeleteBucketReplication(ctx, &s3.DeleteBucketReplicationInput{Bucket: aws.String(bucket)})
	return ignoreNoSuchBucket(err)
}

func (c awsS3Client) PutBucketNotification(ctx context.Context, input BucketNotificationInput) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	configs := make([]s3types.TopicConfiguration, 0, len(input.Rules))
	for _, rule := range input.Rules {
		events := make([]s3types.Event, 0, len(rule.Events))
		for _, e := range rule.Events {
			events = append(events, s3types.Event(e))
		}
		configs = append(configs, s3types.TopicConfiguration{
			Id:       aws.String(rule.ID),
			TopicArn: aws.String(input.TopicARN),
			Events:   events,
			Filter: &s3types.NotificationConfigurationFilter{
				Key: &s3types.S3KeyFilter{
					FilterRules: []s3types.FilterRule{
						{Name: s3types.FilterRuleNamePrefix, Value: aws.String(rule.Prefix)},
					},
				},
			},
		})
	}
	_, err := c.client.PutBucketNotificationConfiguration(ctx, &s3.PutBucketNotificationConfigurationInput{
		Bucket: aws.String(input.Bucket),
		NotificationConfiguration: &s3types.NotificationConfiguration{
			TopicConfigurations: configs,
		},
	})
	return err
}

func (c awsS3Client) DeleteBucket(ctx context.Context, bucket string) error {
	if c.client == nil {
		return fmt.Errorf("s3 client is nil")
	}
	_, err := c.client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: aws.String(bucket)})
	return ignoreNoSuchBucket(err)
}

func ignoreNoSuchBucket(err error) error {
	var noSuchBucket *s3types.NoSuchBucket
	if errors.As(err, &noSuchBucket) {
		return nil
	}
	return err
}

type awsKMSClient struct {
	client *kms.Client
}

func (c awsKMSClient) CreateKey(ctx context.Context, input CreateKeyInput) (KeyIdentity, error) {
	if c.client == nil {
		return KeyIdentity{}, fmt.Errorf("kms client is nil")
	}
	tags := make([]kmstypes.Tag, 0, len(input.Tags))
	for _, k := range sortedKeys(input.Tags) {
		tags = append(tags, kmstypes.Tag{TagKey: aws.String(k), TagValue: aws.String(input.Tags[k])})
	}
	resp, err := c.client.CreateKey(ctx, &kms.CreateKeyInput{
		Description: aws.String(input.Description),
		Tags:        tags,
	})
	if err != nil {
		return KeyIdentity{}, err
	}
	identity := KeyIdentity{
		KeyID: aws.ToString(resp.KeyMetadata.KeyId),
		ARN:   aws.ToString(resp.KeyMetadata.Arn),
	}
	if input.EnableRotation {
		if _, err := c.client.EnableKeyRotation(ctx, &kms.EnableKeyRotationInput{
			KeyId: resp.KeyMetadata.KeyId,
		}); err != nil {
			return identity, err
		}
	}
	return identity, nil
}

func (c awsKMSClient) KeyByAlias(ctx context.Context, alias string) (KeyIdentity, bool, error) {
	if c.client == nil {
		return KeyIdentity{}, false, fmt.Errorf("kms client is nil")
	}
	resp, err := c.client.DescribeKey(ctx, &kms.DescribeKeyInput{KeyId: aws.String(alias)})
	if err != nil {
		var notFound *kmstypes.NotFoundException
		if errors.As(err, &notFound) {
			return KeyIdentity{}, false, nil
		}
		return KeyIdentity{}, false, err
	}
	return KeyIdentity{
		KeyID: aws.ToString(resp.KeyMetadata.KeyId),
		ARN:   aws.ToString(resp.KeyMetadata.Arn),
	}, true, nil
}

func (c awsKMSClient) UpsertAlias(ctx context.Context, alias, keyID string) error {
	if c.client == nil {
		return fmt.Errorf("kms client is nil")
	}
	_, err := c.client.CreateAlias(ctx, &kms.CreateAliasInput{
		AliasName:   aws.String(alias),
		TargetKeyId: aws.String(keyID),
	})
	var exists *kmstypes.AlreadyExistsException
	if errors.As(err, &exists) {
		_, err = c.client.UpdateAlias(ctx, &kms.UpdateAliasInput{
			AliasName:   aws.String(alias),
			TargetKeyId: aws.String(keyID),
		})
	}
	return err
}

func (c awsKMSClient) PutKeyPolicy(ctx context.Context, keyID, policyJSON string) error {
	if c.client == nil {
		return fmt.Errorf("kms client is nil")
	}
	_, err := c.client.PutKeyPolicy(ctx, &kms.PutKeyPolicyInput{
		KeyId:      aws.String(keyID),
		PolicyName: aws.String("default"),
		Policy:     aws.String(policyJSON),
	})
	return err
}

func (c awsKMSClient) DeleteAlias(ctx context.Context, alias string) error {
	if c.client == nil {
		return fmt.Errorf("kms client is nil")
	}
	_, err := c.client.DeleteAlias(ctx, &kms.DeleteAliasInput{AliasName: aws.String(alias)})
	var notFound *kmstypes.NotFoundException
	if errors.As(err, &notFound) {
		return nil
	}
	return err
}

func (c awsKMSClient) ScheduleKeyDeletion(ctx context.Context, keyID string, pendingDays int32) error {
	if c.client == nil {
		return fmt.Errorf("kms client is nil")
	}
	_, err := c.client.ScheduleKeyDeletion(ctx, &kms.ScheduleKeyDeletionInput{
		KeyId:               aws.String(keyID),
		PendingWindowInDays: aws.Int32(pendingDays),
	})
	return err
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
