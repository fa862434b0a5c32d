// Where: curstack/internal/infra/provision/s3.go
// What: Report bucket appliers.
// Why: The bucket and its sub-configurations are separate provider calls with
//      separate idempotency rules.
package provision

import (
	"context"
	"fmt"

	"github.com/billingkit/curstack/internal/domain/graph"
	"github.com/billingkit/curstack/internal/domain/value"
)

// S3API is the slice of S3 the provisioner needs.
type S3API interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	CreateBucket(ctx context.Context, input CreateBucketInput) error
	PutBucketTagging(ctx context.Context, bucket string, tags map[string]string) error
	PutBucketVersioning(ctx context.Context, bucket, status string) error
	PutBucketEncryption(ctx context.Context, input BucketEncryptionInput) error
	PutPublicAccessBlock(ctx context.Context, bucket string) error
	PutBucketPolicy(ctx context.Context, bucket, policyJSON string) error
	DeleteBucketPolicy(ctx context.Context, bucket string) error
	PutBucketReplication(ctx context.Context, input BucketReplicationInput) error
	DeleteBucketReplication(ctx context.Context, bucket string) error
	PutBucketNotification(ctx context.Context, input BucketNotificationInput) error
	DeleteBucket(ctx context.Context, bucket string) error
}

type CreateBucketInput struct {
	Bucket string
	Region string
}

type BucketEncryptionInput struct {
	Bucket           string
	KMSKeyARN        string
	BucketKeyEnabled bool
}

type BucketReplicationInput struct {
	Bucket             string
	RoleARN            string
	DestinationBucket  string
	DestinationAccount string
	StorageClass       string
	ReplicaKMSKeyID    string
}

type NotificationRule struct {
	ID     string
	Events []string
	Prefix string
}

type BucketNotificationInput struct {
	Bucket   string
	TopicARN string
	Rules    []NotificationRule
}

func (s *session) applyBucket(ctx context.Context, node *graph.Node) error {
	bucket := value.AsString(node.Properties["bucket"])
	exists, err := s.clients.S3.BucketExists(ctx, bucket)
	if err != nil {
		return err
	}
	if exists {
		s.logf("Bucket '%s' already exists. Skipping.", bucket)
	} else {
		if err := s.clients.S3.CreateBucket(ctx, CreateBucketInput{
			Bucket: bucket,
			Region: value.AsString(node.Properties["region"]),
		}); err != nil {
			return err
		}
		s.logf("✅ Created bucket '%s'", bucket)
	}
	if tags := value.AsStringMap(node.Properties["tags"]); len(tags) > 0 {
		if err := s.clients.S3.PutBucketTagging(ctx, bucket, tags); err != nil {
			return err
		}
	}
	s.resolve(node.Name, map[string]string{
		"id":                   bucket,
		"arn":                  "arn:aws:s3:::" + bucket,
		"domain_name":          bucket + ".s3.amazonaws.com",
		"regional_domain_name": fmt.Sprintf("%s.s3.%s.amazonaws.com", bucket, s.cfg.Region),
	})
	return nil
}

func (s *session) applyBucketVersioning(ctx context.Context, node *graph.Node) error {
	bucket, err := s.prop(node, "bucket")
	if err != nil {
		return err
	}
	status := value.AsString(node.Properties["status"])
	if err := s.clients.S3.PutBucketVersioning(ctx, bucket, status); err != nil {
		return err
	}
	s.logf("✅ Set versioning on '%s' to %s", bucket, status)
	return nil
}

func (s *session) applyBucketEncryption(ctx context.Context, node *graph.Node) error {
	bucket, err := s.prop(node, "bucket")
	if err != nil {
		return err
	}
	keyARN, err := s.prop(node, "kms_key_arn")
	if err != nil {
		return err
	}
	if err := s.clients.S3.PutBucketEncryption(ctx, BucketEncryptionInput{
		Bucket:           bucket,
		KMSKeyARN:        keyARN,
		BucketKeyEnabled: value.AsBool(node.Properties["bucket_key_enabled"]),
	}); err != nil {
		return err
	}
	s.logf("✅ Enabled KMS encryption on '%s'", bucket)
	return nil
}

func (s *session) applyPublicAccessBlock(ctx context.Context, node *graph.Node) error {
	bucket, err := s.prop(node, "bucket")
	if err != nil {
		return err
	}
	if err := s.clients.S3.PutPublicAccessBlock(ctx, bucket); err != nil {
		return err
	}
	s.logf("✅ Blocked public access on '%s'", bucket)
	return nil
}

func (s *session) applyBucketPolicy(ctx context.Context, node *graph.Node) error {
	bucket, err := s.prop(node, "bucket")
	if err != nil {
		return err
	}
	doc, err := s.policyProp(node, "policy")
	if err != nil {
		return err
	}
	if err := s.clients.S3.PutBucketPolicy(ctx, bucket, doc); err != nil {
		return err
	}
	s.logf("✅ Attached bucket policy to '%s'", bucket)
	return nil
}

func (s *session) applyReplicationConfig(ctx context.Context, node *graph.Node) error {
	bucket, err := s.prop(node, "bucket")
	if err != nil {
		return err
	}
	roleARN, err := s.prop(node, "role_arn")
	if err != nil {
		return err
	}
	if err := s.clients.S3.PutBucketReplication(ctx, BucketReplicationInput{
		Bucket:             bucket,
		RoleARN:            roleARN,
		DestinationBucket:  value.AsString(node.Properties["destination_bucket"]),
		DestinationAccount: value.AsString(node.Properties["destination_account"]),
		StorageClass:       value.AsString(node.Properties["storage_class"]),
		ReplicaKMSKeyID:    value.AsString(node.Properties["replica_kms_key_id"]),
	}); err != nil {
		return err
	}
	s.logf("✅ Configured replication on '%s'", bucket)
	return nil
}

func (s *session) applyBucketNotification(ctx context.Context, node *graph.Node) error {
	bucket, err := s.prop(node, "bucket")
	if err != nil {
		return err
	}
	topicARN, err := s.prop(node, "topic_arn")
	if err != nil {
		return err
	}
	input := BucketNotificationInput{Bucket: bucket, TopicARN: topicARN}
	for _, raw := range value.AsSlice(node.Properties["rules"]) {
		rule := value.AsMap(raw)
		input.Rules = append(input.Rules, NotificationRule{
			ID:     value.AsString(rule["id"]),
			Events: value.AsStringSlice(rule["events"]),
			Prefix: value.AsString(rule["filter_prefix"]),
		})
	}
	if err := s.clients.S3.PutBucketNotification(ctx, input); err != nil {
		return err
	}
	s.logf("✅ Configured delivery notifications on '%s'", bucket)
	return nil
}

func (s *session) destroyBucketPolicy(ctx context.Context) error {
	if err := s.clients.S3.DeleteBucketPolicy(ctx, s.cfg.S3BucketName); err != nil {
		return err
	}
	s.logf("🗑️  Removed bucket policy from '%s'", s.cfg.S3BucketName)
	return nil
}

func (s *session) destroyReplicationConfig(ctx context.Context) error {
	if err := s.clients.S3.DeleteBucketReplication(ctx, s.cfg.S3BucketName); err != nil {
		return err
	}
	s.logf("🗑️  Removed replication from '%s'", s.cfg.S3BucketName)
	return nil
}

func (s *session) destroyBucket(ctx context.Context) error {
	exists, err := s.clients.S3.BucketExists(ctx, s.cfg.S3BucketName)
	if err != nil {
		return err
	}
	if !exists {
		s.logf("Bucket '%s' not found. Skipping.", s.cfg.S3BucketName)
		return nil
	}
	// Non-empty buckets fail here; emptying report data is a deliberate
	// manual step.
	if err := s.clients.S3.DeleteBucket(ctx, s.cfg.S3BucketName); err != nil {
		return err
	}
	s.logf("🗑️  Deleted bucket '%s'", s.cfg.S3BucketName)
	return nil
}
