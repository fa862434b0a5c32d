// Where: curstack/internal/domain/stack/nodes_s3.go
// What: Report bucket node builders.
// Why: Bucket sub-resources carry their own presence predicates and ordering.
package stack

import (
	"github.com/billingkit/curstack/internal/domain/graph"
	"github.com/billingkit/curstack/internal/domain/policy"
)

func (ev *evaluation) addBucketNodes() error {
	cfg := ev.cfg

	if err := ev.add(&graph.Node{
		Name: NodeBucket,
		Kind: graph.KindBucket,
		Properties: map[string]any{
			"bucket": cfg.S3BucketName,
			"region": cfg.Region,
			"tags":   cfg.Tags,
		},
	}); err != nil {
		return err
	}

	// Always present; replication needs Enabled, otherwise the flag decides.
	status := "Suspended"
	if cfg.EnableVersioning {
		status = "Enabled"
	}
	if err := ev.add(&graph.Node{
		Name: NodeBucketVersioning,
		Kind: graph.KindBucketVersioning,
		Properties: map[string]any{
			"bucket": Ref(NodeBucket, "id"),
			"status": status,
		},
		DependsOn: []string{NodeBucket},
	}); err != nil {
		return err
	}

	if cfg.EnableKMSEncryption {
		deps := []string{NodeBucket}
		if ev.createKey {
			deps = append(deps, NodeKMSKey)
		}
		if err := ev.add(&graph.Node{
			Name: NodeBucketEncryption,
			Kind: graph.KindBucketEncryption,
			Properties: map[string]any{
				"bucket":             Ref(NodeBucket, "id"),
				"sse_algorithm":      "aws:kms",
				"kms_key_arn":        ev.keyARN,
				"bucket_key_enabled": true,
			},
			DependsOn: deps,
		}); err != nil {
			return err
		}
	}

	if cfg.EnablePublicAccessBlock {
		if err := ev.add(&graph.Node{
			Name: NodePublicAccessBlock,
			Kind: graph.KindPublicAccessBlock,
			Properties: map[string]any{
				"bucket":                  Ref(NodeBucket, "id"),
				"block_public_acls":       true,
				"block_public_policy":     true,
				"ignore_public_acls":      true,
				"restrict_public_buckets": true,
			},
			DependsOn: []string{NodeBucket},
		}); err != nil {
			return err
		}
	}

	// The public access block must land before the policy so the policy is
	// written against the final public-access posture.
	deps := []string{NodeBucket}
	if cfg.EnablePublicAccessBlock {
		deps = append(deps, NodePublicAccessBlock)
	}
	if cfg.EnableReplication {
		deps = append(deps, NodeReplicationRole)
	}
	return ev.add(&graph.Node{
		Name: NodeBucketPolicy,
		Kind: graph.KindBucketPolicy,
		Properties: map[string]any{
			"bucket": Ref(NodeBucket, "id"),
			"policy": policy.BucketPolicy(policy.BucketPolicyInput{
				BucketARN:          cfg.BucketARN(),
				AccountID:          cfg.AccountID,
				ReportARNPattern:   ev.reportARNPattern(),
				IncludeCOH:         cfg.EnableCostOptimizationHub,
				IncludeReplication: cfg.EnableReplication,
				ReplicationRoleARN: Ref(NodeReplicationRole, "arn"),
			}),
		},
		DependsOn: deps,
	})
}
