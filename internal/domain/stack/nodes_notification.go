// Where: curstack/internal/domain/stack/nodes_notification.go
// What: Bucket notification node builders.
// Why: COH exports land under an account-scoped prefix in the shared bucket,
//      so the COH rule filters on a different path than the CUR rule.
package stack

import (
	"path"

	"github.com/billingkit/curstack/internal/domain/graph"
	"github.com/billingkit/curstack/internal/domain/policy"
)

func (ev *evaluation) addNotificationNodes() error {
	cfg := ev.cfg
	if !cfg.EnableBucketNotification {
		return nil
	}

	if ev.createTopic {
		if err := ev.add(&graph.Node{
			Name: NodeSNSTopic,
			Kind: graph.KindSNSTopic,
			Properties: map[string]any{
				"name": cfg.S3BucketName + "-notifications",
				"tags": cfg.Tags,
			},
		}); err != nil {
			return err
		}
		if err := ev.add(&graph.Node{
			Name: NodeSNSTopicPolicy,
			Kind: graph.KindSNSTopicPolicy,
			Properties: map[string]any{
				"topic_arn": Ref(NodeSNSTopic, "arn"),
				"policy":    policy.TopicPolicy(Ref(NodeSNSTopic, "arn"), cfg.BucketARN(), cfg.AccountID),
			},
			DependsOn: []string{NodeSNSTopic},
		}); err != nil {
			return err
		}
	}

	// Stored as []any so value.AsSlice hands consumers the individual rule
	// maps instead of wrapping the whole slice as one element.
	rules := []any{
		map[string]any{
			"id":            "cur-report-delivery",
			"events":        []string{"s3:ObjectCreated:*"},
			"filter_prefix": cfg.S3BucketPrefix,
		},
	}
	if cfg.EnableCostOptimizationHub {
		rules = append(rules, map[string]any{
			"id":            "coh-export-delivery",
			"events":        []string{"s3:ObjectCreated:*"},
			"filter_prefix": path.Join(cfg.COHS3Prefix, cfg.AccountID),
		})
	}

	// The topic policy must exist before S3 validates publish permission on
	// the notification configuration.
	deps := []string{NodeBucket}
	if ev.createTopic {
		deps = append(deps, NodeSNSTopicPolicy)
	}
	return ev.add(&graph.Node{
		Name: NodeBucketNotification,
		Kind: graph.KindBucketNotification,
		Properties: map[string]any{
			"bucket":    Ref(NodeBucket, "id"),
			"topic_arn": ev.topicARN,
			"rules":     rules,
		},
		DependsOn: deps,
	})
}
