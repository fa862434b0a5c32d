// Where: curstack/internal/infra/provision/sns.go
// What: Notification topic appliers.
package provision

import (
	"context"
	"fmt"

	"github.com/billingkit/curstack/internal/domain/graph"
	"github.com/billingkit/curstack/internal/domain/value"
)

// SNSAPI is the slice of SNS the provisioner needs. Topic creation is
// idempotent on the service side; creating an existing name returns its ARN.
type SNSAPI interface {
	CreateTopic(ctx context.Context, name string, tags map[string]string) (string, error)
	SetTopicPolicy(ctx context.Context, topicARN, policyJSON string) error
	DeleteTopic(ctx context.Context, topicARN string) error
}

func (s *session) applySNSTopic(ctx context.Context, node *graph.Node) error {
	name := value.AsString(node.Properties["name"])
	arn, err := s.clients.SNS.CreateTopic(ctx, name, value.AsStringMap(node.Properties["tags"]))
	if err != nil {
		return err
	}
	s.logf("✅ Topic '%s' ready", name)
	s.resolve(node.Name, map[string]string{"name": name, "arn": arn})
	return nil
}

func (s *session) applySNSTopicPolicy(ctx context.Context, node *graph.Node) error {
	topicARN, err := s.prop(node, "topic_arn")
	if err != nil {
		return err
	}
	doc, err := s.policyProp(node, "policy")
	if err != nil {
		return err
	}
	if err := s.clients.SNS.SetTopicPolicy(ctx, topicARN, doc); err != nil {
		return err
	}
	s.logf("✅ Attached topic policy to %s", topicARN)
	return nil
}

func (s *session) destroySNSTopic(ctx context.Context, node *graph.Node) error {
	name := value.AsString(node.Properties["name"])
	arn := fmt.Sprintf("arn:aws:sns:%s:%s:%s", s.cfg.Region, s.cfg.AccountID, name)
	if err := s.clients.SNS.DeleteTopic(ctx, arn); err != nil {
		return err
	}
	s.logf("🗑️  Deleted topic '%s'", name)
	return nil
}
