// Where: curstack/internal/infra/provision/iam.go
// What: Replication role appliers.
package provision

import (
	"context"

	"github.com/billingkit/curstack/internal/domain/graph"
	"github.com/billingkit/curstack/internal/domain/stack"
	"github.com/billingkit/curstack/internal/domain/value"
)

// IAMAPI is the slice of IAM the provisioner needs.
type IAMAPI interface {
	RoleARN(ctx context.Context, name string) (string, bool, error)
	CreateRole(ctx context.Context, input CreateRoleInput) (string, error)
	PutRolePolicy(ctx context.Context, role, policyName, policyJSON string) error
	DeleteRolePolicy(ctx context.Context, role, policyName string) error
	DeleteRole(ctx context.Context, name string) error
}

type CreateRoleInput struct {
	Name             string
	AssumePolicyJSON string
	Tags             map[string]string
}

func (s *session) applyReplicationRole(ctx context.Context, node *graph.Node) error {
	name := value.AsString(node.Properties["name"])
	arn, found, err := s.clients.IAM.RoleARN(ctx, name)
	if err != nil {
		return err
	}
	if found {
		s.logf("Role '%s' already exists. Skipping.", name)
	} else {
		trust, err := s.policyProp(node, "assume_role_policy")
		if err != nil {
			return err
		}
		arn, err = s.clients.IAM.CreateRole(ctx, CreateRoleInput{
			Name:             name,
			AssumePolicyJSON: trust,
			Tags:             value.AsStringMap(node.Properties["tags"]),
		})
		if err != nil {
			return err
		}
		s.logf("✅ Created role '%s'", name)
	}
	s.resolve(node.Name, map[string]string{"name": name, "arn": arn})
	return nil
}

func (s *session) applyReplicationRolePolicy(ctx context.Context, node *graph.Node) error {
	role, err := s.prop(node, "role")
	if err != nil {
		return err
	}
	policyName := value.AsString(node.Properties["name"])
	doc, err := s.policyProp(node, "policy")
	if err != nil {
		return err
	}
	if err := s.clients.IAM.PutRolePolicy(ctx, role, policyName, doc); err != nil {
		return err
	}
	s.logf("✅ Attached policy '%s' to role '%s'", policyName, role)
	return nil
}

func (s *session) destroyReplicationRolePolicy(ctx context.Context, node *graph.Node) error {
	roleNode, ok := s.plan.Node(stack.NodeReplicationRole)
	if !ok {
		return nil
	}
	role := value.AsString(roleNode.Properties["name"])
	policyName := value.AsString(node.Properties["name"])
	if err := s.clients.IAM.DeleteRolePolicy(ctx, role, policyName); err != nil {
		return err
	}
	s.logf("🗑️  Removed policy '%s' from role '%s'", policyName, role)
	return nil
}

func (s *session) destroyReplicationRole(ctx context.Context, node *graph.Node) error {
	name := value.AsString(node.Properties["name"])
	if err := s.clients.IAM.DeleteRole(ctx, name); err != nil {
		return err
	}
	s.logf("🗑️  Deleted role '%s'", name)
	return nil
}
