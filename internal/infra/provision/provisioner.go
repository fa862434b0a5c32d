// Where: curstack/internal/infra/provision/provisioner.go
// What: Plan materialization engine.
// Why: Walk the evaluated node list in order, resolving generated
//      identifiers as they appear.
package provision

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/billingkit/curstack/internal/domain/graph"
	"github.com/billingkit/curstack/internal/domain/policy"
	"github.com/billingkit/curstack/internal/domain/stack"
	"github.com/billingkit/curstack/internal/domain/value"
)

// Clients bundles the per-service APIs one apply run needs.
type Clients struct {
	S3      S3API
	KMS     KMSAPI
	IAM     IAMAPI
	SNS     SNSAPI
	CUR     CURAPI
	Exports ExportAPI
	STS     STSAPI
}

// ClientFactory builds service clients for a region. Implementations may
// point the clients at a custom endpoint for local stacks.
type ClientFactory interface {
	Clients(ctx context.Context, region string) (Clients, error)
}

// Runner applies and destroys evaluated plans. Provider errors surface
// unmodified; there is no retry policy at this layer.
type Runner struct {
	Out     io.Writer
	Factory ClientFactory
}

func New(factory ClientFactory) *Runner {
	return &Runner{Out: os.Stdout, Factory: factory}
}

// Apply materializes the plan's nodes in their topological order and returns
// the generated identifiers keyed by "node.attr".
func (r *Runner) Apply(ctx context.Context, plan *stack.Plan) (map[string]string, error) {
	s, err := r.session(ctx, plan)
	if err != nil {
		return nil, err
	}
	if err := s.verifyAccount(ctx); err != nil {
		return nil, err
	}
	for _, node := range plan.Nodes {
		if err := s.apply(ctx, node); err != nil {
			return s.resolved, fmt.Errorf("apply %s: %w", node.Name, err)
		}
	}
	return s.resolved, nil
}

// Destroy removes the plan's nodes in reverse topological order. Nodes that
// have no independent provider object (versioning, encryption, the policies
// folded into their parents) are skipped.
func (r *Runner) Destroy(ctx context.Context, plan *stack.Plan) error {
	s, err := r.session(ctx, plan)
	if err != nil {
		return err
	}
	if err := s.verifyAccount(ctx); err != nil {
		return err
	}
	for i := len(plan.Nodes) - 1; i >= 0; i-- {
		node := plan.Nodes[i]
		if err := s.destroy(ctx, node); err != nil {
			return fmt.Errorf("destroy %s: %w", node.Name, err)
		}
	}
	return nil
}

func (r *Runner) session(ctx context.Context, plan *stack.Plan) (*session, error) {
	if r.Factory == nil {
		return nil, fmt.Errorf("client factory not configured")
	}
	out := r.Out
	if out == nil {
		out = io.Discard
	}
	clients, err := r.Factory.Clients(ctx, plan.Config.Region)
	if err != nil {
		return nil, fmt.Errorf("build aws clients: %w", err)
	}
	return &session{
		cfg:      plan.Config,
		plan:     plan,
		clients:  clients,
		out:      out,
		resolved: map[string]string{},
	}, nil
}

// session carries the state of one apply/destroy run.
type session struct {
	cfg      stack.Config
	plan     *stack.Plan
	clients  Clients
	out      io.Writer
	resolved map[string]string
}

func (s *session) apply(ctx context.Context, node *graph.Node) error {
	switch node.Kind {
	case graph.KindKMSKey:
		return s.applyKMSKey(ctx, node)
	case graph.KindKMSAlias:
		return s.applyKMSAlias(ctx, node)
	case graph.KindKMSKeyPolicy:
		return s.applyKMSKeyPolicy(ctx, node)
	case graph.KindBucket:
		return s.applyBucket(ctx, node)
	case graph.KindBucketVersioning:
		return s.applyBucketVersioning(ctx, node)
	case graph.KindBucketEncryption:
		return s.applyBucketEncryption(ctx, node)
	case graph.KindPublicAccessBlock:
		return s.applyPublicAccessBlock(ctx, node)
	case graph.KindBucketPolicy:
		return s.applyBucketPolicy(ctx, node)
	case graph.KindReplicationRole:
		return s.applyReplicationRole(ctx, node)
	case graph.KindReplicationRolePolicy:
		return s.applyReplicationRolePolicy(ctx, node)
	case graph.KindReplicationConfig:
		return s.applyReplicationConfig(ctx, node)
	case graph.KindSNSTopic:
		return s.applySNSTopic(ctx, node)
	case graph.KindSNSTopicPolicy:
		return s.applySNSTopicPolicy(ctx, node)
	case graph.KindBucketNotification:
		return s.applyBucketNotification(ctx, node)
	case graph.KindReportDefinition:
		return s.applyReportDefinition(ctx, node)
	case graph.KindDataExport:
		return s.applyDataExport(ctx, node)
	default:
		return fmt.Errorf("unsupported node kind %s", node.Kind)
	}
}

func (s *session) destroy(ctx context.Context, node *graph.Node) error {
	switch node.Kind {
	case graph.KindDataExport:
		return s.destroyDataExport(ctx, node)
	case graph.KindReportDefinition:
		return s.destroyReportDefinition(ctx, node)
	case graph.KindReplicationConfig:
		return s.destroyReplicationConfig(ctx)
	case graph.KindBucketPolicy:
		return s.destroyBucketPolicy(ctx)
	case graph.KindBucket:
		return s.destroyBucket(ctx)
	case graph.KindReplicationRolePolicy:
		return s.destroyReplicationRolePolicy(ctx, node)
	case graph.KindReplicationRole:
		return s.destroyReplicationRole(ctx, node)
	case graph.KindKMSAlias:
		return s.destroyKMSAlias(ctx, node)
	case graph.KindKMSKey:
		return s.destroyKMSKey(ctx, node)
	case graph.KindSNSTopic:
		return s.destroySNSTopic(ctx, node)
	default:
		// Sub-configurations vanish with their parent resource.
		return nil
	}
}

// resolve records the generated attributes of a node.
func (s *session) resolve(nodeName string, attrs map[string]string) {
	for attr, v := range attrs {
		s.resolved[nodeName+"."+attr] = v
	}
}

// prop returns a node property with references expanded.
func (s *session) prop(node *graph.Node, key string) (string, error) {
	raw := value.AsString(node.Properties[key])
	out, err := stack.ExpandRefs(raw, s.resolved)
	if err != nil {
		return "", fmt.Errorf("property %s of %s: %w", key, node.Name, err)
	}
	return out, nil
}

// policyProp marshals a policy-document property and expands references in
// the resulting JSON.
func (s *session) policyProp(node *graph.Node, key string) (string, error) {
	doc, ok := node.Properties[key].(policy.Document)
	if !ok {
		return "", fmt.Errorf("property %s of %s is not a policy document", key, node.Name)
	}
	payload, err := doc.JSON()
	if err != nil {
		return "", err
	}
	out, err := stack.ExpandRefs(payload, s.resolved)
	if err != nil {
		return "", fmt.Errorf("policy %s of %s: %w", key, node.Name, err)
	}
	return out, nil
}

func (s *session) logf(format string, args ...any) {
	fmt.Fprintf(s.out, format+"\n", args...)
}
