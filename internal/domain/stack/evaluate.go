// Where: curstack/internal/domain/stack/evaluate.go
// What: Resource graph evaluator.
// Why: Deterministically derive the ordered node set from one Config.
package stack

import (
	"fmt"

	"github.com/billingkit/curstack/internal/domain/graph"
)

// Logical node names. Stable across runs; the CloudFormation export and the
// provisioner both key off them.
const (
	NodeKMSKey                = "kms_key"
	NodeKMSAlias              = "kms_alias"
	NodeKMSKeyPolicy          = "kms_key_policy"
	NodeBucket                = "bucket"
	NodeBucketVersioning      = "bucket_versioning"
	NodeBucketEncryption      = "bucket_encryption"
	NodePublicAccessBlock     = "public_access_block"
	NodeBucketPolicy          = "bucket_policy"
	NodeReplicationRole       = "replication_role"
	NodeReplicationRolePolicy = "replication_role_policy"
	NodeReplicationConfig     = "replication_configuration"
	NodeSNSTopic              = "notification_topic"
	NodeSNSTopicPolicy        = "notification_topic_policy"
	NodeBucketNotification    = "bucket_notification"
	NodeReportDefinition      = "report_definition"
	NodeCOHExport             = "coh_export"
)

// Plan is the evaluated form of a Config: the resource nodes in a valid
// materialization order plus the resolved output groups.
type Plan struct {
	Config  Config
	Nodes   []*graph.Node
	Outputs Outputs

	g *graph.Graph
}

// Node returns the named node when it is present in the plan.
func (p *Plan) Node(name string) (*graph.Node, bool) {
	return p.g.Node(name)
}

// Has reports whether the named node is present in the plan.
func (p *Plan) Has(name string) bool {
	return p.g.Has(name)
}

// evaluation carries the per-run derived values the node builders share.
type evaluation struct {
	cfg Config
	g   *graph.Graph

	// createKey is the single encryption-sourcing switch: a key is generated
	// only when encryption is on and no external key id was supplied. Every
	// consumer reads keyARN, never the raw config fields.
	createKey bool
	keyARN    string

	createTopic bool
	topicARN    string
}

// Evaluate validates the configuration and computes the resource plan.
// It is a pure function: the same Config always yields a structurally
// identical plan.
func Evaluate(cfg Config) (*Plan, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	c := cfg.Normalized()
	ev := &evaluation{cfg: c, g: graph.New()}

	ev.createKey = c.EnableKMSEncryption && c.KMSKeyID == ""
	if ev.createKey {
		ev.keyARN = Ref(NodeKMSKey, "arn")
	} else {
		ev.keyARN = c.KMSKeyID
	}
	ev.createTopic = c.EnableBucketNotification && c.NotificationTopicARN == ""
	if ev.createTopic {
		ev.topicARN = Ref(NodeSNSTopic, "arn")
	} else {
		ev.topicARN = c.NotificationTopicARN
	}

	builders := []func() error{
		ev.addKMSNodes,
		ev.addBucketNodes,
		ev.addReplicationNodes,
		ev.addNotificationNodes,
		ev.addReportingNodes,
	}
	for _, build := range builders {
		if err := build(); err != nil {
			return nil, err
		}
	}

	nodes, err := ev.g.TopoSort()
	if err != nil {
		return nil, fmt.Errorf("order resource graph: %w", err)
	}

	return &Plan{
		Config:  c,
		Nodes:   nodes,
		Outputs: buildOutputs(c, ev),
		g:       ev.g,
	}, nil
}

// reportARNPattern is the definition ARN wildcard the bucket policy scopes
// CUR delivery to. The CUR service lives in a fixed region regardless of
// where the bucket is.
func (ev *evaluation) reportARNPattern() string {
	return fmt.Sprintf("arn:aws:cur:%s:%s:definition/*", ReportRegion, ev.cfg.AccountID)
}

func (ev *evaluation) add(n *graph.Node) error {
	return ev.g.Add(n)
}
