// Where: curstack/internal/domain/graph/graph.go
// What: Resource dependency graph model.
// Why: Keep node bookkeeping separate from stack evaluation rules.
package graph

import (
	"fmt"
	"sort"
)

// Kind identifies the provider resource type a node materializes.
type Kind string

const (
	KindKMSKey                Kind = "kms_key"
	KindKMSAlias              Kind = "kms_alias"
	KindKMSKeyPolicy          Kind = "kms_key_policy"
	KindBucket                Kind = "s3_bucket"
	KindBucketVersioning      Kind = "s3_bucket_versioning"
	KindBucketEncryption      Kind = "s3_bucket_encryption"
	KindPublicAccessBlock     Kind = "s3_public_access_block"
	KindBucketPolicy          Kind = "s3_bucket_policy"
	KindReplicationRole       Kind = "iam_replication_role"
	KindReplicationRolePolicy Kind = "iam_replication_role_policy"
	KindReplicationConfig     Kind = "s3_replication_configuration"
	KindSNSTopic              Kind = "sns_topic"
	KindSNSTopicPolicy        Kind = "sns_topic_policy"
	KindBucketNotification    Kind = "s3_bucket_notification"
	KindReportDefinition      Kind = "cur_report_definition"
	KindDataExport            Kind = "coh_data_export"
)

// Node is one provider-managed object in the computed graph.
// Properties may reference other nodes' generated identifiers through
// "${node.attr}" placeholders; DependsOn lists the node names that must be
// materialized first.
type Node struct {
	Name       string
	Kind       Kind
	Properties map[string]any
	DependsOn  []string
}

// Graph is a DAG of resource nodes keyed by logical name.
type Graph struct {
	nodes map[string]*Node
}

func New() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// Add inserts a node. Duplicate names are rejected.
func (g *Graph) Add(n *Node) error {
	if n == nil {
		return fmt.Errorf("node is nil")
	}
	if n.Name == "" {
		return fmt.Errorf("node name is required")
	}
	if _, ok := g.nodes[n.Name]; ok {
		return fmt.Errorf("duplicate node: %s", n.Name)
	}
	g.nodes[n.Name] = n
	return nil
}

// Node returns the node with the given name, if present.
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.nodes[name]
	return n, ok
}

// Has reports whether a node with the given name exists.
func (g *Graph) Has(name string) bool {
	_, ok := g.nodes[name]
	return ok
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Names returns all node names in lexicographic order.
func (g *Graph) Names() []string {
	names := make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
