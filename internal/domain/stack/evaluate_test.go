// Where: curstack/internal/domain/stack/evaluate_test.go
// What: Tests for plan evaluation.
// Why: The node set, its ordering, and the encryption sourcing switch are the
//      contract every downstream consumer depends on.
package stack

import (
	"errors"
	"testing"

	"github.com/billingkit/curstack/internal/domain/policy"
	"github.com/billingkit/curstack/internal/domain/value"
)

func baseConfig() Config {
	return Config{
		AccountID:    "123456789012",
		Region:       "eu-west-1",
		S3BucketName: "billing-reports",
		Tags:         map[string]string{"team": "finops"},
	}
}

func fullConfig() Config {
	cfg := baseConfig()
	cfg.EnableVersioning = true
	cfg.EnablePublicAccessBlock = true
	cfg.EnableKMSEncryption = true
	cfg.EnableReplication = true
	cfg.ReplicationDestinationBucket = "arn:aws:s3:::replica-bucket"
	cfg.ReplicationDestinationAccountID = "999999999999"
	cfg.EnableBucketNotification = true
	cfg.EnableCostOptimizationHub = true
	return cfg
}

func evaluate(t *testing.T, cfg Config) *Plan {
	t.Helper()
	plan, err := Evaluate(cfg)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	return plan
}

func position(t *testing.T, plan *Plan, name string) int {
	t.Helper()
	for i, node := range plan.Nodes {
		if node.Name == name {
			return i
		}
	}
	t.Fatalf("node %s not in plan: %v", name, planNames(plan))
	return -1
}

func rolePolicyDocument(t *testing.T, plan *Plan) policy.Document {
	t.Helper()
	node, ok := plan.Node(NodeReplicationRolePolicy)
	if !ok {
		t.Fatalf("replication role policy missing: %v", planNames(plan))
	}
	doc, ok := node.Properties["policy"].(policy.Document)
	if !ok {
		t.Fatalf("policy property is %T", node.Properties["policy"])
	}
	return doc
}

func planNames(plan *Plan) []string {
	names := make([]string, 0, len(plan.Nodes))
	for _, node := range plan.Nodes {
		names = append(names, node.Name)
	}
	return names
}

func TestEvaluateMinimalPlan(t *testing.T) {
	plan := evaluate(t, baseConfig())

	want := map[string]bool{
		NodeBucket:           true,
		NodeBucketVersioning: true,
		NodeBucketPolicy:     true,
		NodeReportDefinition: true,
	}
	if len(plan.Nodes) != len(want) {
		t.Fatalf("unexpected plan: %v", planNames(plan))
	}
	for name := range want {
		if !plan.Has(name) {
			t.Fatalf("missing node %s in %v", name, planNames(plan))
		}
	}

	// Versioning is always present; without the flag it suspends explicitly.
	versioning, _ := plan.Node(NodeBucketVersioning)
	if got := value.AsString(versioning.Properties["status"]); got != "Suspended" {
		t.Fatalf("unexpected versioning status: %s", got)
	}

	report, _ := plan.Node(NodeReportDefinition)
	if got := value.AsString(report.Properties["region"]); got != ReportRegion {
		t.Fatalf("report definition must live in %s, got %s", ReportRegion, got)
	}
	if got := value.AsString(report.Properties["s3_region"]); got != "eu-west-1" {
		t.Fatalf("report must deliver into the bucket region, got %s", got)
	}
}

func TestEvaluateFullPlan(t *testing.T) {
	plan := evaluate(t, fullConfig())

	if len(plan.Nodes) != 16 {
		t.Fatalf("expected 16 nodes, got %d: %v", len(plan.Nodes), planNames(plan))
	}

	// The hard ordering constraints.
	policyPos := position(t, plan, NodeBucketPolicy)
	if position(t, plan, NodePublicAccessBlock) > policyPos {
		t.Fatalf("public access block must precede the bucket policy: %v", planNames(plan))
	}
	if position(t, plan, NodeReplicationRole) > policyPos {
		t.Fatalf("replication role must precede the bucket policy: %v", planNames(plan))
	}
	if position(t, plan, NodeReportDefinition) < policyPos {
		t.Fatalf("report definition must follow the bucket policy: %v", planNames(plan))
	}
	if position(t, plan, NodeCOHExport) < policyPos {
		t.Fatalf("data export must follow the bucket policy: %v", planNames(plan))
	}
	if position(t, plan, NodeReplicationConfig) < position(t, plan, NodeBucketVersioning) {
		t.Fatalf("replication requires versioning first: %v", planNames(plan))
	}
	if position(t, plan, NodeBucketNotification) < position(t, plan, NodeSNSTopicPolicy) {
		t.Fatalf("notification requires the topic policy first: %v", planNames(plan))
	}
}

func TestEvaluateIsDeterministic(t *testing.T) {
	first := planNames(evaluate(t, fullConfig()))
	for i := 0; i < 10; i++ {
		again := planNames(evaluate(t, fullConfig()))
		for j := range first {
			if first[j] != again[j] {
				t.Fatalf("plan order changed: %v vs %v", first, again)
			}
		}
	}
}

func TestEvaluateKMSDisabled(t *testing.T) {
	plan := evaluate(t, baseConfig())

	for _, name := range []string{NodeKMSKey, NodeKMSAlias, NodeKMSKeyPolicy, NodeBucketEncryption} {
		if plan.Has(name) {
			t.Fatalf("node %s must be absent without encryption", name)
		}
	}
}

func TestEvaluateKMSGeneratedKey(t *testing.T) {
	cfg := baseConfig()
	cfg.EnableKMSEncryption = true
	plan := evaluate(t, cfg)

	for _, name := range []string{NodeKMSKey, NodeKMSAlias, NodeKMSKeyPolicy, NodeBucketEncryption} {
		if !plan.Has(name) {
			t.Fatalf("node %s must be present: %v", name, planNames(plan))
		}
	}

	encryption, _ := plan.Node(NodeBucketEncryption)
	if got := value.AsString(encryption.Properties["kms_key_arn"]); got != Ref(NodeKMSKey, "arn") {
		t.Fatalf("encryption must reference the generated key, got %s", got)
	}
}

func TestEvaluateKMSExternalKey(t *testing.T) {
	external := "arn:aws:kms:eu-west-1:123456789012:key/abcd-1234"
	cfg := baseConfig()
	cfg.EnableKMSEncryption = true
	cfg.KMSKeyID = external
	plan := evaluate(t, cfg)

	for _, name := range []string{NodeKMSKey, NodeKMSAlias, NodeKMSKeyPolicy} {
		if plan.Has(name) {
			t.Fatalf("node %s must be absent with an external key", name)
		}
	}
	encryption, _ := plan.Node(NodeBucketEncryption)
	if got := value.AsString(encryption.Properties["kms_key_arn"]); got != external {
		t.Fatalf("encryption must use the external key, got %s", got)
	}
}

func TestEvaluateExternalTopic(t *testing.T) {
	external := "arn:aws:sns:eu-west-1:123456789012:existing-topic"
	cfg := baseConfig()
	cfg.EnableBucketNotification = true
	cfg.NotificationTopicARN = external
	plan := evaluate(t, cfg)

	if plan.Has(NodeSNSTopic) || plan.Has(NodeSNSTopicPolicy) {
		t.Fatalf("topic nodes must be absent with an external topic: %v", planNames(plan))
	}
	notification, _ := plan.Node(NodeBucketNotification)
	if got := value.AsString(notification.Properties["topic_arn"]); got != external {
		t.Fatalf("notification must publish to the external topic, got %s", got)
	}
}

func TestEvaluateCOHNotificationPrefix(t *testing.T) {
	cfg := baseConfig()
	cfg.EnableBucketNotification = true
	cfg.EnableCostOptimizationHub = true
	plan := evaluate(t, cfg)

	notification, _ := plan.Node(NodeBucketNotification)
	rules := value.AsSlice(notification.Properties["rules"])
	if len(rules) != 2 {
		t.Fatalf("expected delivery rules for CUR and COH, got %d", len(rules))
	}
	coh := value.AsMap(rules[1])
	if got := value.AsString(coh["filter_prefix"]); got != "coh/123456789012" {
		t.Fatalf("COH rule must filter on the account-scoped prefix, got %s", got)
	}

	export, _ := plan.Node(NodeCOHExport)
	if got := value.AsString(export.Properties["s3_prefix"]); got != "coh/123456789012" {
		t.Fatalf("export prefix must be account-scoped, got %s", got)
	}
}

func TestEvaluateReplicationSourceKeyFollowsEncryption(t *testing.T) {
	cfg := fullConfig()
	plan := evaluate(t, cfg)

	doc := rolePolicyDocument(t, plan)
	found := false
	for _, sid := range doc.Sids() {
		if sid == "SourceObjectDecrypt" {
			found = true
		}
	}
	if !found {
		t.Fatalf("encrypted source must grant decrypt, got %v", doc.Sids())
	}

	cfg.EnableKMSEncryption = false
	plan = evaluate(t, cfg)
	for _, sid := range rolePolicyDocument(t, plan).Sids() {
		if sid == "SourceObjectDecrypt" {
			t.Fatalf("unencrypted source must not grant decrypt")
		}
	}
}

func TestEvaluateReplicationRoleNameLength(t *testing.T) {
	cfg := fullConfig()
	cfg.S3BucketName = "a-very-long-bucket-name-that-pushes-the-role-name-over-the-iam-limit"
	plan := evaluate(t, cfg)

	role, _ := plan.Node(NodeReplicationRole)
	if name := value.AsString(role.Properties["name"]); len(name) > 64 {
		t.Fatalf("role name exceeds 64 characters: %q", name)
	}
}

func TestEvaluateRejectsReplicationWithoutDestination(t *testing.T) {
	cfg := baseConfig()
	cfg.EnableVersioning = true
	cfg.EnableReplication = true

	_, err := Evaluate(cfg)
	var dep *DependencyError
	if !errors.As(err, &dep) {
		t.Fatalf("expected DependencyError, got %v", err)
	}
	if dep.Missing != "replication_destination_bucket" {
		t.Fatalf("unexpected missing value: %s", dep.Missing)
	}
}

func TestEvaluateRejectsReplicationWithoutVersioning(t *testing.T) {
	cfg := fullConfig()
	cfg.EnableVersioning = false

	_, err := Evaluate(cfg)
	var dep *DependencyError
	if !errors.As(err, &dep) {
		t.Fatalf("expected DependencyError, got %v", err)
	}
	if dep.Missing != "enable_versioning" {
		t.Fatalf("unexpected missing value: %s", dep.Missing)
	}
}

func TestEvaluateRejectsInvalidEnum(t *testing.T) {
	cfg := baseConfig()
	cfg.TimeUnit = "WEEKLY"

	_, err := Evaluate(cfg)
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if validation.Field != "time_unit" {
		t.Fatalf("unexpected field: %s", validation.Field)
	}
}
