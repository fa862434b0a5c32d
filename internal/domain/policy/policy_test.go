// Where: curstack/internal/domain/policy/policy_test.go
// What: Tests for policy document builders.
// Why: Statement sets must grow exactly with the features that need them.
package policy

import (
	"encoding/json"
	"strings"
	"testing"
)

const (
	testAccount   = "123456789012"
	testBucketARN = "arn:aws:s3:::billing-reports"
	testReportARN = "arn:aws:cur:us-east-1:123456789012:definition/*"
)

func sidsEqual(t *testing.T, doc Document, want []string) {
	t.Helper()
	got := doc.Sids()
	if len(got) != len(want) {
		t.Fatalf("unexpected statement ids: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("unexpected statement ids: %v", got)
		}
	}
}

func TestBucketPolicyBase(t *testing.T) {
	doc := BucketPolicy(BucketPolicyInput{
		BucketARN:        testBucketARN,
		AccountID:        testAccount,
		ReportARNPattern: testReportARN,
	})

	sidsEqual(t, doc, []string{"CURReportBucketAccess", "CURReportBucketDelivery"})

	access := doc.Statement[0]
	if access.Principal == nil || access.Principal.Service[0] != "billingreports.amazonaws.com" {
		t.Fatalf("unexpected principal: %+v", access.Principal)
	}
	if access.Condition["StringEquals"]["aws:SourceArn"] != testReportARN {
		t.Fatalf("missing SourceArn condition: %+v", access.Condition)
	}
	if access.Condition["StringEquals"]["aws:SourceAccount"] != testAccount {
		t.Fatalf("missing SourceAccount condition: %+v", access.Condition)
	}

	delivery := doc.Statement[1]
	if delivery.Resource[0] != testBucketARN+"/*" {
		t.Fatalf("delivery must target objects, got %v", delivery.Resource)
	}
}

func TestBucketPolicyWithCOH(t *testing.T) {
	doc := BucketPolicy(BucketPolicyInput{
		BucketARN:        testBucketARN,
		AccountID:        testAccount,
		ReportARNPattern: testReportARN,
		IncludeCOH:       true,
	})

	sidsEqual(t, doc, []string{
		"CURReportBucketAccess",
		"CURReportBucketDelivery",
		"COHExportBucketAccess",
		"COHExportBucketDelivery",
	})

	coh := doc.Statement[2]
	if coh.Principal.Service[0] != "bcm-data-exports.amazonaws.com" {
		t.Fatalf("unexpected COH principal: %+v", coh.Principal)
	}
	if _, ok := coh.Condition["StringEquals"]["aws:SourceArn"]; ok {
		t.Fatalf("COH statements must not carry a SourceArn condition")
	}
}

func TestBucketPolicyWithReplication(t *testing.T) {
	roleARN := "${replication_role.arn}"
	doc := BucketPolicy(BucketPolicyInput{
		BucketARN:          testBucketARN,
		AccountID:          testAccount,
		ReportARNPattern:   testReportARN,
		IncludeReplication: true,
		ReplicationRoleARN: roleARN,
	})

	sidsEqual(t, doc, []string{
		"CURReportBucketAccess",
		"CURReportBucketDelivery",
		"ReplicationSourceBucketAccess",
		"ReplicationSourceObjectAccess",
	})

	if doc.Statement[2].Principal.AWS[0] != roleARN {
		t.Fatalf("replication statements must grant the role, got %+v", doc.Statement[2].Principal)
	}
}

func TestKeyPolicyGrantsRootAndServices(t *testing.T) {
	doc := KeyPolicy(testAccount)

	sidsEqual(t, doc, []string{"EnableRootAccess", "AllowCURServiceUse", "AllowS3ServiceUse"})

	root := doc.Statement[0]
	if root.Principal.AWS[0] != "arn:aws:iam::"+testAccount+":root" {
		t.Fatalf("unexpected root principal: %+v", root.Principal)
	}
	for _, s := range doc.Statement[1:] {
		if s.Condition["StringEquals"]["aws:SourceAccount"] != testAccount {
			t.Fatalf("service statement %s must be account-scoped", s.Sid)
		}
	}
}

func TestReplicationRolePolicyKMSSwitches(t *testing.T) {
	base := ReplicationPolicyInput{
		SourceBucketARN:      testBucketARN,
		DestinationBucketARN: "arn:aws:s3:::replica-bucket",
	}

	doc := ReplicationRolePolicy(base)
	sidsEqual(t, doc, []string{"SourceBucketRead", "SourceObjectRead", "DestinationObjectWrite"})

	withSource := base
	withSource.SourceKMSKeyARN = "${kms_key.arn}"
	doc = ReplicationRolePolicy(withSource)
	sidsEqual(t, doc, []string{"SourceBucketRead", "SourceObjectRead", "DestinationObjectWrite", "SourceObjectDecrypt"})

	withBoth := withSource
	withBoth.ReplicaKMSKeyARN = "arn:aws:kms:us-west-2:999999999999:key/replica"
	doc = ReplicationRolePolicy(withBoth)
	sidsEqual(t, doc, []string{
		"SourceBucketRead",
		"SourceObjectRead",
		"DestinationObjectWrite",
		"SourceObjectDecrypt",
		"ReplicaObjectEncrypt",
	})

	// Replica encryption alone must not imply source decryption.
	replicaOnly := base
	replicaOnly.ReplicaKMSKeyARN = withBoth.ReplicaKMSKeyARN
	doc = ReplicationRolePolicy(replicaOnly)
	sidsEqual(t, doc, []string{"SourceBucketRead", "SourceObjectRead", "DestinationObjectWrite", "ReplicaObjectEncrypt"})
}

func TestReplicationTrustPolicy(t *testing.T) {
	doc := ReplicationTrustPolicy()
	if len(doc.Statement) != 1 {
		t.Fatalf("expected one statement, got %d", len(doc.Statement))
	}
	s := doc.Statement[0]
	if s.Principal.Service[0] != "s3.amazonaws.com" || s.Action[0] != "sts:AssumeRole" {
		t.Fatalf("unexpected trust statement: %+v", s)
	}
}

func TestTopicPolicyScopesPublisher(t *testing.T) {
	doc := TopicPolicy("${notification_topic.arn}", testBucketARN, testAccount)
	s := doc.Statement[0]
	if s.Condition["ArnLike"]["aws:SourceArn"] != testBucketARN {
		t.Fatalf("topic policy must be scoped to the bucket: %+v", s.Condition)
	}
	if s.Condition["StringEquals"]["aws:SourceAccount"] != testAccount {
		t.Fatalf("topic policy must be scoped to the account: %+v", s.Condition)
	}
}

func TestDocumentJSONShape(t *testing.T) {
	doc := KeyPolicy(testAccount)
	payload, err := doc.JSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !json.Valid([]byte(payload)) {
		t.Fatalf("payload is not valid JSON")
	}
	if !strings.Contains(payload, `"Version":"2012-10-17"`) {
		t.Fatalf("missing version: %s", payload)
	}
}
