// Where: curstack/internal/domain/policy/bucket_policy.go
// What: Report bucket policy builder.
// Why: The statement set is the union of CUR, COH, and replication grants.
package policy

// BucketPolicyInput carries the resolved values the bucket policy references.
// ReplicationRoleARN may be a "${node.attr}" placeholder when the role is
// generated by the same plan.
type BucketPolicyInput struct {
	BucketARN          string
	AccountID          string
	ReportARNPattern   string
	IncludeCOH         bool
	IncludeReplication bool
	ReplicationRoleARN string
}

const (
	curServicePrincipal = "billingreports.amazonaws.com"
	cohServicePrincipal = "bcm-data-exports.amazonaws.com"
)

// BucketPolicy builds the report bucket policy. The base CUR statements are
// always present; COH and replication statements are appended only when their
// features are enabled.
func BucketPolicy(in BucketPolicyInput) Document {
	curCondition := map[string]map[string]string{
		"StringEquals": {
			"aws:SourceArn":     in.ReportARNPattern,
			"aws:SourceAccount": in.AccountID,
		},
	}

	statements := []Statement{
		{
			Sid:       "CURReportBucketAccess",
			Effect:    "Allow",
			Principal: &Principal{Service: []string{curServicePrincipal}},
			Action:    []string{"s3:GetBucketAcl", "s3:GetBucketPolicy"},
			Resource:  []string{in.BucketARN},
			Condition: curCondition,
		},
		{
			Sid:       "CURReportBucketDelivery",
			Effect:    "Allow",
			Principal: &Principal{Service: []string{curServicePrincipal}},
			Action:    []string{"s3:PutObject"},
			Resource:  []string{in.BucketARN + "/*"},
			Condition: curCondition,
		},
	}

	if in.IncludeCOH {
		cohCondition := map[string]map[string]string{
			"StringEquals": {"aws:SourceAccount": in.AccountID},
		}
		statements = append(statements,
			Statement{
				Sid:       "COHExportBucketAccess",
				Effect:    "Allow",
				Principal: &Principal{Service: []string{cohServicePrincipal}},
				Action:    []string{"s3:GetBucketPolicy"},
				Resource:  []string{in.BucketARN},
				Condition: cohCondition,
			},
			Statement{
				Sid:       "COHExportBucketDelivery",
				Effect:    "Allow",
				Principal: &Principal{Service: []string{cohServicePrincipal}},
				Action:    []string{"s3:PutObject"},
				Resource:  []string{in.BucketARN + "/*"},
				Condition: cohCondition,
			},
		)
	}

	if in.IncludeReplication {
		statements = append(statements,
			Statement{
				Sid:       "ReplicationSourceBucketAccess",
				Effect:    "Allow",
				Principal: &Principal{AWS: []string{in.ReplicationRoleARN}},
				Action:    []string{"s3:GetReplicationConfiguration", "s3:ListBucket"},
				Resource:  []string{in.BucketARN},
			},
			Statement{
				Sid:       "ReplicationSourceObjectAccess",
				Effect:    "Allow",
				Principal: &Principal{AWS: []string{in.ReplicationRoleARN}},
				Action: []string{
					"s3:GetObjectVersionForReplication",
					"s3:GetObjectVersionAcl",
					"s3:GetObjectVersionTagging",
				},
				Resource: []string{in.BucketARN + "/*"},
			},
		)
	}

	return Document{Version: Version2012, Statement: statements}
}
