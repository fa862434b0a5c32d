// Where: curstack/internal/domain/policy/replication_policy.go
// What: IAM documents for the cross-account replication role.
// Why: KMS statements are gated independently for source and destination keys.
package policy

// ReplicationTrustPolicy builds the assume-role document for the replication
// role. Only the S3 service may assume it.
func ReplicationTrustPolicy() Document {
	return Document{
		Version: Version2012,
		Statement: []Statement{
			{
				Sid:       "S3AssumeRole",
				Effect:    "Allow",
				Principal: &Principal{Service: []string{"s3.amazonaws.com"}},
				Action:    []string{"sts:AssumeRole"},
			},
		},
	}
}

// ReplicationPolicyInput carries the resolved values the replication role
// policy references. SourceKMSKeyARN is set only when the source bucket is
// KMS-encrypted; ReplicaKMSKeyARN is set only when the destination objects
// are re-encrypted with a replica key. The two are independent switches.
type ReplicationPolicyInput struct {
	SourceBucketARN      string
	DestinationBucketARN string
	SourceKMSKeyARN      string
	ReplicaKMSKeyARN     string
}

// ReplicationRolePolicy builds the permissions policy for the replication
// role: read from the source, replicate into the destination, plus the KMS
// statements the two encryption switches require.
func ReplicationRolePolicy(in ReplicationPolicyInput) Document {
	statements := []Statement{
		{
			Sid:    "SourceBucketRead",
			Effect: "Allow",
			Action: []string{"s3:GetReplicationConfiguration", "s3:ListBucket"},
			Resource: []string{
				in.SourceBucketARN,
			},
		},
		{
			Sid:    "SourceObjectRead",
			Effect: "Allow",
			Action: []string{
				"s3:GetObjectVersionForReplication",
				"s3:GetObjectVersionAcl",
				"s3:GetObjectVersionTagging",
			},
			Resource: []string{in.SourceBucketARN + "/*"},
		},
		{
			Sid:    "DestinationObjectWrite",
			Effect: "Allow",
			Action: []string{
				"s3:ReplicateObject",
				"s3:ReplicateDelete",
				"s3:ReplicateTags",
			},
			Resource: []string{in.DestinationBucketARN + "/*"},
		},
	}

	if in.SourceKMSKeyARN != "" {
		statements = append(statements, Statement{
			Sid:      "SourceObjectDecrypt",
			Effect:   "Allow",
			Action:   []string{"kms:Decrypt"},
			Resource: []string{in.SourceKMSKeyARN},
		})
	}
	if in.ReplicaKMSKeyARN != "" {
		statements = append(statements, Statement{
			Sid:      "ReplicaObjectEncrypt",
			Effect:   "Allow",
			Action:   []string{"kms:Encrypt", "kms:GenerateDataKey*"},
			Resource: []string{in.ReplicaKMSKeyARN},
		})
	}

	return Document{Version: Version2012, Statement: statements}
}
