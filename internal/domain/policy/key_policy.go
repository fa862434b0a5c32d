// Where: curstack/internal/domain/policy/key_policy.go
// What: KMS key policy builder for a generated report bucket key.
// Why: A generated key must grant the billing services use of the key.
package policy

import "fmt"

// KeyPolicy builds the policy attached to a generated KMS key. Account root
// keeps full control; the CUR delivery service and S3 are granted the data
// key operations bucket encryption needs.
func KeyPolicy(accountID string) Document {
	rootARN := fmt.Sprintf("arn:aws:iam::%s:root", accountID)

	return Document{
		Version: Version2012,
		ID:      "cur-bucket-key-policy",
		Statement: []Statement{
			{
				Sid:       "EnableRootAccess",
				Effect:    "Allow",
				Principal: &Principal{AWS: []string{rootARN}},
				Action:    []string{"kms:*"},
				Resource:  []string{"*"},
			},
			{
				Sid:       "AllowCURServiceUse",
				Effect:    "Allow",
				Principal: &Principal{Service: []string{curServicePrincipal}},
				Action: []string{
					"kms:GenerateDataKey*",
					"kms:Decrypt",
					"kms:DescribeKey",
				},
				Resource: []string{"*"},
				Condition: map[string]map[string]string{
					"StringEquals": {"aws:SourceAccount": accountID},
				},
			},
			{
				Sid:       "AllowS3ServiceUse",
				Effect:    "Allow",
				Principal: &Principal{Service: []string{"s3.amazonaws.com"}},
				Action: []string{
					"kms:GenerateDataKey*",
					"kms:Decrypt",
				},
				Resource: []string{"*"},
				Condition: map[string]map[string]string{
					"StringEquals": {"aws:SourceAccount": accountID},
				},
			},
		},
	}
}
