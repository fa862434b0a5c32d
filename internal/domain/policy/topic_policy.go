// Where: curstack/internal/domain/policy/topic_policy.go
// What: SNS topic policy builder for bucket notifications.
// Why: S3 may only publish to the topic on behalf of the report bucket.
package policy

// TopicPolicy builds the access policy for a generated notification topic.
// TopicARN may be a "${node.attr}" placeholder when the topic is generated
// by the same plan.
func TopicPolicy(topicARN, bucketARN, accountID string) Document {
	return Document{
		Version: Version2012,
		Statement: []Statement{
			{
				Sid:       "S3BucketNotification",
				Effect:    "Allow",
				Principal: &Principal{Service: []string{"s3.amazonaws.com"}},
				Action:    []string{"SNS:Publish"},
				Resource:  []string{topicARN},
				Condition: map[string]map[string]string{
					"ArnLike":      {"aws:SourceArn": bucketARN},
					"StringEquals": {"aws:SourceAccount": accountID},
				},
			},
		},
	}
}
