// Where: curstack/internal/infra/state/lock.go
// What: DynamoDB-backed apply lock.
// Why: Two concurrent applies against the same bucket interleave provider
//      writes; a conditional put makes the second one fail fast instead.
package state

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ErrLocked reports that another apply currently holds the lock.
var ErrLocked = errors.New("stack is locked by another apply")

// LockAPI is the slice of DynamoDB the lock needs.
type LockAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
}

// Lock serializes applies per bucket through a DynamoDB table with a
// LockID string key.
type Lock struct {
	Client LockAPI
	Table  string
}

// Acquire takes the lock for the named bucket. ErrLocked wraps the failure
// when another holder exists.
func (l Lock) Acquire(ctx context.Context, bucketName string) error {
	if l.Client == nil {
		return fmt.Errorf("dynamodb client is nil")
	}
	holder, _ := os.Hostname()
	_, err := l.Client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(l.Table),
		Item: map[string]types.AttributeValue{
			"LockID":     &types.AttributeValueMemberS{Value: bucketName},
			"Holder":     &types.AttributeValueMemberS{Value: holder},
			"AcquiredAt": &types.AttributeValueMemberS{Value: time.Now().UTC().Format(time.RFC3339)},
		},
		ConditionExpression: aws.String("attribute_not_exists(LockID)"),
	})
	if err != nil {
		var conditionFailed *types.ConditionalCheckFailedException
		if errors.As(err, &conditionFailed) {
			return fmt.Errorf("%w: lock %q in table %q", ErrLocked, bucketName, l.Table)
		}
		return err
	}
	return nil
}

// Release drops the lock. Releasing a lock that is not held is not an error.
func (l Lock) Release(ctx context.Context, bucketName string) error {
	if l.Client == nil {
		return fmt.Errorf("dynamodb client is nil")
	}
	_, err := l.Client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(l.Table),
		Key: map[string]types.AttributeValue{
			"LockID": &types.AttributeValueMemberS{Value: bucketName},
		},
	})
	return err
}

// NewLockClient builds the DynamoDB client for lock operations.
func NewLockClient(cfg aws.Config, endpoint string) *dynamodb.Client {
	return dynamodb.NewFromConfig(cfg, func(options *dynamodb.Options) {
		if endpoint != "" {
			options.BaseEndpoint = aws.String(endpoint)
		}
	})
}
