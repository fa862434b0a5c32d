// Where: curstack/internal/infra/provision/kms.go
// What: KMS key, alias, and key policy appliers.
// Why: Keys have no name of their own, so idempotency pivots on the alias.
package provision

import (
	"context"
	"fmt"

	"github.com/billingkit/curstack/internal/domain/graph"
	"github.com/billingkit/curstack/internal/domain/stack"
	"github.com/billingkit/curstack/internal/domain/value"
)

// KMSAPI is the slice of KMS the provisioner needs.
type KMSAPI interface {
	CreateKey(ctx context.Context, input CreateKeyInput) (KeyIdentity, error)
	KeyByAlias(ctx context.Context, alias string) (KeyIdentity, bool, error)
	UpsertAlias(ctx context.Context, alias, keyID string) error
	PutKeyPolicy(ctx context.Context, keyID, policyJSON string) error
	DeleteAlias(ctx context.Context, alias string) error
	ScheduleKeyDeletion(ctx context.Context, keyID string, pendingDays int32) error
}

type CreateKeyInput struct {
	Description    string
	EnableRotation bool
	Tags           map[string]string
}

type KeyIdentity struct {
	KeyID string
	ARN   string
}

// keyAlias is the lookup handle for the generated key.
func (s *session) keyAlias() string {
	return "alias/" + s.cfg.S3BucketName
}

func (s *session) applyKMSKey(ctx context.Context, node *graph.Node) error {
	key, found, err := s.clients.KMS.KeyByAlias(ctx, s.keyAlias())
	if err != nil {
		return err
	}
	if found {
		s.logf("KMS key for '%s' already exists. Skipping.", s.cfg.S3BucketName)
	} else {
		key, err = s.clients.KMS.CreateKey(ctx, CreateKeyInput{
			Description:    value.AsString(node.Properties["description"]),
			EnableRotation: value.AsBool(node.Properties["enable_key_rotation"]),
			Tags:           value.AsStringMap(node.Properties["tags"]),
		})
		if err != nil {
			return err
		}
		s.logf("✅ Created KMS key %s", key.KeyID)
	}
	s.resolve(node.Name, map[string]string{
		"key_id": key.KeyID,
		"arn":    key.ARN,
	})
	return nil
}

func (s *session) applyKMSAlias(ctx context.Context, node *graph.Node) error {
	alias := value.AsString(node.Properties["name"])
	keyID, err := s.prop(node, "target_key_id")
	if err != nil {
		return err
	}
	if err := s.clients.KMS.UpsertAlias(ctx, alias, keyID); err != nil {
		return err
	}
	s.logf("✅ Pointed '%s' at key %s", alias, keyID)
	s.resolve(node.Name, map[string]string{
		"name": alias,
		"arn":  fmt.Sprintf("arn:aws:kms:%s:%s:%s", s.cfg.Region, s.cfg.AccountID, alias),
	})
	return nil
}

func (s *session) applyKMSKeyPolicy(ctx context.Context, node *graph.Node) error {
	keyID, err := s.prop(node, "key_id")
	if err != nil {
		return err
	}
	doc, err := s.policyProp(node, "policy")
	if err != nil {
		return err
	}
	if err := s.clients.KMS.PutKeyPolicy(ctx, keyID, doc); err != nil {
		return err
	}
	s.logf("✅ Attached key policy to %s", keyID)
	return nil
}

func (s *session) destroyKMSAlias(ctx context.Context, node *graph.Node) error {
	alias := value.AsString(node.Properties["name"])
	// Deleting the alias removes the key's only lookup handle, so record the
	// key identity first for the key destroyer that runs after this.
	if key, found, err := s.clients.KMS.KeyByAlias(ctx, alias); err != nil {
		return err
	} else if found {
		s.resolve(stack.NodeKMSKey, map[string]string{"key_id": key.KeyID})
	}
	if err := s.clients.KMS.DeleteAlias(ctx, alias); err != nil {
		return err
	}
	s.logf("🗑️  Deleted alias '%s'", alias)
	return nil
}

func (s *session) destroyKMSKey(ctx context.Context, node *graph.Node) error {
	keyID, ok := s.resolved[stack.NodeKMSKey+".key_id"]
	if !ok {
		if key, found, err := s.clients.KMS.KeyByAlias(ctx, s.keyAlias()); err != nil {
			return err
		} else if found {
			keyID = key.KeyID
			ok = true
		}
	}
	if !ok {
		s.logf("KMS key for '%s' not found. Skipping.", s.cfg.S3BucketName)
		return nil
	}
	days := 30
	if v, isInt := node.Properties["deletion_window_in_days"].(int); isInt {
		days = v
	}
	if err := s.clients.KMS.ScheduleKeyDeletion(ctx, keyID, int32(days)); err != nil {
		return err
	}
	s.logf("🗑️  Scheduled deletion of key %s in %d days", keyID, days)
	return nil
}
