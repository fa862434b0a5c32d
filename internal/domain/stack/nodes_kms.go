// Where: curstack/internal/domain/stack/nodes_kms.go
// What: KMS node builders.
// Why: Key, alias, and key policy share one presence predicate.
package stack

import (
	"github.com/billingkit/curstack/internal/domain/graph"
	"github.com/billingkit/curstack/internal/domain/policy"
)

// addKMSNodes adds the generated key, its alias, and its policy. All three
// are present only when encryption is enabled and no external key id was
// supplied; with an external key every consumer uses the supplied identifier
// and nothing is generated.
func (ev *evaluation) addKMSNodes() error {
	if !ev.createKey {
		return nil
	}

	cfg := ev.cfg
	if err := ev.add(&graph.Node{
		Name: NodeKMSKey,
		Kind: graph.KindKMSKey,
		Properties: map[string]any{
			"description":             "Encryption key for the " + cfg.S3BucketName + " report bucket",
			"deletion_window_in_days": 30,
			"enable_key_rotation":     true,
			"tags":                    cfg.Tags,
		},
	}); err != nil {
		return err
	}

	if err := ev.add(&graph.Node{
		Name: NodeKMSAlias,
		Kind: graph.KindKMSAlias,
		Properties: map[string]any{
			"name":          "alias/" + cfg.S3BucketName,
			"target_key_id": Ref(NodeKMSKey, "key_id"),
		},
		DependsOn: []string{NodeKMSKey},
	}); err != nil {
		return err
	}

	return ev.add(&graph.Node{
		Name: NodeKMSKeyPolicy,
		Kind: graph.KindKMSKeyPolicy,
		Properties: map[string]any{
			"key_id": Ref(NodeKMSKey, "key_id"),
			"policy": policy.KeyPolicy(cfg.AccountID),
		},
		DependsOn: []string{NodeKMSKey},
	})
}
