// Where: curstack/internal/domain/stack/nodes_replication.go
// What: Cross-account replication node builders.
// Why: Destination encryption is an independent switch from source encryption.
package stack

import (
	"fmt"

	"github.com/billingkit/curstack/internal/domain/graph"
	"github.com/billingkit/curstack/internal/domain/policy"
)

const maxRoleNameLength = 64

func (ev *evaluation) addReplicationNodes() error {
	cfg := ev.cfg
	if !cfg.EnableReplication {
		return nil
	}

	roleName := replicationRoleName(cfg.S3BucketName)
	if err := ev.add(&graph.Node{
		Name: NodeReplicationRole,
		Kind: graph.KindReplicationRole,
		Properties: map[string]any{
			"name":               roleName,
			"assume_role_policy": policy.ReplicationTrustPolicy(),
			"tags":               cfg.Tags,
		},
	}); err != nil {
		return err
	}

	// Source-side KMS actions follow the single encryption switch; the
	// replica-key statement is governed solely by the replica key id.
	sourceKeyARN := ""
	if cfg.EnableKMSEncryption {
		sourceKeyARN = ev.keyARN
	}
	rolePolicy := policy.ReplicationRolePolicy(policy.ReplicationPolicyInput{
		SourceBucketARN:      cfg.BucketARN(),
		DestinationBucketARN: cfg.ReplicationDestinationBucket,
		SourceKMSKeyARN:      sourceKeyARN,
		ReplicaKMSKeyARN:     cfg.ReplicationReplicaKMSKeyID,
	})

	policyDeps := []string{NodeReplicationRole}
	if ev.createKey {
		policyDeps = append(policyDeps, NodeKMSKey)
	}
	if err := ev.add(&graph.Node{
		Name: NodeReplicationRolePolicy,
		Kind: graph.KindReplicationRolePolicy,
		Properties: map[string]any{
			"role":   Ref(NodeReplicationRole, "name"),
			"name":   roleName + "-policy",
			"policy": rolePolicy,
		},
		DependsOn: policyDeps,
	}); err != nil {
		return err
	}

	props := map[string]any{
		"bucket":              Ref(NodeBucket, "id"),
		"role_arn":            Ref(NodeReplicationRole, "arn"),
		"destination_bucket":  cfg.ReplicationDestinationBucket,
		"destination_account": cfg.ReplicationDestinationAccountID,
		"storage_class":       cfg.ReplicationStorageClass,
	}
	if cfg.ReplicationReplicaKMSKeyID != "" {
		props["replica_kms_key_id"] = cfg.ReplicationReplicaKMSKeyID
	}
	return ev.add(&graph.Node{
		Name:       NodeReplicationConfig,
		Kind:       graph.KindReplicationConfig,
		Properties: props,
		DependsOn: []string{
			NodeBucket,
			NodeBucketVersioning,
			NodeReplicationRole,
		},
	})
}

func replicationRoleName(bucketName string) string {
	name := fmt.Sprintf("%s-replication", bucketName)
	if len(name) > maxRoleNameLength {
		name = name[:maxRoleNameLength]
	}
	return name
}
