// Where: curstack/internal/domain/stack/outputs.go
// What: Grouped output values mirroring generated identifiers.
// Why: Downstream tooling consumes per-feature summaries, present only when
//      the owning feature is enabled.
package stack

import "path"

// Outputs groups the resolved identifiers of an evaluated plan. Values that
// refer to generated resources remain "${node.attr}" placeholders until the
// plan is applied.
type Outputs struct {
	CUR         map[string]any `json:"cur_configuration"`
	S3          map[string]any `json:"s3_configuration"`
	Replication map[string]any `json:"replication_configuration,omitempty"`
	COH         map[string]any `json:"coh_configuration,omitempty"`
}

func buildOutputs(cfg Config, ev *evaluation) Outputs {
	out := Outputs{
		CUR: map[string]any{
			"report_name":       cfg.ReportName,
			"report_arn":        Ref(NodeReportDefinition, "arn"),
			"time_unit":         cfg.TimeUnit,
			"format":            cfg.Format,
			"compression":       cfg.Compression,
			"report_versioning": cfg.ReportVersioning,
			"s3_prefix":         cfg.S3BucketPrefix,
		},
		S3: map[string]any{
			"bucket_id":                   Ref(NodeBucket, "id"),
			"bucket_arn":                  cfg.BucketARN(),
			"bucket_domain_name":          Ref(NodeBucket, "domain_name"),
			"bucket_regional_domain_name": Ref(NodeBucket, "regional_domain_name"),
			"region":                      cfg.Region,
			"versioning_enabled":          cfg.EnableVersioning,
		},
	}

	if cfg.EnableKMSEncryption {
		out.S3["kms_key_arn"] = ev.keyARN
		if ev.createKey {
			out.S3["kms_key_id"] = Ref(NodeKMSKey, "key_id")
			out.S3["kms_alias_arn"] = Ref(NodeKMSAlias, "arn")
		}
	}

	if cfg.EnableBucketNotification {
		out.S3["notification_topic_arn"] = ev.topicARN
		if ev.createTopic {
			out.S3["notification_topic_name"] = Ref(NodeSNSTopic, "name")
		}
	}

	if cfg.EnableReplication {
		out.Replication = map[string]any{
			"role_arn":           Ref(NodeReplicationRole, "arn"),
			"destination_bucket": cfg.ReplicationDestinationBucket,
			"storage_class":      cfg.ReplicationStorageClass,
		}
		if cfg.ReplicationReplicaKMSKeyID != "" {
			out.Replication["replica_kms_key_id"] = cfg.ReplicationReplicaKMSKeyID
		}
	}

	if cfg.EnableCostOptimizationHub {
		out.COH = map[string]any{
			"export_name":       cfg.ReportName + "-coh",
			"export_arn":        Ref(NodeCOHExport, "arn"),
			"s3_prefix":         path.Join(cfg.COHS3Prefix, cfg.AccountID),
			"refresh_frequency": cfg.COHRefreshFrequency,
		}
	}

	return out
}
