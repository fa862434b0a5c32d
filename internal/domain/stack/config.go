// Where: curstack/internal/domain/stack/config.go
// What: Stack configuration record and defaults.
// Why: One flat, explicit input record keeps evaluation a pure function.
package stack

// Config is the full input of an evaluation run. Caller context
// (account/region) is part of the record rather than ambient state so the
// same Config always evaluates to the same plan.
type Config struct {
	AccountID string `json:"account_id"`
	Region    string `json:"region"`

	ReportName     string `json:"report_name"`
	S3BucketName   string `json:"s3_bucket_name"`
	S3BucketPrefix string `json:"s3_bucket_prefix"`

	TimeUnit             string `json:"time_unit"`
	Format               string `json:"format"`
	Compression          string `json:"compression"`
	ReportVersioning     string `json:"report_versioning"`
	RefreshClosedReports bool   `json:"refresh_closed_reports"`

	EnableVersioning        bool `json:"enable_versioning"`
	EnablePublicAccessBlock bool `json:"enable_public_access_block"`

	EnableKMSEncryption bool   `json:"enable_kms_encryption"`
	KMSKeyID            string `json:"kms_key_id"`

	EnableReplication               bool   `json:"enable_replication"`
	ReplicationDestinationBucket    string `json:"replication_destination_bucket"`
	ReplicationDestinationAccountID string `json:"replication_destination_account_id"`
	ReplicationReplicaKMSKeyID      string `json:"replication_replica_kms_key_id"`
	ReplicationStorageClass         string `json:"replication_storage_class"`

	EnableBucketNotification bool   `json:"enable_bucket_notification"`
	NotificationTopicARN     string `json:"notification_topic_arn"`

	EnableCostOptimizationHub bool   `json:"enable_cost_optimization_hub"`
	COHS3Prefix               string `json:"coh_s3_prefix"`
	COHRefreshFrequency       string `json:"coh_refresh_frequency"`
	COHFilter                 string `json:"coh_filter"`

	Tags map[string]string `json:"tags"`
}

// Enumerated field defaults. s3_bucket_name and tags deliberately have none.
const (
	DefaultReportName     = "cur-report"
	DefaultS3BucketPrefix = "cur"
	DefaultCOHS3Prefix    = "coh"

	// ReportRegion is where the CUR service endpoint lives. The bucket may be
	// in any region; the report definition itself is always created here.
	ReportRegion = "us-east-1"
)

// Normalized returns a copy with empty defaulted fields filled in. Mandatory
// fields are left untouched so validation can flag them.
func (c Config) Normalized() Config {
	out := c
	if out.Region == "" {
		out.Region = ReportRegion
	}
	if out.ReportName == "" {
		out.ReportName = DefaultReportName
	}
	if out.S3BucketPrefix == "" {
		out.S3BucketPrefix = DefaultS3BucketPrefix
	}
	if out.TimeUnit == "" {
		out.TimeUnit = "DAILY"
	}
	if out.Format == "" {
		out.Format = "Parquet"
	}
	if out.Compression == "" {
		out.Compression = "Parquet"
	}
	if out.ReportVersioning == "" {
		out.ReportVersioning = "OVERWRITE_REPORT"
	}
	if out.ReplicationStorageClass == "" {
		out.ReplicationStorageClass = "STANDARD"
	}
	if out.COHS3Prefix == "" {
		out.COHS3Prefix = DefaultCOHS3Prefix
	}
	if out.COHRefreshFrequency == "" {
		out.COHRefreshFrequency = "SYNCHRONOUS"
	}
	return out
}

// BucketARN returns the ARN of the report bucket named by the configuration.
func (c Config) BucketARN() string {
	return "arn:aws:s3:::" + c.S3BucketName
}
