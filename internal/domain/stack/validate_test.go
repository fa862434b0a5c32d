// Where: curstack/internal/domain/stack/validate_test.go
// What: Tests for configuration validation.
package stack

import (
	"errors"
	"testing"
)

func validationField(t *testing.T, err error) string {
	t.Helper()
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	return validation.Field
}

func TestValidateRequiredFields(t *testing.T) {
	cfg := baseConfig()
	cfg.S3BucketName = ""
	if field := validationField(t, cfg.Validate()); field != "s3_bucket_name" {
		t.Fatalf("unexpected field: %s", field)
	}

	cfg = baseConfig()
	cfg.Tags = nil
	if field := validationField(t, cfg.Validate()); field != "tags" {
		t.Fatalf("unexpected field: %s", field)
	}

	cfg = baseConfig()
	cfg.AccountID = ""
	if field := validationField(t, cfg.Validate()); field != "account_id" {
		t.Fatalf("unexpected field: %s", field)
	}
}

func TestValidateEmptyTagsAllowed(t *testing.T) {
	cfg := baseConfig()
	cfg.Tags = map[string]string{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty tags must validate: %v", err)
	}
}

func TestValidateEnumFields(t *testing.T) {
	cases := []struct {
		field  string
		mutate func(*Config)
	}{
		{"time_unit", func(c *Config) { c.TimeUnit = "WEEKLY" }},
		{"format", func(c *Config) { c.Format = "CSV" }},
		{"compression", func(c *Config) { c.Compression = "LZ4" }},
		{"report_versioning", func(c *Config) { c.ReportVersioning = "APPEND" }},
		{"replication_storage_class", func(c *Config) { c.ReplicationStorageClass = "EXPRESS" }},
		{"coh_refresh_frequency", func(c *Config) { c.COHRefreshFrequency = "HOURLY" }},
	}

	for _, tc := range cases {
		cfg := baseConfig()
		tc.mutate(&cfg)
		if field := validationField(t, cfg.Validate()); field != tc.field {
			t.Fatalf("expected failure on %s, got %s", tc.field, field)
		}
	}
}

func TestValidateFormatCompressionPairs(t *testing.T) {
	cfg := baseConfig()
	cfg.Format = "Parquet"
	cfg.Compression = "GZIP"
	if field := validationField(t, cfg.Validate()); field != "compression" {
		t.Fatalf("unexpected field: %s", field)
	}

	cfg = baseConfig()
	cfg.Format = "textORcsv"
	cfg.Compression = "Parquet"
	if field := validationField(t, cfg.Validate()); field != "compression" {
		t.Fatalf("unexpected field: %s", field)
	}

	cfg = baseConfig()
	cfg.Format = "textORcsv"
	cfg.Compression = "GZIP"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("textORcsv/GZIP must validate: %v", err)
	}
}

func TestValidateCOHFilterJSON(t *testing.T) {
	cfg := baseConfig()
	cfg.COHFilter = "{not json"
	if field := validationField(t, cfg.Validate()); field != "coh_filter" {
		t.Fatalf("unexpected field: %s", field)
	}

	cfg.COHFilter = `{"accountIds": ["123456789012"]}`
	if err := cfg.Validate(); err != nil {
		t.Fatalf("valid filter must pass: %v", err)
	}
}

func TestValidateReplicationDependencies(t *testing.T) {
	cfg := baseConfig()
	cfg.EnableVersioning = true
	cfg.EnableReplication = true
	cfg.ReplicationDestinationBucket = "arn:aws:s3:::replica"

	var dep *DependencyError
	if err := cfg.Validate(); !errors.As(err, &dep) || dep.Missing != "replication_destination_account_id" {
		t.Fatalf("expected missing destination account, got %v", err)
	}

	cfg.ReplicationDestinationAccountID = "999999999999"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("complete replication config must validate: %v", err)
	}
}

func TestNormalizedDefaults(t *testing.T) {
	cfg := Config{S3BucketName: "b", Tags: map[string]string{}, AccountID: "123456789012"}
	norm := cfg.Normalized()

	if norm.Region != ReportRegion {
		t.Fatalf("unexpected region default: %s", norm.Region)
	}
	if norm.ReportName != DefaultReportName || norm.S3BucketPrefix != DefaultS3BucketPrefix {
		t.Fatalf("unexpected naming defaults: %+v", norm)
	}
	if norm.TimeUnit != "DAILY" || norm.Format != "Parquet" || norm.Compression != "Parquet" {
		t.Fatalf("unexpected report defaults: %+v", norm)
	}
	if norm.ReportVersioning != "OVERWRITE_REPORT" {
		t.Fatalf("unexpected versioning default: %s", norm.ReportVersioning)
	}
	if norm.ReplicationStorageClass != "STANDARD" || norm.COHRefreshFrequency != "SYNCHRONOUS" {
		t.Fatalf("unexpected feature defaults: %+v", norm)
	}
	if norm.COHS3Prefix != DefaultCOHS3Prefix {
		t.Fatalf("unexpected COH prefix default: %s", norm.COHS3Prefix)
	}
}
