// Where: curstack/internal/infra/stackcfg/loader_test.go
// What: Tests for configuration loading and schema validation.
package stackcfg

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
account_id: "123456789012"
region: eu-west-1
s3_bucket_name: billing-reports
time_unit: DAILY
format: Parquet
compression: Parquet
enable_versioning: true
enable_cost_optimization_hub: true
tags:
  team: finops
`

func TestParseValidConfig(t *testing.T) {
	cfg, err := Parse([]byte(validYAML))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.S3BucketName != "billing-reports" {
		t.Fatalf("unexpected bucket: %s", cfg.S3BucketName)
	}
	if cfg.AccountID != "123456789012" || cfg.Region != "eu-west-1" {
		t.Fatalf("unexpected caller context: %+v", cfg)
	}
	if !cfg.EnableCostOptimizationHub || !cfg.EnableVersioning {
		t.Fatalf("feature flags lost: %+v", cfg)
	}
	if cfg.Tags["team"] != "finops" {
		t.Fatalf("tags lost: %+v", cfg.Tags)
	}
}

func TestParseRejectsUnknownField(t *testing.T) {
	payload := []byte(`
s3_bucket_name: billing-reports
bucket_prefix_typo: cur
tags: {}
`)
	if _, err := Parse(payload); err == nil {
		t.Fatalf("expected unknown-field rejection")
	}
}

func TestParseRejectsBadEnum(t *testing.T) {
	payload := []byte(`
s3_bucket_name: billing-reports
time_unit: WEEKLY
tags: {}
`)
	if _, err := Parse(payload); err == nil {
		t.Fatalf("expected enum rejection")
	}
}

func TestParseRejectsBadAccountID(t *testing.T) {
	payload := []byte(`
account_id: "12345"
s3_bucket_name: billing-reports
tags: {}
`)
	if _, err := Parse(payload); err == nil {
		t.Fatalf("expected account id rejection")
	}
}

func TestParseRequiresBucketAndTags(t *testing.T) {
	if _, err := Parse([]byte(`tags: {}`)); err == nil {
		t.Fatalf("expected missing bucket rejection")
	}
	if _, err := Parse([]byte(`s3_bucket_name: billing-reports`)); err == nil {
		t.Fatalf("expected missing tags rejection")
	}
}

func TestLoadReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stack.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.S3BucketName != "billing-reports" {
		t.Fatalf("unexpected bucket: %s", cfg.S3BucketName)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
