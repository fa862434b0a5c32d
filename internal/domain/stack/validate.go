// Where: curstack/internal/domain/stack/validate.go
// What: Configuration validation against closed sets and required fields.
// Why: Reject bad input before any node is computed; no partial graphs.
package stack

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

var (
	timeUnits         = []string{"DAILY", "HOURLY"}
	formats           = []string{"Parquet", "textORcsv"}
	compressions      = []string{"GZIP", "Parquet", "ZIP"}
	reportVersionings = []string{"CREATE_NEW_REPORT", "OVERWRITE_REPORT"}
	storageClasses    = []string{
		"DEEP_ARCHIVE",
		"GLACIER",
		"GLACIER_IR",
		"INTELLIGENT_TIERING",
		"ONEZONE_IA",
		"REDUCED_REDUNDANCY",
		"STANDARD",
		"STANDARD_IA",
	}
	refreshFrequencies = []string{"SYNCHRONOUS"}
)

// Validate checks the configuration and returns a *ValidationError or
// *DependencyError describing the first problem found. Enumerated checks run
// against the normalized form so defaults never trip them.
func (c Config) Validate() error {
	cfg := c.Normalized()

	if strings.TrimSpace(cfg.S3BucketName) == "" {
		return &ValidationError{Field: "s3_bucket_name", Reason: "required"}
	}
	if cfg.Tags == nil {
		return &ValidationError{Field: "tags", Reason: "required (may be empty)"}
	}
	if strings.TrimSpace(cfg.AccountID) == "" {
		return &ValidationError{Field: "account_id", Reason: "required"}
	}

	if err := inSet("time_unit", cfg.TimeUnit, timeUnits); err != nil {
		return err
	}
	if err := inSet("format", cfg.Format, formats); err != nil {
		return err
	}
	if err := inSet("compression", cfg.Compression, compressions); err != nil {
		return err
	}
	if err := inSet("report_versioning", cfg.ReportVersioning, reportVersionings); err != nil {
		return err
	}
	if err := inSet("replication_storage_class", cfg.ReplicationStorageClass, storageClasses); err != nil {
		return err
	}
	if err := inSet("coh_refresh_frequency", cfg.COHRefreshFrequency, refreshFrequencies); err != nil {
		return err
	}

	if cfg.Format == "Parquet" && cfg.Compression != "Parquet" {
		return &ValidationError{
			Field:  "compression",
			Value:  cfg.Compression,
			Reason: "Parquet format requires Parquet compression",
		}
	}
	if cfg.Format == "textORcsv" && cfg.Compression == "Parquet" {
		return &ValidationError{
			Field:  "compression",
			Value:  cfg.Compression,
			Reason: "textORcsv format requires ZIP or GZIP compression",
		}
	}

	if cfg.COHFilter != "" && !json.Valid([]byte(cfg.COHFilter)) {
		return &ValidationError{Field: "coh_filter", Value: cfg.COHFilter, Reason: "not valid JSON"}
	}

	if cfg.EnableReplication {
		if strings.TrimSpace(cfg.ReplicationDestinationBucket) == "" {
			return &DependencyError{Subject: "replication_configuration", Missing: "replication_destination_bucket"}
		}
		if strings.TrimSpace(cfg.ReplicationDestinationAccountID) == "" {
			return &DependencyError{Subject: "replication_configuration", Missing: "replication_destination_account_id"}
		}
		if !cfg.EnableVersioning {
			return &DependencyError{Subject: "replication_configuration", Missing: "enable_versioning"}
		}
	}

	return nil
}

func inSet(field, value string, allowed []string) error {
	idx := sort.SearchStrings(allowed, value)
	if idx < len(allowed) && allowed[idx] == value {
		return nil
	}
	return &ValidationError{
		Field:  field,
		Value:  value,
		Reason: fmt.Sprintf("must be one of %s", strings.Join(allowed, ", ")),
	}
}
