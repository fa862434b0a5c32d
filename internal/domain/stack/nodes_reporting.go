// Where: curstack/internal/domain/stack/nodes_reporting.go
// What: CUR report definition and COH export node builders.
// Why: Both services validate bucket-policy grants at creation time, so both
//      nodes hard-depend on the bucket policy.
package stack

import (
	"path"

	"github.com/billingkit/curstack/internal/domain/graph"
)

func (ev *evaluation) addReportingNodes() error {
	cfg := ev.cfg

	if err := ev.add(&graph.Node{
		Name: NodeReportDefinition,
		Kind: graph.KindReportDefinition,
		Properties: map[string]any{
			"report_name":                cfg.ReportName,
			"time_unit":                  cfg.TimeUnit,
			"format":                     cfg.Format,
			"compression":                cfg.Compression,
			"additional_schema_elements": []string{"RESOURCES"},
			"s3_bucket":                  cfg.S3BucketName,
			"s3_prefix":                  cfg.S3BucketPrefix,
			"s3_region":                  cfg.Region,
			"report_versioning":          cfg.ReportVersioning,
			"refresh_closed_reports":     cfg.RefreshClosedReports,
			// Fixed service endpoint region, independent of the bucket region.
			"region": ReportRegion,
		},
		DependsOn: []string{NodeBucketPolicy},
	}); err != nil {
		return err
	}

	if !cfg.EnableCostOptimizationHub {
		return nil
	}

	filter := cfg.COHFilter
	if filter == "" {
		filter = "{}"
	}
	return ev.add(&graph.Node{
		Name: NodeCOHExport,
		Kind: graph.KindDataExport,
		Properties: map[string]any{
			"name":              cfg.ReportName + "-coh",
			"table":             "COST_OPTIMIZATION_RECOMMENDATIONS",
			"s3_bucket":         cfg.S3BucketName,
			"s3_prefix":         path.Join(cfg.COHS3Prefix, cfg.AccountID),
			"s3_region":         cfg.Region,
			"refresh_frequency": cfg.COHRefreshFrequency,
			"filter":            filter,
			"region":            ReportRegion,
			"tags":              cfg.Tags,
		},
		DependsOn: []string{NodeBucketPolicy},
	})
}
