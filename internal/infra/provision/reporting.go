// Where: curstack/internal/infra/provision/reporting.go
// What: CUR report definition and COH data export appliers.
// Why: Both services live in a fixed region and validate bucket grants at
//      create time, so these run last in plan order.
package provision

import (
	"context"

	"github.com/billingkit/curstack/internal/domain/graph"
	"github.com/billingkit/curstack/internal/domain/value"
)

// CURAPI is the slice of the Cost and Usage Report service the provisioner
// needs.
type CURAPI interface {
	ReportExists(ctx context.Context, name string) (bool, error)
	PutReportDefinition(ctx context.Context, input ReportDefinitionInput) error
	DeleteReportDefinition(ctx context.Context, name string) error
}

type ReportDefinitionInput struct {
	Name                 string
	TimeUnit             string
	Format               string
	Compression          string
	SchemaElements       []string
	Bucket               string
	Prefix               string
	BucketRegion         string
	Versioning           string
	RefreshClosedReports bool
}

// ExportAPI is the slice of the BCM Data Exports service backing Cost
// Optimization Hub recommendation exports.
type ExportAPI interface {
	ExportARN(ctx context.Context, name string) (string, bool, error)
	CreateExport(ctx context.Context, input DataExportInput) (string, error)
	DeleteExport(ctx context.Context, arn string) error
}

type DataExportInput struct {
	Name         string
	Table        string
	Filter       string
	Bucket       string
	Prefix       string
	BucketRegion string
	Format       string
	Compression  string
	Frequency    string
	Tags         map[string]string
}

func (s *session) applyReportDefinition(ctx context.Context, node *graph.Node) error {
	name := value.AsString(node.Properties["report_name"])
	exists, err := s.clients.CUR.ReportExists(ctx, name)
	if err != nil {
		return err
	}
	if exists {
		s.logf("Report definition '%s' already exists. Skipping.", name)
		s.resolveReport(node, name)
		return nil
	}
	if err := s.clients.CUR.PutReportDefinition(ctx, ReportDefinitionInput{
		Name:                 name,
		TimeUnit:             value.AsString(node.Properties["time_unit"]),
		Format:               value.AsString(node.Properties["format"]),
		Compression:          value.AsString(node.Properties["compression"]),
		SchemaElements:       value.AsStringSlice(node.Properties["additional_schema_elements"]),
		Bucket:               value.AsString(node.Properties["s3_bucket"]),
		Prefix:               value.AsString(node.Properties["s3_prefix"]),
		BucketRegion:         value.AsString(node.Properties["s3_region"]),
		Versioning:           value.AsString(node.Properties["report_versioning"]),
		RefreshClosedReports: value.AsBool(node.Properties["refresh_closed_reports"]),
	}); err != nil {
		return err
	}
	s.logf("✅ Created report definition '%s'", name)
	s.resolveReport(node, name)
	return nil
}

func (s *session) resolveReport(node *graph.Node, name string) {
	s.resolve(node.Name, map[string]string{
		"name": name,
		"arn":  "arn:aws:cur:" + value.AsString(node.Properties["region"]) + ":" + s.cfg.AccountID + ":definition/" + name,
	})
}

func (s *session) applyDataExport(ctx context.Context, node *graph.Node) error {
	name := value.AsString(node.Properties["name"])
	arn, found, err := s.clients.Exports.ExportARN(ctx, name)
	if err != nil {
		return err
	}
	if found {
		s.logf("Data export '%s' already exists. Skipping.", name)
	} else {
		format, compression := exportDataFormat(s.cfg.Format)
		arn, err = s.clients.Exports.CreateExport(ctx, DataExportInput{
			Name:         name,
			Table:        value.AsString(node.Properties["table"]),
			Filter:       value.AsString(node.Properties["filter"]),
			Bucket:       value.AsString(node.Properties["s3_bucket"]),
			Prefix:       value.AsString(node.Properties["s3_prefix"]),
			BucketRegion: value.AsString(node.Properties["s3_region"]),
			Format:       format,
			Compression:  compression,
			Frequency:    value.AsString(node.Properties["refresh_frequency"]),
			Tags:         value.AsStringMap(node.Properties["tags"]),
		})
		if err != nil {
			return err
		}
		s.logf("✅ Created data export '%s'", name)
	}
	s.resolve(node.Name, map[string]string{"name": name, "arn": arn})
	return nil
}

func (s *session) destroyReportDefinition(ctx context.Context, node *graph.Node) error {
	name := value.AsString(node.Properties["report_name"])
	exists, err := s.clients.CUR.ReportExists(ctx, name)
	if err != nil {
		return err
	}
	if !exists {
		s.logf("Report definition '%s' not found. Skipping.", name)
		return nil
	}
	if err := s.clients.CUR.DeleteReportDefinition(ctx, name); err != nil {
		return err
	}
	s.logf("🗑️  Deleted report definition '%s'", name)
	return nil
}

func (s *session) destroyDataExport(ctx context.Context, node *graph.Node) error {
	name := value.AsString(node.Properties["name"])
	arn, found, err := s.clients.Exports.ExportARN(ctx, name)
	if err != nil {
		return err
	}
	if !found {
		s.logf("Data export '%s' not found. Skipping.", name)
		return nil
	}
	if err := s.clients.Exports.DeleteExport(ctx, arn); err != nil {
		return err
	}
	s.logf("🗑️  Deleted data export '%s'", name)
	return nil
}

// exportDataFormat maps the report content format onto the data-export
// format pair the export service accepts.
func exportDataFormat(reportFormat string) (format, compression string) {
	if reportFormat == "Parquet" {
		return "PARQUET", "PARQUET"
	}
	return "TEXT_OR_CSV", "GZIP"
}
