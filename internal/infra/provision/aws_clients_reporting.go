// Where: curstack/internal/infra/provision/aws_clients_reporting.go
// What: AWS SDK adapters for the CUR and BCM Data Exports services.
package provision

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bcmdataexports"
	exporttypes "github.com/aws/aws-sdk-go-v2/service/bcmdataexports/types"
	cur "github.com/aws/aws-sdk-go-v2/service/costandusagereportservice"
	curtypes "github.com/aws/aws-sdk-go-v2/service/costandusagereportservice/types"
)

type awsCURClient struct {
	client *cur.Client
}

func (c awsCURClient) ReportExists(ctx context.Context, name string) (bool, error) {
	if c.client == nil {
		return false, fmt.Errorf("cur client is nil")
	}
	var token *string
	for {
		resp, err := c.client.DescribeReportDefinitions(ctx, &cur.DescribeReportDefinitionsInput{
			NextToken: token,
		})
		if err != nil {
			return false, err
		}
		for _, def := range resp.ReportDefinitions {
			if aws.ToString(def.ReportName) == name {
				return true, nil
			}
		}
		if resp.NextToken == nil {
			return false, nil
		}
		token = resp.NextToken
	}
}

func (c awsCURClient) PutReportDefinition(ctx context.Context, input ReportDefinitionInput) error {
	if c.client == nil {
		return fmt.Errorf("cur client is nil")
	}
	elements := make([]curtypes.SchemaElement, 0, len(input.SchemaElements))
	for _, e := range input.SchemaElements {
		elements = append(elements, curtypes.SchemaElement(e))
	}
	_, err := c.client.PutReportDefinition(ctx, &cur.PutReportDefinitionInput{
		ReportDefinition: &curtypes.ReportDefinition{
			ReportName:               aws.String(input.Name),
			TimeUnit:                 curtypes.TimeUnit(input.TimeUnit),
			Format:                   curtypes.ReportFormat(input.Format),
			Compression:              curtypes.CompressionFormat(input.Compression),
			AdditionalSchemaElements: elements,
			S3Bucket:                 aws.String(input.Bucket),
			S3Prefix:                 aws.String(input.Prefix),
			S3Region:                 curtypes.AWSRegion(input.BucketRegion),
			ReportVersioning:         curtypes.ReportVersioning(input.Versioning),
			RefreshClosedReports:     aws.Bool(input.RefreshClosedReports),
		},
	})
	return err
}

func (c awsCURClient) DeleteReportDefinition(ctx context.Context, name string) error {
	if c.client == nil {
		return fmt.Errorf("cur client is nil")
	}
	_, err := c.client.DeleteReportDefinition(ctx, &cur.DeleteReportDefinitionInput{
		ReportName: aws.String(name),
	})
	return err
}

type awsExportClient struct {
	client *bcmdataexports.Client
}

func (c awsExportClient) ExportARN(ctx context.Context, name string) (string, bool, error) {
	if c.client == nil {
		return "", false, fmt.Errorf("bcmdataexports client is nil")
	}
	var token *string
	for {
		resp, err := c.client.ListExports(ctx, &bcmdataexports.ListExportsInput{NextToken: token})
		if err != nil {
			return "", false, err
		}
		for _, ref := range resp.Exports {
			if aws.ToString(ref.ExportName) == name {
				return aws.ToString(ref.ExportArn), true, nil
			}
		}
		if resp.NextToken == nil {
			return "", false, nil
		}
		token = resp.NextToken
	}
}

func (c awsExportClient) CreateExport(ctx context.Context, input DataExportInput) (string, error) {
	if c.client == nil {
		return "", fmt.Errorf("bcmdataexports client is nil")
	}
	tags := make([]exporttypes.ResourceTag, 0, len(input.Tags))
	for _, k := range sortedKeys(input.Tags) {
		tags = append(tags, exporttypes.ResourceTag{Key: aws.String(k), Value: aws.String(input.Tags[k])})
	}
	resp, err := c.client.CreateExport(ctx, &bcmdataexports.CreateExportInput{
		Export: &exporttypes.Export{
			Name: aws.String(input.Name),
			DataQuery: &exporttypes.DataQuery{
				QueryStatement: aws.String("SELECT * FROM " + input.Table),
				TableConfigurations: map[string]map[string]string{
					input.Table: {"FILTER": input.Filter},
				},
			},
			DestinationConfigurations: &exporttypes.DestinationConfigurations{
				S3Destination: &exporttypes.S3Destination{
					S3Bucket: aws.String(input.Bucket),
					S3Prefix: aws.String(input.Prefix),
					S3Region: aws.String(input.BucketRegion),
					S3OutputConfigurations: &exporttypes.S3OutputConfigurations{
						Format:      exporttypes.FormatOption(input.Format),
						Compression: exporttypes.CompressionOption(input.Compression),
						OutputType:  exporttypes.S3OutputTypeCustom,
						Overwrite:   exporttypes.OverwriteOptionOverwriteReport,
					},
				},
			},
			RefreshCadence: &exporttypes.RefreshCadence{
				Frequency: exporttypes.FrequencyOption(input.Frequency),
			},
		},
		ResourceTags: tags,
	})
	if err != nil {
		return "", err
	}
	return aws.ToString(resp.ExportArn), nil
}

func (c awsExportClient) DeleteExport(ctx context.Context, arn string) error {
	if c.client == nil {
		return fmt.Errorf("bcmdataexports client is nil")
	}
	_, err := c.client.DeleteExport(ctx, &bcmdataexports.DeleteExportInput{ExportArn: aws.String(arn)})
	return err
}
