// Where: curstack/internal/infra/cfn/renderer.go
// What: CloudFormation rendering of an evaluated plan.
// Why: Emit the same resource graph in stack-template form for teams that
//      provision through CloudFormation instead of the apply engine.
package cfn

import (
	"bytes"
	"embed"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/billingkit/curstack/internal/domain/stack"
	"github.com/billingkit/curstack/internal/domain/value"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	tmplOnce sync.Once
	tmplErr  error
	tmpl     *template.Template
)

// cfnRefs maps evaluator placeholders to CloudFormation intrinsics. The
// substitution happens on marshalled policy JSON, where a placeholder always
// occupies a full string value.
var cfnRefs = map[string]string{
	stack.Ref(stack.NodeKMSKey, "arn"):           `{"Fn::GetAtt": ["ReportBucketKey", "Arn"]}`,
	stack.Ref(stack.NodeKMSKey, "key_id"):        `{"Ref": "ReportBucketKey"}`,
	stack.Ref(stack.NodeReplicationRole, "arn"):  `{"Fn::GetAtt": ["ReplicationRole", "Arn"]}`,
	stack.Ref(stack.NodeReplicationRole, "name"): `{"Ref": "ReplicationRole"}`,
	stack.Ref(stack.NodeSNSTopic, "arn"):         `{"Ref": "NotificationTopic"}`,
	stack.Ref(stack.NodeBucket, "id"):            `{"Ref": "ReportBucket"}`,
}

// view is the flattened form the template consumes.
type view struct {
	BucketName        string
	Region            string
	VersioningStatus  string
	Tags              []tagPair
	CreateKey         bool
	Encrypt           bool
	KeyAliasName      string
	KeyDescription    string
	KeyPolicyJSON     string
	KeyRef            string
	PublicAccessBlock bool
	BucketPolicyJSON  string
	PolicyDependsOn   []string

	Replication          bool
	ReplicationRoleName  string
	TrustPolicyJSON      string
	RolePolicyJSON       string
	DestinationBucketARN string
	DestinationAccount   string
	StorageClass         string
	ReplicaKMSKeyID      string

	Notification     bool
	CreateTopic      bool
	TopicName        string
	TopicPolicyJSON  string
	TopicRef         string
	NotificationRule []notificationRule

	ReportName           string
	TimeUnit             string
	Format               string
	Compression          string
	ReportVersioning     string
	RefreshClosedReports bool
	S3Prefix             string

	COH                 bool
	COHExportName       string
	COHPrefix           string
	COHRefreshFrequency string
	COHFilterJSON       string
	COHFormat           string
	COHCompression      string
}

type tagPair struct {
	Key   string
	Value string
}

type notificationRule struct {
	ID     string
	Prefix string
}

// Render produces the CloudFormation template for the plan. Only nodes
// present in the plan are emitted.
func Render(plan *stack.Plan) (string, error) {
	t, err := loadTemplates()
	if err != nil {
		return "", err
	}
	v, err := buildView(plan)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "stack.yaml.tmpl", v); err != nil {
		return "", fmt.Errorf("render cloudformation template: %w", err)
	}
	return buf.String(), nil
}

func loadTemplates() (*template.Template, error) {
	tmplOnce.Do(func() {
		tmpl, tmplErr = template.New("cfn").
			Funcs(sprig.FuncMap()).
			ParseFS(templateFS, "templates/*.tmpl")
	})
	return tmpl, tmplErr
}

func buildView(plan *stack.Plan) (*view, error) {
	cfg := plan.Config
	v := &view{
		BucketName:           cfg.S3BucketName,
		Region:               cfg.Region,
		Tags:                 sortedTags(cfg.Tags),
		ReportName:           cfg.ReportName,
		TimeUnit:             cfg.TimeUnit,
		Format:               cfg.Format,
		Compression:          cfg.Compression,
		ReportVersioning:     cfg.ReportVersioning,
		RefreshClosedReports: cfg.RefreshClosedReports,
		S3Prefix:             cfg.S3BucketPrefix,
	}

	versioning, _ := plan.Node(stack.NodeBucketVersioning)
	v.VersioningStatus = value.AsString(versioning.Properties["status"])

	v.CreateKey = plan.Has(stack.NodeKMSKey)
	v.Encrypt = plan.Has(stack.NodeBucketEncryption)
	if v.CreateKey {
		key, _ := plan.Node(stack.NodeKMSKey)
		alias, _ := plan.Node(stack.NodeKMSAlias)
		keyPolicy, _ := plan.Node(stack.NodeKMSKeyPolicy)
		v.KeyDescription = value.AsString(key.Properties["description"])
		v.KeyAliasName = value.AsString(alias.Properties["name"])
		v.KeyPolicyJSON, _ = policyJSON(keyPolicy.Properties["policy"])
		v.KeyRef = "!GetAtt ReportBucketKey.Arn"
	} else if v.Encrypt {
		v.KeyRef = strconv.Quote(cfg.KMSKeyID)
	}

	v.PublicAccessBlock = plan.Has(stack.NodePublicAccessBlock)

	bucketPolicy, _ := plan.Node(stack.NodeBucketPolicy)
	policyDoc, err := policyJSON(bucketPolicy.Properties["policy"])
	if err != nil {
		return nil, err
	}
	v.BucketPolicyJSON = policyDoc

	// CloudFormation folds versioning, encryption, the public access block,
	// replication, and notification into the bucket resource itself, so the
	// only surviving DependsOn edge is the replication role.
	if plan.Has(stack.NodeReplicationConfig) {
		v.Replication = true
		role, _ := plan.Node(stack.NodeReplicationRole)
		rolePolicy, _ := plan.Node(stack.NodeReplicationRolePolicy)
		repl, _ := plan.Node(stack.NodeReplicationConfig)
		v.ReplicationRoleName = value.AsString(role.Properties["name"])
		if v.TrustPolicyJSON, err = policyJSON(role.Properties["assume_role_policy"]); err != nil {
			return nil, err
		}
		if v.RolePolicyJSON, err = policyJSON(rolePolicy.Properties["policy"]); err != nil {
			return nil, err
		}
		v.DestinationBucketARN = value.AsString(repl.Properties["destination_bucket"])
		v.DestinationAccount = value.AsString(repl.Properties["destination_account"])
		v.StorageClass = value.AsString(repl.Properties["storage_class"])
		v.ReplicaKMSKeyID = value.AsString(repl.Properties["replica_kms_key_id"])
		v.PolicyDependsOn = append(v.PolicyDependsOn, "ReplicationRole")
	}

	if plan.Has(stack.NodeBucketNotification) {
		v.Notification = true
		v.CreateTopic = plan.Has(stack.NodeSNSTopic)
		notif, _ := plan.Node(stack.NodeBucketNotification)
		if v.CreateTopic {
			topic, _ := plan.Node(stack.NodeSNSTopic)
			topicPolicy, _ := plan.Node(stack.NodeSNSTopicPolicy)
			v.TopicName = value.AsString(topic.Properties["name"])
			if v.TopicPolicyJSON, err = policyJSON(topicPolicy.Properties["policy"]); err != nil {
				return nil, err
			}
			v.TopicRef = "!Ref NotificationTopic"
		} else {
			v.TopicRef = strconv.Quote(value.AsString(notif.Properties["topic_arn"]))
		}
		for _, raw := range value.AsSlice(notif.Properties["rules"]) {
			rule := value.AsMap(raw)
			v.NotificationRule = append(v.NotificationRule, notificationRule{
				ID:     value.AsString(rule["id"]),
				Prefix: value.AsString(rule["filter_prefix"]),
			})
		}
	}

	if plan.Has(stack.NodeCOHExport) {
		v.COH = true
		export, _ := plan.Node(stack.NodeCOHExport)
		v.COHExportName = value.AsString(export.Properties["name"])
		v.COHPrefix = value.AsString(export.Properties["s3_prefix"])
		v.COHRefreshFrequency = value.AsString(export.Properties["refresh_frequency"])
		v.COHFilterJSON = value.AsString(export.Properties["filter"])
		v.COHFormat, v.COHCompression = exportFormat(cfg.Format)
	}

	return v, nil
}

// exportFormat maps the CUR format enum onto the Data Exports vocabulary.
func exportFormat(format string) (string, string) {
	if format == "Parquet" {
		return "PARQUET", "PARQUET"
	}
	return "TEXT_OR_CSV", "GZIP"
}

// policyJSON marshals a policy document and rewrites evaluator placeholders
// into CloudFormation intrinsics.
func policyJSON(doc any) (string, error) {
	withJSON, ok := doc.(interface{ JSON() (string, error) })
	if !ok {
		return "", fmt.Errorf("node property is not a policy document")
	}
	payload, err := withJSON.JSON()
	if err != nil {
		return "", err
	}
	for placeholder, intrinsic := range cfnRefs {
		payload = strings.ReplaceAll(payload, strconv.Quote(placeholder), intrinsic)
	}
	return payload, nil
}

func sortedTags(tags map[string]string) []tagPair {
	keys := make([]string, 0, len(tags))
	for key := range tags {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	out := make([]tagPair, 0, len(keys))
	for _, key := range keys {
		out = append(out, tagPair{Key: key, Value: tags[key]})
	}
	return out
}
