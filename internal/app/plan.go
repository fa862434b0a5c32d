// Where: curstack/internal/app/plan.go
// What: `plan` command handler.
package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/billingkit/curstack/internal/domain/stack"
	"github.com/billingkit/curstack/internal/ui"
)

type planNodeView struct {
	Name      string   `json:"name"`
	Kind      string   `json:"kind"`
	DependsOn []string `json:"depends_on,omitempty"`
}

func runPlan(cli CLI, deps Dependencies, out io.Writer) int {
	plan, code := evaluatePlan(cli, deps, out)
	if plan == nil {
		return code
	}

	if cli.Plan.JSON {
		views := make([]planNodeView, 0, len(plan.Nodes))
		for _, node := range plan.Nodes {
			views = append(views, planNodeView{
				Name:      node.Name,
				Kind:      string(node.Kind),
				DependsOn: node.DependsOn,
			})
		}
		payload, err := json.MarshalIndent(views, "", "  ")
		if err != nil {
			return exitWithError(out, err)
		}
		fmt.Fprintln(out, string(payload))
		return 0
	}

	console := ui.New(out)
	console.Header("📋", fmt.Sprintf("Resource plan for '%s':", plan.Config.S3BucketName))
	for i, node := range plan.Nodes {
		console.Step(i+1, string(node.Kind), node.Name)
	}
	console.Blank()
	console.ItemPlain(fmt.Sprintf("%d resources, report %q in %s",
		len(plan.Nodes), plan.Config.ReportName, plan.Config.Region))
	if plan.Has(stack.NodeKMSKey) {
		console.ItemPlain("a customer managed KMS key will be created")
	}
	return 0
}
