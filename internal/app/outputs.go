// Where: curstack/internal/app/outputs.go
// What: `outputs` command handler.
// Why: Surface the grouped identifiers, optionally substituting the ones a
//      previous apply resolved.
package app

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/billingkit/curstack/internal/domain/stack"
)

func runOutputs(cli CLI, deps Dependencies, out io.Writer) int {
	plan, code := evaluatePlan(cli, deps, out)
	if plan == nil {
		return code
	}

	outputs := plan.Outputs
	if cli.Outputs.Applied {
		record, found, err := deps.Store.Load(plan.Config.S3BucketName)
		if err != nil {
			return exitWithError(out, err)
		}
		if !found {
			fmt.Fprintf(out, "no apply record for bucket '%s'; run apply first\n", plan.Config.S3BucketName)
			return 1
		}
		substituteGroup(outputs.CUR, record.Resolved)
		substituteGroup(outputs.S3, record.Resolved)
		substituteGroup(outputs.Replication, record.Resolved)
		substituteGroup(outputs.COH, record.Resolved)
	}

	payload, err := json.MarshalIndent(outputs, "", "  ")
	if err != nil {
		return exitWithError(out, err)
	}
	fmt.Fprintln(out, string(payload))
	return 0
}

// substituteGroup rewrites placeholder values with resolved identifiers,
// leaving entries the apply did not record untouched.
func substituteGroup(group map[string]any, resolved map[string]string) {
	for key, raw := range group {
		text, ok := raw.(string)
		if !ok || !stack.IsRef(text) {
			continue
		}
		if expanded, err := stack.ExpandRefs(text, resolved); err == nil {
			group[key] = expanded
		}
	}
}
