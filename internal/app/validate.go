// Where: curstack/internal/app/validate.go
// What: `validate` command handler.
package app

import (
	"errors"
	"fmt"
	"io"

	"github.com/billingkit/curstack/internal/domain/stack"
	"github.com/billingkit/curstack/internal/ui"
)

func runValidate(cli CLI, deps Dependencies, out io.Writer) int {
	console := ui.New(out)
	plan, code := evaluatePlan(cli, deps, out)
	if plan == nil {
		return code
	}
	console.Success(fmt.Sprintf("Configuration is valid: %d resources planned for bucket '%s'",
		len(plan.Nodes), plan.Config.S3BucketName))
	return 0
}

// evaluatePlan loads the configuration and evaluates it, reporting domain
// errors in their own format so callers just return on nil.
func evaluatePlan(cli CLI, deps Dependencies, out io.Writer) (*stack.Plan, int) {
	cfg, err := deps.LoadConfig(cli.Config)
	if err != nil {
		return nil, exitWithError(out, err)
	}
	plan, err := stack.Evaluate(cfg)
	if err != nil {
		var validation *stack.ValidationError
		var dependency *stack.DependencyError
		switch {
		case errors.As(err, &validation):
			fmt.Fprintf(out, "❌ Invalid configuration: %v\n", validation)
		case errors.As(err, &dependency):
			fmt.Fprintf(out, "❌ Unsatisfiable configuration: %v\n", dependency)
		default:
			fmt.Fprintln(out, err)
		}
		return nil, 1
	}
	return plan, 0
}
