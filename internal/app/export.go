// Where: curstack/internal/app/export.go
// What: `export` command handler.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/billingkit/curstack/internal/infra/cfn"
	"github.com/billingkit/curstack/internal/ui"
)

func runExport(cli CLI, deps Dependencies, out io.Writer) int {
	plan, code := evaluatePlan(cli, deps, out)
	if plan == nil {
		return code
	}

	template, err := cfn.Render(plan)
	if err != nil {
		return exitWithError(out, err)
	}

	if cli.Export.Output == "" {
		fmt.Fprint(out, template)
		return 0
	}
	if err := os.WriteFile(cli.Export.Output, []byte(template), 0o644); err != nil {
		return exitWithError(out, err)
	}
	ui.New(out).Success(fmt.Sprintf("Wrote CloudFormation template to %s", cli.Export.Output))
	return 0
}
