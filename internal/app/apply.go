// Where: curstack/internal/app/apply.go
// What: `apply` command handler.
// Why: Orchestrate confirmation, the optional apply lock, materialization,
//      and the state record.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/billingkit/curstack/internal/infra/state"
	"github.com/billingkit/curstack/internal/ui"
)

func runApply(cli CLI, deps Dependencies, out io.Writer) int {
	plan, code := evaluatePlan(cli, deps, out)
	if plan == nil {
		return code
	}
	console := ui.New(out)
	console.Header("🚀", fmt.Sprintf("Applying %d resources for '%s'", len(plan.Nodes), plan.Config.S3BucketName))

	if !cli.Apply.Yes {
		ok, err := deps.Confirm(fmt.Sprintf("Create %d resources in account %s?", len(plan.Nodes), plan.Config.AccountID))
		if err != nil {
			return exitWithError(out, err)
		}
		if !ok {
			console.Info("Aborted.")
			return 1
		}
	}

	ctx := context.Background()

	if cli.Apply.LockTable != "" {
		lock, err := deps.LockFor(ctx, plan.Config.Region, cli.Apply.Endpoint, cli.Apply.LockTable)
		if err != nil {
			return exitWithError(out, err)
		}
		if err := lock.Acquire(ctx, plan.Config.S3BucketName); err != nil {
			return exitWithError(out, err)
		}
		defer func() {
			if err := lock.Release(ctx, plan.Config.S3BucketName); err != nil {
				console.Warn(fmt.Sprintf("failed to release apply lock: %v", err))
			}
		}()
	}

	runner, err := deps.RunnerFor(ctx, cli.Apply.Endpoint)
	if err != nil {
		return exitWithError(out, err)
	}
	resolved, err := runner.Apply(ctx, plan)
	if err != nil {
		return exitWithError(out, err)
	}

	record := state.Record{
		BucketName: plan.Config.S3BucketName,
		Region:     plan.Config.Region,
		AccountID:  plan.Config.AccountID,
		AppliedAt:  time.Now().UTC(),
		Resolved:   resolved,
	}
	if err := deps.Store.Save(record); err != nil {
		console.Warn(fmt.Sprintf("resources created, but saving the apply record failed: %v", err))
	}

	console.Blank()
	console.Success(fmt.Sprintf("Stack for '%s' is ready", plan.Config.S3BucketName))
	return 0
}
