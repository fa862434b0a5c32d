// Where: curstack/internal/app/destroy.go
// What: `destroy` command handler.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/billingkit/curstack/internal/ui"
)

func runDestroy(cli CLI, deps Dependencies, out io.Writer) int {
	plan, code := evaluatePlan(cli, deps, out)
	if plan == nil {
		return code
	}
	console := ui.New(out)
	console.Header("🗑️", fmt.Sprintf("Destroying the stack for '%s'", plan.Config.S3BucketName))

	if !cli.Destroy.Yes {
		ok, err := deps.Confirm(fmt.Sprintf("Remove %d resources including bucket '%s'?",
			len(plan.Nodes), plan.Config.S3BucketName))
		if err != nil {
			return exitWithError(out, err)
		}
		if !ok {
			console.Info("Aborted.")
			return 1
		}
	}

	ctx := context.Background()

	if cli.Destroy.LockTable != "" {
		lock, err := deps.LockFor(ctx, plan.Config.Region, cli.Destroy.Endpoint, cli.Destroy.LockTable)
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

	runner, err := deps.RunnerFor(ctx, cli.Destroy.Endpoint)
	if err != nil {
		return exitWithError(out, err)
	}
	if err := runner.Destroy(ctx, plan); err != nil {
		return exitWithError(out, err)
	}

	if err := deps.Store.Remove(plan.Config.S3BucketName); err != nil {
		console.Warn(fmt.Sprintf("resources removed, but deleting the apply record failed: %v", err))
	}

	console.Blank()
	console.Success(fmt.Sprintf("Stack for '%s' removed", plan.Config.S3BucketName))
	return 0
}
