// Where: curstack/internal/app/app.go
// What: CLI entrypoint logic.
// Why: Provide a testable command dispatcher.
package app

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/billingkit/curstack/internal/version"
)

// CLI defines the command-line interface structure parsed by Kong.
// It contains global flags and all subcommand definitions.
type CLI struct {
	Config  string `short:"c" default:"stack.yaml" help:"Path to the stack configuration file"`
	EnvFile string `name:"env-file" help:"Path to .env file"`

	Validate ValidateCmd `cmd:"" help:"Validate the stack configuration"`
	Plan     PlanCmd     `cmd:"" help:"Show the evaluated resource plan"`
	Outputs  OutputsCmd  `cmd:"" help:"Show the stack output groups"`
	Export   ExportCmd   `cmd:"" help:"Render the plan as a CloudFormation template"`
	Apply    ApplyCmd    `cmd:"" help:"Create or update the stack resources"`
	Destroy  DestroyCmd  `cmd:"" help:"Remove the stack resources"`
	Version  VersionCmd  `cmd:"" help:"Show version information"`
}

type ValidateCmd struct{}

type PlanCmd struct {
	JSON bool `help:"Emit the plan as JSON"`
}

type OutputsCmd struct {
	Applied bool `help:"Substitute identifiers recorded by the last apply"`
}

type ExportCmd struct {
	Output string `short:"o" help:"Write the template to a file instead of stdout"`
}

type ApplyCmd struct {
	Yes       bool   `short:"y" help:"Skip confirmation prompt"`
	Endpoint  string `help:"AWS endpoint override ('auto' discovers a local stack)"`
	LockTable string `name:"lock-table" help:"DynamoDB table serializing applies (empty disables locking)"`
}

type DestroyCmd struct {
	Yes       bool   `short:"y" help:"Skip confirmation prompt"`
	Endpoint  string `help:"AWS endpoint override ('auto' discovers a local stack)"`
	LockTable string `name:"lock-table" help:"DynamoDB table serializing applies (empty disables locking)"`
}

type VersionCmd struct{}

// Run is the main entry point for CLI command execution.
// It parses the command-line arguments, identifies the requested command,
// and dispatches to the appropriate handler. Returns 0 on success, 1 on error.
func Run(args []string, deps Dependencies) int {
	out := deps.Out
	if out == nil {
		out = os.Stdout
	}

	if len(args) == 0 {
		args = []string{"--help"}
	}

	cli := CLI{}
	parser, err := kong.New(&cli,
		kong.Name("curstack"),
		kong.Description("Cost and Usage Report delivery stack manager"),
		kong.Exit(func(int) {}),
	)
	if err != nil {
		return exitWithError(out, err)
	}

	ctx, err := parser.Parse(args)
	if err != nil {
		return exitWithError(out, err)
	}

	// Load environment file if provided or if .env exists in current directory
	if cli.EnvFile != "" {
		if err := godotenv.Load(cli.EnvFile); err != nil {
			fmt.Fprintf(out, "Warning: failed to load env file %s: %v\n", cli.EnvFile, err)
		}
	} else if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(); err != nil {
			fmt.Fprintf(out, "Warning: failed to load .env: %v\n", err)
		}
	}

	command := ctx.Command()
	if exitCode, handled := dispatchCommand(command, cli, deps, out); handled {
		return exitCode
	}

	fmt.Fprintln(out, "unknown command")
	return 1
}

type commandHandler func(CLI, Dependencies, io.Writer) int

func dispatchCommand(command string, cli CLI, deps Dependencies, out io.Writer) (int, bool) {
	handlers := map[string]commandHandler{
		"validate": runValidate,
		"plan":     runPlan,
		"outputs":  runOutputs,
		"export":   runExport,
		"apply":    runApply,
		"destroy":  runDestroy,
		"version":  func(_ CLI, _ Dependencies, out io.Writer) int { return runVersion(out) },
	}

	if handler, ok := handlers[command]; ok {
		return handler(cli, deps, out), true
	}
	return 1, false
}

// runVersion prints the version information of the CLI.
func runVersion(out io.Writer) int {
	fmt.Fprintln(out, version.GetVersion())
	return 0
}

func exitWithError(out io.Writer, err error) int {
	fmt.Fprintln(out, err)
	return 1
}
