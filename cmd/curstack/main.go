// Where: curstack/cmd/curstack/main.go
// What: CLI entrypoint.
// Why: Execute curstack commands with configured dependencies.
package main

import (
	"os"

	"github.com/billingkit/curstack/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:], app.NewDefaultDependencies()))
}
