// Where: curstack/internal/infra/stackcfg/schema.go
// What: Embedded JSON schema for stack files.
// Why: Catch shape and enum mistakes with precise paths before decoding.
package stackcfg

import (
	"bytes"
	"embed"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/stack.schema.json
var schemaFS embed.FS

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		payload, err := schemaFS.ReadFile("schema/stack.schema.json")
		if err != nil {
			schemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("stack.schema.json", bytes.NewReader(payload)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile("stack.schema.json")
	})
	return compiledSchema, schemaErr
}
