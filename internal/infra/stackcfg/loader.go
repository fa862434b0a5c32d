// Where: curstack/internal/infra/stackcfg/loader.go
// What: Stack file loading and decoding.
// Why: One path from YAML on disk to a schema-checked stack.Config.
package stackcfg

import (
	"encoding/json"
	"fmt"
	"os"

	"sigs.k8s.io/yaml"

	"github.com/billingkit/curstack/internal/domain/stack"
)

// Load reads a stack file, validates it against the embedded schema, and
// decodes it into a Config. Semantic validation (closed sets, dependency
// requirements) stays with stack.Config.Validate; this layer only rejects
// malformed documents.
func Load(path string) (stack.Config, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return stack.Config{}, fmt.Errorf("read stack file: %w", err)
	}
	return Parse(payload)
}

// Parse validates and decodes an in-memory stack document.
func Parse(payload []byte) (stack.Config, error) {
	jsonData, err := yaml.YAMLToJSON(payload)
	if err != nil {
		return stack.Config{}, fmt.Errorf("convert yaml to json: %w", err)
	}

	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return stack.Config{}, fmt.Errorf("decode stack document: %w", err)
	}

	sch, err := loadSchema()
	if err != nil {
		return stack.Config{}, fmt.Errorf("load stack schema: %w", err)
	}
	if err := sch.Validate(document); err != nil {
		return stack.Config{}, fmt.Errorf("stack file does not match schema: %w", err)
	}

	var cfg stack.Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return stack.Config{}, fmt.Errorf("decode stack config: %w", err)
	}
	return cfg, nil
}
