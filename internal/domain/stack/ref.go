// Where: curstack/internal/domain/stack/ref.go
// What: References to generated resource identifiers.
// Why: Generated ARNs are unknown until materialization; properties carry
//      placeholders that resolve once the owning node exists.
package stack

import (
	"fmt"
	"regexp"
	"strings"
)

var refPattern = regexp.MustCompile(`\$\{([a-z0-9_]+)\.([a-z0-9_]+)\}`)

// Ref returns a placeholder for an attribute another node generates,
// e.g. Ref("kms_key", "arn") -> "${kms_key.arn}".
func Ref(node, attr string) string {
	return fmt.Sprintf("${%s.%s}", node, attr)
}

// IsRef reports whether the value is exactly one placeholder.
func IsRef(value string) bool {
	m := refPattern.FindString(value)
	return m == value && m != ""
}

// RefTargets returns the node names referenced by placeholders in the value.
func RefTargets(value string) []string {
	var targets []string
	for _, m := range refPattern.FindAllStringSubmatch(value, -1) {
		targets = append(targets, m[1])
	}
	return targets
}

// ExpandRefs substitutes placeholders using resolved attribute values keyed
// by "node.attr". Unresolved placeholders are reported as an error so a
// dangling reference never reaches the provider.
func ExpandRefs(value string, resolved map[string]string) (string, error) {
	var missing []string
	out := refPattern.ReplaceAllStringFunc(value, func(m string) string {
		key := strings.TrimSuffix(strings.TrimPrefix(m, "${"), "}")
		if v, ok := resolved[key]; ok {
			return v
		}
		missing = append(missing, key)
		return m
	})
	if len(missing) > 0 {
		return "", fmt.Errorf("unresolved reference %s", strings.Join(missing, ", "))
	}
	return out, nil
}
