// Where: curstack/internal/meta/meta.go
// What: CLI-local metadata constants.
// Why: Keep identity strings in one place.
package meta

const (
	// Project Identity
	AppName   = "curstack"
	EnvPrefix = "CURSTACK"

	// Directory Layout
	HomeDir = ".curstack"

	// Default name for the DynamoDB apply-lock table when --lock-table is
	// given without a value.
	DefaultLockTable = "curstack-apply-locks"
)
