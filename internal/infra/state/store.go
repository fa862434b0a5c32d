// Where: curstack/internal/infra/state/store.go
// What: Applied-stack state persistence.
// Why: Store resolved identifiers from the last apply so `outputs` and
//      `destroy` can run without re-querying every service.
package state

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/billingkit/curstack/internal/meta"
)

// Record is what one successful apply leaves behind.
type Record struct {
	BucketName string            `json:"bucket_name"`
	Region     string            `json:"region"`
	AccountID  string            `json:"account_id"`
	AppliedAt  time.Time         `json:"applied_at"`
	Resolved   map[string]string `json:"resolved"`
}

// Store persists apply records under the user's home directory, one file
// per bucket name.
type Store struct {
	// Dir overrides the storage directory. Empty means ~/.curstack/state.
	Dir string
}

func (s Store) Load(bucketName string) (Record, bool, error) {
	path, err := s.path(bucketName)
	if err != nil {
		return Record{}, false, err
	}
	payload, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	var record Record
	if err := json.Unmarshal(payload, &record); err != nil {
		return Record{}, false, err
	}
	return record, true, nil
}

func (s Store) Save(record Record) error {
	path, err := s.path(record.BucketName)
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}

func (s Store) Remove(bucketName string) error {
	path, err := s.path(bucketName)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func (s Store) path(bucketName string) (string, error) {
	name := strings.TrimSpace(bucketName)
	if name == "" {
		return "", errors.New("bucket name is required")
	}
	dir := s.Dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, meta.HomeDir, "state")
	}
	return filepath.Join(dir, name+".json"), nil
}
