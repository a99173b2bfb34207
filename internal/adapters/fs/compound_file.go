// Package fs implements ports.CompoundRepository on a plain JSON file.
// It is the storage backend for users who want a hand-editable compound
// list instead of the default SQLite database.
package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/Oskait/CoCa/internal/domain"
)

const compoundFileName = "compounds.json"

// CompoundFileRepository implements ports.CompoundRepository using a JSON file.
type CompoundFileRepository struct {
	dir string
}

// NewCompoundFileRepository creates a repository storing compounds.json in dir.
func NewCompoundFileRepository(dir string) *CompoundFileRepository {
	return &CompoundFileRepository{dir: dir}
}

// Load retrieves the saved compound list from disk.
// Returns an empty list and nil error if no file exists yet.
func (r *CompoundFileRepository) Load(ctx context.Context) ([]domain.Compound, error) {
	data, err := os.ReadFile(r.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var compounds []domain.Compound
	if err := json.Unmarshal(data, &compounds); err != nil {
		return nil, err
	}
	return compounds, nil
}

// Save persists the compound list atomically.
// Uses atomic write (write to temp file, then rename) to prevent corruption.
func (r *CompoundFileRepository) Save(ctx context.Context, compounds []domain.Compound) error {
	// Ensure directory exists
	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return err
	}

	path := r.Path()
	tmp := path + ".tmp"

	data, err := json.MarshalIndent(compounds, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}

	// Atomic rename
	return os.Rename(tmp, path)
}

// Close is a no-op; the repository holds no open handle.
func (r *CompoundFileRepository) Close() error { return nil }

// Path returns the full path to the compound file.
func (r *CompoundFileRepository) Path() string {
	return filepath.Join(r.dir, compoundFileName)
}
