package ports

import (
	"context"

	"github.com/Oskait/CoCa/internal/domain"
)

// CompoundRepository persists the compound registry.
// Implementations store ordered snapshots: Save replaces the full list and
// Load returns it in the same order.
type CompoundRepository interface {
	// Load retrieves the persisted compound list in insertion order.
	// Returns an empty slice and nil error if nothing has been saved yet.
	// Returns an error only for actual read failures.
	Load(ctx context.Context) ([]domain.Compound, error)

	// Save persists the full compound list atomically, replacing any
	// previous snapshot. Order is preserved across Save/Load.
	Save(ctx context.Context, compounds []domain.Compound) error

	// Close releases the underlying storage handle.
	Close() error
}
