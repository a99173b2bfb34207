// Package registry maintains the ordered compound list backing the
// calculator. A Registry is constructed per process and owns its records
// exclusively; callers always receive copies.
package registry

import (
	"context"
	"fmt"
	"sync"

	"github.com/Oskait/CoCa/internal/domain"
	"github.com/Oskait/CoCa/internal/ports"
	"github.com/Oskait/CoCa/pkg/log"
)

// Registry is an ordered, case-insensitively keyed list of compounds with a
// persistence port. Every successful mutation persists the full snapshot;
// when persistence fails the in-memory state is left unchanged.
type Registry struct {
	mu        sync.Mutex
	repo      ports.CompoundRepository
	logger    ports.Logger
	compounds []domain.Compound
}

// New creates a Registry loaded from the repository snapshot.
// An empty store yields an empty registry.
func New(ctx context.Context, repo ports.CompoundRepository, logger ports.Logger) (*Registry, error) {
	if logger == nil {
		logger = log.NewNoopLogger()
	}
	compounds, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load compounds: %w", err)
	}
	logger.Debug("registry loaded", log.Int("compounds", len(compounds)))
	return &Registry{
		repo:      repo,
		logger:    logger,
		compounds: compounds,
	}, nil
}

// Add appends a compound, preserving insertion order.
// Returns ErrDuplicateName if a compound with the same name exists
// (names compare case-insensitively).
func (r *Registry) Add(ctx context.Context, c domain.Compound) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexOf(c.Key()) >= 0 {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateName, c.Name)
	}
	next := append(r.snapshot(), c)
	if err := r.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("persist compounds: %w", err)
	}
	r.compounds = next
	r.logger.Info("compound added", log.String("name", c.Name))
	return nil
}

// List returns an ordered snapshot of all compounds.
func (r *Registry) List() []domain.Compound {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshot()
}

// Find returns the compound with the given name (case-insensitive exact
// match), or ErrNotFound.
func (r *Registry) Find(name string) (domain.Compound, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(domain.Key(name))
	if i < 0 {
		return domain.Compound{}, fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	return r.compounds[i], nil
}

// Replace substitutes the compound stored under name with c, keeping its
// position. This is the only mutation path for existing records; there is
// no partial edit. Returns ErrNotFound if name is absent, ErrDuplicateName
// if c renames the entry onto another existing compound.
func (r *Registry) Replace(ctx context.Context, name string, c domain.Compound) error {
	if err := c.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(domain.Key(name))
	if i < 0 {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	if j := r.indexOf(c.Key()); j >= 0 && j != i {
		return fmt.Errorf("%w: %q", domain.ErrDuplicateName, c.Name)
	}
	next := r.snapshot()
	next[i] = c
	if err := r.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("persist compounds: %w", err)
	}
	r.compounds = next
	r.logger.Info("compound replaced", log.String("name", name), log.String("new_name", c.Name))
	return nil
}

// Remove deletes the compound with the given name, preserving the relative
// order of the rest. Returns ErrNotFound if absent.
func (r *Registry) Remove(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	i := r.indexOf(domain.Key(name))
	if i < 0 {
		return fmt.Errorf("%w: %q", domain.ErrNotFound, name)
	}
	next := r.snapshot()
	next = append(next[:i], next[i+1:]...)
	if err := r.repo.Save(ctx, next); err != nil {
		return fmt.Errorf("persist compounds: %w", err)
	}
	r.compounds = next
	r.logger.Info("compound removed", log.String("name", name))
	return nil
}

// Import bulk-upserts compounds: new names are appended in order, existing
// names are replaced in place. The snapshot is persisted once at the end.
// Returns the number of records applied.
func (r *Registry) Import(ctx context.Context, compounds []domain.Compound) (int, error) {
	for _, c := range compounds {
		if err := c.Validate(); err != nil {
			return 0, fmt.Errorf("compound %q: %w", c.Name, err)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	next := r.snapshot()
	for _, c := range compounds {
		found := -1
		for i := range next {
			if next[i].Key() == c.Key() {
				found = i
				break
			}
		}
		if found >= 0 {
			next[found] = c
		} else {
			next = append(next, c)
		}
	}
	if err := r.repo.Save(ctx, next); err != nil {
		return 0, fmt.Errorf("persist compounds: %w", err)
	}
	r.compounds = next
	r.logger.Info("compounds imported", log.Int("count", len(compounds)))
	return len(compounds), nil
}

// Len returns the number of registered compounds.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.compounds)
}

// snapshot copies the compound list. Callers must hold r.mu.
func (r *Registry) snapshot() []domain.Compound {
	out := make([]domain.Compound, len(r.compounds))
	copy(out, r.compounds)
	return out
}

// indexOf returns the position of the compound with the given key, or -1.
// Callers must hold r.mu.
func (r *Registry) indexOf(key string) int {
	for i := range r.compounds {
		if r.compounds[i].Key() == key {
			return i
		}
	}
	return -1
}
