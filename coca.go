// Package coca wires together the compound registry, its storage backend,
// and the web UI for dilution calculations.
//
// Example usage:
//
//	cfg := coca.DefaultConfig()
//	cfg.DataDir = "/var/lib/coca"
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	if err := coca.Run(context.Background(), cfg); err != nil {
//	    log.Fatal(err)
//	}
package coca

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Oskait/CoCa/internal/adapters/fs"
	"github.com/Oskait/CoCa/internal/adapters/sqlite"
	"github.com/Oskait/CoCa/internal/cliconfig"
	"github.com/Oskait/CoCa/internal/ports"
	"github.com/Oskait/CoCa/internal/registry"
	"github.com/Oskait/CoCa/internal/web"
	"github.com/Oskait/CoCa/pkg/log"
)

// Config holds the configuration for the coca server.
// Use DefaultConfig() to get a Config with sensible defaults.
type Config = cliconfig.Config

// DefaultConfig returns a Config with sensible default values.
// Call cfg.Validate() before Run to fill derived defaults.
func DefaultConfig() Config {
	return cliconfig.DefaultConfig()
}

// Logger returns the package-level zerolog logger used by the server.
func Logger() zerolog.Logger {
	return cliconfig.Logger()
}

// Run opens the compound store, loads the registry, and serves the web UI.
// It blocks until the context is cancelled or the server fails.
func Run(ctx context.Context, cfg Config) error {
	repo, err := openRepository(cfg)
	if err != nil {
		return fmt.Errorf("open compound store: %w", err)
	}
	defer func() { _ = repo.Close() }()

	logger := log.NewZerologAdapterWithLogger(cliconfig.Logger())

	reg, err := registry.New(ctx, repo, logger)
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	server := web.NewServer(web.Config{
		Registry:        reg,
		Logger:          logger,
		ListenAddr:      cfg.ListenAddr,
		HTTPTimeout:     cfg.HTTPTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	return server.Serve(ctx)
}

// openRepository selects the storage backend for the validated config.
func openRepository(cfg Config) (ports.CompoundRepository, error) {
	switch cfg.Store {
	case cliconfig.StoreJSON:
		return fs.NewCompoundFileRepository(cfg.DataDir), nil
	default:
		return sqlite.New(cfg.DBPath)
	}
}
