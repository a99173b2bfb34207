package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	coca "github.com/Oskait/CoCa"
	"github.com/Oskait/CoCa/internal/cliconfig"
)

const helpBanner = `
   ██████╗  ██████╗  ██████╗ █████╗
  ██╔════╝ ██╔═══██╗██╔════╝██╔══██╗
  ██║      ██║   ██║██║     ███████║
  ██║      ██║   ██║██║     ██╔══██║
  ╚██████╗ ╚██████╔╝╚██████╗██║  ██║
   ╚═════╝  ╚═════╝  ╚═════╝╚═╝  ╚═╝
`

const helpDescription = `
Self-hosted dilution calculator for the bench.

Highlights:
  - C1V1 = C2V2 stock volumes, required mass, and weigh-in adjustment.
  - Compound registry stored in a single SQLite file (or plain JSON).
  - Configure via file (~/.coca/config.toml), COCA_* env vars, or flags.
`

var longHelp = strings.TrimSpace(helpBanner) + "\n\n" + strings.TrimSpace(helpDescription)

var exampleUsage = strings.TrimSpace(`
  coca
  coca --listen 0.0.0.0:8117 --data-dir /var/lib/coca
  coca --config ./coca.toml --log-level debug
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	log := cliconfig.Logger()

	root := &cobra.Command{
		Use:     "coca",
		Short:   "Self-hosted dilution calculator for the bench",
		Long:    longHelp,
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Load config file first (default ~/.coca/config.toml), then env,
			// then flag overrides.
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Build set of changed flags
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}

			// Apply environment variables (COCA_*)
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}

			// Validate and set derived defaults
			if err := cfg.Validate(); err != nil {
				return err
			}

			log = cliconfig.ConfigureLogger(cfg)
			log.Info().Interface("config", cfg).Msg("configuration")

			// Setup signal handling for graceful shutdown
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			go func() {
				<-sigCh
				log.Info().Msg("received signal, stopping...")
				cancel()
			}()

			// Watch the config file for dynamic settings (log level)
			if cfg.WatchConfig && cfgFile != "" && cliconfig.FileExists(cfgFile) {
				watcher := cliconfig.NewWatcher(cfgFile, cfg, log)
				if err := watcher.Start(ctx); err != nil {
					log.Warn().Err(err).Msg("config watcher failed to start")
				} else {
					defer watcher.Stop()
				}
			}

			return coca.Run(ctx, cfg)
		},
	}

	// Flags
	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: ~/.coca/config.toml)")
	root.Flags().StringVar(&cfg.ListenAddr, "listen", cfg.ListenAddr, "web UI listen address")
	root.Flags().StringVar(&cfg.DataDir, "data-dir", cfg.DataDir, "data directory (default: ~/.coca)")
	root.Flags().StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database file (defaults to data-dir/compounds.db)")
	root.Flags().StringVar(&cfg.Store, "store", cfg.Store, "registry backend: sqlite or json")
	root.Flags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (trace, debug, info, warn, error)")
	root.Flags().StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "log format: console or json")
	root.Flags().DurationVar(&cfg.HTTPTimeout, "timeout", cfg.HTTPTimeout, "HTTP read header timeout")
	root.Flags().DurationVar(&cfg.ShutdownTimeout, "shutdown-timeout", cfg.ShutdownTimeout, "graceful shutdown timeout")
	root.Flags().BoolVar(&cfg.WatchConfig, "watch-config", cfg.WatchConfig, "reload dynamic settings when the config file changes")

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("coca")
		os.Exit(1)
	}
}
