package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (COCA_*).
// It respects flags that have been explicitly set (changed map).
// Returns an error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("listen", os.Getenv("COCA_LISTEN_ADDR"), &cfg.ListenAddr)
	s.setString("data-dir", os.Getenv("COCA_DATA_DIR"), &cfg.DataDir)
	s.setString("db-path", os.Getenv("COCA_DB_PATH"), &cfg.DBPath)
	s.setString("store", os.Getenv("COCA_STORE"), &cfg.Store)
	s.setString("log-level", os.Getenv("COCA_LOG_LEVEL"), &cfg.LogLevel)
	s.setString("log-format", os.Getenv("COCA_LOG_FORMAT"), &cfg.LogFormat)

	if err := s.setDuration("timeout", os.Getenv("COCA_HTTP_TIMEOUT"), &cfg.HTTPTimeout); err != nil {
		return err
	}
	if err := s.setDuration("shutdown-timeout", os.Getenv("COCA_SHUTDOWN_TIMEOUT"), &cfg.ShutdownTimeout); err != nil {
		return err
	}

	s.setBoolFromString("watch-config", os.Getenv("COCA_WATCH_CONFIG"), &cfg.WatchConfig)

	return nil
}
