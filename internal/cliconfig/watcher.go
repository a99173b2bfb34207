package cliconfig

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// defaultDebounceDelay is how long to wait after a file change before
// reloading, so editors that write in several steps trigger one reload.
const defaultDebounceDelay = 100 * time.Millisecond

// Watcher monitors the config file and applies dynamic settings (log level)
// without a restart. Changes to non-dynamic settings are logged as
// requiring a restart.
type Watcher struct {
	mu sync.Mutex

	path          string
	current       Config
	logger        zerolog.Logger
	debounceDelay time.Duration

	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
}

// NewWatcher creates a watcher for the config file at path. current is the
// config the process started with; reloads are diffed against it.
func NewWatcher(path string, current Config, logger zerolog.Logger) *Watcher {
	return &Watcher{
		path:          path,
		current:       current,
		logger:        logger,
		debounceDelay: defaultDebounceDelay,
	}
}

// Start begins watching. It watches the containing directory rather than
// the file itself: most editors replace the file on save, which would
// otherwise drop the watch.
func (w *Watcher) Start(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fsw.Add(filepath.Dir(w.path)); err != nil {
		_ = fsw.Close()
		return err
	}

	ctx, w.cancel = context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer func() { _ = fsw.Close() }()
		w.run(ctx, fsw)
	}()

	w.logger.Debug().Str("path", w.path).Msg("config watcher started")
	return nil
}

// Stop terminates the watcher and waits for its goroutine to exit.
func (w *Watcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}

func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			w.scheduleReload(ctx)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn().Err(err).Msg("config watcher error")
		}
	}
}

// scheduleReload debounces bursts of file events into a single reload.
func (w *Watcher) scheduleReload(ctx context.Context) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounce != nil {
		w.debounce.Stop()
	}
	w.debounce = time.AfterFunc(w.debounceDelay, func() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		w.reload()
	})
}

func (w *Watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	fc, err := LoadFileConfig(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("config reload failed")
		return
	}

	next := w.current
	if err := ApplyFileConfig(&next, fc, nil); err != nil {
		w.logger.Warn().Err(err).Msg("config reload rejected")
		return
	}
	if err := next.Validate(); err != nil {
		w.logger.Warn().Err(err).Msg("config reload rejected")
		return
	}

	if next.LogLevel != w.current.LogLevel {
		ApplyLogLevel(next.LogLevel)
		w.logger.Info().
			Str("from", w.current.LogLevel).
			Str("to", next.LogLevel).
			Msg("log level updated")
	}

	if staticChanged(w.current, next) {
		w.logger.Warn().Msg("config changes to listen address or storage take effect on restart")
	}

	w.current = next
}

// staticChanged reports whether any setting that cannot be applied at
// runtime differs between the two configs.
func staticChanged(a, b Config) bool {
	return a.ListenAddr != b.ListenAddr ||
		a.DataDir != b.DataDir ||
		a.DBPath != b.DBPath ||
		a.Store != b.Store ||
		a.LogFormat != b.LogFormat ||
		a.HTTPTimeout != b.HTTPTimeout ||
		a.ShutdownTimeout != b.ShutdownTimeout
}
