package laws

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"
)

const defaultDebounce = 500 * time.Millisecond

// LoadFile reads a YAML rule file mapping country codes to Rule records.
func LoadFile(path string) (map[string]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var raw map[string]Rule
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse rules file %s: %w", path, err)
	}
	rules := make(map[string]Rule, len(raw))
	for code, rule := range raw {
		rules[strings.ToUpper(strings.TrimSpace(code))] = rule
	}
	return rules, nil
}

// LoadInto overlays the rules from path onto the registry's built-in table.
// Countries present in the file replace the built-in record; all other
// built-ins stay available.
func LoadInto(r *Registry, path string) error {
	loaded, err := LoadFile(path)
	if err != nil {
		return err
	}
	merged := builtinRules()
	for code, rule := range loaded {
		merged[code] = rule
	}
	r.replace(merged)
	return nil
}

// Watcher hot-reloads a YAML rule file into a Registry when the file
// changes on disk. A reload that fails to parse keeps the previous table.
type Watcher struct {
	registry *Registry
	path     string
	debounce time.Duration
	fsw      *fsnotify.Watcher
	logger   *slog.Logger
}

// NewWatcher creates a watcher for the given rule file. The file does not
// need to exist yet; it is loaded when it appears.
func NewWatcher(registry *Registry, path string, logger *slog.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Watcher{
		registry: registry,
		path:     path,
		debounce: defaultDebounce,
		fsw:      fsw,
		logger:   logger,
	}, nil
}

// Start loads the file if present, then watches its directory for changes
// until the context is cancelled. Watching the directory rather than the
// file survives editors that replace the file on save.
func (w *Watcher) Start(ctx context.Context) error {
	if _, err := os.Stat(w.path); err == nil {
		if err := LoadInto(w.registry, w.path); err != nil {
			w.logger.Warn("Initial rules load failed, using built-in table",
				"path", w.path, "error", err)
		} else {
			w.logger.Info("Loaded labor-law rules", "path", w.path)
		}
	}

	dir := filepath.Dir(w.path)
	if err := w.fsw.Add(dir); err != nil {
		return fmt.Errorf("watch rules directory %s: %w", dir, err)
	}

	go w.loop(ctx)
	return nil
}

// Stop closes the underlying filesystem watcher.
func (w *Watcher) Stop() error {
	return w.fsw.Close()
}

func (w *Watcher) loop(ctx context.Context) {
	var timer *time.Timer
	var timerC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce bursts of write events from a single save.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			timerC = timer.C

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Error("Rules watcher error", "error", err)

		case <-timerC:
			timerC = nil
			if err := LoadInto(w.registry, w.path); err != nil {
				w.logger.Warn("Rules reload failed, keeping previous table",
					"path", w.path, "error", err)
				continue
			}
			w.logger.Info("Reloaded labor-law rules", "path", w.path)
		}
	}
}
