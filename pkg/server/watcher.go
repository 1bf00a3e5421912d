package server

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bastiangx/destserve/pkg/config"
	"github.com/bastiangx/destserve/pkg/debounce"
	"github.com/bastiangx/destserve/pkg/suggest"
	"github.com/fsnotify/fsnotify"
)

// reloadWindow coalesces the burst of events an editor produces on save.
const reloadWindow = 150 * time.Millisecond

// watchConfig reloads the config file whenever it changes. The directory is
// watched rather than the file so editors that replace the file on save are
// still seen.
func (s *Server) watchConfig(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create config watcher: %w", err)
	}
	defer watcher.Close()

	dir := filepath.Dir(s.configPath)
	if err := watcher.Add(dir); err != nil {
		s.logger.Warnf("Config reload disabled, cannot watch %s: %v", dir, err)
		return nil
	}
	s.logger.Debugf("Watching config file %s", s.configPath)

	reloader := debounce.New(reloadWindow, func(string) { s.reloadConfig() }, debounce.WithMinLen(1))
	defer reloader.Stop()

	target := filepath.Clean(s.configPath)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				reloader.OnInput(event.Name)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warnf("Config watcher error: %v", err)
		}
	}
}

// reloadConfig loads the config file again and swaps in a fresh engine.
// Open sessions keep the engine they started with.
func (s *Server) reloadConfig() {
	cfg, err := config.LoadConfig(s.configPath)
	if err != nil {
		s.logger.Warnf("Keeping previous config, reload of %s failed: %v", s.configPath, err)
		return
	}
	engine := suggest.NewEngine(s.index, cfg.SearchOptions())

	s.mu.Lock()
	s.config = cfg
	s.engine = engine
	s.mu.Unlock()

	s.logger.Info("Config reloaded", "path", s.configPath,
		"max_exact", cfg.Search.MaxExact, "fuzzy_threshold", cfg.Search.FuzzyThreshold,
		"quiet_ms", cfg.Debounce.QuietMs)
}
