package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ReloadHook is told about every reload attempt. updated is nil when err is
// set.
type ReloadHook func(old, updated *Settings, err error)

// Watch reloads st whenever the env file at path changes, until ctx is done.
// The parent directory is watched so that editors replacing the file by
// rename are noticed.
func Watch(ctx context.Context, path string, st *Store, log *zap.Logger, hook ReloadHook) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		_ = w.Close()
		return fmt.Errorf("resolve %s: %w", path, err)
	}
	if err := w.Add(filepath.Dir(abs)); err != nil {
		_ = w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	d := debounce.New(100 * time.Millisecond)
	reload := func() {
		ReloadAndReport(path, st, log, hook)
	}

	go func() {
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != abs {
					continue
				}
				if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					d(reload)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("env file watcher error", zap.Error(err))
			}
		}
	}()

	log.Info("watching env file", zap.String("path", abs))
	return nil
}

// ReloadAndReport reloads st from path and logs the outcome.
func ReloadAndReport(path string, st *Store, log *zap.Logger, hook ReloadHook) {
	old, updated, err := st.Reload(path)
	if hook != nil {
		hook(old, updated, err)
	}
	if err != nil {
		log.Error("config reload failed; keeping previous settings", zap.String("path", path), zap.Error(err))
		return
	}
	if changed := updated.RestartRequired(old); len(changed) > 0 {
		log.Warn("config reloaded; some changes need a restart", zap.Strings("keys", changed))
		return
	}
	log.Info("config reloaded", zap.String("path", path))
}
