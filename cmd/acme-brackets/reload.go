package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/cptaffe/acme-brackets/config"
	"github.com/cptaffe/acme-brackets/logger"
	"github.com/cptaffe/acme-brackets/syntax"
	"github.com/cptaffe/acme-brackets/window"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// settle absorbs the burst of events an editor produces for one save.
const settle = 250 * time.Millisecond

// watchConfig reloads the config at path into shared whenever the file
// changes or a reload signal arrives.  A config that fails to load or
// validate is logged and the previous one stays in effect.
func watchConfig(ctx context.Context, path string, shared *window.Shared) {
	log := logger.L(ctx).With(zap.String("config", path))

	sig := make(chan os.Signal, 1)
	if len(reloadSignals) > 0 {
		signal.Notify(sig, reloadSignals...)
		defer signal.Stop(sig)
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Warn("config watch unavailable", zap.Error(err))
	} else {
		defer w.Close()
		// Watch the directory: editors often replace the file by rename,
		// which drops a watch on the file itself.
		if err := w.Add(filepath.Dir(path)); err != nil {
			log.Warn("config watch unavailable", zap.Error(err))
		}
	}
	var events <-chan fsnotify.Event
	var errs <-chan error
	if w != nil {
		events, errs = w.Events, w.Errors
	}

	timer := time.NewTimer(settle)
	timer.Stop()
	name := filepath.Clean(path)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if filepath.Clean(ev.Name) != name {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				timer.Reset(settle)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			log.Warn("config watch", zap.Error(err))
		case <-sig:
			log.Info("reload requested")
			reload(ctx, path, shared)
		case <-timer.C:
			reload(ctx, path, shared)
		}
	}
}

func reload(ctx context.Context, path string, shared *window.Shared) {
	log := logger.L(ctx)
	cfg, err := config.Load(path)
	if err != nil {
		log.Error("reload config", zap.Error(err))
		return
	}
	handlers, err := syntax.CompileHandlers(cfg)
	if err != nil {
		log.Error("reload config", zap.Error(err))
		return
	}
	shared.Reload(cfg, handlers)
	log.Info("config reloaded", zap.Int("handlers", len(handlers)))
}
