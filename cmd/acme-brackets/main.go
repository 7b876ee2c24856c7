// acme-brackets: rainbow bracket coloring for acme.
//
// Watches acme/log for new windows.  For each window whose filename matches
// a handler in the config, it:
//
//   - allocates two compositor layers in acme-styles,
//   - colors every bracket by its nesting level within its kind,
//   - paints the background of the innermost block around the selection, and
//   - rescans after any body edit (debounced).
//
// The config file is watched and reloaded on change or SIGHUP.
//
// Usage:
//
//	acme-brackets -config ~/lib/acme-brackets/config.yaml -metrics localhost:9464
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"time"

	"9fans.net/go/acme"
	"github.com/cptaffe/acme-brackets"
	"github.com/cptaffe/acme-brackets/config"
	"github.com/cptaffe/acme-brackets/logger"
	"github.com/cptaffe/acme-brackets/syntax"
	"github.com/cptaffe/acme-brackets/window"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

func main() {
	cfgPath := flag.String("config", "", "path to config.yaml (defaults apply when empty)")
	verbose := flag.Bool("v", false, "verbose logging")
	metricsAddr := flag.String("metrics", "", "serve Prometheus metrics on this address")
	flag.Parse()

	l, err := logger.New(*verbose)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	zap.ReplaceGlobals(l)
	defer l.Sync() //nolint:errcheck

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		l.Fatal("load config", zap.Error(err))
	}

	handlers, err := syntax.CompileHandlers(cfg)
	if err != nil {
		l.Fatal("compile filename handlers", zap.Error(err))
	}
	l.Info("handlers compiled", zap.Int("count", len(handlers)))

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	shared := window.NewShared(cfg, handlers, brackets.NewMetrics(reg))

	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals...)
	defer stop()
	ctx = logger.NewContext(ctx, l)

	if *metricsAddr != "" {
		srv := serveMetrics(ctx, *metricsAddr, reg)
		defer srv.Close()
	}
	if *cfgPath != "" {
		go watchConfig(ctx, *cfgPath, shared)
	}

	var wg sync.WaitGroup

	// active tracks which window IDs currently have a RunWindow goroutine.
	// Guarded by activeMu.
	var activeMu sync.Mutex
	active := make(map[int]struct{})

	start := func(id int, name string) {
		activeMu.Lock()
		if _, ok := active[id]; ok {
			activeMu.Unlock()
			return
		}
		active[id] = struct{}{}
		activeMu.Unlock()

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer func() {
				activeMu.Lock()
				delete(active, id)
				activeMu.Unlock()
			}()
			window.RunWindow(ctx, id, name, shared)
		}()
	}

	f, err := acme.Mount()
	if err != nil {
		l.Fatal("mount acme", zap.Error(err))
	}

	wins, err := f.Windows()
	if err != nil {
		l.Fatal("acme.Windows", zap.Error(err))
	}
	for _, w := range wins {
		start(w.ID, w.Name)
	}

	lr, err := f.Log()
	if err != nil {
		l.Fatal("acme.Log", zap.Error(err))
	}
	// Closing the log unblocks Read once the context is cancelled.
	go func() {
		<-ctx.Done()
		lr.Close()
	}()

	l.Info("connected to acme log")
	for {
		ev, err := lr.Read()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			l.Fatal("acme log read", zap.Error(err))
		}
		switch ev.Op {
		case "new":
			start(ev.ID, ev.Name)
		case "del":
			shared.Cache.Invalidate(ev.ID)
		}
	}

	wg.Wait()
	st := shared.Cache.Stats()
	l.Info("shutting down",
		zap.Uint64("cache_hits", st.Hits),
		zap.Uint64("cache_misses", st.Misses),
		zap.Float64("hit_rate", st.HitRate()))
}

// serveMetrics exposes reg over HTTP at /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.L(ctx).Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L(ctx).Error("metrics server", zap.Error(err))
		}
	}()
	return srv
}
