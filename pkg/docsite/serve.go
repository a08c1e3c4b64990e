package docsite

import (
	"context"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-chi/chi/v5"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/dig"

	"github.com/pkgship/pkgship/pkg/logutil"
	"github.com/pkgship/pkgship/pkg/manifest"
	"github.com/pkgship/pkgship/pkg/project"
	"github.com/pkgship/pkgship/pkg/runutil"
	"github.com/pkgship/pkgship/pkg/webutil"
)

var (
	metricRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pkgship",
		Subsystem: "docsite",
		Name:      "rebuilds_total",
		Help:      "Number of site rebuilds since the server started.",
	})
	metricRebuildErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "pkgship",
		Subsystem: "docsite",
		Name:      "rebuild_errors_total",
		Help:      "Number of failed site rebuilds.",
	})
	metricBuildSeconds = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "pkgship",
		Subsystem: "docsite",
		Name:      "last_build_seconds",
		Help:      "Duration of the most recent site build.",
	})
)

// ServeParams configure the documentation server.
type ServeParams struct {
	Info   *project.Info
	Config manifest.DocsConfig
	OutDir string
}

// Serve builds the site and runs the documentation server until the context
// gets cancelled. It watches the project for changes and rebuilds the site
// in place; reloading the browser is enough to see the update.
func Serve(ctx context.Context, params ServeParams) error {
	builder := &Builder{params: params}

	// The first build happens before any worker starts, so the server never
	// serves an empty directory.
	err := builder.Rebuild(ctx)
	if err != nil {
		return err
	}

	c := dig.New()

	for _, fn := range []any{
		func() *Builder { return builder },
		func() ServeParams { return params },
	} {
		err := c.Provide(fn)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	for _, fn := range []any{
		NewServerWorker,
		NewWatchWorker,
		NewAdminWorker,
	} {
		err := runutil.ProvideWorker(c, fn)
		if err != nil {
			return errors.WithStack(err)
		}
	}

	return runutil.RunProvidedWorkers(ctx, c)
}

// Builder rebuilds the site. Rebuild is serialized with a mutex, so a burst
// of file events cannot run overlapping builds.
type Builder struct {
	params ServeParams
	mu     sync.Mutex
}

func (b *Builder) Rebuild(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := time.Now()

	site, err := Extract(ctx, b.params.Info, b.params.Config)
	if err != nil {
		metricRebuildErrors.Inc()
		return err
	}

	err = Build(site, b.params.OutDir)
	if err != nil {
		metricRebuildErrors.Inc()
		return err
	}

	metricRebuilds.Inc()
	metricBuildSeconds.Set(time.Since(start).Seconds())

	logutil.Get(ctx).Info("site built",
		"packages", len(site.Packages),
		"duration", time.Since(start).String())

	return nil
}

// ServerWorker serves the generated site over HTTP.
type ServerWorker struct {
	params ServeParams
}

func NewServerWorker(params ServeParams) *ServerWorker {
	return &ServerWorker{params: params}
}

func (w *ServerWorker) Workers() []runutil.Worker {
	return []runutil.Worker{
		runutil.DeclarativeWorker{
			Name:   "http",
			Worker: runutil.WorkerFunc(w.run),
		},
	}
}

func (w *ServerWorker) run(ctx context.Context) error {
	router := chi.NewRouter()
	router.Use(webutil.NoCache)

	router.Get("/api/site", w.handleSiteManifest)
	router.Handle("/*", http.FileServer(http.Dir(w.params.OutDir)))

	logutil.Get(ctx).Info("serving documentation",
		"address", "http://"+w.params.Config.Listen)

	return webutil.ListenAndServeWithContext(ctx, w.params.Config.Listen, router)
}

func (w *ServerWorker) handleSiteManifest(rw http.ResponseWriter, r *http.Request) {
	data, err := os.ReadFile(filepath.Join(w.params.OutDir, "site.json"))
	if webutil.RespondError(rw, r, errors.WithStack(err)) {
		return
	}

	rw.Header().Set("Content-Type", "application/json")
	rw.Write(data)
}

// WatchWorker rebuilds the site when Go or markdown files change.
type WatchWorker struct {
	params  ServeParams
	builder *Builder
}

func NewWatchWorker(params ServeParams, builder *Builder) *WatchWorker {
	return &WatchWorker{params: params, builder: builder}
}

func (w *WatchWorker) Workers() []runutil.Worker {
	return []runutil.Worker{
		runutil.DeclarativeWorker{
			Name:   "watch",
			Worker: runutil.WorkerFunc(w.run),
			Retry: runutil.ExponentialBackoff{
				Initial: time.Second,
				Max:     time.Minute,
			},
		},
	}
}

func (w *WatchWorker) run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "failed to create file watcher")
	}
	defer watcher.Close()

	err = w.addDirs(watcher)
	if err != nil {
		return err
	}

	// Editors fire several events per save. The timer coalesces them into a
	// single rebuild.
	const debounce = 300 * time.Millisecond
	timer := time.NewTimer(debounce)
	if !timer.Stop() {
		<-timer.C
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}

			if !watchRelevant(event.Name) {
				continue
			}

			if event.Has(fsnotify.Create) {
				stat, err := os.Stat(event.Name)
				if err == nil && stat.IsDir() {
					watcher.Add(event.Name)
					continue
				}
			}

			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return errors.New("watcher closed unexpectedly")
			}
			logutil.Get(ctx).Warn("watch error", "error", err.Error())

		case <-timer.C:
			err := w.builder.Rebuild(ctx)
			if err != nil {
				logutil.Get(ctx).Error("rebuild failed", "error", err.Error())
			}
		}
	}
}

func (w *WatchWorker) addDirs(watcher *fsnotify.Watcher) error {
	root := w.params.Info.Go.Dir
	out, _ := filepath.Abs(w.params.OutDir)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return err
		}

		abs, _ := filepath.Abs(path)
		if d.Name() == ".git" || strings.HasPrefix(d.Name(), "_") || abs == out {
			return filepath.SkipDir
		}

		return watcher.Add(path)
	})

	return errors.Wrap(err, "failed to watch project directories")
}

func watchRelevant(name string) bool {
	switch filepath.Ext(name) {
	case ".go", ".md":
		return true
	}

	return false
}

// AdminWorker exposes metrics, health and pprof on the admin address.
type AdminWorker struct {
	params ServeParams
}

func NewAdminWorker(params ServeParams) *AdminWorker {
	return &AdminWorker{params: params}
}

func (w *AdminWorker) Workers() []runutil.Worker {
	return []runutil.Worker{
		runutil.DeclarativeWorker{
			Name:   "admin",
			Worker: runutil.WorkerFunc(w.run),
		},
	}
}

func (w *AdminWorker) run(ctx context.Context) error {
	return webutil.AdminAPIListenAndServe(ctx, w.params.Config.Admin)
}
