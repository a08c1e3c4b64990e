package webutil

import (
	"context"
	"fmt"
	"net/http"
	"net/http/pprof"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pkgship/pkgship/pkg/logutil"
)

// AdminAPIListenAndServe serves the admin endpoint with Prometheus metrics,
// a health check and the pprof handlers. It is meant to listen on a
// localhost-only address, separate from the user-facing server, and blocks
// until the context gets cancelled.
func AdminAPIListenAndServe(ctx context.Context, addr string) error {
	ctx = logutil.Start(ctx, "admin-api")
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if ctx.Err() != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintln(w, "SHUTTING DOWN")
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "OK")
	})

	// Copied from init in https://golang.org/src/net/http/pprof/pprof.go,
	// because the package does not allow specifying a mux.
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	logutil.Get(ctx).Debug("admin api listening", "addr", addr)

	return ListenAndServeWithContext(ctx, addr, mux)
}
