// Package metrics exposes optional Prometheus instrumentation for the
// deploy pipeline, disabled unless a listen address is configured.
package metrics

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// DeploysTotal counts completed deploys by package and result
	// ("success" or "failure").
	DeploysTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "deploys_total",
		Help: "Total number of deploys processed, by package and result.",
	}, []string{"package", "result"})

	// DeployDuration observes wall-clock deploy time by package.
	DeployDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "deploy_duration_seconds",
		Help:    "Deploy pipeline duration in seconds, by package.",
		Buckets: prometheus.DefBuckets,
	}, []string{"package"})

	// BackupsTotal counts pre-deploy snapshots taken.
	BackupsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "backups_total",
		Help: "Total number of pre-deploy backup snapshots taken.",
	})
)

// Serve starts a metrics HTTP server on addr and blocks until ctx is
// cancelled. A caller that never wants metrics simply never calls Serve.
func Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Close()
	case err := <-errCh:
		return err
	}
}
