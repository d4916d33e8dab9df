package app

import (
	"context"
	"net/http"
	"time"

	accountsapi "accounts/cmd/internal/accounts/api"
	"accounts/cmd/internal/telemetry"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// readiness reports whether the configured backing store can serve traffic.
type readiness struct {
	requireDB bool
	dbEnabled bool
	ping      func(ctx context.Context) error
}

func newRouter(log Logger, ready readiness, gatherer prometheus.Gatherer, metrics *telemetry.Metrics, accounts *accountsapi.Handler) *httprouter.Router {
	router := httprouter.New()
	router.HandleMethodNotAllowed = true

	router.HandlerFunc(http.MethodGet, "/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	router.HandlerFunc(http.MethodGet, "/readyz", func(w http.ResponseWriter, r *http.Request) {
		if ready.requireDB && !ready.dbEnabled {
			http.Error(w, "db not configured", http.StatusServiceUnavailable)
			return
		}

		if ready.dbEnabled && ready.ping != nil {
			if err := ready.ping(r.Context()); err != nil {
				http.Error(w, "db not ready", http.StatusServiceUnavailable)
				log.Info("readyz.db.not_ready", "err", err)
				return
			}
		}

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready\n"))
	})

	if gatherer != nil {
		router.Handler(http.MethodGet, "/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	}

	if accounts != nil {
		accounts.Register(router, func(route string, next http.Handler) http.Handler {
			return instrumentRoute(metrics, route, next)
		})
	}

	return router
}

// instrumentRoute records request count and latency under the route pattern,
// which keeps label cardinality bounded.
func instrumentRoute(m *telemetry.Metrics, route string, next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)
		m.HTTPRequest(r.Method, route, rec.status, time.Since(start))
	})
}
