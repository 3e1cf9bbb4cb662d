// Package metrics exposes pipeline progress as Prometheus series. The
// collector is a plain event subscriber: attaching it never changes what the
// pipeline computes, and no stage may depend on it being present.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gapaudit/internal/pipeline"
)

// Collector holds the run-scoped Prometheus instruments.
type Collector struct {
	registry *prometheus.Registry

	stageDuration *prometheus.HistogramVec
	stageFailures *prometheus.CounterVec
	runsTotal     *prometheus.CounterVec

	// starts remembers the elapsed offset of each stage's starting event so
	// the completion event can be turned into a duration.
	starts map[string]float64
}

func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gapaudit_stage_duration_seconds",
			Help:    "Wall time spent in each pipeline stage.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 12),
		}, []string{"stage"}),
		stageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gapaudit_stage_failures_total",
			Help: "Stage failures by stage name.",
		}, []string{"stage"}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gapaudit_runs_total",
			Help: "Finished pipeline runs by final status.",
		}, []string{"status"}),
		starts: make(map[string]float64),
	}

	c.registry.MustRegister(c.stageDuration, c.stageFailures, c.runsTotal)
	return c
}

// Subscriber adapts the collector to the pipeline's progress stream.
func (c *Collector) Subscriber() pipeline.Subscriber {
	return func(event pipeline.Event) {
		switch event.Status {
		case pipeline.EventStarting:
			c.starts[event.StageName] = event.ElapsedSeconds
		case pipeline.EventComplete:
			c.stageDuration.WithLabelValues(event.StageName).
				Observe(event.ElapsedSeconds - c.starts[event.StageName])
		case pipeline.EventError:
			c.stageFailures.WithLabelValues(event.StageName).Inc()
		}
	}
}

// ObserveRun records the final run verdict.
func (c *Collector) ObserveRun(result *pipeline.RunResult) {
	if result == nil {
		return
	}
	c.runsTotal.WithLabelValues(string(result.Status)).Inc()
}

// Registry exposes the run-scoped registry for scraping or test assertions.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Serve exposes /metrics on the given address until the context is done.
// Listen failures are logged, not returned: metrics are best-effort.
func (c *Collector) Serve(ctx context.Context, addr string, log *zap.Logger) {
	if addr == "" {
		return
	}
	if log == nil {
		log = zap.NewNop()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	go func() {
		log.Info("metrics listener starting", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn("metrics listener failed", zap.Error(err))
		}
	}()
}
