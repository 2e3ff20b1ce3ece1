package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/trsgd"
	"github.com/hupe1980/trsgd/learner"
)

// PrometheusCollector exports training events as Prometheus metrics.
type PrometheusCollector struct {
	digests   *prometheus.CounterVec
	skips     prometheus.Counter
	reseeks   *prometheus.CounterVec
	iteration prometheus.Gauge
	weights   prometheus.Gauge
	loss      prometheus.Gauge
	step      prometheus.Gauge
	removed   prometheus.Counter
	modelOps  *prometheus.HistogramVec
}

var _ trsgd.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collector and registers its metrics with reg.
func NewPrometheusCollector(reg prometheus.Registerer) *PrometheusCollector {
	c := &PrometheusCollector{
		digests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trsgd_records_digested_total",
			Help: "Records digested by the learner",
		}, []string{"status"}),
		skips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trsgd_records_skipped_total",
			Help: "Records rejected by the extractor",
		}),
		reseeks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "trsgd_reseeks_total",
			Help: "Sampler reseeks by selected source",
		}, []string{"source"}),
		iteration: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trsgd_iteration",
			Help: "Learner iteration counter",
		}),
		weights: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trsgd_model_weights",
			Help: "Stored non-zero weights",
		}),
		loss: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trsgd_window_loss",
			Help: "Average weighted log loss of the last report window",
		}),
		step: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "trsgd_step_size",
			Help: "Current effective step size",
		}),
		removed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "trsgd_weights_truncated_total",
			Help: "Weights erased by truncation",
		}),
		modelOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "trsgd_model_io_duration_seconds",
			Help:    "Duration of model saves and loads",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to 32s
		}, []string{"op", "status"}),
	}
	reg.MustRegister(
		c.digests,
		c.skips,
		c.reseeks,
		c.iteration,
		c.weights,
		c.loss,
		c.step,
		c.removed,
		c.modelOps,
	)
	return c
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

// RecordDigest implements trsgd.MetricsCollector.
func (c *PrometheusCollector) RecordDigest(err error) {
	c.digests.WithLabelValues(status(err)).Inc()
}

// RecordSkip implements trsgd.MetricsCollector.
func (c *PrometheusCollector) RecordSkip() { c.skips.Inc() }

// RecordReseek implements trsgd.MetricsCollector.
func (c *PrometheusCollector) RecordReseek(source string) {
	c.reseeks.WithLabelValues(source).Inc()
}

// RecordReport implements trsgd.MetricsCollector.
func (c *PrometheusCollector) RecordReport(s learner.Stats) {
	c.iteration.Set(float64(s.Iteration))
	c.weights.Set(float64(s.Size))
	c.loss.Set(s.Loss)
	c.step.Set(s.Step)
	c.removed.Add(float64(s.Removed))
}

// RecordSave implements trsgd.MetricsCollector.
func (c *PrometheusCollector) RecordSave(weights int, d time.Duration, err error) {
	c.modelOps.WithLabelValues("save", status(err)).Observe(d.Seconds())
}

// RecordLoad implements trsgd.MetricsCollector.
func (c *PrometheusCollector) RecordLoad(weights int, d time.Duration, err error) {
	c.modelOps.WithLabelValues("load", status(err)).Observe(d.Seconds())
	if err == nil {
		c.weights.Set(float64(weights))
	}
}

// serveMetrics exposes reg on addr under /metrics until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg prometheus.Gatherer, logger *trsgd.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.InfoContext(ctx, "serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.ErrorContext(ctx, "metrics server failed", "error", err)
		}
	}()
	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}
}
