package metrics

import (
	"net/http"
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "pagepublisher"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once               sync.Once
	stageDuration      *prom.HistogramVec
	stageResults       *prom.CounterVec
	runDuration        *prom.HistogramVec
	documentOutcomes   *prom.CounterVec
	sideEffectFailures *prom.CounterVec
	feedOutcomes       *prom.CounterVec
	concurrency        prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{}
	pr.once.Do(func() {
		pr.stageDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Duration of individual per-document publish stages",
			Buckets:   prom.DefBuckets,
		}, []string{"stage"})
		pr.stageResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Stage result counts by outcome",
		}, []string{"stage", "result"})
		pr.runDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Total duration of publish runs by mode",
			Buckets:   prom.DefBuckets,
		}, []string{"mode"})
		pr.documentOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "document_outcomes_total",
			Help:      "Documents by final publish state",
		}, []string{"outcome"})
		pr.sideEffectFailures = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "side_effect_failures_total",
			Help:      "Best-effort side effects that failed after upload",
		}, []string{"effect"})
		pr.feedOutcomes = prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "feed_results_total",
			Help:      "Feed generation results by kind",
		}, []string{"kind", "result"})
		pr.concurrency = prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "publish_concurrency",
			Help:      "Worker count of the last bulk publish run",
		})
		reg.MustRegister(pr.stageDuration, pr.stageResults, pr.runDuration, pr.documentOutcomes,
			pr.sideEffectFailures, pr.feedOutcomes, pr.concurrency)
	})
	return pr
}

func (p *PrometheusRecorder) ObserveStageDuration(stage string, d time.Duration) {
	if p == nil || p.stageDuration == nil {
		return
	}
	p.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncStageResult(stage string, result ResultLabel) {
	if p == nil || p.stageResults == nil {
		return
	}
	p.stageResults.WithLabelValues(stage, string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveRunDuration(mode string, d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.WithLabelValues(mode).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncDocumentOutcome(outcome OutcomeLabel) {
	if p == nil || p.documentOutcomes == nil {
		return
	}
	p.documentOutcomes.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) IncSideEffectFailure(effect string) {
	if p == nil || p.sideEffectFailures == nil {
		return
	}
	p.sideEffectFailures.WithLabelValues(effect).Inc()
}

func (p *PrometheusRecorder) IncFeedOutcome(kind string, success bool) {
	if p == nil || p.feedOutcomes == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.feedOutcomes.WithLabelValues(kind, res).Inc()
}

func (p *PrometheusRecorder) SetPublishConcurrency(n int) {
	if p == nil || p.concurrency == nil {
		return
	}
	p.concurrency.Set(float64(n))
}

// HTTPHandler returns an http.Handler that serves Prometheus metrics for the provided registry.
func HTTPHandler(reg *prom.Registry) http.Handler {
	if reg == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
