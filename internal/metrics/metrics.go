// Package metrics exposes run and viewer statistics on a private
// Prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/n0roo/richness-kit/internal/richness"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "richness"

// Recorder owns the registry and every collector on it
type Recorder struct {
	registry *prometheus.Registry

	// Per-domain device population after resolution
	DomainDevices *prometheus.GaugeVec

	// Devices present in all three domains
	IntersectionDevices prometheus.Gauge

	// Intersected devices whose domain score stayed null
	NullScores *prometheus.GaugeVec

	// Warnings by domain and kind
	Warnings *prometheus.GaugeVec

	RunDuration prometheus.Gauge

	// OverallScore carries count/mean/std/min/max of the final score
	OverallScore *prometheus.GaugeVec

	// Viewer requests served by the HTTP viewer
	ViewerRequests *prometheus.CounterVec
}

// New builds a recorder with all collectors registered
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		DomainDevices: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "domain_devices",
			Help:      "Devices with a resolved cluster assignment per domain",
		}, []string{"domain"}),
		IntersectionDevices: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "intersection_devices",
			Help:      "Devices present in every domain",
		}),
		NullScores: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "null_scores",
			Help:      "Intersected devices whose cluster did not resolve to a domain score",
		}, []string{"domain"}),
		Warnings: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "warnings",
			Help:      "Data-quality warnings raised by the last run",
		}, []string{"domain", "kind"}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last pipeline run",
		}),
		OverallScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overall_score",
			Help:      "Summary statistics of OverallRichnessScore",
		}, []string{"stat"}),
		ViewerRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "viewer_requests_total",
			Help:      "HTTP viewer requests by route and status",
		}, []string{"route", "code"}),
	}

	r.registry.MustRegister(
		r.DomainDevices,
		r.IntersectionDevices,
		r.NullScores,
		r.Warnings,
		r.RunDuration,
		r.OverallScore,
		r.ViewerRequests,
	)
	return r
}

// Registry returns the underlying registry for exposition
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// ObserveDomain records a domain's resolved population
func (r *Recorder) ObserveDomain(d richness.Domain, devices int) {
	r.DomainDevices.WithLabelValues(string(d)).Set(float64(devices))
}

// ObserveIntersection records the retained population
func (r *Recorder) ObserveIntersection(devices int) {
	r.IntersectionDevices.Set(float64(devices))
}

// ObserveNullScores records per-domain null counts
func (r *Recorder) ObserveNullScores(nulls map[richness.Domain]int) {
	for _, d := range richness.Domains() {
		r.NullScores.WithLabelValues(string(d)).Set(float64(nulls[d]))
	}
}

// ObserveWarnings records warning counts. Each warning counts once
// regardless of its Count field.
func (r *Recorder) ObserveWarnings(ws []richness.Warning) {
	r.Warnings.Reset()
	for _, w := range ws {
		r.Warnings.WithLabelValues(string(w.Domain), string(w.Kind)).Inc()
	}
}

// ObserveRun records the run duration
func (r *Recorder) ObserveRun(d time.Duration) {
	r.RunDuration.Set(d.Seconds())
}

// ObserveOverall records summary statistics keyed by stat name
func (r *Recorder) ObserveOverall(stats map[string]float64) {
	for k, v := range stats {
		r.OverallScore.WithLabelValues(k).Set(v)
	}
}

// ObserveRequest counts one viewer request
func (r *Recorder) ObserveRequest(route string, code int) {
	r.ViewerRequests.WithLabelValues(route, fmt.Sprint(code)).Inc()
}

// WriteTextfile writes the registry in the node-exporter textfile format
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("메트릭 파일 저장 실패: %w", err)
	}
	return nil
}
