// Package runmetrics exports the outcome of a run as Prometheus gauges in
// the node_exporter textfile format. The programs are short-lived cron
// jobs, so there is no scrape endpoint; node_exporter picks the file up.
package runmetrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pisolar/energylog/internal/failure"
)

const namespace = "energylog"

// Recorder holds the gauges for one program.
type Recorder struct {
	registry *prometheus.Registry

	lastRun  prometheus.Gauge
	duration prometheus.Gauge
	written  prometheus.Gauge
	success  prometheus.Gauge
	failures *prometheus.GaugeVec
}

// New returns a Recorder labelling every series with program.
func New(program string) *Recorder {
	labels := prometheus.Labels{"program": program}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_timestamp_seconds",
			Help:        "Unix time the last run finished.",
			ConstLabels: labels,
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_duration_seconds",
			Help:        "Wall time of the last run.",
			ConstLabels: labels,
		}),
		written: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "points_written",
			Help:        "Points written to InfluxDB by the last run.",
			ConstLabels: labels,
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_run_success",
			Help:        "1 if the last run logged no failures.",
			ConstLabels: labels,
		}),
		failures: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "run_failures",
			Help:        "Failures logged by the last run, by kind.",
			ConstLabels: labels,
		}, []string{"kind"}),
	}

	r.registry.MustRegister(r.lastRun, r.duration, r.written, r.success, r.failures)
	return r
}

// Observe sets every gauge from the tally of a finished run.
func (r *Recorder) Observe(started, finished time.Time, t failure.Tally) {
	r.lastRun.Set(float64(finished.UnixNano()) / 1e9)
	r.duration.Set(finished.Sub(started).Seconds())
	r.written.Set(float64(t.Written))

	if t.Errors() == 0 {
		r.success.Set(1)
	} else {
		r.success.Set(0)
	}

	// Every kind gets a series so alert rules never see it disappear.
	for _, k := range failure.Kinds {
		r.failures.WithLabelValues(k.String()).Set(float64(t.Failures[k]))
	}
}

// WriteTextfile atomically replaces path with the current gauge values.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics textfile: %w", err)
	}
	return nil
}
