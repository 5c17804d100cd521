package release

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const metricNamespace = "release_job_matrix"

const pushJobName = "release_job_matrix"

const reasonLabel = "reason"

type reasonLabelVal string

const (
	reasonLabelNotReleaseBranchVal reasonLabelVal = "not_release_branch"
	reasonLabelNotAutomatedVal     reasonLabelVal = "not_automated"
	reasonLabelDuplicateVal        reasonLabelVal = "duplicate_channel"
)

type metricCollector struct {
	registry   *prometheus.Registry
	candidates prometheus.Gauge
	discarded  *prometheus.GaugeVec
	jobs       prometheus.Gauge
	lastRun    prometheus.Gauge
}

func newMetricCollector() *metricCollector {
	m := metricCollector{
		registry: prometheus.NewRegistry(),
		candidates: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "candidates",
			Help:      "number of candidate commits of the last run",
		}),
		discarded: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "discarded",
			Help:      "number of discarded branches and releases of the last run",
		}, []string{reasonLabel}),
		jobs: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "jobs",
			Help:      "number of release jobs emitted by the last run",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricNamespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "unix time of the last successful run",
		}),
	}

	m.registry.MustRegister(m.candidates, m.discarded, m.jobs, m.lastRun)

	return &m
}

func (m *metricCollector) record(stats *RunStats, now time.Time) {
	m.candidates.Set(float64(stats.Candidates))
	m.discarded.WithLabelValues(string(reasonLabelNotReleaseBranchVal)).Set(float64(stats.SkippedBranches))
	m.discarded.WithLabelValues(string(reasonLabelNotAutomatedVal)).Set(float64(stats.NotAutomated))
	m.discarded.WithLabelValues(string(reasonLabelDuplicateVal)).Set(float64(stats.DiscardedDuplicates))
	m.jobs.Set(float64(stats.Jobs))
	m.lastRun.Set(float64(now.Unix()))
}

// PushMetrics sends the statistics of a run to a Prometheus Pushgateway.
func PushMetrics(ctx context.Context, pushgatewayURL string, kind EventKind, stats *RunStats) error {
	m := newMetricCollector()
	m.record(stats, time.Now())

	err := push.New(pushgatewayURL, pushJobName).
		Grouping("trigger_kind", string(kind)).
		Gatherer(m.registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("pushing metrics to %s failed: %w", pushgatewayURL, err)
	}

	return nil
}
