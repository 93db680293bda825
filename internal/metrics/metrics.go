// Package metrics exports run results in the Prometheus text format so a
// node_exporter textfile collector can pick them up.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dshills/surveysim/internal/journey"
	"github.com/dshills/surveysim/internal/schema"
	"github.com/dshills/surveysim/internal/spread"
)

const namespace = "surveysim"

// Collector holds the gauges of one CLI invocation.
type Collector struct {
	reg *prometheus.Registry

	mean          *prometheus.GaugeVec
	deltaBaseline *prometheus.GaugeVec
	records       *prometheus.GaugeVec
	interventions prometheus.Gauge
	lastRun       prometheus.Gauge

	spreadStd    *prometheus.GaugeVec
	spreadRange  *prometheus.GaugeVec
	spreadNarrow *prometheus.GaugeVec
}

// New registers every gauge on a fresh registry.
func New() *Collector {
	byPhase := []string{"dataset", "phase", "survey_wave"}
	c := &Collector{
		reg: prometheus.NewRegistry(),
		mean: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "dataset_mean",
			Help: "Mean score of a dataset in a phase.",
		}, byPhase),
		deltaBaseline: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "dataset_delta_baseline",
			Help: "Change of the dataset mean against the baseline.",
		}, byPhase),
		records: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "dataset_records",
			Help: "Number of records in a dataset in a phase.",
		}, byPhase),
		interventions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "interventions_applied",
			Help: "Distinct interventions applied over the journey.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "last_run_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
		spreadStd: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "spread_std",
			Help: "Pooled population standard deviation of the checked columns.",
		}, []string{"path"}),
		spreadRange: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "spread_range",
			Help: "Pooled range of the checked columns.",
		}, []string{"path"}),
		spreadNarrow: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "spread_narrow",
			Help: "1 when the checked dataset was flagged as narrow.",
		}, []string{"path"}),
	}
	c.reg.MustRegister(c.mean, c.deltaBaseline, c.records, c.interventions, c.lastRun,
		c.spreadStd, c.spreadRange, c.spreadNarrow)
	return c
}

// ObserveJourney records every phase summary of res.
func (c *Collector) ObserveJourney(res *journey.Result) {
	for _, p := range res.Story.Phases {
		c.observeDataset("sentiment", p, p.Sentiment)
		c.observeDataset("capability", p, p.Capability)
	}
	c.interventions.Set(float64(len(res.Story.Totals.Interventions)))
	c.lastRun.Set(float64(time.Now().Unix()))
}

func (c *Collector) observeDataset(dataset string, p schema.PhaseSummary, s schema.DatasetStat) {
	labels := prometheus.Labels{"dataset": dataset, "phase": strconv.Itoa(p.Number), "survey_wave": p.SurveyWave}
	c.mean.With(labels).Set(s.Mean)
	c.deltaBaseline.With(labels).Set(s.DeltaBaseline)
	c.records.With(labels).Set(float64(s.Records))
}

// ObserveSpread records a spread-check report.
func (c *Collector) ObserveSpread(r *spread.Report) {
	c.spreadStd.WithLabelValues(r.Path).Set(r.Std)
	c.spreadRange.WithLabelValues(r.Path).Set(r.Range)
	narrow := 0.0
	if r.Narrow() {
		narrow = 1
	}
	c.spreadNarrow.WithLabelValues(r.Path).Set(narrow)
	c.lastRun.Set(float64(time.Now().Unix()))
}

// WriteFile atomically writes the gathered metrics to path.
func (c *Collector) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, c.reg); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
