// Package promcount exports countme instance counts as Prometheus metrics.
// Register a Collector once at startup, or use RegisterWith with an isolated
// prometheus.NewRegistry() in tests.
package promcount

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/ygrebnov/countme"
)

const defaultNamespace = "countme"

// Collector is a prometheus.Collector reading a countme.Source on every scrape.
type Collector struct {
	src     countme.Source
	live    *prometheus.Desc
	maxLive *prometheus.Desc
	total   *prometheus.Desc
}

// Option configures a Collector.
type Option func(*options)

type options struct {
	namespace   string
	constLabels prometheus.Labels
}

// WithNamespace overrides the metric name prefix (default "countme").
func WithNamespace(ns string) Option {
	return func(o *options) { o.namespace = ns }
}

// WithConstLabels attaches constant labels to every exported metric.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(o *options) { o.constLabels = labels }
}

// NewCollector builds a collector over src. Pass countme.SourceFunc(countme.GetAll)
// to export the default registry.
func NewCollector(src countme.Source, opts ...Option) *Collector {
	o := options{namespace: defaultNamespace}
	for _, fn := range opts {
		if fn != nil {
			fn(&o)
		}
	}
	labels := []string{"type"}
	return &Collector{
		src: src,
		live: prometheus.NewDesc(
			prometheus.BuildFQName(o.namespace, "", "live_instances"),
			"Instances created and not released yet, by type.",
			labels, o.constLabels,
		),
		maxLive: prometheus.NewDesc(
			prometheus.BuildFQName(o.namespace, "", "max_live_instances"),
			"Historical maximum of live instances, by type.",
			labels, o.constLabels,
		),
		total: prometheus.NewDesc(
			prometheus.BuildFQName(o.namespace, "", "instances_total"),
			"Instances ever created, by type.",
			labels, o.constLabels,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.live
	ch <- c.maxLive
	ch <- c.total
}

// Collect implements prometheus.Collector. Distinct types can share a display
// name; their counts are summed into one series since a registry rejects
// duplicate label sets.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	for _, e := range mergeByName(c.src.All().Entries()) {
		ch <- prometheus.MustNewConstMetric(c.live, prometheus.GaugeValue, float64(e.Counts.Live), e.Name)
		ch <- prometheus.MustNewConstMetric(c.maxLive, prometheus.GaugeValue, float64(e.Counts.MaxLive), e.Name)
		ch <- prometheus.MustNewConstMetric(c.total, prometheus.CounterValue, float64(e.Counts.Total), e.Name)
	}
}

// mergeByName folds entries sharing a name into one. entries must be sorted by
// name, as AllCounts.Entries returns them.
func mergeByName(entries []countme.Entry) []countme.Entry {
	out := entries[:0]
	for _, e := range entries {
		if n := len(out); n > 0 && out[n-1].Name == e.Name {
			out[n-1].Counts = out[n-1].Counts.Add(e.Counts)
			continue
		}
		out = append(out, e)
	}
	return out
}

// Register registers a collector over the default countme registry with
// prometheus.DefaultRegisterer. Call once at process startup.
func Register() {
	RegisterWith(prometheus.DefaultRegisterer, countme.SourceFunc(countme.GetAll))
}

// RegisterWith registers a collector over src with the given registerer.
func RegisterWith(reg prometheus.Registerer, src countme.Source, opts ...Option) {
	reg.MustRegister(NewCollector(src, opts...))
}
