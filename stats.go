package dcmtrace

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// element kinds used as the "kind" label of dcmtrace_elements_total
const (
	kindFileMeta  = "filemeta"
	kindDataSet   = "dataset"
	kindSequence  = "sequence"
	kindItem      = "item"
	kindDelimiter = "delimiter"
	kindSkipped   = "skipped"
)

// Stats holds walk statistics. Each Stats owns a private registry, so any
// number of walks may run in one process without colliding on the default
// registerer.
type Stats struct {
	reg *prometheus.Registry

	Elements     *prometheus.CounterVec
	SkippedBytes prometheus.Counter
	Recoveries   prometheus.Counter
	MaxDepth     prometheus.Gauge
	Images       *prometheus.CounterVec

	maxDepth int
}

// NewStats creates and registers all walk metrics on a fresh registry.
func NewStats() *Stats {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Stats{
		reg: reg,
		Elements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dcmtrace_elements_total",
				Help: "Elements reported in the trace, by kind",
			},
			[]string{"kind"},
		),
		SkippedBytes: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dcmtrace_skipped_bytes_total",
				Help: "Value bytes seeked past without being read",
			},
		),
		Recoveries: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dcmtrace_recoveries_total",
				Help: "Times a level was ended after rewinding to an unparseable element",
			},
		),
		MaxDepth: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "dcmtrace_max_depth",
				Help: "Deepest nesting level reached",
			},
		),
		Images: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dcmtrace_images_total",
				Help: "Pixel Data extraction attempts, by result",
			},
			[]string{"result"},
		),
	}
}

// Registry returns the registry holding the walk metrics
func (s *Stats) Registry() *prometheus.Registry {
	return s.reg
}

// WriteTextfile writes the metrics to `path` in the Prometheus text format
func (s *Stats) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, s.reg)
}

// The helpers below are no-ops on a nil *Stats.

func (s *Stats) element(kind string) {
	if s == nil {
		return
	}
	s.Elements.WithLabelValues(kind).Inc()
}

func (s *Stats) skipped(n uint32) {
	if s == nil {
		return
	}
	s.SkippedBytes.Add(float64(n))
}

func (s *Stats) recovery() {
	if s == nil {
		return
	}
	s.Recoveries.Inc()
}

func (s *Stats) image(result string) {
	if s == nil {
		return
	}
	s.Images.WithLabelValues(result).Inc()
}

func (s *Stats) depth(d int) {
	if s == nil {
		return
	}
	if d > s.maxDepth {
		s.maxDepth = d
		s.MaxDepth.Set(float64(d))
	}
}
