package server

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"gorm.io/gorm"

	"github.com/askhq/ask/internal"
	"github.com/askhq/ask/internal/logging"
	"github.com/askhq/ask/internal/server/data"
	"github.com/askhq/ask/internal/server/models"
)

type metricValue struct {
	Value       float64
	LabelValues []string
}

// collector implements the prometheus.Collector interface
type collector struct {
	desc        *prometheus.Desc
	valueType   prometheus.ValueType
	collectFunc func() []metricValue
}

func newCollector(opts prometheus.Opts, valueType prometheus.ValueType, variableLabels []string, collectFunc func() []metricValue) *collector {
	fqname := prometheus.BuildFQName(opts.Namespace, opts.Subsystem, opts.Name)
	return &collector{
		desc:        prometheus.NewDesc(fqname, opts.Help, variableLabels, opts.ConstLabels),
		valueType:   valueType,
		collectFunc: collectFunc,
	}
}

// NewGaugeCollector creates a collector with type Gauge
func NewGaugeCollector(opts prometheus.Opts, variableLabels []string, collectFunc func() []metricValue) *collector {
	return newCollector(opts, prometheus.GaugeValue, variableLabels, collectFunc)
}

// Describe is implemented by DescribeByCollect
func (c *collector) Describe(ch chan<- *prometheus.Desc) {
	prometheus.DescribeByCollect(c, ch)
}

// Collect implements Collector. It creates a set of constant metrics with the
// values and labels returned by collectFunc.
func (c *collector) Collect(ch chan<- prometheus.Metric) {
	for _, metricValue := range c.collectFunc() {
		ch <- prometheus.MustNewConstMetric(c.desc, c.valueType, metricValue.Value, metricValue.LabelValues...)
	}
}

func setupMetrics(db *gorm.DB) *prometheus.Registry {
	registry := prometheus.NewRegistry()

	if rawDB, err := db.DB(); err == nil {
		registry.MustRegister(collectors.NewDBStatsCollector(rawDB, db.Dialector.Name()))
	}

	registry.MustRegister(prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "build_info",
		Help: "A metric with a constant '1' value labeled by branch, version, commit, and date from which ask was built",
		ConstLabels: prometheus.Labels{
			"branch":  internal.Branch,
			"version": internal.FullVersion(),
			"commit":  internal.Commit,
			"date":    internal.Date,
		},
	}, func() float64 { return 1 }))

	registry.MustRegister(countCollector[models.User](db, "users", "The total number of users"))
	registry.MustRegister(countCollector[models.Question](db, "questions", "The total number of questions"))
	registry.MustRegister(countCollector[models.Answer](db, "answers", "The total number of answers"))
	registry.MustRegister(countCollector[models.Session](db, "sessions", "The total number of sessions, including expired sessions that have not been removed"))

	return registry
}

func countCollector[T models.Modelable](db *gorm.DB, name, help string) *collector {
	return NewGaugeCollector(prometheus.Opts{
		Namespace: "ask",
		Name:      name,
		Help:      help,
	}, []string{}, func() []metricValue {
		count, err := data.Count[T](db)
		if err != nil {
			logging.L.Warn().Err(err).Msg(name)
			return []metricValue{}
		}
		return []metricValue{{Value: float64(count), LabelValues: []string{}}}
	})
}
