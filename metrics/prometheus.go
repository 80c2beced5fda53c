package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector records like NewCollector and additionally exports
// solver progress, labelled by method.
type PrometheusCollector struct {
	Collector
	method   string
	sweeps   *prometheus.CounterVec
	rounds   *prometheus.CounterVec
	change   *prometheus.GaugeVec
	duration *prometheus.HistogramVec
}

func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	c := &PrometheusCollector{
		Collector: NewCollector(),
		sweeps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdp_sweeps_total",
				Help: "Total number of sweeps over the state space",
			},
			[]string{"method"},
		),
		rounds: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "mdp_rounds_total",
				Help: "Total number of policy improvement rounds",
			},
			[]string{"method"},
		),
		change: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "mdp_utility_change",
				Help: "Largest utility change of the latest sweep",
			},
			[]string{"method"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "mdp_solve_duration_seconds",
				Help:    "Duration of solver runs",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
			},
			[]string{"method"},
		),
	}

	for _, metric := range []prometheus.Collector{c.sweeps, c.rounds, c.change, c.duration} {
		if err := reg.Register(metric); err != nil {
			return nil, fmt.Errorf("failed to register solver metric: %w", err)
		}
	}
	return c, nil
}

func (c *PrometheusCollector) Start(method string, goroutines int) {
	c.method = method
	c.Collector.Start(method, goroutines)
}

func (c *PrometheusCollector) AddSweep(change float64) {
	c.sweeps.WithLabelValues(c.method).Inc()
	c.change.WithLabelValues(c.method).Set(change)
	c.Collector.AddSweep(change)
}

func (c *PrometheusCollector) AddRound(changes int) {
	c.rounds.WithLabelValues(c.method).Inc()
	c.Collector.AddRound(changes)
}

func (c *PrometheusCollector) Complete(converged bool) SolveMetric {
	metric := c.Collector.Complete(converged)
	c.duration.WithLabelValues(c.method).Observe(metric.Duration.Seconds())
	return metric
}
