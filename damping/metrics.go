package damping

import (
	gometrics "github.com/armon/go-metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// These name the per-round counters emitted via go-metrics, the
// same instrumentation library hashicorp's own gossip stack (serf,
// memberlist) uses for exactly this kind of event counting.
var (
	metricInitiated    = []string{"damp", "req", "initiated"}
	metricQuorumFailed = []string{"damp", "req", "quorum_failed"}
	metricUnsatisfied  = []string{"damp", "req", "unsatisfied"}
	metricCapExceeded  = []string{"damp", "capped"}
	metricCommitted    = []string{"damp", "committed"}
	metricExpired      = []string{"damp", "expired"}
)

// Collector exposes the two sets' sizes as Prometheus gauges, read live
// from the Flapper Set and Damped Set each scrape rather than tracked
// separately — there is exactly one source of truth for set membership.
type Collector struct {
	flappers *FlapperSet
	damped   *DampedSet

	flapperGauge *prometheus.Desc
	dampedGauge  *prometheus.Desc
}

// NewCollector builds a Collector reporting on the given sets.
func NewCollector(flappers *FlapperSet, damped *DampedSet) *Collector {
	return &Collector{
		flappers: flappers,
		damped:   damped,
		flapperGauge: prometheus.NewDesc(
			"ringpop_flapper_members", "Number of members currently tracked as suspected flappers.", nil, nil),
		dampedGauge: prometheus.NewDesc(
			"ringpop_damped_members", "Number of members currently committed to the damped set.", nil, nil),
	}
}

func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.flapperGauge
	ch <- c.dampedGauge
}

func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.flapperGauge, prometheus.GaugeValue, float64(c.flappers.Count()))
	ch <- prometheus.MustNewConstMetric(c.dampedGauge, prometheus.GaugeValue, float64(c.damped.Count()))
}

func incrCounter(key []string) {
	gometrics.IncrCounter(key, 1)
}
