package metrics

import "github.com/prometheus/client_golang/prometheus"

// StatsSource reports the size of in-memory state.
type StatsSource interface {
	CachedSearches() int
	LiveEntities() int
}

// StateCollector implements prometheus.Collector for service state. It reads
// the source on each scrape instead of keeping duplicate gauges.
type StateCollector struct {
	source StatsSource

	cachedSearches *prometheus.Desc
	liveEntities   *prometheus.Desc
}

// NewStateCollector creates a collector that polls source on demand.
func NewStateCollector(source StatsSource) *StateCollector {
	return &StateCollector{
		source: source,
		cachedSearches: prometheus.NewDesc(
			"metascrape_search_cache_entries",
			"Number of search results currently cached.",
			nil, nil,
		),
		liveEntities: prometheus.NewDesc(
			"metascrape_store_entities",
			"Number of entities currently held by the entity store.",
			nil, nil,
		),
	}
}

func (c *StateCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.cachedSearches
	ch <- c.liveEntities
}

func (c *StateCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.cachedSearches, prometheus.GaugeValue, float64(c.source.CachedSearches()))
	ch <- prometheus.MustNewConstMetric(c.liveEntities, prometheus.GaugeValue, float64(c.source.LiveEntities()))
}
