// Package metrics exposes Prometheus metrics for catalog builds.
//
// Builds are batch jobs, so metrics live in a dedicated registry that can be
// dumped to a node_exporter textfile after each run.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every metric in this package.
var Registry = prometheus.NewRegistry()

var factory = promauto.With(Registry)

var (
	// FilesDiscovered counts rule files found under the rules root.
	FilesDiscovered = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "rules_explorer",
		Subsystem: "build",
		Name:      "files_discovered_total",
		Help:      "Total number of rule files discovered",
	})

	// RulesParsed counts files normalized into catalog rules.
	RulesParsed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "rules_explorer",
		Subsystem: "build",
		Name:      "rules_parsed_total",
		Help:      "Total number of rule files normalized successfully",
	})

	// RulesFailed counts files dropped because they could not be parsed.
	RulesFailed = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "rules_explorer",
		Subsystem: "build",
		Name:      "rules_failed_total",
		Help:      "Total number of rule files dropped as malformed",
	})

	// DuplicateIDs counts rules whose id repeats an earlier rule.
	DuplicateIDs = factory.NewCounter(prometheus.CounterOpts{
		Namespace: "rules_explorer",
		Subsystem: "build",
		Name:      "duplicate_ids_total",
		Help:      "Total number of rules sharing an id with an earlier rule",
	})

	// Builds counts finished builds by result ("success" or "error").
	Builds = factory.NewCounterVec(prometheus.CounterOpts{
		Namespace: "rules_explorer",
		Subsystem: "build",
		Name:      "runs_total",
		Help:      "Total number of catalog builds",
	}, []string{"result"})

	// BuildDuration observes how long each build takes.
	BuildDuration = factory.NewHistogram(prometheus.HistogramOpts{
		Namespace: "rules_explorer",
		Subsystem: "build",
		Name:      "duration_seconds",
		Help:      "Time spent building the catalog and facet index",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	// CatalogRules is the size of the last catalog written.
	CatalogRules = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "rules_explorer",
		Subsystem: "catalog",
		Name:      "rules",
		Help:      "Number of rules in the last catalog built",
	})

	// FacetValues is the number of distinct values per facet field in the
	// last index built.
	FacetValues = factory.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "rules_explorer",
		Subsystem: "catalog",
		Name:      "facet_values",
		Help:      "Distinct values per facet field in the last index built",
	}, []string{"field"})

	// LastSuccess is set when a build finishes without error.
	LastSuccess = factory.NewGauge(prometheus.GaugeOpts{
		Namespace: "rules_explorer",
		Subsystem: "build",
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix time of the last successful build",
	})
)

// ObserveBuild records the outcome of one build.
func ObserveBuild(start time.Time, err error) {
	BuildDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		Builds.WithLabelValues("error").Inc()
		return
	}
	Builds.WithLabelValues("success").Inc()
	LastSuccess.SetToCurrentTime()
}

// WriteTextfile writes the registry to path in the Prometheus text format.
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
