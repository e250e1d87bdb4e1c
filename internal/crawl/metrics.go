package crawl

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TotalLoads tracks pages successfully opened in the backend.
	TotalLoads = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webparser_page_loads_total",
		Help: "The total number of pages successfully loaded.",
	})
	// TotalLoadFailures tracks page loads that the backend rejected.
	TotalLoadFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webparser_page_load_failures_total",
		Help: "The total number of failed page loads.",
	})
	// TotalRoutineRuns tracks extraction routines that completed successfully.
	TotalRoutineRuns = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webparser_routine_runs_total",
		Help: "The total number of extraction routines that succeeded.",
	})
	// TotalRoutineFailures tracks routines that declared or hit a failure.
	TotalRoutineFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webparser_routine_failures_total",
		Help: "The total number of extraction routines that failed.",
	})
	// TotalCloseFailures tracks page releases the backend rejected.
	TotalCloseFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "webparser_page_close_failures_total",
		Help: "The total number of failed page closes.",
	})
)
