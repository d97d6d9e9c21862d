package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"net/http"
)

var (
	ErrorsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scraper_errors_total",
			Help: "Total number of occurred errors.",
		},
		[]string{"type"},
	)
	AdmittedJobsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_jobs_admitted_total",
			Help: "Total number of job records inserted into the store.",
		},
	)
	SkippedSeenCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_urls_skipped_seen_total",
			Help: "Total number of candidate URLs skipped because they were already processed.",
		},
	)
	SkippedExistingCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_urls_skipped_existing_total",
			Help: "Total number of candidate URLs skipped because a record already exists in the store.",
		},
	)
	ScrapeFailuresCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_page_failures_total",
			Help: "Total number of candidate URLs whose page could not be scraped or validated.",
		},
	)
	PurgeDeletedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_purge_deleted_total",
			Help: "Total number of job records deleted by cleanup sweeps.",
		},
	)
	PurgeFailedDeletesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "scraper_purge_failed_deletes_total",
			Help: "Total number of job record deletions that failed during cleanup sweeps.",
		},
	)
	PurgeDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scraper_purge_duration_seconds",
			Help:    "Duration of each cleanup sweep in seconds.",
			Buckets: []float64{1, 5, 30, 120, 600},
		},
	)
)

func StartMetricsServer() {

	prometheus.MustRegister(ErrorsCounter)
	prometheus.MustRegister(AdmittedJobsCounter)
	prometheus.MustRegister(SkippedSeenCounter)
	prometheus.MustRegister(SkippedExistingCounter)
	prometheus.MustRegister(ScrapeFailuresCounter)
	prometheus.MustRegister(PurgeDeletedCounter)
	prometheus.MustRegister(PurgeFailedDeletesCounter)
	prometheus.MustRegister(PurgeDuration)

	http.Handle("/metrics", promhttp.Handler())
	go func() {
		log.Fatal(http.ListenAndServe(":8080", nil))
	}()
}
