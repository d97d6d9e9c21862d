package services

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	"github.com/harbourapp/harbour-scraper/internal/events"
	"github.com/harbourapp/harbour-scraper/internal/logger"
	"github.com/harbourapp/harbour-scraper/internal/metrics"
	gocache "github.com/patrickmn/go-cache"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type candidateSource interface {
	CandidateURLs() ([]string, error)
}

type jobScraper interface {
	GetJob(url string) (*models.Job, error)
}

type jobStore interface {
	GetBySourceLink(ctx context.Context, link string) ([]models.Job, error)
	Insert(ctx context.Context, job *models.Job) error
}

type seenSet interface {
	Contains(url string) bool
	Add(url string) error
}

// Ingestor runs the admission pipeline: candidate URLs from the channel are
// filtered through the local seen-set, checked against the store, scraped,
// validated and inserted. URLs are processed strictly one at a time; dedup
// across concurrent environments is left to the store check plus the cleanup
// sweep, not to any locking here.
type Ingestor struct {
	bus            EventBus.Bus
	source         candidateSource
	scraper        jobScraper
	store          jobStore
	seen           seenSet
	existing       *gocache.Cache
	scrapeInterval time.Duration
}

func NewIngestor(bus EventBus.Bus, source candidateSource, scraper jobScraper,
	store jobStore, seen seenSet, scrapeInterval time.Duration) (*Ingestor, error) {

	if bus == nil {
		return nil, errors.New("bus is nil")
	}
	if source == nil {
		return nil, errors.New("candidate source is nil")
	}
	if scraper == nil {
		return nil, errors.New("scraper is nil")
	}
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if seen == nil {
		return nil, errors.New("seen set is nil")
	}
	if scrapeInterval <= 0 {
		return nil, errors.New("scrape interval must be greater than zero")
	}

	return &Ingestor{
		bus:            bus,
		source:         source,
		scraper:        scraper,
		store:          store,
		seen:           seen,
		existing:       gocache.New(10*time.Minute, 20*time.Minute),
		scrapeInterval: scrapeInterval,
	}, nil
}

func (i *Ingestor) Run(ctx context.Context) {
	for {
		startTime := time.Now()
		log.Infof("running ingestion sweep at %v", startTime)

		i.RunOnce(ctx)

		log.Infof("ingestion sweep ended after %v", time.Since(startTime))

		select {
		case <-ctx.Done():
			return
		case <-time.After(i.scrapeInterval):
		}
	}
}

// RunOnce performs one full sweep: channel scan, then the admission pipeline
// for every candidate URL.
func (i *Ingestor) RunOnce(ctx context.Context) {

	urls, err := i.source.CandidateURLs()
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeTgApi).
			Errorf("failed to get candidate URLs: %v", err)
		return
	}

	admitted := 0
	for _, url := range urls {

		select {
		case <-ctx.Done():
			log.Infof("ingestion sweep canceled, %v of %v URLs handled", admitted, len(urls))
			return
		default:
		}

		if i.ProcessURL(ctx, url) {
			admitted++
		}
	}

	log.Infof("ingestion sweep handled %v URLs, admitted %v", len(urls), admitted)
}

// ProcessURL runs the admission pipeline for one candidate and reports
// whether a record was inserted. The seen-set mark deliberately comes after
// the insert (or after a terminal failure): a crash between the two costs at
// most one duplicate, which cleanup collapses later, and never a lost
// record.
func (i *Ingestor) ProcessURL(ctx context.Context, url string) bool {

	if i.seen.Contains(url) {
		metrics.SkippedSeenCounter.Inc()
		log.Debugf("url already processed, skipping: %v", url)
		return false
	}

	if i.hasJobForURL(ctx, url) {
		metrics.SkippedExistingCounter.Inc()
		log.Infof("job for url already exists in store, skipping: %v", url)
		i.markSeen(url)
		return false
	}

	job, err := i.scraper.GetJob(url)
	if err != nil {
		metrics.ScrapeFailuresCounter.Inc()
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeScrape).
			Errorf("failed to scrape %v: %v", url, err)
		i.markSeen(url)
		return false
	}

	if err = job.Validate(); err != nil {
		metrics.ScrapeFailuresCounter.Inc()
		log.Warnf("rejecting record for %v: %v", url, err)
		i.markSeen(url)
		return false
	}

	if err = i.store.Insert(ctx, job); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("failed to insert job for %v: %v", url, err)
		i.markSeen(url)
		return false
	}

	metrics.AdmittedJobsCounter.Inc()
	log.Infof("admitted job %v (%v)", job.Title, url)

	i.bus.Publish(events.JobAdmittedTopic, events.JobAdmitted{Job: *job})

	i.markSeen(url)
	return true
}

// hasJobForURL is the existence gate. A store failure counts as "does not
// exist": a duplicate admitted this way is cheap to purge later, while
// aborting the sweep would be expensive to recover. Positive answers are
// cached briefly to spare the store repeated lookups for links that keep
// reappearing in the channel.
func (i *Ingestor) hasJobForURL(ctx context.Context, url string) bool {

	if _, found := i.existing.Get(url); found {
		return true
	}

	records, err := i.store.GetBySourceLink(ctx, url)
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("existence check failed for url=%v: %v", url, err)
		return false
	}

	if len(records) == 0 {
		return false
	}

	if err = i.existing.Add(url, struct{}{}, gocache.DefaultExpiration); err != nil {
		log.Errorf("failed to cache existence result: %v", err)
	}
	return true
}

func (i *Ingestor) markSeen(url string) {
	if err := i.seen.Add(url); err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeSeenSet).
			Errorf("failed to mark url as processed: %v", err)
	}
}
