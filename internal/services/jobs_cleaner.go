package services

import (
	"context"
	"sort"
	"time"

	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	"github.com/harbourapp/harbour-scraper/internal/logger"
	"github.com/harbourapp/harbour-scraper/internal/metrics"
	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/samber/lo"
)

type JobCleanupStore interface {
	GetAll(ctx context.Context) ([]models.Job, error)
	Delete(ctx context.Context, id int64) error
}

// JobsCleaner restores the one-record-per-source-link invariant the
// admission pipeline does not enforce, and expires old records. It scans the
// whole store; deletions are independent per record, so one failed delete
// never blocks the rest of the sweep.
type JobsCleaner struct {
	store            JobCleanupStore
	cron             *cron.Cron
	recentWindowDays int
	retentionDays    int
}

func NewJobsCleaner(store JobCleanupStore, recentWindowDays, retentionDays int) (*JobsCleaner, error) {

	if store == nil {
		return nil, errors.New("store is nil")
	}
	if recentWindowDays <= 0 {
		return nil, errors.New("recent window in days must be greater than zero")
	}
	if retentionDays <= recentWindowDays {
		return nil, errors.New("retention in days must be greater than the recent window")
	}

	jc := &JobsCleaner{
		store:            store,
		cron:             cron.New(),
		recentWindowDays: recentWindowDays,
		retentionDays:    retentionDays,
	}

	_, err := jc.cron.AddFunc("0 0 * * *", jc.runScheduledSweeps)
	if err != nil {
		return nil, err
	}

	jc.cron.Start()
	log.Infof("jobs cleaner started, recent window: %d days, retention: %d days",
		jc.recentWindowDays, jc.retentionDays)
	return jc, nil
}

func (jc *JobsCleaner) Stop() {
	jc.cron.Stop()
}

func (jc *JobsCleaner) runScheduledSweeps() {

	start := time.Now()

	deleted, failed, err := jc.RunPurgeCycle(context.Background())
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("purge cycle failed: %v", err)
	} else {
		log.Infof("purge cycle completed: deleted %v records, %v failures", deleted, failed)
	}

	deleted, failed, err = jc.RemoveExpired(context.Background())
	if err != nil {
		log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
			Errorf("retention sweep failed: %v", err)
	} else {
		log.Infof("retention sweep completed: deleted %v records, %v failures", deleted, failed)
	}

	metrics.PurgeDuration.Observe(time.Since(start).Seconds())
}

// RunPurgeCycle scans the store and deletes, in one pass: records posted
// within the recent window (not yet stabilized, expected to be re-ingested
// cleanly), and all but one record of every group sharing a non-empty source
// link. The survivor of a group is the earliest by (posted date, id), with
// unknown dates ordered after all known ones. Records with an empty source
// link are each their own group and are never collapsed.
func (jc *JobsCleaner) RunPurgeCycle(ctx context.Context) (deleted, failed int, err error) {

	jobs, err := jc.store.GetAll(ctx)
	if err != nil {
		return 0, 0, err
	}

	now := time.Now()
	cutoff := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -jc.recentWindowDays)
	log.Infof("purge cycle over %v records, recency cutoff %v", len(jobs), cutoff.Format(models.DateLayout))

	toDelete := make(map[int64]struct{})
	var settled []models.Job

	for _, job := range jobs {
		if date, known := job.PostedDate(); known && !date.Before(cutoff) {
			toDelete[job.ID] = struct{}{}
			continue
		}
		settled = append(settled, job)
	}
	log.Infof("%v records within the recent window marked for deletion", len(toDelete))

	linked := lo.Filter(settled, func(job models.Job, _ int) bool { return job.SourceLink != "" })
	groups := lo.GroupBy(linked, func(job models.Job) string { return job.SourceLink })

	duplicates := 0
	for link, group := range groups {
		if len(group) < 2 {
			continue
		}

		sort.Slice(group, func(a, b int) bool { return group[a].Precedes(group[b]) })

		log.Infof("source link %v has %v records, keeping %v", link, len(group), group[0].ID)
		for _, duplicate := range group[1:] {
			toDelete[duplicate.ID] = struct{}{}
			duplicates++
		}
	}
	log.Infof("%v records marked for deletion as duplicates", duplicates)

	deleted, failed = jc.deleteAll(ctx, toDelete)
	return deleted, failed, nil
}

// RemoveExpired deletes records whose posted date is older than the
// retention horizon, duplicates or not. Records with unknown dates are left
// alone; their age cannot be established.
func (jc *JobsCleaner) RemoveExpired(ctx context.Context) (deleted, failed int, err error) {

	jobs, err := jc.store.GetAll(ctx)
	if err != nil {
		return 0, 0, err
	}

	cutoff := time.Now().AddDate(0, 0, -jc.retentionDays)
	toDelete := make(map[int64]struct{})

	for _, job := range jobs {
		if date, known := job.PostedDate(); known && date.Before(cutoff) {
			toDelete[job.ID] = struct{}{}
		}
	}

	deleted, failed = jc.deleteAll(ctx, toDelete)
	return deleted, failed, nil
}

func (jc *JobsCleaner) deleteAll(ctx context.Context, ids map[int64]struct{}) (deleted, failed int) {

	for id := range ids {
		if err := jc.store.Delete(ctx, id); err != nil {
			failed++
			metrics.PurgeFailedDeletesCounter.Inc()
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDb).
				Errorf("failed to delete record %v: %v", id, err)
			continue
		}
		deleted++
		metrics.PurgeDeletedCounter.Inc()
		log.Debugf("deleted record %v", id)
	}

	return deleted, failed
}
