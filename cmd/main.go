package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/asaskevich/EventBus"
	"github.com/harbourapp/harbour-scraper/internal/clients/jobpage"
	"github.com/harbourapp/harbour-scraper/internal/clients/onesignal"
	"github.com/harbourapp/harbour-scraper/internal/clients/telegram"
	"github.com/harbourapp/harbour-scraper/internal/config"
	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	"github.com/harbourapp/harbour-scraper/internal/logger"
	"github.com/harbourapp/harbour-scraper/internal/metrics"
	"github.com/harbourapp/harbour-scraper/internal/repositories"
	"github.com/harbourapp/harbour-scraper/internal/seenset"
	"github.com/harbourapp/harbour-scraper/internal/services"
	log "github.com/sirupsen/logrus"
)

type jobStore interface {
	GetBySourceLink(ctx context.Context, link string) ([]models.Job, error)
	Insert(ctx context.Context, job *models.Job) error
	Delete(ctx context.Context, id int64) error
	GetAll(ctx context.Context) ([]models.Job, error)
}

func newStore(cfg config.DBConfig) (jobStore, func()) {

	if cfg.Driver == config.DriverSupabase {
		store, err := repositories.NewSupabaseJobs(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			log.Fatalf("can't create supabase store: %v", err)
		}
		return store, func() {}
	}

	dbContext, err := repositories.NewDbContext(cfg.ConnectionString)
	if err != nil {
		log.Fatalf("can't create db context: %v", err)
	}

	if err = dbContext.Migrate(); err != nil {
		log.Fatalf("can't migrate db context: %v", err)
	}

	return repositories.NewJobsRepository(dbContext.DB), func() { _ = dbContext.Close() }
}

func runIngestion(ctx context.Context, cfg *config.Config, store jobStore,
	seen *seenset.FileSet, bus EventBus.Bus) {

	source, err := telegram.NewSource(cfg.Scraper.Token, cfg.Scraper.AllowedDomains)
	if err != nil {
		log.Fatalf("can't create channel source: %v", err)
	}

	pageClient := jobpage.NewClient()
	if cfg.Scraper.MaxRequestsPerSecond > 0 {
		pageClient.SetRateLimit(cfg.Scraper.MaxRequestsPerSecond)
	}

	ingestor, err := services.NewIngestor(bus, source, pageClient, store, seen, cfg.Scraper.ScrapeInterval)
	if err != nil {
		log.Fatalf("can't create ingestor: %v", err)
	}
	go ingestor.Run(ctx)
}

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Get()

	logger.Setup(cfg.Logger)
	defer logger.Cleanup()

	metrics.StartMetricsServer()

	store, closeStore := newStore(cfg.DB)
	defer closeStore()

	seen, err := seenset.Open(cfg.Scraper.SeenFile)
	if err != nil {
		log.Fatalf("can't open seen set: %v", err)
	}
	defer func() { _ = seen.Close() }()

	bus := EventBus.New()

	if cfg.Push.Enabled {
		pushClient, err := onesignal.NewClient(cfg.Push.AppID, cfg.Push.APIKey)
		if err != nil {
			log.Fatalf("can't create push client: %v", err)
		}
		if _, err = services.NewNotifyService(bus, pushClient); err != nil {
			log.Fatalf("can't create notify service: %v", err)
		}
	}

	cleaner, err := services.NewJobsCleaner(store, cfg.Cleanup.RecentWindowDays, cfg.Cleanup.RetentionDays)
	if err != nil {
		log.Fatalf("can't create cleaner: %v", err)
	}
	defer cleaner.Stop()

	runIngestion(ctx, cfg, store, seen, bus)

	<-ctx.Done()

	log.Info("Shutting down services...")
}
