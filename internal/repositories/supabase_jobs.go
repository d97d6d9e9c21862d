package repositories

import (
	"context"
	"strconv"

	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	supabase "github.com/nedpals/supabase-go"
	"github.com/pkg/errors"
)

const jobsTable = "jobs"

// SupabaseJobs persists job records in the shared Supabase project, which is
// the store all scraping environments write into.
type SupabaseJobs struct {
	client *supabase.Client
}

func NewSupabaseJobs(supabaseURL, supabaseKey string) (*SupabaseJobs, error) {
	if supabaseURL == "" || supabaseKey == "" {
		return nil, errors.New("supabase URL and key must be provided")
	}

	return &SupabaseJobs{client: supabase.CreateClient(supabaseURL, supabaseKey)}, nil
}

func (repo *SupabaseJobs) GetBySourceLink(ctx context.Context, link string) ([]models.Job, error) {

	var jobs []models.Job
	err := repo.client.DB.From(jobsTable).Select("*").Eq("source_link", link).
		ExecuteWithContext(ctx, &jobs)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}

func (repo *SupabaseJobs) Insert(ctx context.Context, job *models.Job) error {

	var inserted []models.Job
	err := repo.client.DB.From(jobsTable).Insert(*job).ExecuteWithContext(ctx, &inserted)
	if err != nil {
		return err
	}

	if len(inserted) > 0 {
		job.ID = inserted[0].ID
	}
	return nil
}

func (repo *SupabaseJobs) Delete(ctx context.Context, id int64) error {

	return repo.client.DB.From(jobsTable).Delete().Eq("id", strconv.FormatInt(id, 10)).
		ExecuteWithContext(ctx, nil)
}

func (repo *SupabaseJobs) GetAll(ctx context.Context) ([]models.Job, error) {

	var jobs []models.Job
	err := repo.client.DB.From(jobsTable).Select("*").ExecuteWithContext(ctx, &jobs)
	if err != nil {
		return nil, err
	}
	return jobs, nil
}
