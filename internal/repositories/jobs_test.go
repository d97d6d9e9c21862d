package repositories

import (
	"context"
	"testing"

	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

func newTestRepository(t *testing.T) *Jobs {

	dbContext, err := NewDbContext(":memory:")
	assert.NoError(t, err)
	assert.NoError(t, dbContext.Migrate())

	t.Cleanup(func() { _ = dbContext.Close() })
	return NewJobsRepository(dbContext.DB)
}

func Test_Jobs_InsertAndGetBySourceLink(t *testing.T) {

	assert := assert.New(t)
	repo := newTestRepository(t)
	ctx := context.Background()

	job := models.Job{
		Title:      "Acme Technologies | Software Engineer",
		Company:    "Acme Technologies",
		JobTitle:   "Software Engineer",
		SourceLink: "https://fresheropenings.com/acme-hiring/",
		DatePosted: "2024-03-05",
	}

	assert.NoError(repo.Insert(ctx, &job))
	assert.NotZero(job.ID)

	found, err := repo.GetBySourceLink(ctx, job.SourceLink)
	assert.NoError(err)
	assert.Len(found, 1)
	assert.Equal(job.Company, found[0].Company)

	missing, err := repo.GetBySourceLink(ctx, "https://fresheropenings.com/other/")
	assert.NoError(err)
	assert.Empty(missing)
}

func Test_Jobs_AllowsDuplicateSourceLinks(t *testing.T) {

	repo := newTestRepository(t)
	ctx := context.Background()

	link := "https://fresheropenings.com/acme-hiring/"
	first := models.Job{Company: "Acme", SourceLink: link}
	second := models.Job{Company: "Acme", SourceLink: link}

	assert.NoError(t, repo.Insert(ctx, &first))
	assert.NoError(t, repo.Insert(ctx, &second))

	found, err := repo.GetBySourceLink(ctx, link)
	assert.NoError(t, err)
	assert.Len(t, found, 2)
}

func Test_Jobs_Delete(t *testing.T) {

	repo := newTestRepository(t)
	ctx := context.Background()

	job := models.Job{Company: "Acme", SourceLink: "https://fresheropenings.com/acme-hiring/"}
	assert.NoError(t, repo.Insert(ctx, &job))

	assert.NoError(t, repo.Delete(ctx, job.ID))

	all, err := repo.GetAll(ctx)
	assert.NoError(t, err)
	assert.Empty(t, all)

	// deleting an already absent record is not an error
	assert.NoError(t, repo.Delete(ctx, job.ID))
}
