package repositories

import (
	"context"
	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	"gorm.io/gorm"
)

type Jobs struct {
	db *gorm.DB
}

func NewJobsRepository(db *gorm.DB) *Jobs {
	return &Jobs{db: db}
}

func (repo *Jobs) GetBySourceLink(ctx context.Context, link string) ([]models.Job, error) {

	var jobs []models.Job
	if err := repo.db.WithContext(ctx).Find(&jobs, "source_link = ?", link).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}

func (repo *Jobs) Insert(ctx context.Context, job *models.Job) error {
	return repo.db.WithContext(ctx).Create(job).Error
}

func (repo *Jobs) Delete(ctx context.Context, id int64) error {
	return repo.db.WithContext(ctx).Delete(&models.Job{}, "id = ?", id).Error
}

func (repo *Jobs) GetAll(ctx context.Context) ([]models.Job, error) {

	var jobs []models.Job
	if err := repo.db.WithContext(ctx).Find(&jobs).Error; err != nil {
		return nil, err
	}
	return jobs, nil
}
