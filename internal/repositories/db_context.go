package repositories

import (
	"fmt"
	"github.com/glebarez/sqlite"
	"github.com/harbourapp/harbour-scraper/internal/domain/models"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type DbContext struct {
	DB *gorm.DB
}

func NewDbContext(connectionString string) (*DbContext, error) {
	db, err := gorm.Open(sqlite.Open(connectionString), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Error),
	})
	if err != nil {
		return nil, err
	}

	return &DbContext{DB: db}, nil
}

func (c *DbContext) Migrate() error {
	err := c.DB.AutoMigrate(models.Job{})
	if err != nil {
		return fmt.Errorf("failed to migrate Job entity: %w", err)
	}

	// source_link is deliberately NOT unique: concurrent environments may
	// admit the same posting twice and cleanup collapses the group later.
	if err = c.DB.Exec("CREATE INDEX IF NOT EXISTS idx_jobs_source_link ON jobs (source_link);").
		Error; err != nil {
		return fmt.Errorf("failed to create source link index: %w", err)
	}

	return nil
}

func (c *DbContext) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return err
	}

	return db.Close()
}
