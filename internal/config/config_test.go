package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func Test_Config_EnvironmentOverrideWorksCorrect(t *testing.T) {

	os.Setenv("MODE", "test")
	os.Setenv("TG_TOKEN", "overrideToken")
	os.Setenv("SEEN_FILE", "/tmp/override_seen.txt")
	os.Setenv("SCRAPE_INTERVAL", "3h")
	os.Setenv("DB_DRIVER", "sqlite")
	os.Setenv("DB_CONNECTION_STRING", "newConnectionString")
	os.Setenv("CLEANUP_RECENT_WINDOW_DAYS", "3")
	os.Setenv("CLEANUP_RETENTION_DAYS", "120")

	cfg := Get()

	assert.Equal(t, "overrideToken", cfg.Scraper.Token)
	assert.Equal(t, "/tmp/override_seen.txt", cfg.Scraper.SeenFile)
	assert.Equal(t, 3*time.Hour, cfg.Scraper.ScrapeInterval)
	assert.Equal(t, DriverSqlite, cfg.DB.Driver)
	assert.Equal(t, "newConnectionString", cfg.DB.ConnectionString)
	assert.Equal(t, 3, cfg.Cleanup.RecentWindowDays)
	assert.Equal(t, 120, cfg.Cleanup.RetentionDays)
	assert.NotEmpty(t, cfg.Scraper.AllowedDomains)
}

func Test_CleanupConfig_Validation(t *testing.T) {

	assert.NoError(t, CleanupConfig{RecentWindowDays: 2, RetentionDays: 90}.validate())
	assert.Error(t, CleanupConfig{RecentWindowDays: 0, RetentionDays: 90}.validate())
	assert.Error(t, CleanupConfig{RecentWindowDays: 5, RetentionDays: 5}.validate())
}

func Test_DBConfig_Validation(t *testing.T) {

	assert.NoError(t, DBConfig{Driver: DriverSqlite, ConnectionString: "jobs.db"}.validate())
	assert.Error(t, DBConfig{Driver: DriverSqlite}.validate())

	assert.NoError(t, DBConfig{
		Driver:      DriverSupabase,
		SupabaseURL: "https://example.supabase.co",
		SupabaseKey: "key",
	}.validate())
	assert.Error(t, DBConfig{Driver: DriverSupabase, SupabaseURL: "https://example.supabase.co"}.validate())

	assert.Error(t, DBConfig{Driver: "postgres"}.validate())
}
