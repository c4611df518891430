package config

import (
	"testing"
	"time"

	"github.com/free4fun/carbon-codex/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromViperDefaults(t *testing.T) {
	vp := newViper()
	vp.Set("DB_PASSWORD", "pw")

	cfg, err := FromViper(vp)
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, "host=localhost port=5432 user=postgres password=pw dbname=carbon_codex sslmode=disable", cfg.DatabaseURL)
	assert.Equal(t, StorageLocal, cfg.StorageDriver)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiration)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	vp := newViper()
	vp.Set("DB_DRIVER", "SQLite")
	vp.Set("SITE_URL", "https://blog.example.com/")
	vp.Set("CORS_ORIGINS", "https://a.example.com, ,https://b.example.com")
	vp.Set("JWT_SECRET", "test-secret")
	vp.Set("JWT_EXPIRATION", "2h")

	cfg, err := FromViper(vp)
	require.NoError(t, err)
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "carbon-codex.db", cfg.DatabaseURL)
	assert.Equal(t, "https://blog.example.com", cfg.SiteURL)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, []byte("test-secret"), JWTSecret)
	assert.Equal(t, 2*time.Hour, JWTExpiration)
}

func TestFromViperRejectsBadSettings(t *testing.T) {
	vp := newViper()
	vp.Set("DB_DRIVER", "mysql")
	_, err := FromViper(vp)
	assert.Error(t, err)

	vp = newViper()
	vp.Set("STORAGE_DRIVER", StorageS3)
	_, err = FromViper(vp)
	assert.ErrorContains(t, err, "S3_BUCKET")

	vp = newViper()
	vp.Set("APP_ENV", "production")
	vp.Set("JWT_SECRET", "")
	_, err = FromViper(vp)
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestMigrateSQLite(t *testing.T) {
	db, err := InitDB(&Config{DBDriver: DriverSQLite, DatabaseURL: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	require.NoError(t, Migrate(db))

	for _, model := range []interface{}{
		&models.User{}, &models.Author{}, &models.AuthorTranslation{},
		&models.Category{}, &models.CategoryTranslation{}, &models.Tag{},
		&models.PostGroup{}, &models.Post{}, &models.PostGroupTag{},
	} {
		assert.True(t, db.Migrator().HasTable(model))
	}

	// a post cannot point at a missing group
	err = db.Create(&models.Post{GroupID: 42, Locale: "en", Title: "x", BodyMd: "x"}).Error
	assert.Error(t, err)
}
