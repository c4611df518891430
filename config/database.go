package config

import (
	"fmt"
	"time"

	"github.com/free4fun/carbon-codex/logger"
	"github.com/free4fun/carbon-codex/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB opens the configured database.
func InitDB(cfg *Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DatabaseURL)
	default:
		dialector = postgres.Open(cfg.DatabaseURL)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:  logger.Gorm(200 * time.Millisecond),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", cfg.DBDriver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}
	if cfg.DBDriver == DriverSQLite {
		// one writer avoids "database is locked" under concurrent requests
		sqlDB.SetMaxOpenConns(1)
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return db, nil
}

// Migrate creates or updates the schema. On Postgres it also installs the
// generated full-text column and its GIN index.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.Author{},
		&models.AuthorTranslation{},
		&models.Category{},
		&models.CategoryTranslation{},
		&models.Tag{},
		&models.PostGroup{},
		&models.Post{},
		&models.PostGroupTag{},
	)
	if err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	if db.Dialector.Name() != DriverPostgres {
		return nil
	}

	statements := []string{
		`ALTER TABLE posts ADD COLUMN IF NOT EXISTS tsv tsvector
			GENERATED ALWAYS AS (to_tsvector('simple', coalesce(title, '') || ' ' || coalesce(body_md, ''))) STORED`,
		`CREATE INDEX IF NOT EXISTS posts_tsv_idx ON posts USING GIN (tsv)`,
	}
	for _, stmt := range statements {
		if err := db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("postgres migration: %w", err)
		}
	}
	return nil
}
