package main

import (
	"context"
	"testing"

	"github.com/free4fun/carbon-codex/config"
	"github.com/free4fun/carbon-codex/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedIsRepeatable(t *testing.T) {
	cfg := &config.Config{
		DBDriver:          config.DriverSQLite,
		DatabaseURL:       ":memory:",
		SeedAdminEmail:    "admin@example.com",
		SeedAdminPassword: "admin123",
	}
	db, err := config.InitDB(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	require.NoError(t, config.Migrate(db))

	ctx := context.Background()
	require.NoError(t, Seed(ctx, db, cfg))
	require.NoError(t, Seed(ctx, db, cfg))

	count := func(model interface{}) int64 {
		var n int64
		require.NoError(t, db.Model(model).Count(&n).Error)
		return n
	}
	assert.Equal(t, int64(1), count(&models.User{}))
	assert.Equal(t, int64(1), count(&models.Category{}))
	assert.Equal(t, int64(1), count(&models.Author{}))
	assert.Equal(t, int64(1), count(&models.PostGroup{}))
	assert.Equal(t, int64(2), count(&models.Post{}))
	assert.Equal(t, int64(1), count(&models.PostGroupTag{}))

	var posts []models.Post
	require.NoError(t, db.Order("locale").Find(&posts).Error)
	for _, p := range posts {
		assert.True(t, p.IsPublished(), p.Locale)
	}
}
