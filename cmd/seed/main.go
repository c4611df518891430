// Command seed creates the admin user and a small bilingual sample post.
// Running it again updates the same rows.
package main

import (
	"context"
	"errors"
	"time"

	"github.com/free4fun/carbon-codex/config"
	"github.com/free4fun/carbon-codex/logger"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/repositories"
	"github.com/free4fun/carbon-codex/services"

	"gorm.io/gorm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Get().Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init(cfg.Env)
	log := logger.Component("seed")

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}
	if err := config.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("database migration failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := Seed(ctx, db, cfg); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
	log.Info().Str("admin", cfg.SeedAdminEmail).Msg("seed complete")
}

// Seed upserts the admin, a category, an author and the hello-world post
// in English and Spanish.
func Seed(ctx context.Context, db *gorm.DB, cfg *config.Config) error {
	authService := services.NewAuthService(repositories.NewUserRepository(db))
	if _, err := authService.EnsureAdmin(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword); err != nil {
		return err
	}

	category, err := services.NewCategoryService(repositories.NewCategoryRepository(db)).Create(ctx, models.CategoryRequest{
		Name:        "General",
		Description: "Notes and announcements.",
		Translations: []models.CategoryTranslationInput{
			{Locale: "es", Name: "General", Description: "Notas y anuncios."},
		},
	})
	if err != nil {
		return err
	}

	author, err := services.NewAuthorService(repositories.NewAuthorRepository(db)).Create(ctx, models.AuthorRequest{
		Slug: "staff",
		Name: "Staff",
		Bio:  "The editorial team.",
		Translations: []models.AuthorTranslationInput{
			{Locale: "es", Bio: "El equipo editorial."},
		},
	})
	if err != nil {
		return err
	}

	postRepo := repositories.NewPostRepository(db)
	tagRepo := repositories.NewTagRepository(db)
	posts := services.NewPostService(repositories.NewUnitOfWork(db), postRepo, tagRepo, nil)
	published := false

	samples := []models.PostRequest{
		{
			Locale:      "en",
			Title:       "Hello, world",
			Description: "The first post.",
			BodyMd:      "# Hello\n\nWelcome to the blog.",
		},
		{
			Locale:      "es",
			Title:       "Hola, mundo",
			Description: "La primera entrada.",
			BodyMd:      "# Hola\n\nBienvenidos al blog.",
		},
	}
	for _, req := range samples {
		req.Slug = "hello-world"
		req.CategoryID = &category.ID
		req.AuthorID = &author.ID
		req.Tags = "intro"
		req.Draft = &published

		if err := upsertSample(ctx, db, posts, req); err != nil {
			return err
		}
	}
	return nil
}

// upsertSample updates the existing locale row instead of tripping the
// create conflict.
func upsertSample(ctx context.Context, db *gorm.DB, posts services.PostService, req models.PostRequest) error {
	var existing models.Post
	err := db.WithContext(ctx).
		Joins("JOIN post_groups ON post_groups.id = posts.group_id").
		Where("post_groups.slug = ? AND posts.locale = ?", req.Slug, req.Locale).
		First(&existing).Error
	if err == nil {
		_, err = posts.Update(ctx, existing.ID, req)
		return err
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	_, err = posts.Create(ctx, req)
	return err
}
