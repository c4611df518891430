package services

import (
	"context"

	"github.com/free4fun/carbon-codex/errs"
	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/logger"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/repositories"
)

type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Get(ctx context.Context, id uint) (*models.Category, error)
	Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error)
	Update(ctx context.Context, id uint, req models.CategoryRequest) (*models.Category, error)
	Delete(ctx context.Context, id uint) error
}

type categoryService struct {
	categoryRepo repositories.CategoryRepository
}

func NewCategoryService(categoryRepo repositories.CategoryRepository) CategoryService {
	return &categoryService{categoryRepo: categoryRepo}
}

func (s *categoryService) List(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "categories", err)
	}
	return categories, nil
}

func (s *categoryService) Get(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("get", "category", err)
	}
	return category, nil
}

// Create derives the slug from the name; an existing category with that
// slug is overwritten.
func (s *categoryService) Create(ctx context.Context, req models.CategoryRequest) (*models.Category, error) {
	category, translations, err := categoryFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Upsert(ctx, category, translations); err != nil {
		return nil, errs.NewDatabaseError("save", "category", err)
	}
	log := logger.Component("categories")
	log.Info().Uint("category_id", category.ID).Str("slug", category.Slug).Msg("category saved")
	return s.Get(ctx, category.ID)
}

func (s *categoryService) Update(ctx context.Context, id uint, req models.CategoryRequest) (*models.Category, error) {
	category, translations, err := categoryFromRequest(req)
	if err != nil {
		return nil, err
	}
	category.ID = id
	if err := s.categoryRepo.Update(ctx, category, translations); err != nil {
		return nil, errs.NewDatabaseError("update", "category", err)
	}
	return s.Get(ctx, id)
}

func (s *categoryService) Delete(ctx context.Context, id uint) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		return errs.NewDatabaseError("delete", "category", err)
	}
	return nil
}

func categoryFromRequest(req models.CategoryRequest) (*models.Category, []models.CategoryTranslation, error) {
	slug := helper.Slugify(req.Name)
	if slug == "" {
		return nil, nil, errs.NewInvalidFieldError("name", "must contain letters or digits")
	}

	category := &models.Category{
		Slug:        slug,
		Name:        req.Name,
		Description: helper.NullableString(req.Description),
		ImageURL:    helper.NullableString(req.ImageURL),
	}

	translations := make([]models.CategoryTranslation, 0, len(req.Translations))
	for _, t := range req.Translations {
		translations = append(translations, models.CategoryTranslation{
			Locale:      t.Locale,
			Name:        t.Name,
			Description: helper.NullableString(t.Description),
		})
	}
	return category, translations, nil
}
