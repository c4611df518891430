package services

import (
	"context"

	"github.com/free4fun/carbon-codex/errs"
	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/logger"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/repositories"
)

type AuthorService interface {
	List(ctx context.Context) ([]models.Author, error)
	Get(ctx context.Context, id uint) (*models.Author, error)
	Create(ctx context.Context, req models.AuthorRequest) (*models.Author, error)
	Update(ctx context.Context, id uint, req models.AuthorRequest) (*models.Author, error)
	Delete(ctx context.Context, id uint) error
}

type authorService struct {
	authorRepo repositories.AuthorRepository
}

func NewAuthorService(authorRepo repositories.AuthorRepository) AuthorService {
	return &authorService{authorRepo: authorRepo}
}

func (s *authorService) List(ctx context.Context) ([]models.Author, error) {
	authors, err := s.authorRepo.List(ctx)
	if err != nil {
		return nil, errs.NewDatabaseError("list", "authors", err)
	}
	return authors, nil
}

func (s *authorService) Get(ctx context.Context, id uint) (*models.Author, error) {
	author, err := s.authorRepo.GetByID(ctx, id)
	if err != nil {
		return nil, errs.NewDatabaseError("get", "author", err)
	}
	return author, nil
}

// Create inserts the author or overwrites the one holding the same slug.
func (s *authorService) Create(ctx context.Context, req models.AuthorRequest) (*models.Author, error) {
	author, translations, err := authorFromRequest(req)
	if err != nil {
		return nil, err
	}
	if err := s.authorRepo.Upsert(ctx, author, translations); err != nil {
		return nil, errs.NewDatabaseError("save", "author", err)
	}
	log := logger.Component("authors")
	log.Info().Uint("author_id", author.ID).Str("slug", author.Slug).Msg("author saved")
	return s.Get(ctx, author.ID)
}

func (s *authorService) Update(ctx context.Context, id uint, req models.AuthorRequest) (*models.Author, error) {
	author, translations, err := authorFromRequest(req)
	if err != nil {
		return nil, err
	}
	author.ID = id
	if err := s.authorRepo.Update(ctx, author, translations); err != nil {
		return nil, errs.NewDatabaseError("update", "author", err)
	}
	return s.Get(ctx, id)
}

func (s *authorService) Delete(ctx context.Context, id uint) error {
	if err := s.authorRepo.Delete(ctx, id); err != nil {
		return errs.NewDatabaseError("delete", "author", err)
	}
	return nil
}

// authorFromRequest slugifies the slug and normalizes the profile links.
// Avatar URLs are kept as given since they may be root relative.
func authorFromRequest(req models.AuthorRequest) (*models.Author, []models.AuthorTranslation, error) {
	slug := helper.Slugify(req.Slug)
	if slug == "" {
		slug = helper.Slugify(req.Name)
	}
	if slug == "" {
		return nil, nil, errs.NewInvalidFieldError("slug", "must contain letters or digits")
	}

	author := &models.Author{
		Slug:        slug,
		Name:        req.Name,
		Bio:         helper.NullableString(req.Bio),
		AvatarURL:   helper.NullableString(req.AvatarURL),
		WebsiteURL:  helper.NormalizeURL(req.WebsiteURL),
		LinkedinURL: helper.NormalizeURL(req.LinkedinURL),
		GithubURL:   helper.NormalizeURL(req.GithubURL),
		XURL:        helper.NormalizeURL(req.XURL),
	}

	translations := make([]models.AuthorTranslation, 0, len(req.Translations))
	for _, t := range req.Translations {
		translations = append(translations, models.AuthorTranslation{
			Locale: t.Locale,
			Bio:    helper.NullableString(t.Bio),
		})
	}
	return author, translations, nil
}
