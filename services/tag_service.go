package services

import (
	"context"
	"errors"

	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/logger"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/repositories"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// TagService lists tags for the public site. Like ContentService it logs
// failures and returns empty results.
type TagService interface {
	GetTags(ctx context.Context, locale string) []models.TagListItem
	CountTags(ctx context.Context, locale string) int64
	GetTag(ctx context.Context, slug string) *models.Tag
}

type tagService struct {
	tagRepo repositories.TagRepository
	log     zerolog.Logger
}

func NewTagService(tagRepo repositories.TagRepository) TagService {
	return &tagService{
		tagRepo: tagRepo,
		log:     logger.Component("tags"),
	}
}

func (s *tagService) GetTags(ctx context.Context, locale string) []models.TagListItem {
	items, err := s.tagRepo.ListWithCounts(ctx, helper.SanitizeLocale(locale))
	if err != nil {
		s.log.Error().Err(err).Msg("list tags failed")
		return []models.TagListItem{}
	}
	if items == nil {
		items = []models.TagListItem{}
	}
	return items
}

func (s *tagService) CountTags(ctx context.Context, locale string) int64 {
	count, err := s.tagRepo.CountWithPosts(ctx, helper.SanitizeLocale(locale))
	if err != nil {
		s.log.Error().Err(err).Msg("count tags failed")
		return 0
	}
	return count
}

// GetTag returns nil when the tag does not exist.
func (s *tagService) GetTag(ctx context.Context, slug string) *models.Tag {
	tag, err := s.tagRepo.GetBySlug(ctx, helper.SanitizeSlug(slug))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error().Err(err).Str("slug", slug).Msg("get tag failed")
		}
		return nil
	}
	return tag
}
