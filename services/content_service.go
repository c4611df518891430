package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/free4fun/carbon-codex/helper"
	"github.com/free4fun/carbon-codex/logger"
	"github.com/free4fun/carbon-codex/markdown"
	"github.com/free4fun/carbon-codex/models"
	"github.com/free4fun/carbon-codex/repositories"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

const (
	RelatedLimit      = 6
	SearchLimit       = 24
	SitemapMaxEntries = 5000
)

// ContentService resolves published content for the public site. Every
// method normalizes its inputs and never returns a database error: failures
// are logged and turned into empty results.
type ContentService interface {
	GetPostBySlug(ctx context.Context, slug, locale string) *models.PostDetail
	LatestPosts(ctx context.Context, locale string, limit int, cursor string) models.CursorPage
	RelatedPosts(ctx context.Context, slug, locale string, limit int) []models.PostCard
	PostsByCategory(ctx context.Context, slug, locale string, offset, limit int) models.OffsetPage
	PostsByTag(ctx context.Context, slug, locale string, offset, limit int) models.OffsetPage
	PostsByAuthor(ctx context.Context, slug, locale string, offset, limit int) models.OffsetPage
	Search(ctx context.Context, locale, query string, offset, limit int) models.OffsetPage
	Categories(ctx context.Context, locale string) []models.CategoryListItem
	Category(ctx context.Context, slug, locale string) *models.CategorySummary
	Authors(ctx context.Context, locale string) []models.AuthorListItem
	Author(ctx context.Context, slug, locale string) *models.AuthorSummary
	SitemapEntries(ctx context.Context) []models.SitemapEntry
}

type contentService struct {
	postRepo     repositories.PostRepository
	tagRepo      repositories.TagRepository
	authorRepo   repositories.AuthorRepository
	categoryRepo repositories.CategoryRepository
	renderer     *markdown.Renderer
	log          zerolog.Logger
}

func NewContentService(
	postRepo repositories.PostRepository,
	tagRepo repositories.TagRepository,
	authorRepo repositories.AuthorRepository,
	categoryRepo repositories.CategoryRepository,
	renderer *markdown.Renderer,
) ContentService {
	return &contentService{
		postRepo:     postRepo,
		tagRepo:      tagRepo,
		authorRepo:   authorRepo,
		categoryRepo: categoryRepo,
		renderer:     renderer,
		log:          logger.Component("content"),
	}
}

func (s *contentService) fail(op string, err error) {
	s.log.Error().Err(err).Str("op", op).Msg("read failed, returning empty result")
}

// GetPostBySlug picks the requested locale, then English, then the first
// published locale of the group. Nil means not found.
func (s *contentService) GetPostBySlug(ctx context.Context, slug, locale string) *models.PostDetail {
	slug = helper.SanitizeSlug(slug)
	locale = helper.SanitizeLocale(locale)
	if slug == "" {
		return nil
	}

	group, err := s.postRepo.GetGroupBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.fail("get_post_by_slug", err)
		}
		return nil
	}

	posts, err := s.postRepo.PublishedInGroup(ctx, group.ID)
	if err != nil {
		s.fail("get_post_by_slug", err)
		return nil
	}
	chosen := choosePost(posts, locale)
	if chosen == nil {
		return nil
	}

	html, err := s.renderer.HTML(chosen.BodyMd)
	if err != nil {
		s.log.Warn().Err(err).Uint("post_id", chosen.ID).Msg("markdown render failed")
	}

	detail := &models.PostDetail{
		ID:              chosen.ID,
		GroupID:         group.ID,
		Slug:            group.Slug,
		Locale:          chosen.Locale,
		RequestedLocale: locale,
		Fallback:        chosen.Locale != locale,
		Title:           chosen.Title,
		Description:     chosen.Description,
		BodyMd:          chosen.BodyMd,
		BodyHTML:        html,
		CoverURL:        group.CoverURL,
		ReadMinutes:     s.renderer.ReadingMinutes(chosen.BodyMd, chosen.ReadMinutes),
		PublishedAt:     chosen.PublishedAt,
		UpdatedAt:       chosen.UpdatedAt,
		Tags:            []models.TagRef{},
		OtherLocales:    []string{},
	}
	for _, p := range posts {
		if p.Locale != chosen.Locale {
			detail.OtherLocales = append(detail.OtherLocales, p.Locale)
		}
	}

	if group.AuthorID != nil {
		if author, err := s.authorRepo.SummaryByID(ctx, *group.AuthorID, locale); err == nil {
			detail.Author = author
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.fail("get_post_author", err)
		}
	}
	if group.CategoryID != nil {
		if category, err := s.categoryRepo.SummaryByID(ctx, *group.CategoryID, locale); err == nil {
			detail.Category = category
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.fail("get_post_category", err)
		}
	}

	tags, err := s.tagRepo.ForGroups(ctx, []uint{group.ID})
	if err != nil {
		s.fail("get_post_tags", err)
	} else if t := tags[group.ID]; t != nil {
		detail.Tags = t
	}

	return detail
}

func choosePost(posts []models.Post, locale string) *models.Post {
	var en, first *models.Post
	for i := range posts {
		p := &posts[i]
		if !p.IsPublished() {
			continue
		}
		if p.Locale == locale {
			return p
		}
		if p.Locale == helper.LocaleEN && en == nil {
			en = p
		}
		if first == nil {
			first = p
		}
	}
	if en != nil {
		return en
	}
	return first
}

// LatestPosts pages by published_at descending. The cursor is the
// published_at of the last item of the previous page.
func (s *contentService) LatestPosts(ctx context.Context, locale string, limit int, cursor string) models.CursorPage {
	locale = helper.SanitizeLocale(locale)
	limit = clampLimit(limit, helper.DefaultLimit)
	page := models.CursorPage{Items: []models.PostCard{}}

	var before *time.Time
	if cursor != "" {
		t, err := ParseCursor(cursor)
		if err != nil {
			s.log.Warn().Str("cursor", cursor).Msg("invalid cursor")
			page.Degraded = true
			return page
		}
		before = &t
	}

	rows, err := s.postRepo.Latest(ctx, locale, before, limit)
	if err != nil {
		s.fail("latest_posts", err)
		page.Degraded = true
		return page
	}

	page.Items = s.cards(ctx, rows)
	if len(rows) == limit {
		last := rows[len(rows)-1]
		if last.PublishedAt != nil {
			next := FormatCursor(*last.PublishedAt)
			page.NextCursor = &next
		}
	}
	return page
}

func (s *contentService) RelatedPosts(ctx context.Context, slug, locale string, limit int) []models.PostCard {
	slug = helper.SanitizeSlug(slug)
	locale = helper.SanitizeLocale(locale)
	limit = clampLimit(limit, RelatedLimit)

	group, err := s.postRepo.GetGroupBySlug(ctx, slug)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.fail("related_posts", err)
		}
		return []models.PostCard{}
	}

	rows, err := s.postRepo.Related(ctx, group.ID, locale, limit)
	if err != nil {
		s.fail("related_posts", err)
		return []models.PostCard{}
	}
	return s.cards(ctx, rows)
}

// PostsByCategory tries the requested locale, then English, then any
// locale with one post per group, stopping at the first non-empty result.
func (s *contentService) PostsByCategory(ctx context.Context, slug, locale string, offset, limit int) models.OffsetPage {
	slug = helper.SanitizeSlug(slug)
	locale = helper.SanitizeLocale(locale)

	page := s.page(ctx, "posts_by_category", locale, locale, repositories.InCategory(slug), offset, limit)
	if page.Total > 0 || page.Degraded {
		return page
	}
	if locale != helper.LocaleEN {
		page = s.page(ctx, "posts_by_category", helper.LocaleEN, locale, repositories.InCategory(slug), offset, limit)
		if page.Total > 0 || page.Degraded {
			return page
		}
	}
	inCategory := repositories.InCategory(slug)
	onePerGroup := repositories.OnePerGroup()
	anyLocale := func(q *gorm.DB) *gorm.DB { return onePerGroup(inCategory(q)) }
	return s.page(ctx, "posts_by_category", "", locale, anyLocale, offset, limit)
}

func (s *contentService) PostsByTag(ctx context.Context, slug, locale string, offset, limit int) models.OffsetPage {
	slug = helper.SanitizeSlug(slug)
	locale = helper.SanitizeLocale(locale)
	return s.page(ctx, "posts_by_tag", locale, locale, repositories.ByTag(slug), offset, limit)
}

func (s *contentService) PostsByAuthor(ctx context.Context, slug, locale string, offset, limit int) models.OffsetPage {
	slug = helper.SanitizeSlug(slug)
	locale = helper.SanitizeLocale(locale)
	return s.page(ctx, "posts_by_author", locale, locale, repositories.ByAuthor(slug), offset, limit)
}

func (s *contentService) page(ctx context.Context, op, locale, displayLocale string, filter repositories.PostFilter, offset, limit int) models.OffsetPage {
	limit = clampLimit(limit, helper.DefaultLimit)
	if offset < 0 {
		offset = 0
	}

	rows, total, err := s.postRepo.Page(ctx, locale, displayLocale, filter, offset, limit)
	if err != nil {
		s.fail(op, err)
		return models.OffsetPage{Items: []models.PostCard{}, Degraded: true}
	}
	return models.OffsetPage{Items: s.cards(ctx, rows), Total: total}
}

func (s *contentService) Search(ctx context.Context, locale, query string, offset, limit int) models.OffsetPage {
	locale = helper.SanitizeLocale(locale)
	limit = clampLimit(limit, SearchLimit)
	if offset < 0 {
		offset = 0
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return models.OffsetPage{Items: []models.PostCard{}}
	}

	rows, total, err := s.postRepo.Search(ctx, locale, query, offset, limit)
	if err != nil {
		s.fail("search_posts", err)
		return models.OffsetPage{Items: []models.PostCard{}, Degraded: true}
	}
	return models.OffsetPage{Items: s.cards(ctx, rows), Total: total}
}

func (s *contentService) Categories(ctx context.Context, locale string) []models.CategoryListItem {
	items, err := s.categoryRepo.ListWithCounts(ctx, helper.SanitizeLocale(locale))
	if err != nil {
		s.fail("categories", err)
		return []models.CategoryListItem{}
	}
	if items == nil {
		items = []models.CategoryListItem{}
	}
	return items
}

func (s *contentService) Category(ctx context.Context, slug, locale string) *models.CategorySummary {
	category, err := s.categoryRepo.SummaryBySlug(ctx, helper.SanitizeSlug(slug), helper.SanitizeLocale(locale))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.fail("category", err)
		}
		return nil
	}
	return category
}

func (s *contentService) Authors(ctx context.Context, locale string) []models.AuthorListItem {
	items, err := s.authorRepo.ListWithCounts(ctx, helper.SanitizeLocale(locale))
	if err != nil {
		s.fail("authors", err)
		return []models.AuthorListItem{}
	}
	if items == nil {
		items = []models.AuthorListItem{}
	}
	return items
}

func (s *contentService) Author(ctx context.Context, slug, locale string) *models.AuthorSummary {
	author, err := s.authorRepo.SummaryBySlug(ctx, helper.SanitizeSlug(slug), helper.SanitizeLocale(locale))
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.fail("author", err)
		}
		return nil
	}
	return author
}

func (s *contentService) SitemapEntries(ctx context.Context) []models.SitemapEntry {
	entries, err := s.postRepo.SitemapEntries(ctx, SitemapMaxEntries)
	if err != nil {
		s.fail("sitemap", err)
		return []models.SitemapEntry{}
	}
	return entries
}

// cards converts rows and attaches the tags of every group in one query.
// A tag lookup failure leaves the cards without tags.
func (s *contentService) cards(ctx context.Context, rows []repositories.PostRow) []models.PostCard {
	cards := make([]models.PostCard, 0, len(rows))
	if len(rows) == 0 {
		return cards
	}

	ids := make([]uint, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.GroupID)
	}
	tags, err := s.tagRepo.ForGroups(ctx, ids)
	if err != nil {
		s.fail("post_tags", err)
		tags = map[uint][]models.TagRef{}
	}

	for _, r := range rows {
		card := models.PostCard{
			ID:          r.ID,
			GroupID:     r.GroupID,
			Slug:        r.Slug,
			Locale:      r.Locale,
			Title:       r.Title,
			Description: r.Description,
			CoverURL:    r.CoverURL,
			ReadMinutes: s.renderer.ReadingMinutes(r.BodyMd, r.ReadMinutes),
			PublishedAt: r.PublishedAt,
			Tags:        tags[r.GroupID],
		}
		if card.Tags == nil {
			card.Tags = []models.TagRef{}
		}
		if r.AuthorSlug != nil {
			card.Author = &models.AuthorRef{Slug: *r.AuthorSlug, AvatarURL: r.AuthorAvatarURL}
			if r.AuthorName != nil {
				card.Author.Name = *r.AuthorName
			}
		}
		if r.CategorySlug != nil {
			card.Category = &models.CategoryRef{Slug: *r.CategorySlug, ImageURL: r.CategoryImageURL}
			if r.CategoryName != nil {
				card.Category.Name = *r.CategoryName
			}
		}
		cards = append(cards, card)
	}
	return cards
}

// ParseCursor accepts RFC 3339 timestamps with or without fractional seconds.
func ParseCursor(cursor string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, cursor)
}

func FormatCursor(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func clampLimit(limit, def int) int {
	if limit < 1 {
		return def
	}
	if limit > helper.MaxLimit {
		return helper.MaxLimit
	}
	return limit
}
