package repositories

import (
	"context"

	"github.com/free4fun/carbon-codex/models"

	"gorm.io/gorm"
)

type TagRepository interface {
	GetBySlug(ctx context.Context, slug string) (*models.Tag, error)
	ListWithCounts(ctx context.Context, locale string) ([]models.TagListItem, error)
	CountWithPosts(ctx context.Context, locale string) (int64, error)
	ForGroups(ctx context.Context, groupIDs []uint) (map[uint][]models.TagRef, error)
	SlugsForGroup(ctx context.Context, groupID uint) ([]string, error)
}

type tagRepository struct {
	db *gorm.DB
}

func NewTagRepository(db *gorm.DB) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) GetBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var tag models.Tag
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&tag).Error
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// ListWithCounts returns tags having at least one published post in the
// locale, alphabetically.
func (r *tagRepository) ListWithCounts(ctx context.Context, locale string) ([]models.TagListItem, error) {
	query := `
		SELECT
			t.id,
			t.slug,
			t.name,
			COUNT(DISTINCT p.id) AS post_count
		FROM tags t
		JOIN post_group_tags pgt ON pgt.tag_id = t.id
		JOIN posts p ON p.group_id = pgt.group_id
			AND p.locale = ?
			AND p.draft = ?
			AND p.published_at IS NOT NULL
		GROUP BY t.id, t.slug, t.name
		HAVING COUNT(DISTINCT p.id) > 0
		ORDER BY LOWER(t.name) ASC, t.id ASC
	`

	var items []models.TagListItem
	err := r.db.WithContext(ctx).Raw(query, locale, false).Scan(&items).Error
	return items, err
}

func (r *tagRepository) CountWithPosts(ctx context.Context, locale string) (int64, error) {
	query := `
		SELECT COUNT(DISTINCT t.id)
		FROM tags t
		JOIN post_group_tags pgt ON pgt.tag_id = t.id
		JOIN posts p ON p.group_id = pgt.group_id
		WHERE p.locale = ? AND p.draft = ? AND p.published_at IS NOT NULL
	`

	var count int64
	err := r.db.WithContext(ctx).Raw(query, locale, false).Scan(&count).Error
	return count, err
}

func (r *tagRepository) ForGroups(ctx context.Context, groupIDs []uint) (map[uint][]models.TagRef, error) {
	tags := make(map[uint][]models.TagRef)
	if len(groupIDs) == 0 {
		return tags, nil
	}

	var results []struct {
		GroupID uint
		Slug    string
		Name    string
	}
	err := r.db.WithContext(ctx).Table("post_group_tags AS pgt").
		Select("pgt.group_id, t.slug, t.name").
		Joins("JOIN tags t ON t.id = pgt.tag_id").
		Where("pgt.group_id IN ?", groupIDs).
		Order("t.name").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	for _, result := range results {
		tags[result.GroupID] = append(tags[result.GroupID], models.TagRef{Slug: result.Slug, Name: result.Name})
	}
	return tags, nil
}

func (r *tagRepository) SlugsForGroup(ctx context.Context, groupID uint) ([]string, error) {
	var slugs []string
	err := r.db.WithContext(ctx).Table("post_group_tags AS pgt").
		Joins("JOIN tags t ON t.id = pgt.tag_id").
		Where("pgt.group_id = ?", groupID).
		Order("t.slug").
		Pluck("t.slug", &slugs).Error
	return slugs, err
}
