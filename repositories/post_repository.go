package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/free4fun/carbon-codex/models"

	"gorm.io/gorm"
)

// PostRow is a published post joined with its group, author and category.
type PostRow struct {
	ID               uint       `gorm:"column:id"`
	GroupID          uint       `gorm:"column:group_id"`
	Slug             string     `gorm:"column:slug"`
	Locale           string     `gorm:"column:locale"`
	Title            string     `gorm:"column:title"`
	Description      *string    `gorm:"column:description"`
	BodyMd           string     `gorm:"column:body_md"`
	ReadMinutes      *int       `gorm:"column:read_minutes"`
	PublishedAt      *time.Time `gorm:"column:published_at"`
	UpdatedAt        time.Time  `gorm:"column:updated_at"`
	CoverURL         *string    `gorm:"column:cover_url"`
	AuthorSlug       *string    `gorm:"column:author_slug"`
	AuthorName       *string    `gorm:"column:author_name"`
	AuthorAvatarURL  *string    `gorm:"column:author_avatar_url"`
	CategorySlug     *string    `gorm:"column:category_slug"`
	CategoryName     *string    `gorm:"column:category_name"`
	CategoryImageURL *string    `gorm:"column:category_image_url"`
}

const postRowColumns = `p.id, p.group_id, g.slug, p.locale, p.title, p.description, p.body_md,
	p.read_minutes, p.published_at, p.updated_at, g.cover_url,
	a.slug AS author_slug, a.name AS author_name, a.avatar_url AS author_avatar_url,
	c.slug AS category_slug, COALESCE(ct.name, c.name) AS category_name, c.image_url AS category_image_url`

// PostFilter narrows a published post query.
type PostFilter func(q *gorm.DB) *gorm.DB

type PostRepository interface {
	Latest(ctx context.Context, locale string, before *time.Time, limit int) ([]PostRow, error)
	Page(ctx context.Context, locale, displayLocale string, filter PostFilter, offset, limit int) ([]PostRow, int64, error)
	Search(ctx context.Context, locale, query string, offset, limit int) ([]PostRow, int64, error)
	Related(ctx context.Context, groupID uint, locale string, limit int) ([]PostRow, error)
	GetGroupBySlug(ctx context.Context, slug string) (*models.PostGroup, error)
	PublishedInGroup(ctx context.Context, groupID uint) ([]models.Post, error)
	SitemapEntries(ctx context.Context, limit int) ([]models.SitemapEntry, error)
	AdminList(ctx context.Context, params models.AdminPostListParams, before *time.Time, limit int) ([]models.AdminPostRow, error)
	AdminGet(ctx context.Context, id uint) (*models.Post, *models.PostGroup, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

// published selects published posts. An empty locale matches every locale;
// displayLocale picks the category translation.
func (r *postRepository) published(ctx context.Context, locale, displayLocale string) *gorm.DB {
	q := r.db.WithContext(ctx).Table("posts AS p").
		Joins("JOIN post_groups g ON g.id = p.group_id").
		Joins("LEFT JOIN authors a ON a.id = g.author_id").
		Joins("LEFT JOIN categories c ON c.id = g.category_id").
		Joins("LEFT JOIN category_translations ct ON ct.category_id = c.id AND ct.locale = ?", displayLocale).
		Where("p.draft = ? AND p.published_at IS NOT NULL", false)
	if locale != "" {
		q = q.Where("p.locale = ?", locale)
	}
	return q
}

func (r *postRepository) Latest(ctx context.Context, locale string, before *time.Time, limit int) ([]PostRow, error) {
	q := r.published(ctx, locale, locale)
	if before != nil {
		q = q.Where("p.published_at < ?", *before)
	}

	var rows []PostRow
	err := q.Select(postRowColumns).
		Order("p.published_at DESC").
		Order("p.id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *postRepository) Page(ctx context.Context, locale, displayLocale string, filter PostFilter, offset, limit int) ([]PostRow, int64, error) {
	if filter == nil {
		filter = func(q *gorm.DB) *gorm.DB { return q }
	}

	var total int64
	if err := filter(r.published(ctx, locale, displayLocale)).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []PostRow{}, 0, nil
	}

	var rows []PostRow
	err := filter(r.published(ctx, locale, displayLocale)).
		Select(postRowColumns).
		Order("p.published_at DESC").
		Order("p.id DESC").
		Offset(offset).
		Limit(limit).
		Scan(&rows).Error
	return rows, total, err
}

func InCategory(slug string) PostFilter {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("c.slug = ?", slug)
	}
}

func ByAuthor(slug string) PostFilter {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where("a.slug = ?", slug)
	}
}

func ByTag(slug string) PostFilter {
	return func(q *gorm.DB) *gorm.DB {
		return q.Where(`EXISTS (SELECT 1 FROM post_group_tags pgt
			JOIN tags t ON t.id = pgt.tag_id
			WHERE pgt.group_id = p.group_id AND t.slug = ?)`, slug)
	}
}

// OnePerGroup keeps a single locale per group, used when listing across
// locales.
func OnePerGroup() PostFilter {
	return func(q *gorm.DB) *gorm.DB {
		first := q.Session(&gorm.Session{NewDB: true}).Table("posts AS p2").
			Select("MIN(p2.id)").
			Where("p2.draft = ? AND p2.published_at IS NOT NULL", false).
			Group("p2.group_id")
		return q.Where("p.id IN (?)", first)
	}
}

func (r *postRepository) Search(ctx context.Context, locale, query string, offset, limit int) ([]PostRow, int64, error) {
	like := "%" + query + "%"
	filter := func(q *gorm.DB) *gorm.DB {
		if isPostgres(r.db) {
			return q.Where(`(p.tsv @@ plainto_tsquery('simple', ?)
				OR p.title ILIKE ? OR p.description ILIKE ? OR p.body_md ILIKE ?)`, query, like, like, like)
		}
		return q.Where("(p.title LIKE ? OR p.description LIKE ? OR p.body_md LIKE ?)", like, like, like)
	}
	return r.Page(ctx, locale, locale, filter, offset, limit)
}

func (r *postRepository) Related(ctx context.Context, groupID uint, locale string, limit int) ([]PostRow, error) {
	shared := r.db.Table("post_group_tags AS x").
		Select("y.group_id").
		Joins("JOIN post_group_tags y ON y.tag_id = x.tag_id").
		Where("x.group_id = ?", groupID)

	var rows []PostRow
	err := r.published(ctx, locale, locale).
		Where("p.group_id <> ? AND p.group_id IN (?)", groupID, shared).
		Select(postRowColumns).
		Order("p.published_at DESC").
		Order("p.id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *postRepository) GetGroupBySlug(ctx context.Context, slug string) (*models.PostGroup, error) {
	var group models.PostGroup
	err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&group).Error
	if err != nil {
		return nil, err
	}
	return &group, nil
}

func (r *postRepository) PublishedInGroup(ctx context.Context, groupID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).
		Where("group_id = ? AND draft = ? AND published_at IS NOT NULL", groupID, false).
		Order("id").
		Find(&posts).Error
	return posts, err
}

func (r *postRepository) SitemapEntries(ctx context.Context, limit int) ([]models.SitemapEntry, error) {
	var entries []models.SitemapEntry
	err := r.db.WithContext(ctx).Table("posts AS p").
		Select("g.slug AS slug, p.locale AS locale, p.updated_at AS updated_at").
		Joins("JOIN post_groups g ON g.id = p.group_id").
		Where("p.draft = ? AND p.published_at IS NOT NULL", false).
		Order("p.published_at DESC").
		Limit(limit).
		Scan(&entries).Error
	return entries, err
}

func (r *postRepository) AdminList(ctx context.Context, params models.AdminPostListParams, before *time.Time, limit int) ([]models.AdminPostRow, error) {
	q := r.db.WithContext(ctx).Table("posts AS p").
		Select("p.id, g.slug, p.title, p.locale, p.draft, p.published_at, p.updated_at").
		Joins("JOIN post_groups g ON g.id = p.group_id").
		Joins("LEFT JOIN categories c ON c.id = g.category_id")

	if params.Q != "" {
		q = q.Where("p.title "+likeOp(r.db)+" ?", "%"+params.Q+"%")
	}
	if params.Locale != "" {
		q = q.Where("p.locale = ?", params.Locale)
	}
	if params.Category != "" {
		q = q.Where("c.slug = ?", params.Category)
	}
	switch params.Draft {
	case "true":
		q = q.Where("p.draft = ?", true)
	case "false":
		q = q.Where("p.draft = ?", false)
	}
	if before != nil {
		q = q.Where("COALESCE(p.published_at, p.updated_at) < ?", *before)
	}

	var rows []models.AdminPostRow
	err := q.Order("COALESCE(p.published_at, p.updated_at) DESC").
		Order("p.id DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *postRepository) AdminGet(ctx context.Context, id uint) (*models.Post, *models.PostGroup, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Group").First(&post, id).Error; err != nil {
		return nil, nil, err
	}
	if post.Group == nil {
		return nil, nil, errors.New("post has no group")
	}
	return &post, post.Group, nil
}

func isPostgres(db *gorm.DB) bool {
	return db.Dialector.Name() == "postgres"
}

func likeOp(db *gorm.DB) string {
	if isPostgres(db) {
		return "ILIKE"
	}
	return "LIKE"
}
