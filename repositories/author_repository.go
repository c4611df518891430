package repositories

import (
	"context"

	"github.com/free4fun/carbon-codex/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AuthorRepository interface {
	List(ctx context.Context) ([]models.Author, error)
	GetByID(ctx context.Context, id uint) (*models.Author, error)
	SummaryBySlug(ctx context.Context, slug, locale string) (*models.AuthorSummary, error)
	SummaryByID(ctx context.Context, id uint, locale string) (*models.AuthorSummary, error)
	ListWithCounts(ctx context.Context, locale string) ([]models.AuthorListItem, error)
	Upsert(ctx context.Context, author *models.Author, translations []models.AuthorTranslation) error
	Update(ctx context.Context, author *models.Author, translations []models.AuthorTranslation) error
	Delete(ctx context.Context, id uint) error
}

type authorRepository struct {
	db *gorm.DB
}

func NewAuthorRepository(db *gorm.DB) AuthorRepository {
	return &authorRepository{db: db}
}

const authorSummaryColumns = `a.id, a.slug, a.name, COALESCE(tr.bio, a.bio) AS bio,
	a.avatar_url, a.website_url, a.linkedin_url, a.github_url, a.x_url`

func (r *authorRepository) localized(ctx context.Context, locale string) *gorm.DB {
	return r.db.WithContext(ctx).Table("authors AS a").
		Joins("LEFT JOIN author_translations tr ON tr.author_id = a.id AND tr.locale = ?", locale)
}

func (r *authorRepository) List(ctx context.Context) ([]models.Author, error) {
	var authors []models.Author
	err := r.db.WithContext(ctx).Preload("Translations").Order("name ASC").Find(&authors).Error
	return authors, err
}

func (r *authorRepository) GetByID(ctx context.Context, id uint) (*models.Author, error) {
	var author models.Author
	if err := r.db.WithContext(ctx).Preload("Translations").First(&author, id).Error; err != nil {
		return nil, err
	}
	return &author, nil
}

func (r *authorRepository) SummaryBySlug(ctx context.Context, slug, locale string) (*models.AuthorSummary, error) {
	return r.summary(r.localized(ctx, locale).Where("a.slug = ?", slug))
}

func (r *authorRepository) SummaryByID(ctx context.Context, id uint, locale string) (*models.AuthorSummary, error) {
	return r.summary(r.localized(ctx, locale).Where("a.id = ?", id))
}

func (r *authorRepository) summary(q *gorm.DB) (*models.AuthorSummary, error) {
	var rows []models.AuthorSummary
	if err := q.Select(authorSummaryColumns).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// ListWithCounts returns every author, including those without posts in
// the locale.
func (r *authorRepository) ListWithCounts(ctx context.Context, locale string) ([]models.AuthorListItem, error) {
	query := `
		SELECT
			a.id, a.slug, a.name, COALESCE(tr.bio, a.bio) AS bio,
			a.avatar_url, a.website_url, a.linkedin_url, a.github_url, a.x_url,
			COUNT(p.id) AS post_count
		FROM authors a
		LEFT JOIN author_translations tr ON tr.author_id = a.id AND tr.locale = ?
		LEFT JOIN post_groups g ON g.author_id = a.id
		LEFT JOIN posts p ON p.group_id = g.id
			AND p.locale = ?
			AND p.draft = ?
			AND p.published_at IS NOT NULL
		GROUP BY a.id, a.slug, a.name, tr.bio, a.bio, a.avatar_url, a.website_url, a.linkedin_url, a.github_url, a.x_url
		ORDER BY LOWER(a.name) ASC, a.id ASC
	`

	var items []models.AuthorListItem
	err := r.db.WithContext(ctx).Raw(query, locale, locale, false).Scan(&items).Error
	return items, err
}

// Upsert inserts the author or, when the slug exists, overwrites its fields.
// Translations are upserted per locale in the same transaction.
func (r *authorRepository) Upsert(ctx context.Context, author *models.Author, translations []models.AuthorTranslation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "bio", "avatar_url", "website_url", "linkedin_url", "github_url", "x_url"}),
		}).Create(author).Error
		if err != nil {
			return err
		}

		var stored models.Author
		if err := tx.Where("slug = ?", author.Slug).First(&stored).Error; err != nil {
			return err
		}
		author.ID = stored.ID
		author.CreatedAt = stored.CreatedAt

		return upsertAuthorTranslations(tx, author.ID, translations)
	})
}

func (r *authorRepository) Update(ctx context.Context, author *models.Author, translations []models.AuthorTranslation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Author{}).Where("id = ?", author.ID).Updates(map[string]interface{}{
			"slug":         author.Slug,
			"name":         author.Name,
			"bio":          author.Bio,
			"avatar_url":   author.AvatarURL,
			"website_url":  author.WebsiteURL,
			"linkedin_url": author.LinkedinURL,
			"github_url":   author.GithubURL,
			"x_url":        author.XURL,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return upsertAuthorTranslations(tx, author.ID, translations)
	})
}

// Delete detaches the author from its post groups before removing it.
func (r *authorRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PostGroup{}).Where("author_id = ?", id).Update("author_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("author_id = ?", id).Delete(&models.AuthorTranslation{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Author{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func upsertAuthorTranslations(tx *gorm.DB, authorID uint, translations []models.AuthorTranslation) error {
	for i := range translations {
		t := translations[i]
		t.ID = 0
		t.AuthorID = authorID
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "author_id"}, {Name: "locale"}},
			DoUpdates: clause.AssignmentColumns([]string{"bio"}),
		}).Create(&t).Error
		if err != nil {
			return err
		}
	}
	return nil
}
