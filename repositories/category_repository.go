package repositories

import (
	"context"

	"github.com/free4fun/carbon-codex/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CategoryRepository interface {
	List(ctx context.Context) ([]models.Category, error)
	GetByID(ctx context.Context, id uint) (*models.Category, error)
	SummaryBySlug(ctx context.Context, slug, locale string) (*models.CategorySummary, error)
	SummaryByID(ctx context.Context, id uint, locale string) (*models.CategorySummary, error)
	ListWithCounts(ctx context.Context, locale string) ([]models.CategoryListItem, error)
	Upsert(ctx context.Context, category *models.Category, translations []models.CategoryTranslation) error
	Update(ctx context.Context, category *models.Category, translations []models.CategoryTranslation) error
	Delete(ctx context.Context, id uint) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

const categorySummaryColumns = `c.id, c.slug, COALESCE(tr.name, c.name) AS name,
	COALESCE(tr.description, c.description) AS description, c.image_url`

func (r *categoryRepository) localized(ctx context.Context, locale string) *gorm.DB {
	return r.db.WithContext(ctx).Table("categories AS c").
		Joins("LEFT JOIN category_translations tr ON tr.category_id = c.id AND tr.locale = ?", locale)
}

func (r *categoryRepository) List(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).Preload("Translations").Order("name ASC").Find(&categories).Error
	return categories, err
}

func (r *categoryRepository) GetByID(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).Preload("Translations").First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) SummaryBySlug(ctx context.Context, slug, locale string) (*models.CategorySummary, error) {
	return r.summary(r.localized(ctx, locale).Where("c.slug = ?", slug))
}

func (r *categoryRepository) SummaryByID(ctx context.Context, id uint, locale string) (*models.CategorySummary, error) {
	return r.summary(r.localized(ctx, locale).Where("c.id = ?", id))
}

func (r *categoryRepository) summary(q *gorm.DB) (*models.CategorySummary, error) {
	var rows []models.CategorySummary
	if err := q.Select(categorySummaryColumns).Limit(1).Scan(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &rows[0], nil
}

// ListWithCounts returns every category with the number of published posts
// in the locale, sorted by display name.
func (r *categoryRepository) ListWithCounts(ctx context.Context, locale string) ([]models.CategoryListItem, error) {
	query := `
		SELECT
			c.id, c.slug,
			COALESCE(tr.name, c.name) AS name,
			COALESCE(tr.description, c.description) AS description,
			c.image_url,
			COUNT(p.id) AS post_count
		FROM categories c
		LEFT JOIN category_translations tr ON tr.category_id = c.id AND tr.locale = ?
		LEFT JOIN post_groups g ON g.category_id = c.id
		LEFT JOIN posts p ON p.group_id = g.id
			AND p.locale = ?
			AND p.draft = ?
			AND p.published_at IS NOT NULL
		GROUP BY c.id, c.slug, tr.name, c.name, tr.description, c.description, c.image_url
		ORDER BY LOWER(COALESCE(tr.name, c.name)) ASC, c.id ASC
	`

	var items []models.CategoryListItem
	err := r.db.WithContext(ctx).Raw(query, locale, locale, false).Scan(&items).Error
	return items, err
}

func (r *categoryRepository) Upsert(ctx context.Context, category *models.Category, translations []models.CategoryTranslation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description", "image_url"}),
		}).Create(category).Error
		if err != nil {
			return err
		}

		var stored models.Category
		if err := tx.Where("slug = ?", category.Slug).First(&stored).Error; err != nil {
			return err
		}
		category.ID = stored.ID

		return upsertCategoryTranslations(tx, category.ID, translations)
	})
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category, translations []models.CategoryTranslation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Category{}).Where("id = ?", category.ID).Updates(map[string]interface{}{
			"slug":        category.Slug,
			"name":        category.Name,
			"description": category.Description,
			"image_url":   category.ImageURL,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return upsertCategoryTranslations(tx, category.ID, translations)
	})
}

// Delete detaches the category from its post groups before removing it.
func (r *categoryRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.PostGroup{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Where("category_id = ?", id).Delete(&models.CategoryTranslation{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Category{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func upsertCategoryTranslations(tx *gorm.DB, categoryID uint, translations []models.CategoryTranslation) error {
	for i := range translations {
		t := translations[i]
		t.ID = 0
		t.CategoryID = categoryID
		err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "category_id"}, {Name: "locale"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "description"}),
		}).Create(&t).Error
		if err != nil {
			return err
		}
	}
	return nil
}
