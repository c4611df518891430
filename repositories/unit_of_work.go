package repositories

import (
	"context"
	"errors"

	"github.com/free4fun/carbon-codex/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostTx is the set of writes a post mutation performs inside one
// transaction.
type PostTx interface {
	UpsertGroup(group *models.PostGroup) error
	GetGroup(id uint) (*models.PostGroup, error)
	SetGroupCover(id uint, cover *string) error
	GetPost(id uint) (*models.Post, error)
	// FindPostByGroupLocale returns nil without error when the locale is free.
	FindPostByGroupLocale(groupID uint, locale string) (*models.Post, error)
	CreatePost(post *models.Post) error
	SavePost(post *models.Post) error
	DeletePost(id uint) error
	CountGroupPosts(groupID uint) (int64, error)
	DeleteGroup(id uint) error
	ReplaceGroupTags(groupID uint, slugs []string) error
}

type UnitOfWork interface {
	Do(ctx context.Context, fn func(tx PostTx) error) error
}

type unitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &unitOfWork{db: db}
}

func (u *unitOfWork) Do(ctx context.Context, fn func(tx PostTx) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&postTx{tx: tx})
	})
}

type postTx struct {
	tx *gorm.DB
}

// UpsertGroup inserts the group or overwrites category, author and cover of
// the group holding the same slug. group.ID is set to the stored row.
func (t *postTx) UpsertGroup(group *models.PostGroup) error {
	group.ID = 0
	err := t.tx.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		DoUpdates: clause.AssignmentColumns([]string{"category_id", "author_id", "cover_url"}),
	}).Create(group).Error
	if err != nil {
		return err
	}

	var stored models.PostGroup
	if err := t.tx.Where("slug = ?", group.Slug).First(&stored).Error; err != nil {
		return err
	}
	*group = stored
	return nil
}

func (t *postTx) GetGroup(id uint) (*models.PostGroup, error) {
	var group models.PostGroup
	if err := t.tx.First(&group, id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

func (t *postTx) SetGroupCover(id uint, cover *string) error {
	return t.tx.Model(&models.PostGroup{}).Where("id = ?", id).Update("cover_url", cover).Error
}

func (t *postTx) GetPost(id uint) (*models.Post, error) {
	var post models.Post
	if err := t.tx.First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (t *postTx) FindPostByGroupLocale(groupID uint, locale string) (*models.Post, error) {
	var post models.Post
	err := t.tx.Where("group_id = ? AND locale = ?", groupID, locale).First(&post).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (t *postTx) CreatePost(post *models.Post) error {
	return t.tx.Omit(clause.Associations).Create(post).Error
}

// SavePost replaces every column of an existing post.
func (t *postTx) SavePost(post *models.Post) error {
	return t.tx.Omit(clause.Associations).Save(post).Error
}

func (t *postTx) DeletePost(id uint) error {
	res := t.tx.Delete(&models.Post{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (t *postTx) CountGroupPosts(groupID uint) (int64, error) {
	var count int64
	err := t.tx.Model(&models.Post{}).Where("group_id = ?", groupID).Count(&count).Error
	return count, err
}

// DeleteGroup removes tag links and remaining posts before the group row.
func (t *postTx) DeleteGroup(id uint) error {
	if err := t.tx.Where("group_id = ?", id).Delete(&models.PostGroupTag{}).Error; err != nil {
		return err
	}
	if err := t.tx.Where("group_id = ?", id).Delete(&models.Post{}).Error; err != nil {
		return err
	}
	return t.tx.Delete(&models.PostGroup{}, id).Error
}

// ReplaceGroupTags clears the group's links and re-inserts one per slug.
// Missing tags are created with the slug as name.
func (t *postTx) ReplaceGroupTags(groupID uint, slugs []string) error {
	if err := t.tx.Where("group_id = ?", groupID).Delete(&models.PostGroupTag{}).Error; err != nil {
		return err
	}

	for _, slug := range slugs {
		tag := models.Tag{Slug: slug, Name: slug}
		err := t.tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "slug"}},
			DoNothing: true,
		}).Create(&tag).Error
		if err != nil {
			return err
		}

		var stored models.Tag
		if err := t.tx.Where("slug = ?", slug).First(&stored).Error; err != nil {
			return err
		}

		link := models.PostGroupTag{GroupID: groupID, TagID: stored.ID}
		err = t.tx.Omit(clause.Associations).Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error
		if err != nil {
			return err
		}
	}
	return nil
}
