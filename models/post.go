package models

import "time"

// PostGroup is the locale independent identity of an article.
type PostGroup struct {
	ID         uint      `json:"id" gorm:"primarykey"`
	Slug       string    `json:"slug" gorm:"uniqueIndex;not null"`
	CategoryID *uint     `json:"category_id"`
	Category   *Category `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	AuthorID   *uint     `json:"author_id"`
	Author     *Author   `json:"author,omitempty" gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL"`
	CoverURL   *string   `json:"cover_url" gorm:"column:cover_url"`
	CreatedAt  time.Time `json:"created_at"`
}

// Post is the content of a group in one locale. A published post has
// Draft false and a non-nil PublishedAt.
type Post struct {
	ID          uint       `json:"id" gorm:"primarykey"`
	GroupID     uint       `json:"group_id" gorm:"not null;uniqueIndex:posts_group_locale_idx"`
	Locale      string     `json:"locale" gorm:"size:8;not null;uniqueIndex:posts_group_locale_idx"`
	Title       string     `json:"title" gorm:"not null"`
	Description *string    `json:"description" gorm:"type:text"`
	BodyMd      string     `json:"body_md" gorm:"type:text;not null"`
	ReadMinutes *int       `json:"read_minutes"`
	Draft       bool       `json:"draft" gorm:"not null"`
	PublishedAt *time.Time `json:"published_at" gorm:"index:posts_published_idx,where:draft = false"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Group       *PostGroup `json:"-" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// IsPublished reports whether the post is visible on the public site.
func (p *Post) IsPublished() bool {
	return !p.Draft && p.PublishedAt != nil
}
