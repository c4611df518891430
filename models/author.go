package models

import "time"

type Author struct {
	ID           uint                `json:"id" gorm:"primarykey"`
	Slug         string              `json:"slug" gorm:"uniqueIndex;not null"`
	Name         string              `json:"name" gorm:"not null"`
	Bio          *string             `json:"bio" gorm:"type:text"`
	AvatarURL    *string             `json:"avatar_url" gorm:"column:avatar_url"`
	WebsiteURL   *string             `json:"website_url" gorm:"column:website_url"`
	LinkedinURL  *string             `json:"linkedin_url" gorm:"column:linkedin_url"`
	GithubURL    *string             `json:"github_url" gorm:"column:github_url"`
	XURL         *string             `json:"x_url" gorm:"column:x_url"`
	Translations []AuthorTranslation `json:"translations" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time           `json:"created_at"`
}

// AuthorTranslation overrides the bio for one locale.
type AuthorTranslation struct {
	ID       uint    `json:"-" gorm:"primarykey"`
	AuthorID uint    `json:"-" gorm:"not null;uniqueIndex:author_translations_author_locale_idx"`
	Locale   string  `json:"locale" gorm:"size:8;not null;uniqueIndex:author_translations_author_locale_idx"`
	Bio      *string `json:"bio" gorm:"type:text"`
	Author   *Author `json:"-" gorm:"foreignKey:AuthorID;constraint:OnDelete:CASCADE"`
}
