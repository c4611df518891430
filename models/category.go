package models

type Category struct {
	ID           uint                  `json:"id" gorm:"primarykey"`
	Slug         string                `json:"slug" gorm:"uniqueIndex;not null"`
	Name         string                `json:"name" gorm:"not null"`
	Description  *string               `json:"description" gorm:"type:text"`
	ImageURL     *string               `json:"image_url" gorm:"column:image_url"`
	Translations []CategoryTranslation `json:"translations" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}

// CategoryTranslation overrides name and description for one locale.
type CategoryTranslation struct {
	ID          uint      `json:"-" gorm:"primarykey"`
	CategoryID  uint      `json:"-" gorm:"not null;uniqueIndex:category_translations_category_locale_idx"`
	Locale      string    `json:"locale" gorm:"size:8;not null;uniqueIndex:category_translations_category_locale_idx"`
	Name        string    `json:"name" gorm:"not null"`
	Description *string   `json:"description" gorm:"type:text"`
	Category    *Category `json:"-" gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE"`
}
