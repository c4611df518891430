package models

type Tag struct {
	ID   uint   `json:"id" gorm:"primarykey"`
	Slug string `json:"slug" gorm:"uniqueIndex;not null"`
	Name string `json:"name" gorm:"not null"`
}

// PostGroupTag links a group to a tag. Tags are shared by every locale of
// the group.
type PostGroupTag struct {
	GroupID uint       `json:"group_id" gorm:"primaryKey;autoIncrement:false"`
	TagID   uint       `json:"tag_id" gorm:"primaryKey;autoIncrement:false;index"`
	Group   *PostGroup `json:"-" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
	Tag     *Tag       `json:"-" gorm:"foreignKey:TagID;constraint:OnDelete:CASCADE"`
}
