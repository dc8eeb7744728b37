package models

import (
	"time"

	"gorm.io/gorm"
)

// Article is an owned piece of content. AuthorID is set at creation and never
// changes afterwards. The tag set lives in the article_tags join table; rows
// there must always point at an existing tag.
type Article struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Title     string         `gorm:"not null" json:"title"`
	Content   string         `gorm:"type:text;not null" json:"content"`
	AuthorID  uint           `gorm:"not null;index" json:"author_id"`
	Author    *Account       `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Tags      []Tag          `gorm:"many2many:article_tags" json:"tags"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TagIDs returns the ids of the currently associated tags.
func (a *Article) TagIDs() []uint {
	ids := make([]uint, 0, len(a.Tags))
	for _, t := range a.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}
