package models

import "time"

// Tag is a shared taxonomy entry. Tags are not owned by anyone; any
// authenticated account may create or edit them. The set of articles carrying
// a tag is derived by reverse lookup, never stored on the tag itself.
//
// Tags are hard-deleted: a soft-delete marker would keep the unique name
// index occupied and block re-creation under the same name.
type Tag struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"unique;not null" json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
