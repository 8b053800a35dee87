// Package domain contains persistence models and contracts for user tags.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Tag is one free-form label attached to a user. Uniqueness per
// (user_id, lower(name)) is enforced at the application layer; the raw
// index below only rejects exact-case duplicates.
type Tag struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	UserID    snowflake.ID `json:"user_id" gorm:"not null;uniqueIndex:ux_tags_user_name,priority:1"`
	Name      string       `json:"name" gorm:"type:text;not null;uniqueIndex:ux_tags_user_name,priority:2"`
	CreatedAt time.Time    `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (Tag) TableName() string { return "tags" }
