// Package domain contains persistence models and contracts for users.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// User owns tags and daily usage rows; both are removed with the user.
type User struct {
	ID        snowflake.ID      `json:"id" gorm:"primaryKey"`
	Username  string            `json:"username" gorm:"type:text;not null;uniqueIndex:ux_users_username"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"created_at" gorm:"not null"`
	UpdatedAt time.Time         `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (User) TableName() string { return "users" }
