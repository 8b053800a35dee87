package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	ReplaceForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, tags []Tag) error
	ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]Tag, error)
	ListByUsers(ctx context.Context, db *gorm.DB, userIDs []snowflake.ID) ([]Tag, error)
	DeleteByName(ctx context.Context, db *gorm.DB, userID snowflake.ID, loweredName string) error
	UserIDsWithAll(ctx context.Context, db *gorm.DB, loweredNames []string) ([]snowflake.ID, error)
	AllNames(ctx context.Context, db *gorm.DB) ([]string, error)
}
