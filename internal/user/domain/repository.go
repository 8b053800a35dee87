package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error)
	Count(ctx context.Context, db *gorm.DB, filter ListFilter) (int64, error)
	ListPage(ctx context.Context, db *gorm.DB, filter ListFilter, orderBy string, limit, offset int) ([]User, error)
	DeleteCascade(ctx context.Context, db *gorm.DB, id snowflake.ID) error
}
