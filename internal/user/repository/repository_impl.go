package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tokenlens/tokenlens/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *domain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Where("id = ?", id).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var user domain.User
	err := db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB, filter domain.ListFilter) (int64, error) {
	var total int64
	err := applyFilter(db.WithContext(ctx).Model(&domain.User{}), filter).
		Distinct("id").
		Count(&total).Error
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (r *repo) ListPage(ctx context.Context, db *gorm.DB, filter domain.ListFilter, orderBy string, limit, offset int) ([]domain.User, error) {
	var users []domain.User
	err := applyFilter(db.WithContext(ctx).Model(&domain.User{}), filter).
		Order(orderBy).
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}

// DeleteCascade removes the user together with their tags, daily usage
// rows and model breakdowns in one transaction.
func (r *repo) DeleteCascade(ctx context.Context, db *gorm.DB, id snowflake.ID) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(
			`DELETE FROM model_breakdowns
			 WHERE daily_usage_id IN (SELECT id FROM daily_usages WHERE user_id = ?)`,
			id,
		).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM daily_usages WHERE user_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM tags WHERE user_id = ?`, id).Error; err != nil {
			return err
		}
		return tx.Exec(`DELETE FROM users WHERE id = ?`, id).Error
	})
}

func applyFilter(stmt *gorm.DB, filter domain.ListFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		stmt = stmt.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.UserIDs != nil {
		stmt = stmt.Where("id IN ?", filter.UserIDs)
	}
	return stmt
}
