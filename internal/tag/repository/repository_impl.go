package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tokenlens/tokenlens/internal/tag/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

// ReplaceForUser swaps the user's entire tag set inside one transaction.
// An empty slice clears all tags for the user.
func (r *repo) ReplaceForUser(ctx context.Context, db *gorm.DB, userID snowflake.ID, tags []domain.Tag) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM tags WHERE user_id = ?`, userID).Error; err != nil {
			return err
		}
		if len(tags) == 0 {
			return nil
		}
		return tx.Create(&tags).Error
	})
}

func (r *repo) ListByUser(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]domain.Tag, error) {
	var tags []domain.Tag
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, created_at FROM tags WHERE user_id = ?`,
		userID,
	).Scan(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *repo) ListByUsers(ctx context.Context, db *gorm.DB, userIDs []snowflake.ID) ([]domain.Tag, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	var tags []domain.Tag
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, name, created_at FROM tags WHERE user_id IN ? ORDER BY name ASC`,
		userIDs,
	).Scan(&tags).Error
	if err != nil {
		return nil, err
	}
	return tags, nil
}

func (r *repo) DeleteByName(ctx context.Context, db *gorm.DB, userID snowflake.ID, loweredName string) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM tags WHERE user_id = ? AND LOWER(name) = ?`,
		userID,
		loweredName,
	).Error
}

// UserIDsWithAll returns the users whose lowercased tag set contains every
// requested name: group by user and keep groups matching the full set.
func (r *repo) UserIDsWithAll(ctx context.Context, db *gorm.DB, loweredNames []string) ([]snowflake.ID, error) {
	if len(loweredNames) == 0 {
		return nil, nil
	}
	var ids []int64
	err := db.WithContext(ctx).Raw(
		`SELECT user_id FROM tags
		 WHERE LOWER(name) IN ?
		 GROUP BY user_id
		 HAVING COUNT(DISTINCT LOWER(name)) = ?`,
		loweredNames,
		len(loweredNames),
	).Scan(&ids).Error
	if err != nil {
		return nil, err
	}
	out := make([]snowflake.ID, 0, len(ids))
	for _, id := range ids {
		out = append(out, snowflake.ID(id))
	}
	return out, nil
}

func (r *repo) AllNames(ctx context.Context, db *gorm.DB) ([]string, error) {
	var names []string
	err := db.WithContext(ctx).Raw(
		`SELECT DISTINCT name FROM tags`,
	).Scan(&names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}
