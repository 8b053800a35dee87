package repository

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tokenlens/tokenlens/internal/usage/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) UpsertDay(ctx context.Context, db *gorm.DB, row *domain.DailyUsage) error {
	return db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"input_tokens",
			"output_tokens",
			"cache_creation_tokens",
			"cache_read_tokens",
			"total_tokens",
			"total_cost",
			"updated_at",
		}),
	}).Create(row).Error
}

// FindDayID re-reads the row id after an upsert: on conflict the store
// keeps the original id, not the one on the inserted candidate.
func (r *repo) FindDayID(ctx context.Context, db *gorm.DB, userID snowflake.ID, date string) (snowflake.ID, error) {
	var ids []int64
	err := db.WithContext(ctx).Raw(
		`SELECT id FROM daily_usages WHERE user_id = ? AND date = ?`,
		userID,
		date,
	).Scan(&ids).Error
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}
	return snowflake.ID(ids[0]), nil
}

func (r *repo) DeleteBreakdowns(ctx context.Context, db *gorm.DB, dailyUsageID snowflake.ID) error {
	return db.WithContext(ctx).Exec(
		`DELETE FROM model_breakdowns WHERE daily_usage_id = ?`,
		dailyUsageID,
	).Error
}

func (r *repo) InsertBreakdowns(ctx context.Context, db *gorm.DB, rows []domain.ModelBreakdown) error {
	if len(rows) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&rows).Error
}

func (r *repo) ListRange(ctx context.Context, db *gorm.DB, q domain.ListQuery) ([]domain.UsageRow, error) {
	var (
		conds []string
		args  []any
	)
	if q.StartDate != "" {
		conds = append(conds, "d.date >= ?")
		args = append(args, q.StartDate)
	}
	if q.EndDate != "" {
		conds = append(conds, "d.date <= ?")
		args = append(args, q.EndDate)
	}
	if q.Username != "" {
		conds = append(conds, "u.username = ?")
		args = append(args, q.Username)
	}
	if q.UserIDs != nil {
		conds = append(conds, "d.user_id IN ?")
		args = append(args, q.UserIDs)
	}

	query := `SELECT d.id, d.date, u.username,
		d.input_tokens, d.output_tokens, d.cache_creation_tokens, d.cache_read_tokens,
		d.total_tokens, d.total_cost
	 FROM daily_usages d
	 JOIN users u ON u.id = d.user_id`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY d.date DESC, u.username ASC"

	var rows []domain.UsageRow
	if err := db.WithContext(ctx).Raw(query, args...).Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repo) BreakdownsForDay(ctx context.Context, db *gorm.DB, dailyUsageID snowflake.ID) ([]domain.ModelBreakdown, error) {
	var rows []domain.ModelBreakdown
	err := db.WithContext(ctx).Raw(
		`SELECT id, daily_usage_id, model, provider,
			input_tokens, output_tokens, cache_creation_tokens, cache_read_tokens,
			cost, created_at
		 FROM model_breakdowns WHERE daily_usage_id = ? ORDER BY model ASC, provider ASC`,
		dailyUsageID,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}
