package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ListQuery is the repository-level predicate for the stats read path.
// Empty StartDate/EndDate means no date bound; a nil UserIDs means no tag
// filter (an empty non-nil slice never reaches the repository).
type ListQuery struct {
	StartDate string
	EndDate   string
	Username  string
	UserIDs   []snowflake.ID
}

// UsageRow is one daily usage row joined to its owner's username,
// carrying the stored day totals.
type UsageRow struct {
	ID                  snowflake.ID
	Date                string
	Username            string
	InputTokens         int64
	OutputTokens        int64
	CacheCreationTokens int64
	CacheReadTokens     int64
	TotalTokens         int64
	TotalCost           decimal.Decimal
}

type Repository interface {
	// UpsertDay inserts the row or, on (user_id, date) conflict, overwrites
	// the numeric fields and updated_at of the existing row.
	UpsertDay(ctx context.Context, db *gorm.DB, row *DailyUsage) error

	// FindDayID returns the id of the stored (user, date) row, 0 if absent.
	FindDayID(ctx context.Context, db *gorm.DB, userID snowflake.ID, date string) (snowflake.ID, error)

	DeleteBreakdowns(ctx context.Context, db *gorm.DB, dailyUsageID snowflake.ID) error
	InsertBreakdowns(ctx context.Context, db *gorm.DB, rows []ModelBreakdown) error

	// ListRange fetches matching rows joined to usernames, newest date first.
	ListRange(ctx context.Context, db *gorm.DB, q ListQuery) ([]UsageRow, error)
	BreakdownsForDay(ctx context.Context, db *gorm.DB, dailyUsageID snowflake.ID) ([]ModelBreakdown, error)
}
