// Package domain contains persistence models and contracts for daily usage.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// DailyUsage is one user's aggregate usage for one calendar day. The
// (user_id, date) pair is the upsert key: at most one row per user per day.
// Date is stored as "YYYY-MM-DD" so range predicates compare lexicographically.
type DailyUsage struct {
	ID                  snowflake.ID    `json:"id" gorm:"primaryKey"`
	UserID              snowflake.ID    `json:"user_id" gorm:"not null;uniqueIndex:ux_daily_usages_user_date,priority:1"`
	Date                string          `json:"date" gorm:"type:varchar(10);not null;uniqueIndex:ux_daily_usages_user_date,priority:2"`
	InputTokens         int64           `json:"input_tokens" gorm:"not null"`
	OutputTokens        int64           `json:"output_tokens" gorm:"not null"`
	CacheCreationTokens int64           `json:"cache_creation_tokens" gorm:"not null"`
	CacheReadTokens     int64           `json:"cache_read_tokens" gorm:"not null"`
	TotalTokens         int64           `json:"total_tokens" gorm:"not null"`
	TotalCost           decimal.Decimal `json:"total_cost" gorm:"type:decimal(12,4);not null"`
	CreatedAt           time.Time       `json:"created_at" gorm:"not null"`
	UpdatedAt           time.Time       `json:"updated_at" gorm:"not null"`
}

// TableName sets the database table name.
func (DailyUsage) TableName() string { return "daily_usages" }

// ModelBreakdown is the slice of one day's usage attributable to a single
// model+provider pair. The breakdown set for a day is only ever replaced
// whole, inside the same transaction as the DailyUsage upsert.
type ModelBreakdown struct {
	ID                  snowflake.ID    `json:"id" gorm:"primaryKey"`
	DailyUsageID        snowflake.ID    `json:"daily_usage_id" gorm:"not null;index:ix_model_breakdowns_daily_usage"`
	Model               string          `json:"model" gorm:"type:text;not null"`
	Provider            string          `json:"provider" gorm:"type:text;not null"`
	InputTokens         int64           `json:"input_tokens" gorm:"not null"`
	OutputTokens        int64           `json:"output_tokens" gorm:"not null"`
	CacheCreationTokens int64           `json:"cache_creation_tokens" gorm:"not null"`
	CacheReadTokens     int64           `json:"cache_read_tokens" gorm:"not null"`
	Cost                decimal.Decimal `json:"cost" gorm:"type:decimal(12,4);not null"`
	CreatedAt           time.Time       `json:"created_at" gorm:"not null"`
}

// TableName sets the database table name.
func (ModelBreakdown) TableName() string { return "model_breakdowns" }
