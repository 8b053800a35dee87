package domain

import (
	"context"
	"errors"
)

// Period tags carried by a stats response.
const (
	PeriodCustom = "custom"
	PeriodAll    = "all"
)

// DateLayout is the wire and storage format for usage dates.
const DateLayout = "2006-01-02"

// QueryFilter narrows a stats query. Zero values mean "no filter" for
// Username and Model; Tags use AND semantics and an empty slice is no
// filter at all.
type QueryFilter struct {
	Username string   `json:"username"`
	Model    string   `json:"model"`
	Tags     []string `json:"tags"`
}

// ModelStat is one model's share of a returned day.
type ModelStat struct {
	Name                     string  `json:"name"`
	Provider                 string  `json:"provider"`
	Cost                     float64 `json:"cost"`
	InputTokens              int64   `json:"inputTokens"`
	OutputTokens             int64   `json:"outputTokens"`
	CacheCreationInputTokens int64   `json:"cacheCreationInputTokens"`
	CacheReadInputTokens     int64   `json:"cacheReadInputTokens"`
}

// StatsRow is one user-day in a stats response. When a model filter is in
// effect the totals are recomputed from the surviving breakdown rows and
// the stored day totals are discarded.
type StatsRow struct {
	Date                     string      `json:"date"`
	Username                 string      `json:"username"`
	TotalCost                float64     `json:"totalCost"`
	TotalTokens              int64       `json:"totalTokens"`
	InputTokens              int64       `json:"inputTokens"`
	OutputTokens             int64       `json:"outputTokens"`
	CacheCreationInputTokens int64       `json:"cacheCreationInputTokens"`
	CacheReadInputTokens     int64       `json:"cacheReadInputTokens"`
	Models                   []ModelStat `json:"models"`
}

// Summary aggregates a filtered result set. Never persisted.
type Summary struct {
	TotalCost   float64 `json:"totalCost"`
	TotalTokens int64   `json:"totalTokens"`
	UniqueUsers int     `json:"uniqueUsers"`
	TotalDays   int     `json:"totalDays"`
}

type StatsResponse struct {
	Period    string     `json:"period"`
	StartDate string     `json:"startDate,omitempty"`
	EndDate   string     `json:"endDate,omitempty"`
	Stats     []StatsRow `json:"stats"`
	Summary   Summary    `json:"summary"`
}

// Service ingests daily usage reports and answers filtered stats queries.
type Service interface {
	// Merge validates a raw ccusage payload and merges each dated entry
	// into storage for an existing user. Each day commits independently.
	Merge(ctx context.Context, username string, raw []byte) error

	// QueryRange answers a date-bounded stats query (period "custom").
	QueryRange(ctx context.Context, startDate, endDate string, filter QueryFilter) (StatsResponse, error)

	// QueryAll answers an unbounded stats query (period "all").
	QueryAll(ctx context.Context, filter QueryFilter) (StatsResponse, error)
}

var (
	ErrInvalidFormat = errors.New("Invalid ccusage format")
	ErrInvalidDate   = errors.New("invalid date")
)
