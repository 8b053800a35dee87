package domain

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Defaults applied to breakdown entries that omit the field.
const (
	DefaultModel    = "unknown"
	DefaultProvider = "anthropic"
)

// Report is the daily-usage payload produced by the ccusage CLI. Only the
// daily array is required; every numeric field defaults to zero.
type Report struct {
	Daily []DailyReport `json:"daily"`
}

// DailyReport is one day's totals plus an optional per-model breakdown.
type DailyReport struct {
	Date                string          `json:"date"`
	InputTokens         int64           `json:"inputTokens"`
	OutputTokens        int64           `json:"outputTokens"`
	CacheCreationTokens int64           `json:"cacheCreationTokens"`
	CacheReadTokens     int64           `json:"cacheReadTokens"`
	TotalTokens         int64           `json:"totalTokens"`
	TotalCost           decimal.Decimal `json:"totalCost"`
	ModelBreakdowns     []ModelReport   `json:"modelBreakdowns"`
}

// ModelReport is one model's share of a day in the incoming payload.
type ModelReport struct {
	ModelName           string          `json:"modelName"`
	Provider            string          `json:"provider"`
	InputTokens         int64           `json:"inputTokens"`
	OutputTokens        int64           `json:"outputTokens"`
	CacheCreationTokens int64           `json:"cacheCreationTokens"`
	CacheReadTokens     int64           `json:"cacheReadTokens"`
	Cost                decimal.Decimal `json:"cost"`
}

// ParseReport decodes a raw payload and rejects anything that is not an
// object carrying a daily array.
func ParseReport(raw []byte) (Report, error) {
	var report Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return Report{}, fmt.Errorf("%w: %v", ErrInvalidFormat, err)
	}
	if report.Daily == nil {
		return Report{}, fmt.Errorf("%w: missing daily array", ErrInvalidFormat)
	}
	return report, nil
}
