package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tokenlens/tokenlens/internal/usage/domain"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Merge validates the raw payload, resolves the target user (ingestion
// never auto-creates users) and merges each dated entry. Every day is its
// own transaction: a failure on a later day leaves earlier days committed.
func (s *Service) Merge(ctx context.Context, username string, raw []byte) error {
	report, err := domain.ParseReport(raw)
	if err != nil {
		return err
	}

	user, err := s.userSvc.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return err
	}

	days := 0
	for _, day := range report.Daily {
		date := strings.TrimSpace(day.Date)
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			continue
		}
		day.Date = date
		if err := s.mergeDay(ctx, user.ID, day); err != nil {
			return fmt.Errorf("merge day %s: %w", date, err)
		}
		days++
	}

	s.metrics.AddReportIngested(user.Username)
	s.metrics.AddDaysUpserted(user.Username, days)
	s.log.Info("usage report merged",
		zap.String("username", user.Username),
		zap.Int("days", days),
	)
	return nil
}

// mergeDay upserts the day row and replaces its breakdown set atomically.
// The upsert keeps the original row id on conflict, so the id is re-read
// before the breakdowns are rewritten.
func (s *Service) mergeDay(ctx context.Context, userID snowflake.ID, day domain.DailyReport) error {
	now := s.clock.Now()
	row := domain.DailyUsage{
		ID:                  s.genID.Generate(),
		UserID:              userID,
		Date:                day.Date,
		InputTokens:         day.InputTokens,
		OutputTokens:        day.OutputTokens,
		CacheCreationTokens: day.CacheCreationTokens,
		CacheReadTokens:     day.CacheReadTokens,
		TotalTokens:         day.TotalTokens,
		TotalCost:           day.TotalCost,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.UpsertDay(ctx, tx, &row); err != nil {
			return err
		}
		dayID, err := s.repo.FindDayID(ctx, tx, userID, day.Date)
		if err != nil {
			return err
		}
		if err := s.repo.DeleteBreakdowns(ctx, tx, dayID); err != nil {
			return err
		}

		breakdowns := make([]domain.ModelBreakdown, 0, len(day.ModelBreakdowns))
		for _, m := range day.ModelBreakdowns {
			model := strings.TrimSpace(m.ModelName)
			if model == "" {
				model = domain.DefaultModel
			}
			provider := strings.TrimSpace(m.Provider)
			if provider == "" {
				provider = domain.DefaultProvider
			}
			breakdowns = append(breakdowns, domain.ModelBreakdown{
				ID:                  s.genID.Generate(),
				DailyUsageID:        dayID,
				Model:               model,
				Provider:            provider,
				InputTokens:         m.InputTokens,
				OutputTokens:        m.OutputTokens,
				CacheCreationTokens: m.CacheCreationTokens,
				CacheReadTokens:     m.CacheReadTokens,
				Cost:                m.Cost,
				CreatedAt:           now,
			})
		}
		return s.repo.InsertBreakdowns(ctx, tx, breakdowns)
	})
}
