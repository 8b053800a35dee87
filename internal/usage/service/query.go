package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tokenlens/tokenlens/internal/usage/domain"
)

func (s *Service) QueryRange(ctx context.Context, startDate, endDate string, filter domain.QueryFilter) (domain.StatsResponse, error) {
	for _, date := range []string{startDate, endDate} {
		if _, err := time.Parse(domain.DateLayout, date); err != nil {
			return domain.StatsResponse{}, fmt.Errorf("%w: %q", domain.ErrInvalidDate, date)
		}
	}
	return s.query(ctx, domain.PeriodCustom, startDate, endDate, filter)
}

func (s *Service) QueryAll(ctx context.Context, filter domain.QueryFilter) (domain.StatsResponse, error) {
	return s.query(ctx, domain.PeriodAll, "", "", filter)
}

// query is the shared read path: resolve the tag filter, fetch the
// candidate day rows, then walk each row's breakdowns applying the model
// filter and building the summary.
func (s *Service) query(ctx context.Context, period, startDate, endDate string, filter domain.QueryFilter) (domain.StatsResponse, error) {
	s.metrics.AddUsageQuery(period)

	resp := domain.StatsResponse{
		Period:    period,
		StartDate: startDate,
		EndDate:   endDate,
		Stats:     make([]domain.StatsRow, 0),
	}

	listQuery := domain.ListQuery{
		StartDate: startDate,
		EndDate:   endDate,
		Username:  strings.TrimSpace(filter.Username),
	}
	if len(filter.Tags) > 0 {
		ids, err := s.tagSvc.ResolveUsersWithAllTags(ctx, filter.Tags)
		if err != nil {
			return domain.StatsResponse{}, err
		}
		if len(ids) == 0 {
			return resp, nil
		}
		listQuery.UserIDs = ids
	}

	rows, err := s.repo.ListRange(ctx, s.db, listQuery)
	if err != nil {
		return domain.StatsResponse{}, fmt.Errorf("list usage: %w", err)
	}

	// A malformed "provider/" filter leaves wantModel empty; it still
	// counts as a filter and matches no breakdown row.
	modelFilter := strings.TrimSpace(filter.Model)
	wantProvider, wantModel := splitModelFilter(modelFilter)
	hasModelFilter := modelFilter != ""

	totalCost := decimal.Zero
	var totalTokens int64
	users := make(map[string]struct{})
	dates := make(map[string]struct{})

	for _, row := range rows {
		breakdowns, err := s.repo.BreakdownsForDay(ctx, s.db, row.ID)
		if err != nil {
			return domain.StatsResponse{}, fmt.Errorf("list breakdowns: %w", err)
		}

		stat := domain.StatsRow{
			Date:                     row.Date,
			Username:                 row.Username,
			TotalTokens:              row.TotalTokens,
			InputTokens:              row.InputTokens,
			OutputTokens:             row.OutputTokens,
			CacheCreationInputTokens: row.CacheCreationTokens,
			CacheReadInputTokens:     row.CacheReadTokens,
			Models:                   make([]domain.ModelStat, 0, len(breakdowns)),
		}
		rowCost := row.TotalCost

		if hasModelFilter {
			// The stored day totals no longer describe the filtered set:
			// recompute everything from the surviving breakdown rows.
			cost := decimal.Zero
			var in, out, cacheCreate, cacheRead int64
			for _, b := range breakdowns {
				if b.Model != wantModel {
					continue
				}
				if wantProvider != "" && b.Provider != wantProvider {
					continue
				}
				stat.Models = append(stat.Models, toModelStat(b))
				cost = cost.Add(b.Cost)
				in += b.InputTokens
				out += b.OutputTokens
				cacheCreate += b.CacheCreationTokens
				cacheRead += b.CacheReadTokens
			}
			if len(stat.Models) == 0 {
				continue
			}
			rowCost = cost
			stat.InputTokens = in
			stat.OutputTokens = out
			stat.CacheCreationInputTokens = cacheCreate
			stat.CacheReadInputTokens = cacheRead
			stat.TotalTokens = in + out + cacheCreate + cacheRead
		} else {
			for _, b := range breakdowns {
				stat.Models = append(stat.Models, toModelStat(b))
			}
		}

		stat.TotalCost = rowCost.InexactFloat64()
		totalCost = totalCost.Add(rowCost)
		totalTokens += stat.TotalTokens
		users[row.Username] = struct{}{}
		dates[row.Date] = struct{}{}
		resp.Stats = append(resp.Stats, stat)
	}

	resp.Summary = domain.Summary{
		TotalCost:   totalCost.InexactFloat64(),
		TotalTokens: totalTokens,
		UniqueUsers: len(users),
		TotalDays:   len(dates),
	}
	return resp, nil
}

// splitModelFilter parses the "<provider>/<modelName>" filter form. A bare
// model name matches that model under any provider.
func splitModelFilter(s string) (provider, model string) {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "/"); i >= 0 {
		return s[:i], s[i+1:]
	}
	return "", s
}

func toModelStat(b domain.ModelBreakdown) domain.ModelStat {
	return domain.ModelStat{
		Name:                     b.Model,
		Provider:                 b.Provider,
		Cost:                     b.Cost.InexactFloat64(),
		InputTokens:              b.InputTokens,
		OutputTokens:             b.OutputTokens,
		CacheCreationInputTokens: b.CacheCreationTokens,
		CacheReadInputTokens:     b.CacheReadTokens,
	}
}
