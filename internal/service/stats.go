package service

import (
	"context"
	"fmt"

	"poker-bankroll/internal/model"
	"poker-bankroll/internal/stats"
)

// StatsService computes the statistics report for a user.
type StatsService struct {
	sessions  SessionRepository
	bankrolls BankrollRepository
	reports   *ReportCache
}

// NewStatsService creates a new StatsService instance.
func NewStatsService(sessions SessionRepository, bankrolls BankrollRepository) *StatsService {
	return &StatsService{sessions: sessions, bankrolls: bankrolls}
}

// SetReportCache sets the cache Report reads through.
func (s *StatsService) SetReportCache(c *ReportCache) {
	s.reports = c
}

// Report summarizes the user's sessions within [from, to] and their bankroll.
func (s *StatsService) Report(ctx context.Context, userID string, from, to *model.Date) (stats.Report, error) {
	if r, ok := s.reports.Get(ctx, userID, from, to); ok {
		return r, nil
	}

	sessions, err := s.sessions.ListByUser(ctx, userID, nil, nil)
	if err != nil {
		return stats.Report{}, fmt.Errorf("failed to load sessions: %w", err)
	}

	b, err := s.bankrolls.Get(ctx, userID)
	if err != nil {
		return stats.Report{}, fmt.Errorf("failed to load bankroll: %w", err)
	}

	r := stats.BuildRangeReport(sessions, b, from, to)
	s.reports.Put(ctx, userID, from, to, r)
	return r, nil
}
