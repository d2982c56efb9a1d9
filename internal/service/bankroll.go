package service

import (
	"context"
	"fmt"

	"poker-bankroll/internal/model"
)

// BankrollRepository is the persistence the bankroll service needs.
type BankrollRepository interface {
	Get(ctx context.Context, userID string) (model.Bankroll, error)
	Upsert(ctx context.Context, userID string, b model.Bankroll) (model.Bankroll, error)
}

// BankrollService handles the user's starting bankroll and goal.
type BankrollService struct {
	repo    BankrollRepository
	reports *ReportCache
}

// NewBankrollService creates a new BankrollService instance.
func NewBankrollService(repo BankrollRepository) *BankrollService {
	return &BankrollService{repo: repo}
}

// SetReportCache sets the cache invalidated when settings change.
func (s *BankrollService) SetReportCache(c *ReportCache) {
	s.reports = c
}

// Get returns the user's bankroll settings.
func (s *BankrollService) Get(ctx context.Context, userID string) (model.Bankroll, error) {
	b, err := s.repo.Get(ctx, userID)
	if err != nil {
		return model.Bankroll{}, fmt.Errorf("failed to get bankroll: %w", err)
	}
	return b, nil
}

// Set replaces the user's bankroll settings.
func (s *BankrollService) Set(ctx context.Context, userID string, b model.Bankroll) (model.Bankroll, error) {
	saved, err := s.repo.Upsert(ctx, userID, b)
	if err != nil {
		return model.Bankroll{}, fmt.Errorf("failed to set bankroll: %w", err)
	}
	s.reports.Invalidate(ctx, userID)
	return saved, nil
}
