// Package service provides business logic implementations.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"poker-bankroll/internal/model"
	"poker-bankroll/internal/pkg/lock"
	"poker-bankroll/internal/repository"
)

// Common errors for session operations.
var (
	ErrSessionNotFound = errors.New("session not found")
)

// DefaultLockTimeout bounds how long an update waits for the user's lock.
const DefaultLockTimeout = 5 * time.Second

// SessionRepository is the persistence the session service needs.
type SessionRepository interface {
	Create(ctx context.Context, s *model.Session) (*model.Session, error)
	GetByID(ctx context.Context, userID, id string) (*model.Session, error)
	ListByUser(ctx context.Context, userID string, from, to *model.Date) ([]model.Session, error)
	Update(ctx context.Context, s *model.Session) (*model.Session, error)
	Delete(ctx context.Context, userID, id string) error
}

// SessionService handles a user's poker sessions.
type SessionService struct {
	repo        SessionRepository
	locks       *lock.KeyedLock
	lockTimeout time.Duration
	newID       func() string
	reports     *ReportCache
}

// NewSessionService creates a new SessionService instance.
func NewSessionService(repo SessionRepository, locks *lock.KeyedLock) *SessionService {
	return &SessionService{
		repo:        repo,
		locks:       locks,
		lockTimeout: DefaultLockTimeout,
		newID:       uuid.NewString,
	}
}

// SetReportCache sets the cache invalidated on every successful write.
func (s *SessionService) SetReportCache(c *ReportCache) {
	s.reports = c
}

// List returns the user's sessions, newest date first, optionally limited
// to an inclusive date range.
func (s *SessionService) List(ctx context.Context, userID string, from, to *model.Date) ([]model.Session, error) {
	sessions, err := s.repo.ListByUser(ctx, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return sessions, nil
}

// Create records a new session for the user. The ID is generated here and
// profit is derived from the input.
func (s *SessionService) Create(ctx context.Context, userID string, in model.SessionInput) (*model.Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	session := &model.Session{ID: s.newID(), UserID: userID}
	session.Apply(in)

	created, err := s.repo.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.reports.Invalidate(ctx, userID)
	return created, nil
}

// Update replaces every mutable field of an owned session with in. The
// stored row is read, merged and written back while the user's lock is held.
func (s *SessionService) Update(ctx context.Context, userID, id string, in model.SessionInput) (*model.Session, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var updated *model.Session
	err := s.locks.WithLockContext(ctx, userID, s.lockTimeout, func() error {
		existing, err := s.repo.GetByID(ctx, userID, id)
		if err != nil {
			return err
		}

		existing.Apply(in)

		updated, err = s.repo.Update(ctx, existing)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	s.reports.Invalidate(ctx, userID)
	return updated, nil
}

// Delete removes an owned session.
func (s *SessionService) Delete(ctx context.Context, userID, id string) error {
	err := s.locks.WithLockContext(ctx, userID, s.lockTimeout, func() error {
		return s.repo.Delete(ctx, userID, id)
	})
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return ErrSessionNotFound
		}
		return fmt.Errorf("failed to delete session: %w", err)
	}
	s.reports.Invalidate(ctx, userID)
	return nil
}
