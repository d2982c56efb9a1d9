package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"poker-bankroll/internal/model"
)

// MemorySessionRepository keeps sessions in process memory. It backs the
// server's --memory mode and tests that do not need PostgreSQL.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]model.Session
	now      func() time.Time
}

// NewMemorySessionRepository creates an empty MemorySessionRepository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]model.Session),
		now:      time.Now,
	}
}

// Create stores s. The caller assigns ID, UserID and Profit.
func (r *MemorySessionRepository) Create(_ context.Context, s *model.Session) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := s.Clone()
	stored.CreatedAt = r.now()
	stored.UpdatedAt = stored.CreatedAt
	r.sessions[stored.ID] = stored

	out := stored.Clone()
	return &out, nil
}

// GetByID retrieves a session owned by userID.
func (r *MemorySessionRepository) GetByID(_ context.Context, userID, id string) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	out := s.Clone()
	return &out, nil
}

// ListByUser returns the user's sessions, newest date first.
func (r *MemorySessionRepository) ListByUser(_ context.Context, userID string, from, to *model.Date) ([]model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sessions := make([]model.Session, 0)
	for _, s := range r.sessions {
		if s.UserID != userID {
			continue
		}
		if from != nil && !from.IsZero() && s.Date.Before(*from) {
			continue
		}
		if to != nil && !to.IsZero() && s.Date.After(*to) {
			continue
		}
		sessions = append(sessions, s.Clone())
	}

	sort.Slice(sessions, func(i, j int) bool {
		if !sessions[i].Date.Equal(sessions[j].Date) {
			return sessions[i].Date.After(sessions[j].Date)
		}
		if !sessions[i].CreatedAt.Equal(sessions[j].CreatedAt) {
			return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
		}
		return sessions[i].ID > sessions[j].ID
	})

	return sessions, nil
}

// Update replaces the mutable fields of an owned session.
func (r *MemorySessionRepository) Update(_ context.Context, s *model.Session) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.sessions[s.ID]
	if !ok || existing.UserID != s.UserID {
		return nil, ErrSessionNotFound
	}

	existing.Apply(s.Input())
	existing.UpdatedAt = r.now()
	r.sessions[s.ID] = existing

	out := existing.Clone()
	return &out, nil
}

// Delete removes a session owned by userID.
func (r *MemorySessionRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok || s.UserID != userID {
		return ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

// MemoryBankrollRepository keeps bankroll settings in process memory.
type MemoryBankrollRepository struct {
	mu        sync.RWMutex
	bankrolls map[string]model.Bankroll
}

// NewMemoryBankrollRepository creates an empty MemoryBankrollRepository.
func NewMemoryBankrollRepository() *MemoryBankrollRepository {
	return &MemoryBankrollRepository{bankrolls: make(map[string]model.Bankroll)}
}

// Get returns the user's bankroll, empty when never set.
func (r *MemoryBankrollRepository) Get(_ context.Context, userID string) (model.Bankroll, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return copyBankroll(r.bankrolls[userID]), nil
}

// Upsert replaces the user's bankroll settings.
func (r *MemoryBankrollRepository) Upsert(_ context.Context, userID string, b model.Bankroll) (model.Bankroll, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bankrolls[userID] = copyBankroll(b)
	return copyBankroll(b), nil
}

func copyBankroll(b model.Bankroll) model.Bankroll {
	out := model.Bankroll{}
	if b.Starting != nil {
		v := *b.Starting
		out.Starting = &v
	}
	if b.Goal != nil {
		v := *b.Goal
		out.Goal = &v
	}
	return out
}
