// Package storage provides the two session stores the client switches
// between: Remote talks to the bankroll API, Guest keeps everything in the
// local store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"poker-bankroll/internal/model"
)

// Common errors for storage operations.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("session not found")

	ErrResponseTooLarge = errors.New("response too large")
)

// Store is the session persistence seen by the client.
type Store interface {
	// List returns every session, newest date first.
	List(ctx context.Context) ([]model.Session, error)
	Create(ctx context.Context, in model.SessionInput) (*model.Session, error)
	Update(ctx context.Context, id string, in model.SessionInput) (*model.Session, error)
	Delete(ctx context.Context, id string) error
}

// BankrollStore persists the starting bankroll and goal.
type BankrollStore interface {
	GetBankroll(ctx context.Context) (model.Bankroll, error)
	SetBankroll(ctx context.Context, b model.Bankroll) error
}

// APIError is a non-2xx response from the bankroll API.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("http %d: %s", e.Status, e.Message)
}

// Unwrap maps well-known statuses onto the package sentinels.
func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusBadRequest:
		return model.ErrInvalidSession
	}
	return nil
}
