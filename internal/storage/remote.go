package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"poker-bankroll/internal/model"
	"poker-bankroll/internal/stats"
)

// DefaultMaxResponseBytes caps a response body when Remote.MaxResponseBytes
// is unset.
const DefaultMaxResponseBytes = 32 << 20

type errorResponse struct {
	Error string `json:"error"`
}

// Remote stores sessions through the bankroll API. Each call is a single
// request with no retry.
type Remote struct {
	BaseURL string
	Token   string

	HTTP *http.Client
	// MaxResponseBytes caps a response body; larger bodies fail with
	// ErrResponseTooLarge.
	MaxResponseBytes int64
}

// NewRemote creates a Remote for baseURL authenticated with token.
func NewRemote(baseURL, token string, timeout time.Duration) *Remote {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Remote{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: timeout},
	}
}

// List returns the caller's sessions, newest date first.
func (r *Remote) List(ctx context.Context) ([]model.Session, error) {
	var out []model.Session
	if err := r.call(ctx, http.MethodGet, "/sessions", nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	if out == nil {
		out = []model.Session{}
	}
	return out, nil
}

// Create records a session; the server assigns its ID and profit.
func (r *Remote) Create(ctx context.Context, in model.SessionInput) (*model.Session, error) {
	var out model.Session
	if err := r.call(ctx, http.MethodPost, "/sessions", in, &out); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return &out, nil
}

// Update replaces every mutable field of session id.
func (r *Remote) Update(ctx context.Context, id string, in model.SessionInput) (*model.Session, error) {
	var out model.Session
	if err := r.call(ctx, http.MethodPut, "/sessions/"+url.PathEscape(id), in, &out); err != nil {
		return nil, fmt.Errorf("failed to update session: %w", err)
	}
	return &out, nil
}

// Delete removes session id.
func (r *Remote) Delete(ctx context.Context, id string) error {
	if err := r.call(ctx, http.MethodDelete, "/sessions/"+url.PathEscape(id), nil, nil); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// GetBankroll returns the caller's bankroll settings.
func (r *Remote) GetBankroll(ctx context.Context) (model.Bankroll, error) {
	var out model.Bankroll
	if err := r.call(ctx, http.MethodGet, "/bankroll", nil, &out); err != nil {
		return model.Bankroll{}, fmt.Errorf("failed to get bankroll: %w", err)
	}
	return out, nil
}

// SetBankroll replaces the caller's bankroll settings.
func (r *Remote) SetBankroll(ctx context.Context, b model.Bankroll) error {
	if err := r.call(ctx, http.MethodPut, "/bankroll", b, nil); err != nil {
		return fmt.Errorf("failed to set bankroll: %w", err)
	}
	return nil
}

// Report fetches the server-computed statistics within [from, to].
func (r *Remote) Report(ctx context.Context, from, to *model.Date) (stats.Report, error) {
	q := url.Values{}
	if from != nil {
		q.Set("from", from.String())
	}
	if to != nil {
		q.Set("to", to.String())
	}
	path := "/stats"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out stats.Report
	if err := r.call(ctx, http.MethodGet, path, nil, &out); err != nil {
		return stats.Report{}, fmt.Errorf("failed to get stats: %w", err)
	}
	return out, nil
}

func (r *Remote) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	if strings.TrimSpace(r.BaseURL) == "" {
		return nil, errors.New("api base url is empty")
	}

	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, r.BaseURL+path, rd)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := strings.TrimSpace(r.Token); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	return req, nil
}

func (r *Remote) call(ctx context.Context, method, path string, body, out any) error {
	req, err := r.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	client := r.HTTP
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	limit := r.MaxResponseBytes
	if limit <= 0 {
		limit = DefaultMaxResponseBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return err
	}
	if int64(len(b)) > limit {
		return fmt.Errorf("%w: %s %s exceeded %d bytes", ErrResponseTooLarge, method, path, limit)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(b))}
		var er errorResponse
		if err := json.Unmarshal(b, &er); err == nil && strings.TrimSpace(er.Error) != "" {
			apiErr.Message = er.Error
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	return json.Unmarshal(b, out)
}
