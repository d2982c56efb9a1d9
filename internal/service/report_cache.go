package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"poker-bankroll/internal/model"
	"poker-bankroll/internal/pkg/cache"
	"poker-bankroll/internal/stats"
)

// ReportCache memoizes statistics reports per user and date range.
// Writes bump the user's generation so stale entries are never read.
// The store must evict expired keys on its own: redis does, and
// cache.MemoryStore sweeps them on Set. A nil *ReportCache caches nothing.
type ReportCache struct {
	store cache.Store
	ttl   time.Duration
}

// NewReportCache wraps store. A nil store yields a nil cache.
func NewReportCache(store cache.Store, ttl time.Duration) *ReportCache {
	if store == nil {
		return nil
	}
	return &ReportCache{store: store, ttl: ttl}
}

func generationKey(userID string) string {
	return "stats:gen:" + userID
}

func rangeKey(d *model.Date) string {
	if d == nil {
		return "-"
	}
	return d.String()
}

func (c *ReportCache) reportKey(ctx context.Context, userID string, from, to *model.Date) (string, error) {
	gen, _, err := c.store.Get(ctx, generationKey(userID))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("stats:report:%s:%s:%s:%s", userID, gen, rangeKey(from), rangeKey(to)), nil
}

// Get returns a cached report. Cache errors read as a miss.
func (c *ReportCache) Get(ctx context.Context, userID string, from, to *model.Date) (stats.Report, bool) {
	if c == nil {
		return stats.Report{}, false
	}

	key, err := c.reportKey(ctx, userID, from, to)
	if err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Report cache unavailable")
		return stats.Report{}, false
	}
	b, found, err := c.store.Get(ctx, key)
	if err != nil || !found {
		return stats.Report{}, false
	}

	var r stats.Report
	if err := json.Unmarshal(b, &r); err != nil {
		return stats.Report{}, false
	}
	return r, true
}

// Put stores r. Failures are logged and otherwise ignored.
func (c *ReportCache) Put(ctx context.Context, userID string, from, to *model.Date, r stats.Report) {
	if c == nil {
		return
	}

	key, err := c.reportKey(ctx, userID, from, to)
	if err != nil {
		return
	}
	b, err := json.Marshal(r)
	if err != nil {
		return
	}
	if err := c.store.Set(ctx, key, b, c.ttl); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to cache report")
	}
}

// Invalidate drops every cached report of the user.
func (c *ReportCache) Invalidate(ctx context.Context, userID string) {
	if c == nil {
		return
	}
	if err := c.store.Set(ctx, generationKey(userID), []byte(uuid.NewString()), 0); err != nil {
		log.Warn().Err(err).Str("user_id", userID).Msg("Failed to invalidate report cache")
	}
}
