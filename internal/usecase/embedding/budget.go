package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grounder/internal/domain"
	"github.com/kailas-cloud/grounder/internal/domain/usage/budget"
	"github.com/kailas-cloud/grounder/internal/metrics"
)

// BudgetStore is the persistence interface for budget counters.
// Implementations must be idempotent (IncrBy can be called repeatedly).
type BudgetStore interface {
	IncrBy(ctx context.Context, key string, val int64) error
	Get(ctx context.Context, key string) (int64, error)
}

// BudgetTracker is an in-memory daily token budget tracker with optional
// persistence. Hot path (Check) is in-memory only, no round-trip.
// Record updates in-memory first, then write-behind to store.
type BudgetTracker struct {
	mu           sync.Mutex
	dailyUsed    int64
	dailyLimit   int64
	provider     string
	lastDayReset time.Time
	store        BudgetStore
	logger       *zap.Logger
}

// NewBudgetTracker creates a budget tracker with the given daily limit.
// dailyLimit <= 0 means unlimited.
func NewBudgetTracker(provider string, dailyLimit int64, logger *zap.Logger) *BudgetTracker {
	now := time.Now().UTC()
	return &BudgetTracker{
		dailyLimit:   dailyLimit,
		provider:     provider,
		lastDayReset: truncateToDay(now),
		logger:       logger,
	}
}

// WithStore attaches a persistence store and loads the current counter.
func (b *BudgetTracker) WithStore(ctx context.Context, store BudgetStore) *BudgetTracker {
	b.store = store
	b.loadFromStore(ctx)
	return b
}

func (b *BudgetTracker) loadFromStore(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now().UTC()
	dailyKey := b.dailyKey(now)

	if val, err := b.store.Get(ctx, dailyKey); err == nil {
		b.dailyUsed = val
	} else {
		b.logger.Warn("Failed to load daily budget from store", zap.Error(err))
	}

	b.logger.Info("Budget loaded from store",
		zap.String("provider", b.provider),
		zap.Int64("daily_used", b.dailyUsed),
		zap.Int64("daily_limit", b.dailyLimit),
	)
}

func (b *BudgetTracker) dailyKey(t time.Time) string {
	return fmt.Sprintf("%sbudget:%s:daily:%s", domain.KeyPrefix, b.provider, t.Format(time.DateOnly))
}

// Check verifies the budget allows a new request. In-memory only (hot path).
// An exhausted budget rejects with domain.ErrBudgetExceeded.
func (b *BudgetTracker) Check(_ context.Context) error {
	snap := b.Snapshot()
	if !snap.Exhausted() {
		return nil
	}

	metrics.EmbeddingBudgetRejectionsTotal.WithLabelValues(b.provider).Inc()
	b.logger.Warn("Daily token budget exhausted",
		zap.String("provider", b.provider),
		zap.String("day", snap.Day()),
		zap.Int64("daily_used", snap.Used()),
		zap.Int64("daily_limit", snap.Limit()),
	)
	return fmt.Errorf("daily budget: %d of %d tokens used: %w",
		snap.Used(), snap.Limit(), domain.ErrBudgetExceeded)
}

// Record registers consumed tokens after a request.
// Updates the in-memory counter, then write-behind to store (if attached).
func (b *BudgetTracker) Record(tokens int64) {
	b.mu.Lock()
	b.resetIfNeeded()
	b.dailyUsed += tokens
	store := b.store
	dailyKey := b.dailyKey(time.Now().UTC())
	b.mu.Unlock()

	if store == nil {
		return
	}

	// Write-behind: fire-and-forget INCRBY to store.
	// Uses background context so store writes don't block the caller.
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := store.IncrBy(ctx, dailyKey, tokens); err != nil {
		b.logger.Warn("Failed to persist daily budget", zap.String("key", dailyKey), zap.Error(err))
	}
}

// Snapshot returns the current day's budget as a value object.
func (b *BudgetTracker) Snapshot() budget.Budget {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()
	return budget.New(b.lastDayReset.Format(time.DateOnly), b.dailyLimit, b.dailyUsed)
}

// RemainingDaily returns tokens left in the daily budget (-1 if unlimited).
func (b *BudgetTracker) RemainingDaily() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.resetIfNeeded()
	if b.dailyLimit <= 0 {
		return -1 // unlimited
	}
	remaining := b.dailyLimit - b.dailyUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// DailyLimit returns the daily token cap.
func (b *BudgetTracker) DailyLimit() int64 { return b.dailyLimit }

// DailyUsed returns tokens consumed today.
func (b *BudgetTracker) DailyUsed() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.resetIfNeeded()
	return b.dailyUsed
}

// resetIfNeeded zeroes the counter when the day rolls over.
func (b *BudgetTracker) resetIfNeeded() {
	now := time.Now().UTC()
	today := truncateToDay(now)

	if today.After(b.lastDayReset) {
		b.dailyUsed = 0
		b.lastDayReset = today
	}
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
