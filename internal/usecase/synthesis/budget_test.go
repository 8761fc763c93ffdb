package synthesis

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sommelier/internal/domain"
)

func TestBudgetTracker_RejectWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("openai", 100, 0, BudgetActionReject, zap.NewNop())
	bt.Record(100)

	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrSynthesisQuotaExceeded) {
		t.Fatalf("expected ErrSynthesisQuotaExceeded, got %v", err)
	}
}

func TestBudgetTracker_WarnWhenExceeded(t *testing.T) {
	bt := NewBudgetTracker("openai", 100, 0, BudgetActionWarn, zap.NewNop())
	bt.Record(200)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("warn action must allow the request, got %v", err)
	}
}

func TestBudgetTracker_DefaultActionIsWarn(t *testing.T) {
	bt := NewBudgetTracker("openai", 10, 0, "", zap.NewNop())
	bt.Record(50)
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
	if got := bt.Usage().Action; got != "warn" {
		t.Errorf("expected warn action, got %q", got)
	}
}

func TestBudgetTracker_MonthlyReject(t *testing.T) {
	bt := NewBudgetTracker("openai", 0, 500, BudgetActionReject, zap.NewNop())
	bt.Record(500)

	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrSynthesisQuotaExceeded) {
		t.Fatalf("expected monthly rejection, got %v", err)
	}
}

func TestBudgetTracker_Remaining(t *testing.T) {
	bt := NewBudgetTracker("openai", 1000, 10000, BudgetActionWarn, zap.NewNop())
	bt.Record(300)
	bt.Record(-5)

	if got := bt.RemainingDaily(); got != 700 {
		t.Errorf("expected daily remaining 700, got %d", got)
	}
	if got := bt.RemainingMonthly(); got != 9700 {
		t.Errorf("expected monthly remaining 9700, got %d", got)
	}

	bt.Record(5000)
	if got := bt.RemainingDaily(); got != 0 {
		t.Errorf("remaining never goes negative, got %d", got)
	}
}

func TestBudgetTracker_Unlimited(t *testing.T) {
	bt := NewBudgetTracker("openai", 0, 0, BudgetActionReject, zap.NewNop())
	bt.Record(999999999)

	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("expected nil for unlimited budget, got %v", err)
	}
	u := bt.Usage()
	if u.DailyRemaining != -1 || u.MonthlyRemaining != -1 {
		t.Errorf("expected -1 remaining, got %+v", u)
	}
}

func TestBudgetTracker_DayRollover(t *testing.T) {
	bt := NewBudgetTracker("openai", 100, 1000, BudgetActionReject, zap.NewNop())
	day := time.Date(2026, 3, 10, 23, 0, 0, 0, time.UTC)
	bt.now = func() time.Time { return day }
	bt.lastDayReset = truncateToDay(day)
	bt.lastMonthReset = truncateToMonth(day)

	bt.Record(100)
	if err := bt.Check(context.Background()); err == nil {
		t.Fatal("expected rejection before rollover")
	}

	day = day.Add(2 * time.Hour)
	if err := bt.Check(context.Background()); err != nil {
		t.Fatalf("daily counter must reset, got %v", err)
	}
	if got := bt.Usage().MonthlyUsed; got != 100 {
		t.Errorf("monthly counter must survive the day rollover, got %d", got)
	}
}

type mockBudgetStore struct {
	mu      sync.Mutex
	data    map[string]int64
	getErr  error
	incrErr error
}

func newMockBudgetStore() *mockBudgetStore {
	return &mockBudgetStore{data: make(map[string]int64)}
}

func (m *mockBudgetStore) IncrBy(_ context.Context, key string, val int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.incrErr != nil {
		return m.incrErr
	}
	m.data[key] += val
	return nil
}

func (m *mockBudgetStore) Get(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return 0, m.getErr
	}
	return m.data[key], nil
}

func TestBudgetTracker_WithStore_LoadsValues(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("openai", 1000, 0, BudgetActionReject, zap.NewNop())
	now := bt.now()
	store.data[bt.dailyKey(now)] = 1000

	bt.WithStore(context.Background(), store)
	if err := bt.Check(context.Background()); !errors.Is(err, domain.ErrSynthesisQuotaExceeded) {
		t.Fatalf("loaded counters must be enforced, got %v", err)
	}
}

func TestBudgetTracker_Record_PersistsToStore(t *testing.T) {
	store := newMockBudgetStore()
	bt := NewBudgetTracker("openai", 0, 0, BudgetActionWarn, zap.NewNop()).
		WithStore(context.Background(), store)

	bt.Record(42)
	bt.Record(8)

	now := bt.now()
	if got := store.data[bt.dailyKey(now)]; got != 50 {
		t.Errorf("expected daily 50 in store, got %d", got)
	}
	if got := store.data[bt.monthlyKey(now)]; got != 50 {
		t.Errorf("expected monthly 50 in store, got %d", got)
	}
}

func TestBudgetTracker_StoreErrorsAreNotFatal(t *testing.T) {
	store := newMockBudgetStore()
	store.getErr = errors.New("connection refused")
	store.incrErr = errors.New("connection refused")

	bt := NewBudgetTracker("openai", 100, 0, BudgetActionReject, zap.NewNop()).
		WithStore(context.Background(), store)
	bt.Record(10)

	if got := bt.RemainingDaily(); got != 90 {
		t.Errorf("in-memory counters must still work, got %d", got)
	}
}

func TestBudgetTracker_KeyFormat(t *testing.T) {
	bt := NewBudgetTracker("openai", 0, 0, BudgetActionWarn, zap.NewNop())
	ts := time.Date(2026, 2, 7, 0, 0, 0, 0, time.UTC)

	if got, want := bt.dailyKey(ts), "sommelier:budget:synthesis:openai:daily:2026-02-07"; got != want {
		t.Errorf("daily key = %q, want %q", got, want)
	}
	if got, want := bt.monthlyKey(ts), "sommelier:budget:synthesis:openai:monthly:2026-02"; got != want {
		t.Errorf("monthly key = %q, want %q", got, want)
	}
}
