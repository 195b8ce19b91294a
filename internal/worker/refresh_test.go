package worker

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mtlprog/balances/internal/overview"
)

type mockRefresher struct {
	mu    sync.Mutex
	calls map[string]int
	fail  map[string]error
}

func (m *mockRefresher) Refresh(_ context.Context, accountID string) (overview.State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.calls == nil {
		m.calls = map[string]int{}
	}
	m.calls[accountID]++
	if err := m.fail[accountID]; err != nil {
		return overview.State{}, err
	}
	return overview.State{AccountID: accountID, Generation: uint64(m.calls[accountID])}, nil
}

func (m *mockRefresher) count(accountID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[accountID]
}

type mockHook struct {
	rounds   atomic.Int32
	mu       sync.Mutex
	accounts []string
}

func (m *mockHook) Export(_ context.Context, states []overview.State) error {
	m.rounds.Add(1)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts = m.accounts[:0]
	for _, s := range states {
		m.accounts = append(m.accounts, s.AccountID)
	}
	return nil
}

func TestRefreshWorkerRunsAndShutdown(t *testing.T) {
	mock := &mockRefresher{}
	w := NewRefreshWorker(mock, []string{"GONE", "GTWO"}, 50*time.Millisecond, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	w.Run(ctx)

	// Should have run at least the initial refresh of both accounts
	if got := mock.count("GONE"); got < 1 {
		t.Errorf("GONE refreshes = %d, want >= 1", got)
	}
	if got := mock.count("GTWO"); got < 1 {
		t.Errorf("GTWO refreshes = %d, want >= 1", got)
	}
}

func TestRefreshWorkerContinuesPastFailures(t *testing.T) {
	mock := &mockRefresher{fail: map[string]error{
		"GBAD":   errors.New("HTTP 503"),
		"GSTALE": overview.ErrSuperseded,
	}}
	hook := &mockHook{}
	w := NewRefreshWorker(mock, []string{"GBAD", "GSTALE", "GOK"}, time.Hour, hook)

	w.refreshAll(context.Background())

	if mock.count("GOK") != 1 {
		t.Errorf("GOK refreshes = %d, want 1", mock.count("GOK"))
	}
	if hook.rounds.Load() != 1 {
		t.Fatalf("hook rounds = %d, want 1", hook.rounds.Load())
	}
	if len(hook.accounts) != 1 || hook.accounts[0] != "GOK" {
		t.Errorf("hook accounts = %v, want [GOK]", hook.accounts)
	}
}

func TestRefreshWorkerSkipsHookWhenNothingRefreshed(t *testing.T) {
	mock := &mockRefresher{fail: map[string]error{"GBAD": errors.New("HTTP 503")}}
	hook := &mockHook{}
	w := NewRefreshWorker(mock, []string{"GBAD"}, time.Hour, hook)

	w.refreshAll(context.Background())

	if hook.rounds.Load() != 0 {
		t.Errorf("hook rounds = %d, want 0", hook.rounds.Load())
	}
}
