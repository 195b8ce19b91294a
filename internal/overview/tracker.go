package overview

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mtlprog/balances/internal/balance"
	"github.com/mtlprog/balances/internal/domain"
)

// ErrSuperseded is returned by Refresh when a newer refresh of the same account
// started before this one finished. Its result was discarded.
var ErrSuperseded = errors.New("refresh superseded by a newer one")

// BalanceSource produces the current balance records of an account.
type BalanceSource interface {
	Balances(ctx context.Context, accountID string) ([]domain.AccountBalanceRecord, error)
}

// State is the last published derivation of a tracked account.
type State struct {
	AccountID   string                        `json:"accountId"`
	Generation  uint64                        `json:"generation"`
	Records     []domain.AccountBalanceRecord `json:"balances"`
	Summary     balance.Summary               `json:"summary"`
	UpdatedAt   time.Time                     `json:"updatedAt"`
	LastError   string                        `json:"lastError,omitempty"`
	LastErrorAt time.Time                     `json:"lastErrorAt,omitzero"`
}

type tracked struct {
	generation uint64
	cancel     context.CancelFunc
	state      State
	published  bool
}

// Tracker keeps the latest derived balances per account. Every Refresh takes a new
// generation and cancels the one in flight; only the newest generation may publish.
type Tracker struct {
	source BalanceSource
	now    func() time.Time

	mu       sync.Mutex
	accounts map[string]*tracked
}

// NewTracker creates a new Tracker.
func NewTracker(source BalanceSource) *Tracker {
	if source == nil {
		panic("overview.NewTracker: source is nil")
	}
	return &Tracker{
		source:   source,
		now:      time.Now,
		accounts: make(map[string]*tracked),
	}
}

// Refresh derives the account's balances and publishes them unless a newer Refresh
// of the same account has started meanwhile. A failed derivation keeps the previously
// published records and records the error on the state.
func (t *Tracker) Refresh(ctx context.Context, accountID string) (State, error) {
	t.mu.Lock()
	entry, ok := t.accounts[accountID]
	if !ok {
		entry = &tracked{state: State{AccountID: accountID}}
		t.accounts[accountID] = entry
	}
	if entry.cancel != nil {
		entry.cancel()
	}
	entry.generation++
	gen := entry.generation
	runCtx, cancel := context.WithCancel(ctx)
	entry.cancel = cancel
	t.mu.Unlock()

	records, err := t.source.Balances(runCtx, accountID)

	t.mu.Lock()
	defer t.mu.Unlock()
	cancel()
	if entry.generation != gen {
		return State{}, ErrSuperseded
	}
	entry.cancel = nil

	if err != nil {
		entry.state.LastError = err.Error()
		entry.state.LastErrorAt = t.now()
		return entry.state, err
	}

	entry.state = State{
		AccountID:  accountID,
		Generation: gen,
		Records:    records,
		Summary:    balance.Summarize(records),
		UpdatedAt:  t.now(),
	}
	entry.published = true
	return entry.state, nil
}

// State returns the last published state of an account. The second result is false
// when no derivation of the account has succeeded yet.
func (t *Tracker) State(accountID string) (State, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	entry, ok := t.accounts[accountID]
	if !ok {
		return State{}, false
	}
	return entry.state, entry.published
}

// Accounts returns the ids of every account refreshed so far.
func (t *Tracker) Accounts() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	ids := make([]string, 0, len(t.accounts))
	for id := range t.accounts {
		ids = append(ids, id)
	}
	return ids
}
