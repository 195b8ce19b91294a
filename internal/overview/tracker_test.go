package overview

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/balances/internal/domain"
)

// scriptedSource answers each Balances call with the next scripted response.
// A response with a release channel blocks until the channel is closed,
// ignoring cancellation, so late answers can be observed.
type scriptedSource struct {
	mu        sync.Mutex
	responses []scriptedResponse
	started   chan context.Context
}

type scriptedResponse struct {
	records []domain.AccountBalanceRecord
	err     error
	release chan struct{}
}

func (s *scriptedSource) Balances(ctx context.Context, _ string) ([]domain.AccountBalanceRecord, error) {
	s.mu.Lock()
	resp := s.responses[0]
	s.responses = s.responses[1:]
	s.mu.Unlock()

	if s.started != nil {
		s.started <- ctx
	}
	if resp.release != nil {
		<-resp.release
	}
	return resp.records, resp.err
}

func nativeRecords(balance int64) []domain.AccountBalanceRecord {
	return []domain.AccountBalanceRecord{{
		AccountID: "GACC",
		AssetKey:  domain.NativeAssetKey,
		Balance:   decimal.NewFromInt(balance),
		Reserve:   decimal.NewFromInt(1),
		Spendable: decimal.NewFromInt(balance - 1),
	}}
}

func TestTrackerPublishes(t *testing.T) {
	source := &scriptedSource{responses: []scriptedResponse{{records: nativeRecords(10)}}}
	tracker := NewTracker(source)
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tracker.now = func() time.Time { return fixed }

	if _, ok := tracker.State("GACC"); ok {
		t.Fatal("State() reported a published state before any refresh")
	}

	state, err := tracker.Refresh(context.Background(), "GACC")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.Generation != 1 {
		t.Errorf("Generation = %d, want 1", state.Generation)
	}
	if !state.UpdatedAt.Equal(fixed) {
		t.Errorf("UpdatedAt = %v, want %v", state.UpdatedAt, fixed)
	}
	if !state.Summary.NativeSpendable.Equal(decimal.NewFromInt(9)) {
		t.Errorf("NativeSpendable = %s, want 9", state.Summary.NativeSpendable)
	}

	got, ok := tracker.State("GACC")
	if !ok || len(got.Records) != 1 {
		t.Errorf("State() = %+v, %v; want one record", got, ok)
	}
}

func TestTrackerDiscardsSupersededResult(t *testing.T) {
	release := make(chan struct{})
	source := &scriptedSource{
		responses: []scriptedResponse{
			{records: nativeRecords(100), release: release},
			{records: nativeRecords(5)},
		},
		started: make(chan context.Context, 2),
	}
	tracker := NewTracker(source)

	type result struct {
		state State
		err   error
	}
	first := make(chan result, 1)
	go func() {
		s, err := tracker.Refresh(context.Background(), "GACC")
		first <- result{s, err}
	}()
	firstCtx := <-source.started

	state, err := tracker.Refresh(context.Background(), "GACC")
	<-source.started
	if err != nil {
		t.Fatalf("second refresh: unexpected error: %v", err)
	}
	if state.Generation != 2 {
		t.Errorf("Generation = %d, want 2", state.Generation)
	}

	select {
	case <-firstCtx.Done():
	default:
		t.Error("superseded refresh was not cancelled")
	}

	close(release)
	res := <-first
	if !errors.Is(res.err, ErrSuperseded) {
		t.Errorf("first refresh error = %v, want ErrSuperseded", res.err)
	}

	got, _ := tracker.State("GACC")
	if !got.Records[0].Balance.Equal(decimal.NewFromInt(5)) {
		t.Errorf("published balance = %s, want 5 from the newer refresh", got.Records[0].Balance)
	}
	if got.Generation != 2 {
		t.Errorf("published generation = %d, want 2", got.Generation)
	}
}

func TestTrackerFailureKeepsPreviousState(t *testing.T) {
	derivationErr := &domain.DerivationError{AccountID: "GACC", Line: 0, Err: domain.ErrMalformedInput}
	source := &scriptedSource{responses: []scriptedResponse{
		{records: nativeRecords(10)},
		{err: derivationErr},
	}}
	tracker := NewTracker(source)

	if _, err := tracker.Refresh(context.Background(), "GACC"); err != nil {
		t.Fatalf("first refresh: unexpected error: %v", err)
	}

	state, err := tracker.Refresh(context.Background(), "GACC")
	if !errors.Is(err, domain.ErrMalformedInput) {
		t.Fatalf("error = %v, want ErrMalformedInput", err)
	}
	if state.LastError == "" {
		t.Error("LastError not recorded")
	}
	if len(state.Records) != 1 || !state.Records[0].Balance.Equal(decimal.NewFromInt(10)) {
		t.Errorf("records = %+v, want previous state kept", state.Records)
	}
	if state.Generation != 1 {
		t.Errorf("Generation = %d, want 1 (previous publication)", state.Generation)
	}

	got, ok := tracker.State("GACC")
	if !ok || got.LastError == "" {
		t.Errorf("State() = %+v, %v; want previous state with error", got, ok)
	}
}

func TestTrackerFirstRefreshFails(t *testing.T) {
	source := &scriptedSource{responses: []scriptedResponse{{err: errors.New("HTTP 503")}}}
	tracker := NewTracker(source)

	if _, err := tracker.Refresh(context.Background(), "GACC"); err == nil {
		t.Fatal("expected error")
	}
	state, ok := tracker.State("GACC")
	if ok {
		t.Error("State() reported published state after failed first refresh")
	}
	if state.LastError != "HTTP 503" {
		t.Errorf("LastError = %q, want HTTP 503", state.LastError)
	}
}

func TestTrackerAccountsAreIndependent(t *testing.T) {
	source := &scriptedSource{responses: []scriptedResponse{
		{records: nativeRecords(10)},
		{records: nativeRecords(20)},
	}}
	tracker := NewTracker(source)

	if _, err := tracker.Refresh(context.Background(), "GONE"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := tracker.Refresh(context.Background(), "GTWO"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	one, _ := tracker.State("GONE")
	two, _ := tracker.State("GTWO")
	if one.Generation != 1 || two.Generation != 1 {
		t.Errorf("generations = %d, %d; want 1, 1", one.Generation, two.Generation)
	}
	if len(tracker.Accounts()) != 2 {
		t.Errorf("Accounts() = %v, want 2 entries", tracker.Accounts())
	}
}
