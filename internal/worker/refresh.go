package worker

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mtlprog/balances/internal/overview"
)

// Refresher re-derives and publishes the balances of one account.
type Refresher interface {
	Refresh(ctx context.Context, accountID string) (overview.State, error)
}

// AfterRefreshHook is called after each round with the states refreshed successfully.
type AfterRefreshHook interface {
	Export(ctx context.Context, states []overview.State) error
}

// RefreshWorker periodically refreshes the watched accounts.
type RefreshWorker struct {
	refresher Refresher
	accounts  []string
	interval  time.Duration
	hook      AfterRefreshHook // optional
}

// NewRefreshWorker creates a new RefreshWorker with an optional post-refresh hook.
func NewRefreshWorker(refresher Refresher, accounts []string, interval time.Duration, hook AfterRefreshHook) *RefreshWorker {
	return &RefreshWorker{
		refresher: refresher,
		accounts:  accounts,
		interval:  interval,
		hook:      hook,
	}
}

// Run starts the refresh loop. It blocks until the context is cancelled.
func (w *RefreshWorker) Run(ctx context.Context) {
	slog.Info("RefreshWorker: starting", "accounts", len(w.accounts), "interval", w.interval)

	// Refresh immediately on startup
	w.refreshAll(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("RefreshWorker: shutting down")
			return
		case <-ticker.C:
			w.refreshAll(ctx)
		}
	}
}

// refreshAll refreshes every account in turn. A failing account does not stop the round.
func (w *RefreshWorker) refreshAll(ctx context.Context) {
	states := make([]overview.State, 0, len(w.accounts))
	for _, id := range w.accounts {
		if ctx.Err() != nil {
			return
		}
		state, err := w.refresher.Refresh(ctx, id)
		switch {
		case errors.Is(err, overview.ErrSuperseded):
			slog.Debug("RefreshWorker: refresh superseded", "account", id)
		case err != nil:
			slog.Error("RefreshWorker: refresh failed", "account", id, "error", err)
		default:
			slog.Info("RefreshWorker: refresh completed", "account", id,
				"lines", state.Summary.Lines, "under_reserved", state.Summary.UnderReserved)
			states = append(states, state)
		}
	}
	w.runHook(ctx, states)
}

// runHook calls the post-refresh hook if one is configured.
func (w *RefreshWorker) runHook(ctx context.Context, states []overview.State) {
	if w.hook == nil || len(states) == 0 {
		return
	}
	if err := w.hook.Export(ctx, states); err != nil {
		slog.Error("RefreshWorker: export hook failed", "error", err)
	} else {
		slog.Info("RefreshWorker: export hook completed", "accounts", len(states))
	}
}
