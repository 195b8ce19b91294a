package overview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/balances/internal/balance"
	"github.com/mtlprog/balances/internal/domain"
	"github.com/mtlprog/balances/internal/horizon"
)

// HorizonClient defines the subset of Horizon API used by the overview Service.
type HorizonClient interface {
	FetchAccount(ctx context.Context, accountID string) (horizon.HorizonAccount, error)
	FetchAccountCreation(ctx context.Context, accountID string) (domain.AccountCreation, error)
}

// Deriver turns an account snapshot into balance records.
type Deriver interface {
	Derive(ctx context.Context, snapshot *domain.AccountSnapshot) ([]domain.AccountBalanceRecord, error)
}

// Overview is the account page: creation info plus derived balances.
type Overview struct {
	AccountID string                        `json:"accountId"`
	Found     bool                          `json:"found"`
	Created   *domain.AccountCreation       `json:"created,omitempty"`
	Balances  []domain.AccountBalanceRecord `json:"balances"`
	Summary   balance.Summary               `json:"summary"`
}

// Service fetches accounts from Horizon and derives their balance records.
type Service struct {
	horizon HorizonClient
	engine  Deriver
}

// NewService creates a new overview Service.
func NewService(horizon HorizonClient, engine Deriver) *Service {
	if horizon == nil {
		panic("overview.NewService: horizon is nil")
	}
	if engine == nil {
		panic("overview.NewService: engine is nil")
	}
	return &Service{horizon: horizon, engine: engine}
}

// SnapshotFromAccount converts a Horizon account into a snapshot. LP shares are excluded;
// any other asset type is passed through for the engine to reject.
func SnapshotFromAccount(account horizon.HorizonAccount) *domain.AccountSnapshot {
	lines := lo.FilterMap(account.Balances, func(b horizon.HorizonBalance, _ int) (domain.BalanceLine, bool) {
		if domain.AssetType(b.AssetType) == domain.AssetTypeLiquidityPoolShare {
			return domain.BalanceLine{}, false
		}
		return domain.BalanceLine{
			AssetType:          domain.AssetType(b.AssetType),
			AssetCode:          b.AssetCode,
			AssetIssuer:        b.AssetIssuer,
			Balance:            b.Balance,
			BuyingLiabilities:  orZero(b.BuyingLiabilities),
			SellingLiabilities: orZero(b.SellingLiabilities),
		}, true
	})

	return &domain.AccountSnapshot{
		ID:            account.ID,
		SubentryCount: account.SubentryCount,
		BalanceLines:  lines,
	}
}

// Horizon omits liabilities on some older responses.
func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}

// Snapshot fetches the account. It returns nil without error when the account does not exist.
func (s *Service) Snapshot(ctx context.Context, accountID string) (*domain.AccountSnapshot, error) {
	account, err := s.horizon.FetchAccount(ctx, accountID)
	if err != nil {
		if errors.Is(err, horizon.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetching snapshot for %s: %w", accountID, err)
	}
	return SnapshotFromAccount(account), nil
}

// Balances fetches and derives the balance records of an account.
// An account that does not exist yields an empty result.
func (s *Service) Balances(ctx context.Context, accountID string) ([]domain.AccountBalanceRecord, error) {
	snapshot, err := s.Snapshot(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return s.engine.Derive(ctx, snapshot)
}

// Overview fetches balances and creation info concurrently. Creation info is best-effort.
func (s *Service) Overview(ctx context.Context, accountID string) (Overview, error) {
	var (
		snapshot *domain.AccountSnapshot
		records  []domain.AccountBalanceRecord
		created  *domain.AccountCreation
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = s.Snapshot(gctx, accountID)
		if err != nil {
			return err
		}
		records, err = s.engine.Derive(gctx, snapshot)
		return err
	})
	g.Go(func() error {
		c, err := s.horizon.FetchAccountCreation(gctx, accountID)
		if err != nil {
			if !errors.Is(err, horizon.ErrNotFound) && gctx.Err() == nil {
				slog.Warn("failed to fetch account creation", "account", accountID, "error", err)
			}
			return nil
		}
		created = &c
		return nil
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	if snapshot == nil {
		return Overview{AccountID: accountID, Balances: []domain.AccountBalanceRecord{}}, nil
	}
	return Overview{
		AccountID: accountID,
		Found:     true,
		Created:   created,
		Balances:  records,
		Summary:   balance.Summarize(records),
	}, nil
}
