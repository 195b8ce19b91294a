package claimable

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/balances/internal/balance"
	"github.com/mtlprog/balances/internal/domain"
	"github.com/mtlprog/balances/internal/horizon"
)

// HorizonClient defines the subset of Horizon API used by the claimable Service.
type HorizonClient interface {
	FetchClaimableBalances(ctx context.Context, accountID string) ([]horizon.HorizonClaimableBalance, error)
	FetchClaimableBalanceMemo(ctx context.Context, balanceID string) (string, error)
}

// Service lists the claimable balances an account can claim.
type Service struct {
	horizon     HorizonClient
	classifier  balance.Classifier
	concurrency int
}

// NewService creates a new claimable Service. classifier may be nil.
func NewService(horizon HorizonClient, classifier balance.Classifier, concurrency int) *Service {
	if horizon == nil {
		panic("claimable.NewService: horizon is nil")
	}
	return &Service{horizon: horizon, classifier: classifier, concurrency: concurrency}
}

// FromHorizon converts a Horizon record into a ClaimableBalance.
func FromHorizon(cb horizon.HorizonClaimableBalance) (domain.ClaimableBalance, error) {
	asset, err := domain.ParseAssetKey(cb.Asset)
	if err != nil {
		return domain.ClaimableBalance{}, fmt.Errorf("claimable balance %s: %w", cb.ID, err)
	}

	var modified time.Time
	if cb.LastModifiedTime != "" {
		modified, err = time.Parse(time.RFC3339, cb.LastModifiedTime)
		if err != nil {
			slog.Warn("unparseable claimable balance timestamp", "id", cb.ID, "value", cb.LastModifiedTime, "error", err)
		}
	}

	claimants := lo.Map(cb.Claimants, func(c horizon.HorizonClaimant, _ int) string {
		return c.Destination
	})

	return domain.ClaimableBalance{
		ID:                 cb.ID,
		Asset:              asset,
		Amount:             cb.Amount,
		Sponsor:            cb.Sponsor,
		Claimants:          claimants,
		LastModifiedTime:   modified,
		LastModifiedLedger: cb.LastModifiedLedger,
	}, nil
}

// List returns the claimable balances of accountID in Horizon order. Every entry is
// validated before any memo or classification lookup; those lookups are best-effort.
// An account that does not exist has no claimable balances.
func (s *Service) List(ctx context.Context, accountID string) ([]domain.ClaimableBalanceRecord, error) {
	raw, err := s.horizon.FetchClaimableBalances(ctx, accountID)
	if err != nil {
		if errors.Is(err, horizon.ErrNotFound) {
			return []domain.ClaimableBalanceRecord{}, nil
		}
		return nil, err
	}

	records := make([]domain.ClaimableBalanceRecord, len(raw))
	for i, r := range raw {
		cb, err := FromHorizon(r)
		if err != nil {
			return nil, &domain.DerivationError{AccountID: accountID, Line: i, Err: err}
		}
		amount, err := domain.ParseAmount(cb.Amount)
		if err != nil {
			return nil, &domain.DerivationError{AccountID: accountID, Line: i, Err: fmt.Errorf("claimable balance %s: %w", cb.ID, err)}
		}
		records[i] = domain.ClaimableBalanceRecord{
			ID:               cb.ID,
			AccountID:        accountID,
			AssetKey:         cb.Asset.Key(),
			Amount:           amount,
			Sponsor:          cb.Sponsor,
			LastModifiedTime: cb.LastModifiedTime,
		}
	}

	var g errgroup.Group
	if s.concurrency > 0 {
		g.SetLimit(s.concurrency)
	}
	for i := range records {
		g.Go(func() error {
			s.enrich(ctx, &records[i])
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Service) enrich(ctx context.Context, rec *domain.ClaimableBalanceRecord) {
	memo, err := s.horizon.FetchClaimableBalanceMemo(ctx, rec.ID)
	if err != nil {
		if ctx.Err() == nil {
			slog.Warn("failed to fetch claimable balance memo", "id", rec.ID, "error", err)
		}
	} else {
		rec.Memo = memo
	}

	if s.classifier != nil && rec.AssetKey != domain.NativeAssetKey {
		rec.DisplayAsFractionalUnit = s.classifier.Classify(ctx, rec.AssetKey)
	}
}
