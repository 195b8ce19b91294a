package balance

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/mtlprog/balances/internal/domain"
)

// Classifier decides whether an issued asset is displayed in stroop units.
// Implementations must not fail: an unavailable answer is reported as false.
type Classifier interface {
	Classify(ctx context.Context, assetKey string) bool
}

// Engine derives balance records from account snapshots.
type Engine struct {
	classifier  Classifier
	concurrency int
}

// NewEngine creates an Engine. A nil classifier classifies every asset as face value;
// concurrency <= 0 leaves the number of parallel lookups unbounded.
func NewEngine(classifier Classifier, concurrency int) *Engine {
	return &Engine{classifier: classifier, concurrency: concurrency}
}

// Derive converts a snapshot into one AccountBalanceRecord per balance line, in line order.
// A nil snapshot yields an empty result. Any malformed line fails the whole derivation
// with a *domain.DerivationError; no partial result is returned.
func (e *Engine) Derive(ctx context.Context, snapshot *domain.AccountSnapshot) ([]domain.AccountBalanceRecord, error) {
	if snapshot == nil {
		return []domain.AccountBalanceRecord{}, nil
	}

	records := make([]domain.AccountBalanceRecord, len(snapshot.BalanceLines))
	seen := make(map[string]int, len(snapshot.BalanceLines))
	for i, line := range snapshot.BalanceLines {
		rec, err := deriveLine(snapshot.ID, snapshot.SubentryCount, line)
		if err != nil {
			return nil, &domain.DerivationError{AccountID: snapshot.ID, Line: i, Err: err}
		}
		if prev, dup := seen[rec.AssetKey]; dup {
			return nil, &domain.DerivationError{
				AccountID: snapshot.ID,
				Line:      i,
				Err:       fmt.Errorf("%w: asset %s already held on line %d", domain.ErrMalformedInput, rec.AssetKey, prev),
			}
		}
		seen[rec.AssetKey] = i
		records[i] = rec
	}

	e.classify(ctx, records)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// classify resolves the display unit of every issued-asset record concurrently
// and returns once all lookups have answered or defaulted.
func (e *Engine) classify(ctx context.Context, records []domain.AccountBalanceRecord) {
	if e.classifier == nil {
		return
	}

	var g errgroup.Group
	if e.concurrency > 0 {
		g.SetLimit(e.concurrency)
	}
	for i := range records {
		if records[i].IsNative() {
			continue
		}
		g.Go(func() error {
			records[i].DisplayAsFractionalUnit = e.classifier.Classify(ctx, records[i].AssetKey)
			return nil
		})
	}
	_ = g.Wait()
}

func deriveLine(accountID string, subentryCount uint32, line domain.BalanceLine) (domain.AccountBalanceRecord, error) {
	reserve := decimal.Zero
	switch {
	case line.AssetType == domain.AssetTypeNative:
		reserve = Reserve(subentryCount)
	case line.AssetType.IsIssued():
		if line.AssetCode == "" || line.AssetIssuer == "" {
			return domain.AccountBalanceRecord{}, fmt.Errorf("%w: issued asset without code or issuer", domain.ErrMalformedInput)
		}
	default:
		return domain.AccountBalanceRecord{}, fmt.Errorf("%w: %q", domain.ErrUnknownAssetType, line.AssetType)
	}

	balance, err := domain.ParseAmount(line.Balance)
	if err != nil {
		return domain.AccountBalanceRecord{}, fmt.Errorf("balance: %w", err)
	}
	buying, err := domain.ParseAmount(line.BuyingLiabilities)
	if err != nil {
		return domain.AccountBalanceRecord{}, fmt.Errorf("buying liabilities: %w", err)
	}
	selling, err := domain.ParseAmount(line.SellingLiabilities)
	if err != nil {
		return domain.AccountBalanceRecord{}, fmt.Errorf("selling liabilities: %w", err)
	}

	return domain.AccountBalanceRecord{
		AccountID:          accountID,
		AssetKey:           line.Asset().Key(),
		Balance:            balance,
		BuyingLiabilities:  buying,
		SellingLiabilities: selling,
		Reserve:            reserve,
		Spendable:          Spendable(balance, selling, reserve),
	}, nil
}
