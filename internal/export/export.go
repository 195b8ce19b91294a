package export

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"

	"github.com/mtlprog/balances/internal/domain"
	"github.com/mtlprog/balances/internal/overview"
)

// Sheet names written by the export.
const (
	BalancesSheet = "BALANCES"
	SummarySheet  = "SUMMARY"
)

// Sheet is one named table; the first row is the header.
type Sheet struct {
	Name   string
	Values [][]any
}

// SheetWriter writes tables to a spreadsheet destination.
type SheetWriter interface {
	Write(ctx context.Context, sheets []Sheet) error
}

// Service turns tracked account states into sheets and delegates writing to a SheetWriter.
type Service struct {
	writer SheetWriter
	now    func() time.Time
}

// NewService creates a new export Service.
func NewService(writer SheetWriter) *Service {
	if writer == nil {
		panic("export.NewService: writer is nil")
	}
	return &Service{writer: writer, now: time.Now}
}

// Export writes the balances and summary of every state.
// Implements worker.AfterRefreshHook.
func (s *Service) Export(ctx context.Context, states []overview.State) error {
	sheets := BuildSheets(states, s.now())
	if err := s.writer.Write(ctx, sheets); err != nil {
		return fmt.Errorf("writing export: %w", err)
	}
	return nil
}

// BuildSheets builds the BALANCES and SUMMARY sheets for the given states.
func BuildSheets(states []overview.State, at time.Time) []Sheet {
	records := lo.FlatMap(states, func(s overview.State, _ int) []domain.AccountBalanceRecord {
		return s.Records
	})
	return []Sheet{
		{Name: BalancesSheet, Values: buildBalanceRows(records)},
		{Name: SummarySheet, Values: buildSummaryRows(states, at)},
	}
}

// buildBalanceRows builds the BALANCES sheet data.
// Columns: Account | Asset | Balance | Buying | Selling | Reserve | Spendable | Unit | Display
func buildBalanceRows(records []domain.AccountBalanceRecord) [][]any {
	data := make([][]any, 0, len(records)+1)
	data = append(data, []any{
		"Account", "Asset", "Balance", "Buying", "Selling",
		"Reserve", "Spendable", "Unit", "Display",
	})

	for _, r := range records {
		unit := "units"
		if r.DisplayAsFractionalUnit {
			unit = "stroops"
		}
		data = append(data, []any{
			r.AccountID, r.AssetKey,
			domain.FormatAmount(r.Balance),
			domain.FormatAmount(r.BuyingLiabilities),
			domain.FormatAmount(r.SellingLiabilities),
			domain.FormatAmount(r.Reserve),
			domain.FormatAmount(r.Spendable),
			unit,
			domain.DisplayAmount(r.Balance, r.DisplayAsFractionalUnit),
		})
	}

	return data
}

// buildSummaryRows builds the SUMMARY sheet data.
// Columns: Account | Updated | Lines | XLM | Reserve | Spendable XLM | Under-reserved | Stroop assets
func buildSummaryRows(states []overview.State, at time.Time) [][]any {
	data := [][]any{
		{"Account", "Updated", "Lines", "XLM", "Reserve", "Spendable XLM", "Under-reserved", "Stroop assets"},
	}

	for _, s := range states {
		updated := s.UpdatedAt
		if updated.IsZero() {
			updated = at
		}
		data = append(data, []any{
			s.AccountID,
			updated.UTC().Format(time.RFC3339),
			s.Summary.Lines,
			domain.FormatAmount(s.Summary.NativeBalance),
			domain.FormatAmount(s.Summary.NativeReserve),
			domain.FormatAmount(s.Summary.NativeSpendable),
			s.Summary.UnderReserved,
			s.Summary.FractionalUnitAssets,
		})
	}

	return data
}
