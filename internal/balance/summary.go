package balance

import (
	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/mtlprog/balances/internal/domain"
)

// Summary aggregates a derived record set for display headers and logging.
type Summary struct {
	Lines                int             `json:"lines"`
	NativeBalance        decimal.Decimal `json:"nativeBalance"`
	NativeReserve        decimal.Decimal `json:"nativeReserve"`
	NativeSpendable      decimal.Decimal `json:"nativeSpendable"`
	UnderReserved        bool            `json:"underReserved"`
	FractionalUnitAssets int             `json:"fractionalUnitAssets"`
}

// Summarize builds a Summary. Accounts without a native line report zero native figures.
func Summarize(records []domain.AccountBalanceRecord) Summary {
	s := Summary{
		Lines: len(records),
		FractionalUnitAssets: lo.CountBy(records, func(r domain.AccountBalanceRecord) bool {
			return r.DisplayAsFractionalUnit
		}),
	}

	native, ok := lo.Find(records, func(r domain.AccountBalanceRecord) bool {
		return r.IsNative()
	})
	if ok {
		s.NativeBalance = native.Balance
		s.NativeReserve = native.Reserve
		s.NativeSpendable = native.Spendable
		s.UnderReserved = native.Spendable.IsNegative()
	}
	return s
}
