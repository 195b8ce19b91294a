package balance

import (
	"github.com/shopspring/decimal"
)

var (
	// baseReserveCount is the account's own base reserve, in reserve-count units.
	baseReserveCount = decimal.NewFromInt(1)
	// subentryReserveFraction is the reserve added per subentry (trustline, offer, signer, data entry).
	subentryReserveFraction = decimal.RequireFromString("0.5")
)

// Reserve returns the minimum native balance an account with subentryCount
// subentries must keep: 1 + subentryCount/2, computed exactly.
func Reserve(subentryCount uint32) decimal.Decimal {
	subentries := decimal.NewFromInt(int64(subentryCount)).Mul(subentryReserveFraction)
	return baseReserveCount.Add(subentries)
}

// Spendable returns balance - sellingLiabilities - reserve. The result is
// not floored at zero: a negative value means the account is
// under its reserve or over-committed by open offers.
func Spendable(balance, sellingLiabilities, reserve decimal.Decimal) decimal.Decimal {
	return balance.Sub(sellingLiabilities).Sub(reserve)
}
