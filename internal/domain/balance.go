package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	// ErrMalformedInput indicates an amount or key that cannot be parsed exactly.
	ErrMalformedInput = errors.New("malformed input")
	// ErrUnknownAssetType indicates a balance line whose asset type the engine does not handle.
	ErrUnknownAssetType = errors.New("unknown asset type")
)

// AccountSnapshot is the raw account state a derivation runs against.
type AccountSnapshot struct {
	ID            string        `json:"id"`
	SubentryCount uint32        `json:"subentryCount"`
	BalanceLines  []BalanceLine `json:"balanceLines"`
}

// BalanceLine is one held asset as reported by the ledger. Amounts are kept
// as the exact decimal strings Horizon returns.
type BalanceLine struct {
	AssetType          AssetType `json:"assetType"`
	AssetCode          string    `json:"assetCode,omitempty"`
	AssetIssuer        string    `json:"assetIssuer,omitempty"`
	Balance            string    `json:"balance"`
	BuyingLiabilities  string    `json:"buyingLiabilities"`
	SellingLiabilities string    `json:"sellingLiabilities"`
}

// Asset returns the asset the line refers to.
func (l BalanceLine) Asset() AssetInfo {
	if l.AssetType == AssetTypeNative {
		return XLMAsset()
	}
	return AssetInfo{Code: l.AssetCode, Issuer: l.AssetIssuer, Type: l.AssetType}
}

// AccountBalanceRecord is the derived, user-facing view of one balance line.
type AccountBalanceRecord struct {
	AccountID               string          `json:"accountId"`
	AssetKey                string          `json:"asset"`
	Balance                 decimal.Decimal `json:"balance"`
	BuyingLiabilities       decimal.Decimal `json:"buyingLiabilities"`
	SellingLiabilities      decimal.Decimal `json:"sellingLiabilities"`
	Reserve                 decimal.Decimal `json:"reserve"`
	Spendable               decimal.Decimal `json:"spendable"`
	DisplayAsFractionalUnit bool            `json:"showAsStroop"`
}

// IsNative reports whether the record belongs to the native asset.
func (r AccountBalanceRecord) IsNative() bool {
	return r.AssetKey == NativeAssetKey
}

// DerivationError is returned when a snapshot cannot be turned into balance records.
// Line is the zero-based index of the offending balance line, or -1 when the
// failure is not tied to a single line.
type DerivationError struct {
	AccountID string
	Line      int
	Err       error
}

func (e *DerivationError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("deriving balances for %s: %v", e.AccountID, e.Err)
	}
	return fmt.Sprintf("deriving balances for %s: line %d: %v", e.AccountID, e.Line, e.Err)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}
