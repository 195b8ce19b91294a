package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ClaimableBalance is a claimable balance entry as reported by the ledger.
type ClaimableBalance struct {
	ID                 string    `json:"id"`
	Asset              AssetInfo `json:"asset"`
	Amount             string    `json:"amount"`
	Sponsor            string    `json:"sponsor"`
	Claimants          []string  `json:"claimants"`
	LastModifiedTime   time.Time `json:"lastModifiedTime"`
	LastModifiedLedger int64     `json:"lastModifiedLedger"`
}

// ClaimableBalanceRecord is the derived view of a claimable balance for one claimant.
type ClaimableBalanceRecord struct {
	ID                      string          `json:"id"`
	AccountID               string          `json:"accountId"`
	AssetKey                string          `json:"asset"`
	Amount                  decimal.Decimal `json:"amount"`
	Sponsor                 string          `json:"sponsor"`
	Memo                    string          `json:"memo,omitempty"`
	LastModifiedTime        time.Time       `json:"lastModifiedTime"`
	DisplayAsFractionalUnit bool            `json:"showAsStroop"`
}

// AccountCreation records when and by whom an account was funded.
type AccountCreation struct {
	Funder    string    `json:"by"`
	CreatedAt time.Time `json:"date"`
}
