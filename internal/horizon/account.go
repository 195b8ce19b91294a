package horizon

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/mtlprog/balances/internal/domain"
)

// FetchAccount retrieves a Stellar account's details including balances, liabilities and subentry count.
func (c *Client) FetchAccount(ctx context.Context, accountID string) (HorizonAccount, error) {
	var account HorizonAccount
	if err := c.getJSON(ctx, fmt.Sprintf("/accounts/%s", url.PathEscape(accountID)), &account); err != nil {
		return HorizonAccount{}, fmt.Errorf("fetching account %s: %w", accountID, err)
	}
	return account, nil
}

// FetchHomeDomain returns the home_domain set on an account, or "" when none is set.
func (c *Client) FetchHomeDomain(ctx context.Context, accountID string) (string, error) {
	account, err := c.FetchAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	return account.HomeDomain, nil
}

// FetchAccountCreation finds the create_account operation that funded accountID
// by looking at the account's earliest transaction.
func (c *Client) FetchAccountCreation(ctx context.Context, accountID string) (domain.AccountCreation, error) {
	var txs horizonTransactionsResponse
	path := fmt.Sprintf("/accounts/%s/transactions?order=asc&limit=1", url.PathEscape(accountID))
	if err := c.getJSON(ctx, path, &txs); err != nil {
		return domain.AccountCreation{}, fmt.Errorf("fetching first transaction of %s: %w", accountID, err)
	}
	if len(txs.Embedded.Records) == 0 {
		return domain.AccountCreation{}, fmt.Errorf("%w: no transactions for %s", ErrNotFound, accountID)
	}

	first := txs.Embedded.Records[0]
	var ops horizonOperationsResponse
	path = fmt.Sprintf("/transactions/%s/operations?limit=200", url.PathEscape(first.Hash))
	if err := c.getJSON(ctx, path, &ops); err != nil {
		return domain.AccountCreation{}, fmt.Errorf("fetching operations of %s: %w", first.Hash, err)
	}

	for _, op := range ops.Embedded.Records {
		if op.Type != "create_account" || (op.Account != "" && op.Account != accountID) {
			continue
		}
		created, err := time.Parse(time.RFC3339, op.CreatedAt)
		if err != nil {
			slog.Warn("unparseable create_account timestamp", "account", accountID, "value", op.CreatedAt, "error", err)
		}
		return domain.AccountCreation{Funder: op.Funder, CreatedAt: created}, nil
	}
	return domain.AccountCreation{}, fmt.Errorf("%w: create_account operation for %s", ErrNotFound, accountID)
}

// nextPath converts a HAL next link into a path relative to the client base URL.
// Returns "" when there is no next page.
func nextPath(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		slog.Warn("failed to parse Horizon pagination link, results may be incomplete",
			"href", href, "error", err)
		return ""
	}
	return u.Path + "?" + u.RawQuery
}
