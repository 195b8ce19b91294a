package horizon

import (
	"context"
	"fmt"
	"net/url"
)

// maxClaimablePages bounds pagination so a misbehaving server cannot loop forever.
const maxClaimablePages = 50

// FetchClaimableBalances returns every claimable balance where accountID is a claimant.
func (c *Client) FetchClaimableBalances(ctx context.Context, accountID string) ([]HorizonClaimableBalance, error) {
	params := url.Values{}
	params.Set("claimant", accountID)
	params.Set("limit", "200")
	path := "/claimable_balances?" + params.Encode()

	var all []HorizonClaimableBalance
	for page := 0; path != "" && page < maxClaimablePages; page++ {
		var resp horizonClaimableBalancesResponse
		if err := c.getJSON(ctx, path, &resp); err != nil {
			return nil, fmt.Errorf("fetching claimable balances for %s: %w", accountID, err)
		}
		all = append(all, resp.Embedded.Records...)
		if len(resp.Embedded.Records) == 0 {
			break
		}
		path = nextPath(resp.Links.Next.Href)
	}
	return all, nil
}

// FetchClaimableBalanceMemo returns the first text memo among the transactions
// that touched the claimable balance, or "" if there is none.
func (c *Client) FetchClaimableBalanceMemo(ctx context.Context, balanceID string) (string, error) {
	var resp horizonTransactionsResponse
	path := fmt.Sprintf("/claimable_balances/%s/transactions?limit=20", url.PathEscape(balanceID))
	if err := c.getJSON(ctx, path, &resp); err != nil {
		return "", fmt.Errorf("fetching transactions of claimable balance %s: %w", balanceID, err)
	}
	for _, tx := range resp.Embedded.Records {
		if tx.MemoType == "text" && tx.Memo != "" {
			return tx.Memo, nil
		}
	}
	return "", nil
}
