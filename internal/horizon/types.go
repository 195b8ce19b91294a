package horizon

// HorizonAccount represents the JSON response from GET /accounts/{id}.
type HorizonAccount struct {
	ID            string            `json:"id"`
	SubentryCount uint32            `json:"subentry_count"`
	HomeDomain    string            `json:"home_domain"`
	Balances      []HorizonBalance  `json:"balances"`
	Data          map[string]string `json:"data"`
}

// HorizonBalance represents a single balance entry in an account response.
type HorizonBalance struct {
	AssetType          string `json:"asset_type"`
	AssetCode          string `json:"asset_code"`
	AssetIssuer        string `json:"asset_issuer"`
	Balance            string `json:"balance"`
	BuyingLiabilities  string `json:"buying_liabilities"`
	SellingLiabilities string `json:"selling_liabilities"`
	Limit              string `json:"limit,omitempty"`
	LiquidityPoolID    string `json:"liquidity_pool_id,omitempty"`
}

type horizonLinks struct {
	Next struct {
		Href string `json:"href"`
	} `json:"next"`
}

type horizonTransaction struct {
	ID        string `json:"id"`
	Hash      string `json:"hash"`
	Memo      string `json:"memo"`
	MemoType  string `json:"memo_type"`
	CreatedAt string `json:"created_at"`
}

type horizonTransactionsResponse struct {
	Links    horizonLinks `json:"_links"`
	Embedded struct {
		Records []horizonTransaction `json:"records"`
	} `json:"_embedded"`
}

type horizonOperation struct {
	Type      string `json:"type"`
	Funder    string `json:"funder"`
	Account   string `json:"account"`
	CreatedAt string `json:"created_at"`
}

type horizonOperationsResponse struct {
	Embedded struct {
		Records []horizonOperation `json:"records"`
	} `json:"_embedded"`
}

// HorizonClaimant is one claimant of a claimable balance.
type HorizonClaimant struct {
	Destination string `json:"destination"`
}

// HorizonClaimableBalance represents a record from GET /claimable_balances.
type HorizonClaimableBalance struct {
	ID                 string            `json:"id"`
	Asset              string            `json:"asset"`
	Amount             string            `json:"amount"`
	Sponsor            string            `json:"sponsor"`
	LastModifiedLedger int64             `json:"last_modified_ledger"`
	LastModifiedTime   string            `json:"last_modified_time"`
	Claimants          []HorizonClaimant `json:"claimants"`
}

type horizonClaimableBalancesResponse struct {
	Links    horizonLinks `json:"_links"`
	Embedded struct {
		Records []HorizonClaimableBalance `json:"records"`
	} `json:"_embedded"`
}
