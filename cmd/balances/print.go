package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/mtlprog/balances/internal/domain"
	"github.com/mtlprog/balances/internal/overview"
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printOverview(w io.Writer, ov overview.Overview) error {
	if !ov.Found {
		_, err := fmt.Fprintf(w, "Account %s not found\n", ov.AccountID)
		return err
	}

	if ov.Created != nil {
		fmt.Fprintf(w, "Account %s created on %s by %s\n",
			ov.AccountID, ov.Created.CreatedAt.UTC().Format(time.DateTime), ov.Created.Funder)
	} else {
		fmt.Fprintf(w, "Account %s\n", ov.AccountID)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "ASSET\tBALANCE\tRESERVE\tSELLING\tBUYING\tSPENDABLE\t")
	for _, r := range ov.Balances {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			r.AssetKey,
			domain.DisplayAmount(r.Balance, r.DisplayAsFractionalUnit),
			domain.FormatAmount(r.Reserve),
			domain.DisplayAmount(r.SellingLiabilities, r.DisplayAsFractionalUnit),
			domain.DisplayAmount(r.BuyingLiabilities, r.DisplayAsFractionalUnit),
			domain.DisplayAmount(r.Spendable, r.DisplayAsFractionalUnit),
		)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if ov.Summary.UnderReserved {
		fmt.Fprintf(w, "warning: spendable XLM is negative (%s)\n", domain.FormatAmount(ov.Summary.NativeSpendable))
	}
	return nil
}

func printClaimable(w io.Writer, records []domain.ClaimableBalanceRecord) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No claimable balances")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tASSET\tAMOUNT\tSPONSOR\tMEMO")
	for _, r := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			r.ID, r.AssetKey, domain.DisplayAmount(r.Amount, r.DisplayAsFractionalUnit), r.Sponsor, r.Memo)
	}
	return tw.Flush()
}
