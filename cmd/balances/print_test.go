package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mtlprog/balances/internal/balance"
	"github.com/mtlprog/balances/internal/domain"
	"github.com/mtlprog/balances/internal/overview"
)

func TestPrintOverview(t *testing.T) {
	records := []domain.AccountBalanceRecord{
		{
			AssetKey:           domain.NativeAssetKey,
			Balance:            decimal.RequireFromString("1.2"),
			SellingLiabilities: decimal.Zero,
			BuyingLiabilities:  decimal.Zero,
			Reserve:            decimal.RequireFromString("1.5"),
			Spendable:          decimal.RequireFromString("-0.3"),
		},
		{
			AssetKey:                "NFT:GART",
			Balance:                 decimal.RequireFromString("0.0000004"),
			SellingLiabilities:      decimal.Zero,
			BuyingLiabilities:       decimal.Zero,
			Reserve:                 decimal.Zero,
			Spendable:               decimal.RequireFromString("0.0000004"),
			DisplayAsFractionalUnit: true,
		},
	}
	ov := overview.Overview{
		AccountID: "GACC",
		Found:     true,
		Created:   &domain.AccountCreation{Funder: "GFUNDER", CreatedAt: time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC)},
		Balances:  records,
		Summary:   balance.Summarize(records),
	}

	var buf bytes.Buffer
	if err := printOverview(&buf, ov); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"created on 2021-03-04 05:06:07 by GFUNDER",
		"native:XLM",
		"-0.3",
		"NFT:GART",
		"warning: spendable XLM is negative",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	nftLine := ""
	for _, line := range strings.Split(out, "\n") {
		if strings.Contains(line, "NFT:GART") {
			nftLine = line
		}
	}
	if fields := strings.Fields(nftLine); len(fields) < 2 || fields[1] != "4" {
		t.Errorf("NFT balance not shown in stroops: %q", nftLine)
	}
}

func TestPrintOverviewNotFound(t *testing.T) {
	var buf bytes.Buffer
	if err := printOverview(&buf, overview.Overview{AccountID: "GMISSING"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "GMISSING not found") {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintClaimable(t *testing.T) {
	var buf bytes.Buffer
	records := []domain.ClaimableBalanceRecord{
		{ID: "cb1", AssetKey: "USD:GISSUER", Amount: decimal.RequireFromString("12.5"), Sponsor: "GSPONSOR", Memo: "airdrop"},
	}
	if err := printClaimable(&buf, records); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "12.5") || !strings.Contains(out, "airdrop") {
		t.Errorf("output = %q", out)
	}

	buf.Reset()
	if err := printClaimable(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "No claimable balances") {
		t.Errorf("output = %q", buf.String())
	}
}
