package collector

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"PortfolioPulse/internal/model"

	"go.mongodb.org/mongo-driver/bson"
)

const investorsJSON = `[
  {
    "investor_id": "INV001",
    "name": "Asha Rao",
    "risk_profile": "Low",
    "total_invested": "100000",
    "total_aum": 112500.5,
    "gain_loss_pct": 12.5,
    "portfolios": [
      {
        "amc_name": "HDFC",
        "category": "Equity",
        "scheme_name": "HDFC Top 100",
        "current_value": "not-a-number",
        "invested_amount": null,
        "sip_flag": true,
        "transactions": [{"txn_type": "SIP", "txn_date": "2026-09-05", "txn_amount": 5000}]
      }
    ]
  },
  {"investor_id": "INV002", "name": "Ravi", "portfolios": []},
  {"investor_id": "INV003", "portfolios": []}
]`

func writeInvestors(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "investors.json")
	if err := os.WriteFile(path, []byte(investorsJSON), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileSource(t *testing.T) {
	ctx := context.Background()
	src := NewFileSource(writeInvestors(t))

	all, err := src.List(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 investors, got %d", len(all))
	}
	limited, _ := src.List(ctx, 2)
	if len(limited) != 2 || limited[1].InvestorID != "INV002" {
		t.Errorf("limited = %+v", limited)
	}

	inv, err := src.Get(ctx, "INV001")
	if err != nil {
		t.Fatal(err)
	}
	if inv.TotalInvested != 100000 || inv.TotalAUM != 112500.5 {
		t.Errorf("totals = %v / %v", inv.TotalInvested, inv.TotalAUM)
	}
	h := inv.Holdings[0]
	if h.CurrentValue != 0 || h.InvestedAmount != 0 || !h.SIPFlag {
		t.Errorf("holding = %+v", h)
	}
	if h.Transactions[0].TxnAmount != 5000 {
		t.Errorf("txn = %+v", h.Transactions[0])
	}

	if _, err := src.Get(ctx, "NOPE"); !errors.Is(err, ErrInvestorNotFound) {
		t.Errorf("err = %v, want ErrInvestorNotFound", err)
	}
}

func TestFileSource_MissingAndInvalid(t *testing.T) {
	ctx := context.Background()
	missing := NewFileSource(filepath.Join(t.TempDir(), "absent.json"))
	if got, err := missing.List(ctx, 0); err != nil || len(got) != 0 {
		t.Errorf("missing file = %v, %v", got, err)
	}

	bad := filepath.Join(t.TempDir(), "bad.json")
	os.WriteFile(bad, []byte("{not json"), 0644)
	if _, err := NewFileSource(bad).List(ctx, 0); err == nil {
		t.Error("expected parse error")
	}
}

func TestMemorySource_CopiesOnList(t *testing.T) {
	ctx := context.Background()
	src := NewMemorySource([]model.Investor{{InvestorID: "A"}, {InvestorID: "B"}})
	got, _ := src.List(ctx, 0)
	got[0].InvestorID = "mutated"
	again, _ := src.List(ctx, 1)
	if again[0].InvestorID != "A" {
		t.Errorf("source aliased by caller: %+v", again)
	}
	inv, err := src.Get(ctx, "B")
	if err != nil || inv.InvestorID != "B" {
		t.Errorf("Get = %+v, %v", inv, err)
	}
}

func TestDecodeInvestor_FromBSON(t *testing.T) {
	raw, err := bson.Marshal(bson.M{
		"investor_id":   "INV010",
		"name":          "Meera",
		"total_aum":     int64(250000),
		"gain_loss_pct": 7.25,
		"portfolios": bson.A{
			bson.M{"amc_name": "SBI", "current_value": int32(1200), "sip_flag": false},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	inv, err := decodeInvestor(raw)
	if err != nil {
		t.Fatal(err)
	}
	if inv.InvestorID != "INV010" || inv.TotalAUM != 250000 || inv.GainLossPct != 7.25 {
		t.Errorf("investor = %+v", inv)
	}
	if len(inv.Holdings) != 1 || inv.Holdings[0].CurrentValue != 1200 || inv.Holdings[0].AMC() != "SBI" {
		t.Errorf("holdings = %+v", inv.Holdings)
	}
}
