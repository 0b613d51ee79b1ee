package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

func TestOpenAccountRequest_ToUseCaseInput(t *testing.T) {
	req := &OpenAccountRequest{OwnerID: "m-1", Kind: "equity_wallet", Currency: "usd"}

	got := req.ToUseCaseInput("coop-a", "admin-1")
	want := usecase.OpenAccountInput{
		TenantID: "coop-a",
		ActorID:  "admin-1",
		OwnerID:  "m-1",
		Kind:     domain.AccountKindEquityWallet,
		Currency: "usd",
	}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}

func TestRefundRequest_DecodesAmountAsStringOrNumber(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"string amount", `{"source":"wallet","amount":"1500.50","reason":"exit"}`, "1500.5"},
		{"number amount", `{"source":"wallet","amount":1500.5,"reason":"exit"}`, "1500.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req RefundRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("decode failed: %v", err)
			}

			in := req.ToUseCaseInput("coop-a", "admin-1", "m-1")
			if !in.Amount.Equal(decimal.RequireFromString(tt.want)) {
				t.Fatalf("expected amount %s, got %s", tt.want, in.Amount)
			}
			if in.Source != domain.RefundSourceWallet || in.MemberID != "m-1" || in.TenantID != "coop-a" {
				t.Fatalf("unexpected input %+v", in)
			}
		})
	}
}

func TestAdjustBalanceRequest_ToUseCaseInput(t *testing.T) {
	req := &AdjustBalanceRequest{
		Amount:      decimal.NewFromInt(500),
		Reference:   "TOPUP-1",
		Description: "bank deposit",
	}

	got := req.ToUseCaseInput("coop-a", "admin-1", "m-1", domain.AccountKindWallet)

	if got.OwnerID != "m-1" || got.Kind != domain.AccountKindWallet || got.ActorID != "admin-1" {
		t.Fatalf("unexpected scope %+v", got)
	}
	if !got.Amount.Equal(decimal.NewFromInt(500)) || got.Reference != "TOPUP-1" {
		t.Fatalf("unexpected payload %+v", got)
	}
}

func TestReviewRequest_ToUseCaseInput(t *testing.T) {
	req := &ReviewRequest{Status: "approved"}

	got := req.ToUseCaseInput("coop-a", "admin-1", "c-1")
	want := usecase.ReviewInput{
		TenantID:       "coop-a",
		ActorID:        "admin-1",
		ContributionID: "c-1",
		Status:         domain.InflowStatusApproved,
	}

	if got != want {
		t.Fatalf("ToUseCaseInput() = %+v, want %+v", got, want)
	}
}
