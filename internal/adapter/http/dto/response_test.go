package dto

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

func TestAvailabilityFromSummary(t *testing.T) {
	summary := &usecase.AvailabilitySummary{
		MemberID: "m-1",
		Available: map[domain.RefundSource]decimal.Decimal{
			domain.RefundSourceWallet:       decimal.NewFromInt(100),
			domain.RefundSourceContribution: decimal.NewFromInt(30000),
		},
		Refunded: map[domain.RefundSource]decimal.Decimal{
			domain.RefundSourceContribution: decimal.NewFromInt(20000),
		},
	}

	resp := AvailabilityFromSummary(summary)

	if !resp.TotalAvailable.Equal(decimal.NewFromInt(30100)) {
		t.Fatalf("expected total 30100, got %s", resp.TotalAvailable)
	}
	if !resp.Available["contribution"].Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("unexpected contribution availability %s", resp.Available["contribution"])
	}
	if !resp.Refunded["contribution"].Equal(decimal.NewFromInt(20000)) {
		t.Fatalf("unexpected refunded contribution %s", resp.Refunded["contribution"])
	}

	if AvailabilityFromSummary(nil) != nil {
		t.Fatalf("nil summary should map to nil")
	}
}

func TestRefundFromDomain_DerivedSourceHasNoEntry(t *testing.T) {
	refund := &domain.Refund{
		ID:        "rf-1",
		MemberID:  "m-1",
		Source:    domain.RefundSourceContribution,
		Amount:    decimal.NewFromInt(20000),
		Reference: "RF-1",
		Status:    "completed",
		CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	body, err := json.Marshal(RefundFromDomain(refund))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	if strings.Contains(string(body), "journal_entry_id") {
		t.Fatalf("derived refund should omit journal_entry_id: %s", body)
	}
	if !strings.Contains(string(body), `"amount":"20000"`) {
		t.Fatalf("expected amount as decimal string: %s", body)
	}
}

func TestImportResultFromDomain(t *testing.T) {
	result := &domain.ImportResult{BatchID: "b-1", Kind: domain.ImportKindRefund, Total: 3}
	result.RecordSuccess()
	result.RecordSuccess()
	result.RecordFailure(3, "insufficient balance")

	resp := ImportResultFromDomain(result)

	if resp.Successful != 2 || resp.Failed != 1 || resp.Kind != "refund" {
		t.Fatalf("unexpected counts %+v", resp)
	}
	if len(resp.Errors) != 1 || resp.Errors[0].Line != 3 {
		t.Fatalf("unexpected errors %+v", resp.Errors)
	}
}

func TestReportFromDomain(t *testing.T) {
	report := &usecase.ReconciliationReport{
		TenantID:           "coop-a",
		TotalAccounts:      2,
		ReconciledAccounts: 1,
		Discrepancies: []*usecase.ReconciliationResult{{
			AccountID:   "acc-1",
			Difference:  decimal.NewFromInt(50),
			BrokenLinks: []usecase.BrokenLink{{EntryID: "e-2", Reason: "gap"}},
		}},
	}

	resp := ReportFromDomain(report)

	if len(resp.Discrepancies) != 1 || resp.Discrepancies[0].AccountID != "acc-1" {
		t.Fatalf("unexpected discrepancies %+v", resp.Discrepancies)
	}
	if len(resp.Discrepancies[0].BrokenLinks) != 1 || resp.Discrepancies[0].BrokenLinks[0].EntryID != "e-2" {
		t.Fatalf("unexpected broken links %+v", resp.Discrepancies[0].BrokenLinks)
	}
}
