package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/adapter/http/dto"
	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

type reconciliationServiceStub struct {
	accountFn func(ctx context.Context, tenantID, accountID string) (*usecase.ReconciliationResult, error)
	reportFn  func(ctx context.Context, tenantID string) (*usecase.ReconciliationReport, error)
}

func (s *reconciliationServiceStub) ReconcileAccount(ctx context.Context, tenantID, accountID string) (*usecase.ReconciliationResult, error) {
	return s.accountFn(ctx, tenantID, accountID)
}

func (s *reconciliationServiceStub) GenerateReport(ctx context.Context, tenantID string) (*usecase.ReconciliationReport, error) {
	return s.reportFn(ctx, tenantID)
}

func TestReconciliationHandler_Report(t *testing.T) {
	handler := NewReconciliationHandler(&reconciliationServiceStub{
		reportFn: func(ctx context.Context, tenantID string) (*usecase.ReconciliationReport, error) {
			return &usecase.ReconciliationReport{
				TenantID:      tenantID,
				TotalAccounts: 2,
				Discrepancies: []*usecase.ReconciliationResult{{AccountID: "acc-1", Difference: decimal.NewFromInt(50)}},
			}, nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Report(rec, newScopedRequest(http.MethodGet, "/api/v1/reconciliation/report", "", nil))

	var resp dto.ReconciliationReportResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.TenantID != "coop-a" || len(resp.Discrepancies) != 1 || !resp.Discrepancies[0].Difference.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("unexpected report %+v", resp)
	}
}

func TestReconciliationHandler_AccountNotFound(t *testing.T) {
	handler := NewReconciliationHandler(&reconciliationServiceStub{
		accountFn: func(ctx context.Context, tenantID, accountID string) (*usecase.ReconciliationResult, error) {
			return nil, domain.ErrAccountNotFound
		},
	})

	rec := httptest.NewRecorder()
	handler.Account(rec, newScopedRequest(http.MethodGet, "/", "", map[string]string{"id": "acc-x"}))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
