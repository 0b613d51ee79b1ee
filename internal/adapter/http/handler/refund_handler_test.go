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

type refundServiceStub struct {
	processFn func(ctx context.Context, input usecase.RefundInput) (*usecase.RefundResult, error)
	getFn     func(ctx context.Context, tenantID, id string) (*domain.Refund, error)
	listFn    func(ctx context.Context, input usecase.ListRefundsInput) ([]*domain.Refund, error)
}

func (s *refundServiceStub) ProcessRefund(ctx context.Context, input usecase.RefundInput) (*usecase.RefundResult, error) {
	return s.processFn(ctx, input)
}

func (s *refundServiceStub) GetRefund(ctx context.Context, tenantID, id string) (*domain.Refund, error) {
	return s.getFn(ctx, tenantID, id)
}

func (s *refundServiceStub) ListRefunds(ctx context.Context, input usecase.ListRefundsInput) ([]*domain.Refund, error) {
	return s.listFn(ctx, input)
}

type availabilityServiceStub struct {
	summaryFn   func(ctx context.Context, tenantID, memberID string) (*usecase.AvailabilitySummary, error)
	availableFn func(ctx context.Context, tenantID, memberID string, source domain.RefundSource) (decimal.Decimal, error)
}

func (s *availabilityServiceStub) Summary(ctx context.Context, tenantID, memberID string) (*usecase.AvailabilitySummary, error) {
	return s.summaryFn(ctx, tenantID, memberID)
}

func (s *availabilityServiceStub) Available(ctx context.Context, tenantID, memberID string, source domain.RefundSource) (decimal.Decimal, error) {
	return s.availableFn(ctx, tenantID, memberID, source)
}

func TestRefundHandler_Create(t *testing.T) {
	var captured usecase.RefundInput
	handler := NewRefundHandler(&refundServiceStub{
		processFn: func(ctx context.Context, input usecase.RefundInput) (*usecase.RefundResult, error) {
			captured = input
			return &usecase.RefundResult{
				Refund: &domain.Refund{ID: "rf-1", MemberID: input.MemberID, Source: input.Source, Amount: input.Amount},
				Summary: &usecase.AvailabilitySummary{
					MemberID:  input.MemberID,
					Available: map[domain.RefundSource]decimal.Decimal{domain.RefundSourceContribution: decimal.NewFromInt(30000)},
				},
			}, nil
		},
	}, nil)

	body := `{"source":"contribution","amount":"20000","reason":"exit"}`
	rec := httptest.NewRecorder()
	handler.Create(rec, newScopedRequest(http.MethodPost, "/api/v1/members/m-1/refunds", body, map[string]string{"memberID": "m-1"}))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if captured.MemberID != "m-1" || captured.Source != domain.RefundSourceContribution || captured.ActorID != "admin-1" {
		t.Fatalf("unexpected input %+v", captured)
	}

	var resp dto.ProcessRefundResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Refund.ID != "rf-1" || !resp.Availability.Available["contribution"].Equal(decimal.NewFromInt(30000)) {
		t.Fatalf("unexpected response %+v", resp)
	}
}

func TestRefundHandler_CreateInsufficientFunds(t *testing.T) {
	handler := NewRefundHandler(&refundServiceStub{
		processFn: func(ctx context.Context, input usecase.RefundInput) (*usecase.RefundResult, error) {
			return nil, domain.ErrInsufficientFunds
		},
	}, nil)

	body := `{"source":"contribution","amount":"90000","reason":"exit"}`
	rec := httptest.NewRecorder()
	handler.Create(rec, newScopedRequest(http.MethodPost, "/api/v1/members/m-1/refunds", body, map[string]string{"memberID": "m-1"}))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	if resp := decodeError(t, rec); resp.Code != "insufficient_funds" {
		t.Fatalf("expected insufficient_funds, got %s", resp.Code)
	}
}

func TestRefundHandler_ListBySourceFilter(t *testing.T) {
	handler := NewRefundHandler(&refundServiceStub{
		listFn: func(ctx context.Context, input usecase.ListRefundsInput) ([]*domain.Refund, error) {
			if input.Source != domain.RefundSourceWallet || input.Limit != 5 || input.MemberID != "m-1" {
				t.Fatalf("unexpected list input %+v", input)
			}
			return []*domain.Refund{{ID: "rf-1"}}, nil
		},
	}, nil)

	rec := httptest.NewRecorder()
	handler.ListByMember(rec, newScopedRequest(http.MethodGet, "/api/v1/members/m-1/refunds?source=wallet&limit=5", "", map[string]string{"memberID": "m-1"}))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRefundHandler_Available(t *testing.T) {
	handler := NewRefundHandler(nil, &availabilityServiceStub{
		availableFn: func(ctx context.Context, tenantID, memberID string, source domain.RefundSource) (decimal.Decimal, error) {
			if source == "bonus" {
				return decimal.Zero, domain.ErrInvalidSource
			}
			return decimal.NewFromInt(100), nil
		},
	})

	rec := httptest.NewRecorder()
	handler.Available(rec, newScopedRequest(http.MethodGet, "/", "", map[string]string{"memberID": "m-1", "source": "wallet"}))

	var resp dto.SourceAvailabilityResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Source != "wallet" || !resp.Available.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected response %+v", resp)
	}

	rec = httptest.NewRecorder()
	handler.Available(rec, newScopedRequest(http.MethodGet, "/", "", map[string]string{"memberID": "m-1", "source": "bonus"}))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown source, got %d", rec.Code)
	}
}

func TestRefundHandler_Summary(t *testing.T) {
	handler := NewRefundHandler(nil, &availabilityServiceStub{
		summaryFn: func(ctx context.Context, tenantID, memberID string) (*usecase.AvailabilitySummary, error) {
			return nil, domain.ErrMemberNotFound
		},
	})

	rec := httptest.NewRecorder()
	handler.Summary(rec, newScopedRequest(http.MethodGet, "/", "", map[string]string{"memberID": "ghost"}))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
