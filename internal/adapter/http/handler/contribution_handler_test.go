package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

type contributionServiceStub struct {
	reviewFn func(ctx context.Context, input usecase.ReviewInput) (*domain.Contribution, error)
}

func (s *contributionServiceStub) Review(ctx context.Context, input usecase.ReviewInput) (*domain.Contribution, error) {
	return s.reviewFn(ctx, input)
}

func TestContributionHandler_Review(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"approved", nil, http.StatusOK},
		{"already reviewed", domain.ErrInvalidTransition, http.StatusConflict},
		{"missing", domain.ErrContributionNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewContributionHandler(&contributionServiceStub{
				reviewFn: func(ctx context.Context, input usecase.ReviewInput) (*domain.Contribution, error) {
					if input.ContributionID != "c-1" || input.Status != domain.InflowStatusApproved {
						t.Fatalf("unexpected input %+v", input)
					}
					if tt.err != nil {
						return nil, tt.err
					}
					return &domain.Contribution{ID: "c-1", Status: input.Status, ReviewedBy: input.ActorID}, nil
				},
			})

			rec := httptest.NewRecorder()
			handler.Review(rec, newScopedRequest(http.MethodPost, "/api/v1/contributions/c-1/review", `{"status":"approved"}`, map[string]string{"id": "c-1"}))

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
		})
	}
}
