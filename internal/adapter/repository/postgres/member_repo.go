package postgres

import (
	"context"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// MemberRepository implements usecase.MemberRepository. Members are owned
// by the back office; the ledger only reads and locks them.
type MemberRepository struct {
	db generated.DBTX
}

// NewMemberRepository creates a new MemberRepository.
func NewMemberRepository(db generated.DBTX) *MemberRepository {
	return &MemberRepository{db: db}
}

// GetByID retrieves a tenant's member.
func (r *MemberRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.Member, error) {
	row, err := queries(r.db, nil).GetMemberByID(ctx, generated.GetMemberByIDParams{
		TenantID: tenantID,
		ID:       id,
	})
	if err != nil {
		return nil, translate(err, domain.ErrMemberNotFound, nil)
	}

	return rowToMember(row), nil
}

// FindByReference resolves ref as a member id first, then as a member number.
func (r *MemberRepository) FindByReference(ctx context.Context, tenantID, ref string) (*domain.Member, error) {
	row, err := queries(r.db, nil).FindMemberByReference(ctx, generated.FindMemberByReferenceParams{
		TenantID:  tenantID,
		Reference: ref,
	})
	if err != nil {
		return nil, translate(err, domain.ErrMemberNotFound, nil)
	}

	return rowToMember(row), nil
}

// LockForUpdate locks the member row until tx ends.
func (r *MemberRepository) LockForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.Member, error) {
	row, err := queries(r.db, tx).LockMember(ctx, generated.LockMemberParams{
		TenantID: tenantID,
		ID:       id,
	})
	if err != nil {
		return nil, translate(err, domain.ErrMemberNotFound, nil)
	}

	return rowToMember(row), nil
}

func rowToMember(row generated.Member) *domain.Member {
	return &domain.Member{
		ID:           row.ID,
		TenantID:     row.TenantID,
		MemberNumber: row.MemberNumber,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        row.Email,
		IsActive:     row.IsActive,
	}
}
