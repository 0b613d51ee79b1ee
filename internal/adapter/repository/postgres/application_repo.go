package postgres

import (
	"context"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

// LoanRepository implements usecase.LoanRepository.
type LoanRepository struct {
	db generated.DBTX
}

// NewLoanRepository creates a new LoanRepository.
func NewLoanRepository(db generated.DBTX) *LoanRepository {
	return &LoanRepository{db: db}
}

// Create inserts a loan application.
func (r *LoanRepository) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	err := queries(r.db, tx).CreateLoan(ctx, generated.CreateLoanParams{
		ID:           loan.ID,
		TenantID:     loan.TenantID,
		MemberID:     loan.MemberID,
		Amount:       decimalToNumeric(loan.Amount),
		InterestRate: decimalToNumeric(loan.InterestRate),
		TenureMonths: int32(loan.TenureMonths),
		Purpose:      loan.Purpose,
		Status:       loan.Status,
		CreatedBy:    loan.CreatedBy,
		CreatedAt:    timeToPgTimestamptz(loan.CreatedAt),
	})

	return translate(err, nil, nil)
}

// MortgageRepository implements usecase.MortgageRepository.
type MortgageRepository struct {
	db generated.DBTX
}

// NewMortgageRepository creates a new MortgageRepository.
func NewMortgageRepository(db generated.DBTX) *MortgageRepository {
	return &MortgageRepository{db: db}
}

// Create inserts a mortgage application.
func (r *MortgageRepository) Create(ctx context.Context, tx usecase.Transaction, m *domain.Mortgage) error {
	err := queries(r.db, tx).CreateMortgage(ctx, generated.CreateMortgageParams{
		ID:             m.ID,
		TenantID:       m.TenantID,
		MemberID:       m.MemberID,
		PropertyID:     stringToPgText(m.PropertyID),
		Provider:       m.Provider,
		Amount:         decimalToNumeric(m.Amount),
		InterestRate:   decimalToNumeric(m.InterestRate),
		TenureYears:    int32(m.TenureYears),
		MonthlyPayment: decimalToNumeric(m.MonthlyPayment),
		Status:         m.Status,
		CreatedBy:      m.CreatedBy,
		CreatedAt:      timeToPgTimestamptz(m.CreatedAt),
	})

	return translate(err, nil, nil)
}

// PropertyRepository implements usecase.PropertyRepository.
type PropertyRepository struct {
	db generated.DBTX
}

// NewPropertyRepository creates a new PropertyRepository.
func NewPropertyRepository(db generated.DBTX) *PropertyRepository {
	return &PropertyRepository{db: db}
}

// Create inserts a property.
func (r *PropertyRepository) Create(ctx context.Context, tx usecase.Transaction, p *domain.Property) error {
	err := queries(r.db, tx).CreateProperty(ctx, generated.CreatePropertyParams{
		ID:           p.ID,
		TenantID:     p.TenantID,
		Name:         p.Name,
		PropertyType: p.Type,
		Location:     p.Location,
		Price:        decimalToNumeric(p.Price),
		Size:         p.Size,
		Status:       p.Status,
		CreatedBy:    p.CreatedBy,
		CreatedAt:    timeToPgTimestamptz(p.CreatedAt),
	})

	return translate(err, nil, nil)
}
