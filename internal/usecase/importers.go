package usecase

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
)

// rowPlan persists one parsed row on tx.
type rowPlan func(ctx context.Context, tx Transaction) error

// rowPlanner parses and validates one CSV row. Anything it rejects is a
// row-level failure; nothing has been written yet.
type rowPlanner func(ctx context.Context, fields []string) (rowPlan, error)

var dateLayouts = []string{"2006-01-02", "02/01/2006", "2006/01/02", time.RFC3339}

func (uc *ImportUseCase) planner(kind domain.ImportKind, input ImportInput, members *memberResolver) rowPlanner {
	switch kind {
	case domain.ImportKindContribution:
		return func(ctx context.Context, f []string) (rowPlan, error) {
			return uc.planContribution(ctx, input, members, f)
		}
	case domain.ImportKindLoan:
		return func(ctx context.Context, f []string) (rowPlan, error) {
			return uc.planLoan(ctx, input, members, f)
		}
	case domain.ImportKindMortgage:
		return func(ctx context.Context, f []string) (rowPlan, error) {
			return uc.planMortgage(ctx, input, members, f)
		}
	case domain.ImportKindProperty:
		return func(_ context.Context, f []string) (rowPlan, error) {
			return uc.planProperty(input, f)
		}
	case domain.ImportKindRefund:
		return func(ctx context.Context, f []string) (rowPlan, error) {
			return uc.planRefund(ctx, input, members, f)
		}
	}
	return nil
}

// Member ID, Amount, Type, Payment Method, Payment Date, Notes
func (uc *ImportUseCase) planContribution(ctx context.Context, input ImportInput, members *memberResolver, f []string) (rowPlan, error) {
	amount, err := parseAmount("amount", f[1])
	if err != nil {
		return nil, err
	}

	contributionType := normalizeToken(f[2])
	method := normalizeToken(f[3])
	if err := uc.rules.ValidateContribution(amount, contributionType, method); err != nil {
		return nil, err
	}

	now := uc.now()
	paymentDate := now
	if strings.TrimSpace(f[4]) != "" {
		if paymentDate, err = parseDate("payment_date", f[4]); err != nil {
			return nil, err
		}
	}

	memberID, err := members.resolve(ctx, f[0])
	if err != nil {
		return nil, err
	}

	contribution := &domain.Contribution{
		ID:            uc.idGen.Generate(),
		TenantID:      input.TenantID,
		MemberID:      memberID,
		Amount:        amount,
		Type:          contributionType,
		PaymentMethod: method,
		PaymentDate:   paymentDate,
		Notes:         strings.TrimSpace(f[5]),
		Status:        domain.InflowStatusPending,
		CreatedBy:     input.ActorID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	return func(ctx context.Context, tx Transaction) error {
		return uc.contributionRepo.Create(ctx, tx, contribution)
	}, nil
}

// Member ID, Amount, Interest Rate, Tenure Months, Purpose
func (uc *ImportUseCase) planLoan(ctx context.Context, input ImportInput, members *memberResolver, f []string) (rowPlan, error) {
	amount, err := parseAmount("amount", f[1])
	if err != nil {
		return nil, err
	}

	rate, err := parseRate("interest_rate", f[2])
	if err != nil {
		return nil, err
	}

	tenure, err := parseInt("tenure_months", f[3])
	if err != nil {
		return nil, err
	}

	if err := uc.rules.ValidateLoan(amount, tenure); err != nil {
		return nil, err
	}

	memberID, err := members.resolve(ctx, f[0])
	if err != nil {
		return nil, err
	}

	loan := &domain.Loan{
		ID:           uc.idGen.Generate(),
		TenantID:     input.TenantID,
		MemberID:     memberID,
		Amount:       amount,
		InterestRate: rate,
		TenureMonths: tenure,
		Purpose:      strings.TrimSpace(f[4]),
		Status:       domain.ApplicationStatusPending,
		CreatedBy:    input.ActorID,
		CreatedAt:    uc.now(),
	}

	return func(ctx context.Context, tx Transaction) error {
		return uc.loanRepo.Create(ctx, tx, loan)
	}, nil
}

const maxMortgageYears = 40

// Member ID, Provider, Amount, Interest Rate, Tenure Years, Property ID
func (uc *ImportUseCase) planMortgage(ctx context.Context, input ImportInput, members *memberResolver, f []string) (rowPlan, error) {
	provider := strings.TrimSpace(f[1])
	if provider == "" {
		return nil, domain.NewValidationError("provider", "is required")
	}

	amount, err := parseAmount("amount", f[2])
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(amount); err != nil {
		return nil, err
	}

	rate, err := parseRate("interest_rate", f[3])
	if err != nil {
		return nil, err
	}

	years, err := parseInt("tenure_years", f[4])
	if err != nil {
		return nil, err
	}
	if years < 1 || years > maxMortgageYears {
		return nil, domain.NewValidationError("tenure_years", "must be between 1 and "+strconv.Itoa(maxMortgageYears))
	}

	memberID, err := members.resolve(ctx, f[0])
	if err != nil {
		return nil, err
	}

	mortgage := &domain.Mortgage{
		ID:             uc.idGen.Generate(),
		TenantID:       input.TenantID,
		MemberID:       memberID,
		Provider:       provider,
		Amount:         amount,
		InterestRate:   rate,
		TenureYears:    years,
		MonthlyPayment: domain.MonthlyPayment(amount, rate, years),
		Status:         domain.ApplicationStatusPending,
		CreatedBy:      input.ActorID,
		CreatedAt:      uc.now(),
	}
	if propertyID := strings.TrimSpace(f[5]); propertyID != "" {
		mortgage.PropertyID = &propertyID
	}

	return func(ctx context.Context, tx Transaction) error {
		return uc.mortgageRepo.Create(ctx, tx, mortgage)
	}, nil
}

// Name, Type, Location, Price, Size
func (uc *ImportUseCase) planProperty(input ImportInput, f []string) (rowPlan, error) {
	name := strings.TrimSpace(f[0])
	if name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}

	price, err := parseAmount("price", f[3])
	if err != nil {
		return nil, err
	}
	if err := domain.ValidateAmount(price); err != nil {
		return nil, err
	}

	property := &domain.Property{
		ID:        uc.idGen.Generate(),
		TenantID:  input.TenantID,
		Name:      name,
		Type:      normalizeToken(f[1]),
		Location:  strings.TrimSpace(f[2]),
		Price:     price,
		Size:      strings.TrimSpace(f[4]),
		Status:    domain.PropertyStatusAvailable,
		CreatedBy: input.ActorID,
		CreatedAt: uc.now(),
	}

	return func(ctx context.Context, tx Transaction) error {
		return uc.propertyRepo.Create(ctx, tx, property)
	}, nil
}

// Member ID, Source, Amount, Reason, Notes
func (uc *ImportUseCase) planRefund(ctx context.Context, input ImportInput, members *memberResolver, f []string) (rowPlan, error) {
	amount, err := parseAmount("amount", f[2])
	if err != nil {
		return nil, err
	}

	refund := RefundInput{
		TenantID: input.TenantID,
		ActorID:  input.ActorID,
		MemberID: strings.TrimSpace(f[0]),
		Source:   domain.RefundSource(normalizeToken(f[1])),
		Amount:   amount,
		Reason:   strings.TrimSpace(f[3]),
		Notes:    strings.TrimSpace(f[4]),
		Metadata: map[string]any{"import_batch": input.batchID},
	}
	if err := refund.Validate(); err != nil {
		return nil, err
	}

	if refund.MemberID, err = members.resolve(ctx, f[0]); err != nil {
		return nil, err
	}

	return func(ctx context.Context, tx Transaction) error {
		_, err := uc.refunds.ProcessRefundTx(ctx, tx, refund)
		return err
	}, nil
}

// normalizeToken turns "Bank Transfer" into "bank_transfer".
func normalizeToken(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.Join(strings.Fields(s), "_")
	return strings.ReplaceAll(s, "-", "_")
}

func parseAmount(field, raw string) (decimal.Decimal, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return decimal.Zero, domain.NewValidationError(field, "is required")
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, domain.NewValidationError(field, "must be a number, got "+strconv.Quote(raw))
	}

	return d, nil
}

func parseRate(field, raw string) (decimal.Decimal, error) {
	raw = strings.TrimSuffix(strings.TrimSpace(raw), "%")

	rate, err := parseAmount(field, raw)
	if err != nil {
		return decimal.Zero, err
	}

	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(100)) {
		return decimal.Zero, domain.NewValidationError(field, "must be between 0 and 100")
	}

	return rate, nil
}

func parseInt(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, domain.NewValidationError(field, "must be a whole number")
	}
	return n, nil
}

func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, domain.NewValidationError(field, "must be a date like 2024-01-31")
}
