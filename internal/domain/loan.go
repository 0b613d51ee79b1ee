package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// ApplicationStatusPending is the status of freshly imported loans and mortgages.
const ApplicationStatusPending = "pending"

// PropertyStatusAvailable is the status of freshly imported properties.
const PropertyStatusAvailable = "available"

// Loan is a member's loan application.
type Loan struct {
	CreatedAt    time.Time
	ID           string
	TenantID     string
	MemberID     string
	Purpose      string
	Status       string
	CreatedBy    string
	Amount       decimal.Decimal
	InterestRate decimal.Decimal
	TenureMonths int
}

// Mortgage is a member's mortgage application with an external provider.
type Mortgage struct {
	CreatedAt      time.Time
	PropertyID     *string
	ID             string
	TenantID       string
	MemberID       string
	Provider       string
	Status         string
	CreatedBy      string
	Amount         decimal.Decimal
	InterestRate   decimal.Decimal
	MonthlyPayment decimal.Decimal
	TenureYears    int
}

// MonthlyPayment returns the annuity instalment for principal at an annual
// percentage rate over years, rounded to two decimal places.
func MonthlyPayment(principal, annualRate decimal.Decimal, years int) decimal.Decimal {
	months := int64(years) * 12
	if months <= 0 {
		return decimal.Zero
	}

	n := decimal.NewFromInt(months)
	if annualRate.IsZero() {
		return principal.Div(n).Round(2)
	}

	r := annualRate.Div(decimal.NewFromInt(1200))
	growth := decimal.NewFromInt(1).Add(r).Pow(n)

	// P * r * (1+r)^n / ((1+r)^n - 1)
	return principal.Mul(r).Mul(growth).Div(growth.Sub(decimal.NewFromInt(1))).Round(2)
}

// Property is an estate unit offered to members.
type Property struct {
	CreatedAt time.Time
	ID        string
	TenantID  string
	Name      string
	Type      string
	Location  string
	Size      string
	Status    string
	CreatedBy string
	Price     decimal.Decimal
}
