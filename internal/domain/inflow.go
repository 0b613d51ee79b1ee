package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// InflowStatus is the review state of a contribution or investment return.
type InflowStatus string

const (
	InflowStatusPending  InflowStatus = "pending"
	InflowStatusApproved InflowStatus = "approved"
	InflowStatusRejected InflowStatus = "rejected"
)

// CanTransitionTo reports whether a review may move the inflow to next.
// Only pending inflows can be reviewed.
func (s InflowStatus) CanTransitionTo(next InflowStatus) bool {
	return s == InflowStatusPending && (next == InflowStatusApproved || next == InflowStatusRejected)
}

// Contribution is money paid in by a member.
type Contribution struct {
	PaymentDate   time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
	ReviewedAt    *time.Time
	ID            string
	TenantID      string
	MemberID      string
	Type          string
	PaymentMethod string
	Notes         string
	CreatedBy     string
	ReviewedBy    string
	Status        InflowStatus
	Amount        decimal.Decimal
}

// InvestmentReturn is a payout earned by a member on an investment plan.
type InvestmentReturn struct {
	PaidAt      time.Time
	CreatedAt   time.Time
	ID          string
	TenantID    string
	MemberID    string
	Description string
	Status      InflowStatus
	Amount      decimal.Decimal
}
