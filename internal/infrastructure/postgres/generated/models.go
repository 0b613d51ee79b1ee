package generated

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type Account struct {
	ID        string             `json:"id"`
	TenantID  string             `json:"tenant_id"`
	OwnerID   string             `json:"owner_id"`
	Kind      string             `json:"kind"`
	Currency  string             `json:"currency"`
	Balance   pgtype.Numeric     `json:"balance"`
	Version   int64              `json:"version"`
	IsActive  bool               `json:"is_active"`
	CreatedAt pgtype.Timestamptz `json:"created_at"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

type AuditLog struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenant_id"`
	ActorID      string             `json:"actor_id"`
	Action       string             `json:"action"`
	ResourceType string             `json:"resource_type"`
	ResourceID   string             `json:"resource_id"`
	BeforeState  []byte             `json:"before_state"`
	AfterState   []byte             `json:"after_state"`
	Status       string             `json:"status"`
	ErrorMessage string             `json:"error_message"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type Contribution struct {
	ID               string             `json:"id"`
	TenantID         string             `json:"tenant_id"`
	MemberID         string             `json:"member_id"`
	Amount           pgtype.Numeric     `json:"amount"`
	ContributionType string             `json:"contribution_type"`
	PaymentMethod    string             `json:"payment_method"`
	PaymentDate      pgtype.Date        `json:"payment_date"`
	Notes            string             `json:"notes"`
	Status           string             `json:"status"`
	CreatedBy        string             `json:"created_by"`
	ReviewedBy       pgtype.Text        `json:"reviewed_by"`
	ReviewedAt       pgtype.Timestamptz `json:"reviewed_at"`
	CreatedAt        pgtype.Timestamptz `json:"created_at"`
	UpdatedAt        pgtype.Timestamptz `json:"updated_at"`
}

type InvestmentReturn struct {
	ID          string             `json:"id"`
	TenantID    string             `json:"tenant_id"`
	MemberID    string             `json:"member_id"`
	Amount      pgtype.Numeric     `json:"amount"`
	Description string             `json:"description"`
	Status      string             `json:"status"`
	PaidAt      pgtype.Timestamptz `json:"paid_at"`
	CreatedAt   pgtype.Timestamptz `json:"created_at"`
}

type JournalEntry struct {
	ID             string             `json:"id"`
	TenantID       string             `json:"tenant_id"`
	AccountID      string             `json:"account_id"`
	EntryType      string             `json:"entry_type"`
	Amount         pgtype.Numeric     `json:"amount"`
	BalanceBefore  pgtype.Numeric     `json:"balance_before"`
	BalanceAfter   pgtype.Numeric     `json:"balance_after"`
	AccountVersion int64              `json:"account_version"`
	Reference      string             `json:"reference"`
	ReferenceType  string             `json:"reference_type"`
	Description    string             `json:"description"`
	Metadata       []byte             `json:"metadata"`
	CreatedBy      string             `json:"created_by"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

type Loan struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenant_id"`
	MemberID     string             `json:"member_id"`
	Amount       pgtype.Numeric     `json:"amount"`
	InterestRate pgtype.Numeric     `json:"interest_rate"`
	TenureMonths int32              `json:"tenure_months"`
	Purpose      string             `json:"purpose"`
	Status       string             `json:"status"`
	CreatedBy    string             `json:"created_by"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type Member struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenant_id"`
	MemberNumber string             `json:"member_number"`
	FirstName    string             `json:"first_name"`
	LastName     string             `json:"last_name"`
	Email        string             `json:"email"`
	IsActive     bool               `json:"is_active"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type Mortgage struct {
	ID             string             `json:"id"`
	TenantID       string             `json:"tenant_id"`
	MemberID       string             `json:"member_id"`
	PropertyID     pgtype.Text        `json:"property_id"`
	Provider       string             `json:"provider"`
	Amount         pgtype.Numeric     `json:"amount"`
	InterestRate   pgtype.Numeric     `json:"interest_rate"`
	TenureYears    int32              `json:"tenure_years"`
	MonthlyPayment pgtype.Numeric     `json:"monthly_payment"`
	Status         string             `json:"status"`
	CreatedBy      string             `json:"created_by"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}

type OutboxEvent struct {
	ID            string             `json:"id"`
	TenantID      string             `json:"tenant_id"`
	AggregateID   string             `json:"aggregate_id"`
	AggregateType string             `json:"aggregate_type"`
	EventType     string             `json:"event_type"`
	Payload       []byte             `json:"payload"`
	CreatedAt     pgtype.Timestamptz `json:"created_at"`
	PublishedAt   pgtype.Timestamptz `json:"published_at"`
	Published     bool               `json:"published"`
}

type Property struct {
	ID           string             `json:"id"`
	TenantID     string             `json:"tenant_id"`
	Name         string             `json:"name"`
	PropertyType string             `json:"property_type"`
	Location     string             `json:"location"`
	Price        pgtype.Numeric     `json:"price"`
	Size         string             `json:"size"`
	Status       string             `json:"status"`
	CreatedBy    string             `json:"created_by"`
	CreatedAt    pgtype.Timestamptz `json:"created_at"`
}

type Refund struct {
	ID             string             `json:"id"`
	TenantID       string             `json:"tenant_id"`
	MemberID       string             `json:"member_id"`
	Source         string             `json:"source"`
	Amount         pgtype.Numeric     `json:"amount"`
	Reason         string             `json:"reason"`
	Notes          string             `json:"notes"`
	ProcessedBy    string             `json:"processed_by"`
	Reference      string             `json:"reference"`
	JournalEntryID pgtype.Text        `json:"journal_entry_id"`
	Status         string             `json:"status"`
	Metadata       []byte             `json:"metadata"`
	CreatedAt      pgtype.Timestamptz `json:"created_at"`
}
