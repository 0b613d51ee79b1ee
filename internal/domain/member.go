package domain

// Member is the read-only view of a cooperative member the ledger needs.
type Member struct {
	ID           string
	TenantID     string
	MemberNumber string
	FirstName    string
	LastName     string
	Email        string
	IsActive     bool
}

// FullName returns the member's display name.
func (m *Member) FullName() string {
	if m.LastName == "" {
		return m.FirstName
	}
	return m.FirstName + " " + m.LastName
}
