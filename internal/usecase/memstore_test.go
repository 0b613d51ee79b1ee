package usecase_test

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

// memState is everything a transaction can roll back.
type memState struct {
	accounts      map[string]domain.Account
	entries       []domain.JournalEntry
	refunds       []domain.Refund
	contributions map[string]domain.Contribution
	returns       []domain.InvestmentReturn
	loans         []domain.Loan
	mortgages     []domain.Mortgage
	properties    []domain.Property
	outbox        []domain.OutboxEvent
	audit         []domain.AuditLog
}

func (s memState) clone() memState {
	return memState{
		accounts:      maps.Clone(s.accounts),
		entries:       slices.Clone(s.entries),
		refunds:       slices.Clone(s.refunds),
		contributions: maps.Clone(s.contributions),
		returns:       slices.Clone(s.returns),
		loans:         slices.Clone(s.loans),
		mortgages:     slices.Clone(s.mortgages),
		properties:    slices.Clone(s.properties),
		outbox:        slices.Clone(s.outbox),
		audit:         slices.Clone(s.audit),
	}
}

// memStore is an in-memory stand-in for Postgres. Transactions are fully
// serialised and roll back by restoring a snapshot.
type memStore struct {
	txMu    sync.Mutex
	mu      sync.Mutex
	state   memState
	members map[string]domain.Member
	// failures maps an operation name such as "refunds.create" to the error it returns.
	failures map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		state: memState{
			accounts:      make(map[string]domain.Account),
			contributions: make(map[string]domain.Contribution),
		},
		members:  make(map[string]domain.Member),
		failures: make(map[string]error),
	}
}

func (s *memStore) failOn(op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[op] = err
}

func (s *memStore) fail(op string) error {
	return s.failures[op]
}

func (s *memStore) addMember(tenantID, id, number string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.members[id] = domain.Member{ID: id, TenantID: tenantID, MemberNumber: number, FirstName: "Member", LastName: id, IsActive: true}
}

func (s *memStore) addContribution(tenantID, memberID, amount string, status domain.InflowStatus) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := fmt.Sprintf("contrib-%d", len(s.state.contributions)+1)
	s.state.contributions[id] = domain.Contribution{
		ID: id, TenantID: tenantID, MemberID: memberID, Amount: decimal.RequireFromString(amount),
		Status: status, Type: "monthly", PaymentMethod: "cash",
	}
	return id
}

func (s *memStore) addReturn(tenantID, memberID, amount string, status domain.InflowStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.returns = append(s.state.returns, domain.InvestmentReturn{
		ID: fmt.Sprintf("ret-%d", len(s.state.returns)+1), TenantID: tenantID, MemberID: memberID,
		Amount: decimal.RequireFromString(amount), Status: status,
	})
}

func (s *memStore) snapshot() memState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

func (s *memStore) restore(st memState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
}

// Test accessors.

func (s *memStore) accountOf(tenantID, ownerID string, kind domain.AccountKind) (domain.Account, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.state.accounts {
		if a.TenantID == tenantID && a.OwnerID == ownerID && a.Kind == kind {
			return a, true
		}
	}
	return domain.Account{}, false
}

func (s *memStore) entriesOf(accountID string) []domain.JournalEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.JournalEntry
	for _, e := range s.state.entries {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

func (s *memStore) counts() (entries, refunds, outbox, audit int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.entries), len(s.state.refunds), len(s.state.outbox), len(s.state.audit)
}

func (s *memStore) refundList() []domain.Refund {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.refunds)
}

// Transactions.

type memTxManager struct{ s *memStore }

func (m memTxManager) Begin(ctx context.Context) (usecase.Transaction, error) {
	if err := m.s.fail("tx.begin"); err != nil {
		return nil, err
	}
	m.s.txMu.Lock()
	return &memTx{s: m.s, snap: m.s.snapshot(), root: true}, nil
}

type memTx struct {
	s    *memStore
	snap memState
	root bool
	done bool
}

func (t *memTx) Commit(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("tx is closed")
	}
	t.done = true
	if t.root {
		if err := t.s.fail("tx.commit"); err != nil {
			t.s.restore(t.snap)
			t.s.txMu.Unlock()
			return err
		}
		t.s.txMu.Unlock()
	}
	return nil
}

func (t *memTx) Rollback(ctx context.Context) error {
	if t.done {
		return fmt.Errorf("tx is closed")
	}
	t.done = true
	t.s.restore(t.snap)
	if t.root {
		t.s.txMu.Unlock()
	}
	return nil
}

func (t *memTx) Savepoint(ctx context.Context) (usecase.Transaction, error) {
	return &memTx{s: t.s, snap: t.s.snapshot()}, nil
}

// Accounts.

type memAccounts struct{ s *memStore }

func (r memAccounts) find(tenantID, ownerID string, kind domain.AccountKind) (*domain.Account, error) {
	for _, a := range r.s.state.accounts {
		if a.TenantID == tenantID && a.OwnerID == ownerID && a.Kind == kind {
			acc := a
			return &acc, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r memAccounts) Create(ctx context.Context, tx usecase.Transaction, account *domain.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, err := r.find(account.TenantID, account.OwnerID, account.Kind); err == nil {
		return domain.ErrAccountExists
	}
	r.s.state.accounts[account.ID] = *account
	return nil
}

func (r memAccounts) CreateIfAbsent(ctx context.Context, tx usecase.Transaction, account *domain.Account) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, err := r.find(account.TenantID, account.OwnerID, account.Kind); err == nil {
		return false, nil
	}
	r.s.state.accounts[account.ID] = *account
	return true, nil
}

func (r memAccounts) GetByID(ctx context.Context, id string) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.get"); err != nil {
		return nil, err
	}
	a, ok := r.s.state.accounts[id]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return &a, nil
}

func (r memAccounts) GetByOwner(ctx context.Context, tx usecase.Transaction, tenantID, ownerID string, kind domain.AccountKind) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.find(tenantID, ownerID, kind)
}

func (r memAccounts) GetByOwnerForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, ownerID string, kind domain.AccountKind) (*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.lock"); err != nil {
		return nil, err
	}
	return r.find(tenantID, ownerID, kind)
}

func (r memAccounts) UpdateBalance(ctx context.Context, tx usecase.Transaction, id string, balance decimal.Decimal, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("accounts.update"); err != nil {
		return err
	}
	a, ok := r.s.state.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Balance = balance
	a.Version++
	a.UpdatedAt = updatedAt
	r.s.state.accounts[id] = a
	return nil
}

func (r memAccounts) SetActive(ctx context.Context, tx usecase.Transaction, id string, active bool, updatedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.state.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.IsActive = active
	a.UpdatedAt = updatedAt
	r.s.state.accounts[id] = a
	return nil
}

func (r memAccounts) ListByOwner(ctx context.Context, tenantID, ownerID string) ([]*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Account
	for _, a := range r.s.state.accounts {
		if a.TenantID == tenantID && a.OwnerID == ownerID {
			acc := a
			out = append(out, &acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

func (r memAccounts) ListByTenant(ctx context.Context, tenantID string, limit, offset int) ([]*domain.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Account
	for _, a := range r.s.state.accounts {
		if a.TenantID == tenantID {
			acc := a
			out = append(out, &acc)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return page(out, limit, offset), nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := min(offset+limit, len(items))
	return items[offset:end]
}

// Journal.

type memJournal struct{ s *memStore }

func (r memJournal) Create(ctx context.Context, tx usecase.Transaction, entry *domain.JournalEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("journal.create"); err != nil {
		return err
	}
	r.s.state.entries = append(r.s.state.entries, *entry)
	return nil
}

func (r memJournal) GetByID(ctx context.Context, id string) (*domain.JournalEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, e := range r.s.state.entries {
		if e.ID == id {
			entry := e
			return &entry, nil
		}
	}
	return nil, domain.ErrEntryNotFound
}

func (r memJournal) ListByAccount(ctx context.Context, accountID string, limit, offset int) ([]*domain.JournalEntry, error) {
	history, _ := r.History(ctx, accountID)
	slices.Reverse(history)
	return page(history, limit, offset), nil
}

func (r memJournal) History(ctx context.Context, accountID string) ([]*domain.JournalEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.JournalEntry
	for _, e := range r.s.state.entries {
		if e.AccountID == accountID {
			entry := e
			out = append(out, &entry)
		}
	}
	return out, nil
}

// Refunds.

type memRefunds struct{ s *memStore }

func (r memRefunds) Create(ctx context.Context, tx usecase.Transaction, refund *domain.Refund) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("refunds.create"); err != nil {
		return err
	}
	r.s.state.refunds = append(r.s.state.refunds, *refund)
	return nil
}

func (r memRefunds) GetByID(ctx context.Context, tenantID, id string) (*domain.Refund, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rf := range r.s.state.refunds {
		if rf.ID == id && rf.TenantID == tenantID {
			refund := rf
			return &refund, nil
		}
	}
	return nil, domain.ErrRefundNotFound
}

func (r memRefunds) ListByMember(ctx context.Context, tenantID, memberID string, source domain.RefundSource, limit, offset int) ([]*domain.Refund, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*domain.Refund
	for i := len(r.s.state.refunds) - 1; i >= 0; i-- {
		rf := r.s.state.refunds[i]
		if rf.TenantID == tenantID && rf.MemberID == memberID && (source == "" || rf.Source == source) {
			out = append(out, &rf)
		}
	}
	return page(out, limit, offset), nil
}

func (r memRefunds) SumBySource(ctx context.Context, tx usecase.Transaction, tenantID, memberID string, source domain.RefundSource) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, rf := range r.s.state.refunds {
		if rf.TenantID == tenantID && rf.MemberID == memberID && rf.Source == source {
			sum = sum.Add(rf.Amount)
		}
	}
	return sum, nil
}

// Inflows.

type memContributions struct{ s *memStore }

func (r memContributions) Create(ctx context.Context, tx usecase.Transaction, c *domain.Contribution) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("contributions.create"); err != nil {
		return err
	}
	r.s.state.contributions[c.ID] = *c
	return nil
}

func (r memContributions) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.Contribution, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.state.contributions[id]
	if !ok || c.TenantID != tenantID {
		return nil, domain.ErrContributionNotFound
	}
	return &c, nil
}

func (r memContributions) UpdateStatus(ctx context.Context, tx usecase.Transaction, id string, status domain.InflowStatus, reviewedBy string, reviewedAt time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.state.contributions[id]
	if !ok {
		return domain.ErrContributionNotFound
	}
	c.Status = status
	c.ReviewedBy = reviewedBy
	c.ReviewedAt = &reviewedAt
	r.s.state.contributions[id] = c
	return nil
}

func (r memContributions) SumApproved(ctx context.Context, tx usecase.Transaction, tenantID, memberID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, c := range r.s.state.contributions {
		if c.TenantID == tenantID && c.MemberID == memberID && c.Status == domain.InflowStatusApproved {
			sum = sum.Add(c.Amount)
		}
	}
	return sum, nil
}

type memReturns struct{ s *memStore }

func (r memReturns) Create(ctx context.Context, tx usecase.Transaction, ret *domain.InvestmentReturn) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state.returns = append(r.s.state.returns, *ret)
	return nil
}

func (r memReturns) SumApproved(ctx context.Context, tx usecase.Transaction, tenantID, memberID string) (decimal.Decimal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	sum := decimal.Zero
	for _, ret := range r.s.state.returns {
		if ret.TenantID == tenantID && ret.MemberID == memberID && ret.Status == domain.InflowStatusApproved {
			sum = sum.Add(ret.Amount)
		}
	}
	return sum, nil
}

// Members.

type memMembers struct {
	s       *memStore
	lookups *atomic.Int32
}

func (r memMembers) GetByID(ctx context.Context, tenantID, id string) (*domain.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.members[id]
	if !ok || m.TenantID != tenantID {
		return nil, domain.ErrMemberNotFound
	}
	return &m, nil
}

func (r memMembers) FindByReference(ctx context.Context, tenantID, ref string) (*domain.Member, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.lookups != nil {
		r.lookups.Add(1)
	}
	if err := r.s.fail("members.find"); err != nil {
		return nil, err
	}
	for _, m := range r.s.members {
		if m.TenantID == tenantID && (m.ID == ref || m.MemberNumber == ref) {
			member := m
			return &member, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (r memMembers) LockForUpdate(ctx context.Context, tx usecase.Transaction, tenantID, id string) (*domain.Member, error) {
	return r.GetByID(ctx, tenantID, id)
}

// Import targets.

type memLoans struct{ s *memStore }

func (r memLoans) Create(ctx context.Context, tx usecase.Transaction, loan *domain.Loan) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state.loans = append(r.s.state.loans, *loan)
	return nil
}

type memMortgages struct{ s *memStore }

func (r memMortgages) Create(ctx context.Context, tx usecase.Transaction, m *domain.Mortgage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state.mortgages = append(r.s.state.mortgages, *m)
	return nil
}

type memProperties struct{ s *memStore }

func (r memProperties) Create(ctx context.Context, tx usecase.Transaction, p *domain.Property) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state.properties = append(r.s.state.properties, *p)
	return nil
}

// Outbox and audit.

type memOutbox struct{ s *memStore }

func (r memOutbox) Create(ctx context.Context, tx usecase.Transaction, event *domain.OutboxEvent) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state.outbox = append(r.s.state.outbox, *event)
	return nil
}

func (r memOutbox) GetUnpublished(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	return nil, nil
}

func (r memOutbox) MarkPublished(ctx context.Context, id string, publishedAt time.Time) error {
	return nil
}

func (r memOutbox) DeletePublished(ctx context.Context, before time.Time) error {
	return nil
}

type memAudit struct{ s *memStore }

func (r memAudit) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.state.audit = append(r.s.state.audit, *log)
	return nil
}

func (r memAudit) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	return nil, nil
}

// IDs.

type seqIDs struct{ n atomic.Int64 }

func (g *seqIDs) Generate() string {
	return fmt.Sprintf("id-%06d", g.n.Add(1))
}

// memLocker is a single-process Locker.
type memLocker struct {
	mu   sync.Mutex
	held map[string]string
}

func newMemLocker() *memLocker {
	return &memLocker{held: make(map[string]string)}
}

func (l *memLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.held[key]; ok {
		return "", false, nil
	}
	token := fmt.Sprintf("token-%s", key)
	l.held[key] = token
	return token, true, nil
}

func (l *memLocker) Release(ctx context.Context, key, token string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] == token {
		delete(l.held, key)
	}
	return nil
}

// memCache is a map-backed Cache.
type memCache struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemCache() *memCache {
	return &memCache{data: make(map[string]string)}
}

func (c *memCache) Get(ctx context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[key]
	return v, ok, nil
}

func (c *memCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = value
	return nil
}

func (c *memCache) Delete(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
	return nil
}

// ledger wires every use case to one memStore.
type ledger struct {
	store         *memStore
	ids           *seqIDs
	locker        *memLocker
	cache         *memCache
	lookups       *atomic.Int32
	mutator       *usecase.BalanceMutator
	availability  *usecase.AvailabilityUseCase
	refunds       *usecase.RefundUseCase
	imports       *usecase.ImportUseCase
	accounts      *usecase.AccountUseCase
	journal       *usecase.JournalUseCase
	contributions *usecase.ContributionUseCase
	recon         *usecase.ReconciliationUseCase
}

const (
	tenantA = "tenant-a"
	tenantB = "tenant-b"
	actor   = "admin-1"
)

func newLedger() *ledger {
	s := newMemStore()
	ids := &seqIDs{}
	lookups := &atomic.Int32{}
	logger := nopLogger()
	txm := memTxManager{s: s}

	accounts := memAccounts{s: s}
	journal := memJournal{s: s}
	refunds := memRefunds{s: s}
	contributions := memContributions{s: s}
	members := memMembers{s: s, lookups: lookups}
	outbox := memOutbox{s: s}
	audit := memAudit{s: s}

	l := &ledger{store: s, ids: ids, locker: newMemLocker(), cache: newMemCache(), lookups: lookups}

	l.mutator = usecase.NewBalanceMutator(txm, accounts, journal, outbox, audit, ids, logger, nil)
	l.availability = usecase.NewAvailabilityUseCase(accounts, refunds, contributions, memReturns{s: s}, logger)
	l.refunds = usecase.NewRefundUseCase(txm, accounts, members, refunds, outbox, audit, l.mutator, l.availability, ids, logger, nil)
	l.imports = usecase.NewImportUseCase(txm, usecase.ImportRepositories{
		Members:       members,
		Contributions: contributions,
		Loans:         memLoans{s: s},
		Mortgages:     memMortgages{s: s},
		Properties:    memProperties{s: s},
		Audit:         audit,
	}, l.refunds, l.locker, l.cache, ids, usecase.ImportConfig{Rules: domain.DefaultImportRules()}, logger, nil)
	l.accounts = usecase.NewAccountUseCase(txm, accounts, audit, ids, logger, nil)
	l.journal = usecase.NewJournalUseCase(accounts, journal, logger)
	l.contributions = usecase.NewContributionUseCase(txm, contributions, outbox, audit, ids, logger)
	l.recon = usecase.NewReconciliationUseCase(accounts, journal, nil, logger, nil)

	return l
}

// topUp credits a member's wallet and fails the test on error.
func (l *ledger) topUp(t testingT, memberID, amount string) {
	t.Helper()
	_, err := l.mutator.Credit(context.Background(), usecase.AdjustBalanceInput{
		TenantID: tenantA,
		ActorID:  actor,
		OwnerID:  memberID,
		Kind:     domain.AccountKindWallet,
		Amount:   decimal.RequireFromString(amount),
	})
	if err != nil {
		t.Fatalf("top up %s: %v", memberID, err)
	}
}

type testingT interface {
	Helper()
	Fatalf(format string, args ...any)
}

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

func (s *memStore) deactivateMember(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := s.members[id]
	m.IsActive = false
	s.members[id] = m
}
