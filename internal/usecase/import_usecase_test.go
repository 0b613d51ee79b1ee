package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/usecase"
)

func importCSV(kind domain.ImportKind, body string) usecase.ImportInput {
	return usecase.ImportInput{
		TenantID: tenantA,
		ActorID:  actor,
		Kind:     kind,
		Reader:   strings.NewReader(body),
	}
}

const contributionHeader = "Member ID,Amount,Type,Payment Method,Payment Date,Notes\n"

func TestImport_UnknownMemberIsolatedToItsRow(t *testing.T) {
	l := newLedger()
	l.store.addMember(tenantA, "m-1", "COOP-001")
	l.store.addMember(tenantA, "m-3", "COOP-003")

	csv := contributionHeader +
		"COOP-001,5000,monthly,cash,2024-01-31,january\n" +
		"COOP-404,5000,monthly,cash,2024-01-31,\n" +
		"m-3,7500.50,Special,Bank Transfer,31/01/2024,\n"

	result, err := l.imports.Import(context.Background(), importCSV(domain.ImportKindContribution, csv))
	require.NoError(t, err)

	assert.Equal(t, 3, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Message, "COOP-404")
	assert.NotEmpty(t, result.BatchID)

	require.Len(t, l.store.state.contributions, 2)
	for _, c := range l.store.state.contributions {
		assert.Equal(t, domain.InflowStatusPending, c.Status)
		assert.Equal(t, actor, c.CreatedBy)
		if c.MemberID == "m-3" {
			assert.Equal(t, "special", c.Type)
			assert.Equal(t, "bank_transfer", c.PaymentMethod)
			assert.True(t, c.Amount.Equal(dec("7500.50")))
		}
	}
}

func TestImport_ContributionRules(t *testing.T) {
	tests := []struct {
		name string
		row  string
		want string
	}{
		{"non numeric amount", "COOP-001,abc,monthly,cash,,", "must be a number"},
		{"below minimum", "COOP-001,999.99,monthly,cash,,", "at least 1000.00"},
		{"above maximum", "COOP-001,100000001,monthly,cash,,", "at most 100000000.00"},
		{"unknown type", "COOP-001,5000,weekly,cash,,", "type must be one of"},
		{"unknown payment method", "COOP-001,5000,monthly,crypto,,", "payment_method must be one of"},
		{"bad date", "COOP-001,5000,monthly,cash,tomorrow,", "payment_date"},
		{"too few columns", "COOP-001,5000,monthly", "expected 6 columns, got 3"},
		{"too many columns", "COOP-001,5000,monthly,cash,,,extra", "expected 6 columns, got 7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger()
			l.store.addMember(tenantA, "m-1", "COOP-001")

			result, err := l.imports.Import(context.Background(), importCSV(domain.ImportKindContribution, contributionHeader+tt.row+"\n"))
			require.NoError(t, err)

			assert.Equal(t, 1, result.Total)
			assert.Equal(t, 0, result.Successful)
			assert.Equal(t, 1, result.Failed)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, 2, result.Errors[0].Line)
			assert.Contains(t, result.Errors[0].Message, tt.want)
		})
	}
}

func TestImport_BlankRowsAreSkipped(t *testing.T) {
	l := newLedger()
	l.store.addMember(tenantA, "m-1", "COOP-001")

	csv := contributionHeader +
		"COOP-001,5000,monthly,cash,,\n" +
		"\n" +
		",,,,,\n" +
		"COOP-404,5000,monthly,cash,,\n"

	result, err := l.imports.Import(context.Background(), importCSV(domain.ImportKindContribution, csv))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 1, result.Successful)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 5, result.Errors[0].Line, "line numbers count blank lines too")
}

func TestImport_ErrorsAreTruncated(t *testing.T) {
	l := newLedger()

	var b strings.Builder
	b.WriteString(contributionHeader)
	for i := 0; i < 60; i++ {
		fmt.Fprintf(&b, "COOP-%03d,5000,monthly,cash,,\n", i)
	}

	result, err := l.imports.Import(context.Background(), importCSV(domain.ImportKindContribution, b.String()))
	require.NoError(t, err)

	assert.Equal(t, 60, result.Total)
	assert.Equal(t, 60, result.Failed)
	assert.Len(t, result.Errors, domain.MaxImportErrors)
	assert.Equal(t, 2, result.Errors[0].Line)
	assert.Equal(t, 51, result.Errors[49].Line)
}

func TestImport_RejectsWholeUpload(t *testing.T) {
	tests := []struct {
		name  string
		input usecase.ImportInput
		want  error
	}{
		{"empty file", importCSV(domain.ImportKindLoan, ""), domain.ErrValidation},
		{"header with wrong width", importCSV(domain.ImportKindLoan, "Member ID,Amount\n"), domain.ErrValidation},
		{"unknown kind", importCSV(domain.ImportKind("shares"), "a\n"), domain.ErrInvalidImportKind},
		{"missing tenant", usecase.ImportInput{ActorID: actor, Kind: domain.ImportKindLoan, Reader: strings.NewReader("")}, domain.ErrMissingTenant},
		{"missing actor", usecase.ImportInput{TenantID: tenantA, Kind: domain.ImportKindLoan, Reader: strings.NewReader("")}, domain.ErrMissingActor},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newLedger()
			_, err := l.imports.Import(context.Background(), tt.input)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestImport_TooManyRows(t *testing.T) {
	l := newLedger()
	s := l.store
	small := usecase.NewImportUseCase(memTxManager{s: s}, usecase.ImportRepositories{
		Members:    memMembers{s: s},
		Properties: memProperties{s: s},
	}, l.refunds, nil, nil, l.ids, usecase.ImportConfig{MaxRows: 2}, nopLogger(), nil)

	csv := "Name,Type,Location,Price,Size\n" +
		"A,duplex,Lekki,100000,500sqm\n" +
		"B,duplex,Lekki,100000,500sqm\n" +
		"C,duplex,Lekki,100000,500sqm\n"

	_, err := small.Import(context.Background(), importCSV(domain.ImportKindProperty, csv))
	require.ErrorIs(t, err, domain.ErrImportTooLarge)
	assert.Empty(t, s.state.properties)
}

func TestImport_LoansMortgagesAndProperties(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	l.store.addMember(tenantA, "m-1", "COOP-001")

	loans := "Member ID,Amount,Interest Rate,Tenure Months,Purpose\n" +
		"COOP-001,250000,12.5,24,Roofing\n" +
		"COOP-001,250000,12.5,0,Too short\n" +
		"COOP-001,600000000,5,12,Too large\n"

	result, err := l.imports.Import(ctx, importCSV(domain.ImportKindLoan, loans))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, l.store.state.loans, 1)
	assert.Equal(t, 24, l.store.state.loans[0].TenureMonths)
	assert.Equal(t, domain.ApplicationStatusPending, l.store.state.loans[0].Status)

	mortgages := "Member ID,Provider,Amount,Interest Rate,Tenure Years,Property ID\n" +
		"COOP-001,FMBN,100000,12%,1,prop-7\n" +
		"COOP-001,,100000,12,1,\n" +
		"COOP-001,FMBN,100000,12,41,\n"

	result, err = l.imports.Import(ctx, importCSV(domain.ImportKindMortgage, mortgages))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, l.store.state.mortgages, 1)
	mortgage := l.store.state.mortgages[0]
	assert.True(t, mortgage.MonthlyPayment.Equal(dec("8884.88")), "got %s", mortgage.MonthlyPayment)
	require.NotNil(t, mortgage.PropertyID)
	assert.Equal(t, "prop-7", *mortgage.PropertyID)

	properties := "Name,Type,Location,Price,Size\n" +
		"Unit 4B,Semi Detached,Lekki,\"45,000,000\",450sqm\n" +
		",bungalow,Ikeja,100,\n"

	result, err = l.imports.Import(ctx, importCSV(domain.ImportKindProperty, properties))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, l.store.state.properties, 1)
	assert.Equal(t, "semi_detached", l.store.state.properties[0].Type)
	assert.True(t, l.store.state.properties[0].Price.Equal(dec("45000000")))
	assert.Equal(t, domain.PropertyStatusAvailable, l.store.state.properties[0].Status)
}

const refundHeader = "Member ID,Source,Amount,Reason,Notes\n"

func TestImport_RefundsShareOneTransaction(t *testing.T) {
	l := newLedger()
	l.store.addMember(tenantA, "m-1", "COOP-001")
	l.store.addMember(tenantA, "m-2", "COOP-002")
	l.topUp(t, "m-1", "1000")
	l.store.addContribution(tenantA, "m-2", "3000", domain.InflowStatusApproved)

	csv := refundHeader +
		"COOP-001,wallet,600,exit,\n" +
		"COOP-001,wallet,600,exit again,\n" +
		"COOP-404,wallet,1,nobody,\n" +
		"COOP-002,Contribution,3000,exit,\n"

	result, err := l.imports.Import(context.Background(), importCSV(domain.ImportKindRefund, csv))
	require.NoError(t, err)

	assert.Equal(t, 4, result.Total)
	assert.Equal(t, 2, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 3, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Message, "insufficient balance")
	assert.Equal(t, 4, result.Errors[1].Line)

	account, _ := l.store.accountOf(tenantA, "m-1", domain.AccountKindWallet)
	assert.True(t, account.Balance.Equal(dec("400")))
	assert.Len(t, l.store.entriesOf(account.ID), 2, "the rejected row left no journal entry")

	refunds := l.store.refundList()
	require.Len(t, refunds, 2)
	for _, r := range refunds {
		assert.Equal(t, result.BatchID, r.Metadata["import_batch"])
	}
}

func TestImport_RefundFaultRollsBackBatch(t *testing.T) {
	l := newLedger()
	l.store.addMember(tenantA, "m-1", "COOP-001")
	l.topUp(t, "m-1", "1000")

	csv := refundHeader +
		"COOP-001,wallet,100,first,\n" +
		"COOP-001,wallet,100,second,\n"

	// Fail the commit so both rows have been applied before the batch dies.
	l.store.failOn("tx.commit", errors.New("could not serialize access"))

	result, err := l.imports.Import(context.Background(), importCSV(domain.ImportKindRefund, csv))
	require.NoError(t, err)

	assert.Equal(t, 2, result.Total)
	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 2, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 0, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Message, "rolled back")
	assert.NotContains(t, result.Errors[0].Message, "serialize")

	assert.Empty(t, l.store.refundList())
	account, _ := l.store.accountOf(tenantA, "m-1", domain.AccountKindWallet)
	assert.True(t, account.Balance.Equal(dec("1000")))
}

func TestImport_RefundRowFaultRollsBackBatch(t *testing.T) {
	l := newLedger()
	l.store.addMember(tenantA, "m-1", "COOP-001")
	l.topUp(t, "m-1", "1000")
	l.store.failOn("journal.create", errors.New("disk full"))

	csv := refundHeader + "COOP-001,wallet,100,first,\n"

	result, err := l.imports.Import(context.Background(), importCSV(domain.ImportKindRefund, csv))
	require.NoError(t, err)

	assert.Equal(t, 0, result.Successful)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 0, result.Errors[0].Line)
	assert.Contains(t, result.Errors[0].Message, "line 2")
}

func TestImport_OneImportPerTenantAndKind(t *testing.T) {
	l := newLedger()
	ctx := context.Background()

	_, ok, err := l.locker.Acquire(ctx, "import:"+tenantA+":loan", 0)
	require.NoError(t, err)
	require.True(t, ok)

	_, err = l.imports.Import(ctx, importCSV(domain.ImportKindLoan, "Member ID,Amount,Interest Rate,Tenure Months,Purpose\n"))
	require.ErrorIs(t, err, domain.ErrImportInProgress)
	require.ErrorIs(t, err, domain.ErrConflict)

	// Other kinds and other tenants are not blocked.
	_, err = l.imports.Import(ctx, importCSV(domain.ImportKindProperty, "Name,Type,Location,Price,Size\n"))
	require.NoError(t, err)

	other := importCSV(domain.ImportKindLoan, "Member ID,Amount,Interest Rate,Tenure Months,Purpose\n")
	other.TenantID = tenantB
	_, err = l.imports.Import(ctx, other)
	require.NoError(t, err)
}

func TestImport_ReleasesLockAfterwards(t *testing.T) {
	l := newLedger()
	ctx := context.Background()
	header := "Name,Type,Location,Price,Size\n"

	_, err := l.imports.Import(ctx, importCSV(domain.ImportKindProperty, header))
	require.NoError(t, err)
	_, err = l.imports.Import(ctx, importCSV(domain.ImportKindProperty, header))
	require.NoError(t, err)
}

func TestImport_MemberLookupsAreMemoised(t *testing.T) {
	l := newLedger()
	l.store.addMember(tenantA, "m-1", "COOP-001")

	csv := contributionHeader +
		"COOP-001,5000,monthly,cash,,\n" +
		"COOP-001,6000,monthly,cash,,\n" +
		"COOP-001,7000,monthly,cash,,\n"

	_, err := l.imports.Import(context.Background(), importCSV(domain.ImportKindContribution, csv))
	require.NoError(t, err)
	assert.Equal(t, int32(1), l.lookups.Load())

	// A second upload is served from the shared cache.
	_, err = l.imports.Import(context.Background(), importCSV(domain.ImportKindContribution, csv))
	require.NoError(t, err)
	assert.Equal(t, int32(1), l.lookups.Load())
}

func TestImport_InactiveMemberRejectedFromCache(t *testing.T) {
	l := newLedger()
	l.store.addMember(tenantA, "m-1", "COOP-001")
	l.store.deactivateMember("m-1")

	csv := contributionHeader + "COOP-001,5000,monthly,cash,,\n"

	for i := 0; i < 2; i++ {
		result, err := l.imports.Import(context.Background(), importCSV(domain.ImportKindContribution, csv))
		require.NoError(t, err)
		assert.Equal(t, 1, result.Failed)
		require.Len(t, result.Errors, 1)
		assert.Contains(t, result.Errors[0].Message, "inactive")
	}
	// The second upload never reached the repository.
	assert.Equal(t, int32(1), l.lookups.Load())
	assert.Empty(t, l.store.state.contributions)
}

func TestImport_CachedInactiveFlagIsHonoured(t *testing.T) {
	l := newLedger()
	l.store.addMember(tenantA, "m-1", "COOP-001")

	csv := contributionHeader + "COOP-001,5000,monthly,cash,,\n"
	ctx := context.Background()

	// The member was active when first resolved.
	_, err := l.imports.Import(ctx, importCSV(domain.ImportKindContribution, csv))
	require.NoError(t, err)

	key := "member:" + tenantA + ":COOP-001"
	require.NoError(t, l.cache.Set(ctx, key, `{"id":"m-1","active":false}`, time.Minute))

	result, err := l.imports.Import(ctx, importCSV(domain.ImportKindContribution, csv))
	require.NoError(t, err)
	assert.Equal(t, 0, result.Successful)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "inactive")
}

func TestImport_UnreadableMemberCacheEntryFallsBack(t *testing.T) {
	l := newLedger()
	l.store.addMember(tenantA, "m-1", "COOP-001")
	ctx := context.Background()
	require.NoError(t, l.cache.Set(ctx, "member:"+tenantA+":COOP-001", "m-1", time.Minute))

	result, err := l.imports.Import(ctx, importCSV(domain.ImportKindContribution, contributionHeader+"COOP-001,5000,monthly,cash,,\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, result.Successful)
	assert.Equal(t, int32(1), l.lookups.Load())
}
