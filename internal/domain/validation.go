package domain

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validation constants
const (
	MaxMetadataSize = 10240           // 10KB
	MaxAmount       = "1000000000000" // 1 trillion
	MinAmount       = "0.01"
	MaxReasonLength = 255
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())

	// Money travels as decimal.Decimal; validate its canonical string form.
	v.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			return d.String()
		}
		return nil
	}, decimal.Decimal{})

	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		d, err := decimal.NewFromString(fl.Field().String())
		if err != nil {
			return false
		}
		return ValidateAmount(d) == nil
	})

	_ = v.RegisterValidation("refund_source", func(fl validator.FieldLevel) bool {
		return RefundSource(fl.Field().String()).IsValid()
	})

	_ = v.RegisterValidation("account_kind", func(fl validator.FieldLevel) bool {
		return AccountKind(fl.Field().String()).IsValid()
	})

	return v
}

// ValidateStruct checks the validate tags on s and reports every failing
// field in a single ValidationError.
func ValidateStruct(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}

	verr := &ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		verr.Fields[snakeCase(fe.Field())] = describeFieldError(fe)
	}

	return verr
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "amount":
		return fmt.Sprintf("must be between %s and %s", MinAmount, MaxAmount)
	case "refund_source":
		return "must be one of wallet, contribution, investment_return, equity_wallet"
	case "account_kind":
		return "must be wallet or equity_wallet"
	case "oneof":
		return "must be one of " + fe.Param()
	default:
		return "is invalid"
	}
}

func snakeCase(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if unicode.IsUpper(r) {
			if i > 0 && (unicode.IsLower(runes[i-1]) || (i+1 < len(runes) && unicode.IsLower(runes[i+1]))) {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ValidateAmount validates a money amount
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrInvalidAmount
	}

	minAmount, _ := decimal.NewFromString(MinAmount)
	if amount.LessThan(minAmount) {
		return fmt.Errorf("%w: minimum amount is %s", ErrValidation, MinAmount)
	}

	maxAmount, _ := decimal.NewFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrValidation, MaxAmount)
	}

	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return fmt.Errorf("%w: amount has more than two decimal places", ErrValidation)
	}

	return nil
}

// ValidateMetadata validates metadata size
func ValidateMetadata(metadata map[string]any) error {
	if metadata == nil {
		return nil
	}

	// Estimate size (rough approximation)
	size := 0
	for k, v := range metadata {
		size += len(k)
		size += len(fmt.Sprintf("%v", v))
	}

	if size > MaxMetadataSize {
		return fmt.Errorf("%w: metadata size %d bytes exceeds limit of %d bytes", ErrValidation, size, MaxMetadataSize)
	}

	return nil
}

// ValidateScope checks the caller-supplied tenant and actor.
func ValidateScope(tenantID, actorID string) error {
	if strings.TrimSpace(tenantID) == "" {
		return ErrMissingTenant
	}
	if strings.TrimSpace(actorID) == "" {
		return ErrMissingActor
	}
	return nil
}

// ClampPagination applies the default page size and upper bound.
func ClampPagination(limit, offset int) (int, int) {
	const MaxPageSize = 100
	const DefaultPageSize = 20

	if limit <= 0 {
		limit = DefaultPageSize
	}

	if limit > MaxPageSize {
		limit = MaxPageSize
	}

	if offset < 0 {
		offset = 0
	}

	return limit, offset
}

// ImportRules holds the static constraints applied to imported rows.
type ImportRules struct {
	ContributionMinAmount      decimal.Decimal
	ContributionMaxAmount      decimal.Decimal
	LoanMaxAmount              decimal.Decimal
	ContributionPaymentMethods []string
	ContributionTypes          []string
	LoanMinTenureMonths        int
	LoanMaxTenureMonths        int
}

// DefaultImportRules returns the rules used when nothing is configured.
func DefaultImportRules() ImportRules {
	return ImportRules{
		ContributionMinAmount:      decimal.NewFromInt(1000),
		ContributionMaxAmount:      decimal.NewFromInt(100000000),
		LoanMaxAmount:              decimal.NewFromInt(500000000),
		ContributionPaymentMethods: []string{"bank_transfer", "card", "cash", "cheque", "wallet"},
		ContributionTypes:          []string{"monthly", "equity", "special", "investment"},
		LoanMinTenureMonths:        1,
		LoanMaxTenureMonths:        360,
	}
}

// ValidateContribution checks an imported contribution against the plan rules.
func (r ImportRules) ValidateContribution(amount decimal.Decimal, contributionType, paymentMethod string) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	if amount.LessThan(r.ContributionMinAmount) {
		return NewValidationError("amount", "must be at least "+r.ContributionMinAmount.StringFixed(2))
	}

	if r.ContributionMaxAmount.IsPositive() && amount.GreaterThan(r.ContributionMaxAmount) {
		return NewValidationError("amount", "must be at most "+r.ContributionMaxAmount.StringFixed(2))
	}

	if len(r.ContributionTypes) > 0 && !slices.Contains(r.ContributionTypes, contributionType) {
		return NewValidationError("type", "must be one of "+strings.Join(r.ContributionTypes, ", "))
	}

	if len(r.ContributionPaymentMethods) > 0 && !slices.Contains(r.ContributionPaymentMethods, paymentMethod) {
		return NewValidationError("payment_method", "must be one of "+strings.Join(r.ContributionPaymentMethods, ", "))
	}

	return nil
}

// ValidateLoan checks an imported loan against the lending rules.
func (r ImportRules) ValidateLoan(amount decimal.Decimal, tenureMonths int) error {
	if err := ValidateAmount(amount); err != nil {
		return err
	}

	if r.LoanMaxAmount.IsPositive() && amount.GreaterThan(r.LoanMaxAmount) {
		return NewValidationError("amount", "must be at most "+r.LoanMaxAmount.StringFixed(2))
	}

	if tenureMonths < r.LoanMinTenureMonths || tenureMonths > r.LoanMaxTenureMonths {
		return NewValidationError("tenure_months",
			fmt.Sprintf("must be between %d and %d", r.LoanMinTenureMonths, r.LoanMaxTenureMonths))
	}

	return nil
}
