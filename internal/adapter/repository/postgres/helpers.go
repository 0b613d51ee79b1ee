package postgres

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/iho/coopledger/internal/domain"
	"github.com/iho/coopledger/internal/infrastructure/postgres/generated"
	"github.com/iho/coopledger/internal/usecase"
)

const pgErrUniqueViolation = "23505"

// queries returns a query set bound to tx, or to db when tx is nil.
func queries(db generated.DBTX, tx usecase.Transaction) *generated.Queries {
	if tx == nil {
		return generated.New(db)
	}

	return generated.New(tx.(*Tx).PgxTx())
}

// translate maps driver errors onto domain sentinels. notFound is returned
// for pgx.ErrNoRows, conflict for unique violations.
func translate(err, notFound, conflict error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) && notFound != nil {
		return notFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
		if conflict == nil {
			conflict = domain.ErrConflict
		}
		return fmt.Errorf("%w (%s)", conflict, pgErr.ConstraintName)
	}

	return err
}

// Type conversion helpers.
func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric

	_ = n.Scan(d.String())

	return n
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}

	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func timeToPgTimestamptz(t time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: t, Valid: true}
}

func timeToPgDate(t time.Time) pgtype.Date {
	return pgtype.Date{Time: t, Valid: true}
}

func optionalTime(t pgtype.Timestamptz) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func stringToPgText(s *string) pgtype.Text {
	if s == nil || *s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func optionalString(t pgtype.Text) *string {
	if !t.Valid {
		return nil
	}
	v := t.String
	return &v
}

func marshalJSON(v map[string]any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	return json.Marshal(v)
}

func unmarshalJSON(data []byte) map[string]any {
	if data == nil {
		return nil
	}
	var v map[string]any
	_ = json.Unmarshal(data, &v)
	return v
}
