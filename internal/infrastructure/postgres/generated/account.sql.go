package generated

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAccount = `-- name: CreateAccount :exec
INSERT INTO accounts (id, tenant_id, owner_id, kind, currency, balance, version, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`

type CreateAccountParams struct {
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

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) error {
	_, err := q.db.Exec(ctx, createAccount,
		arg.ID,
		arg.TenantID,
		arg.OwnerID,
		arg.Kind,
		arg.Currency,
		arg.Balance,
		arg.Version,
		arg.IsActive,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const createAccountIfAbsent = `-- name: CreateAccountIfAbsent :execrows
INSERT INTO accounts (id, tenant_id, owner_id, kind, currency, balance, version, is_active, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (tenant_id, owner_id, kind) DO NOTHING
`

type CreateAccountIfAbsentParams struct {
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

func (q *Queries) CreateAccountIfAbsent(ctx context.Context, arg CreateAccountIfAbsentParams) (int64, error) {
	result, err := q.db.Exec(ctx, createAccountIfAbsent,
		arg.ID,
		arg.TenantID,
		arg.OwnerID,
		arg.Kind,
		arg.Currency,
		arg.Balance,
		arg.Version,
		arg.IsActive,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

const getAccountByID = `-- name: GetAccountByID :one
SELECT id, tenant_id, owner_id, kind, currency, balance, version, is_active, created_at, updated_at FROM accounts WHERE id = $1
`

func (q *Queries) GetAccountByID(ctx context.Context, id string) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByID, id)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.OwnerID,
		&i.Kind,
		&i.Currency,
		&i.Balance,
		&i.Version,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountByOwner = `-- name: GetAccountByOwner :one
SELECT id, tenant_id, owner_id, kind, currency, balance, version, is_active, created_at, updated_at FROM accounts
WHERE tenant_id = $1 AND owner_id = $2 AND kind = $3
`

type GetAccountByOwnerParams struct {
	TenantID string `json:"tenant_id"`
	OwnerID  string `json:"owner_id"`
	Kind     string `json:"kind"`
}

func (q *Queries) GetAccountByOwner(ctx context.Context, arg GetAccountByOwnerParams) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByOwner, arg.TenantID, arg.OwnerID, arg.Kind)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.OwnerID,
		&i.Kind,
		&i.Currency,
		&i.Balance,
		&i.Version,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const getAccountByOwnerForUpdate = `-- name: GetAccountByOwnerForUpdate :one
SELECT id, tenant_id, owner_id, kind, currency, balance, version, is_active, created_at, updated_at FROM accounts
WHERE tenant_id = $1 AND owner_id = $2 AND kind = $3
FOR UPDATE
`

type GetAccountByOwnerForUpdateParams struct {
	TenantID string `json:"tenant_id"`
	OwnerID  string `json:"owner_id"`
	Kind     string `json:"kind"`
}

func (q *Queries) GetAccountByOwnerForUpdate(ctx context.Context, arg GetAccountByOwnerForUpdateParams) (Account, error) {
	row := q.db.QueryRow(ctx, getAccountByOwnerForUpdate, arg.TenantID, arg.OwnerID, arg.Kind)
	var i Account
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.OwnerID,
		&i.Kind,
		&i.Currency,
		&i.Balance,
		&i.Version,
		&i.IsActive,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const listAccountsByOwner = `-- name: ListAccountsByOwner :many
SELECT id, tenant_id, owner_id, kind, currency, balance, version, is_active, created_at, updated_at FROM accounts
WHERE tenant_id = $1 AND owner_id = $2
ORDER BY kind
`

type ListAccountsByOwnerParams struct {
	TenantID string `json:"tenant_id"`
	OwnerID  string `json:"owner_id"`
}

func (q *Queries) ListAccountsByOwner(ctx context.Context, arg ListAccountsByOwnerParams) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccountsByOwner, arg.TenantID, arg.OwnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.TenantID,
			&i.OwnerID,
			&i.Kind,
			&i.Currency,
			&i.Balance,
			&i.Version,
			&i.IsActive,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listAccountsByTenant = `-- name: ListAccountsByTenant :many
SELECT id, tenant_id, owner_id, kind, currency, balance, version, is_active, created_at, updated_at FROM accounts
WHERE tenant_id = $1
ORDER BY id
LIMIT $2 OFFSET $3
`

type ListAccountsByTenantParams struct {
	TenantID string `json:"tenant_id"`
	Limit    int32  `json:"limit"`
	Offset   int32  `json:"offset"`
}

func (q *Queries) ListAccountsByTenant(ctx context.Context, arg ListAccountsByTenantParams) ([]Account, error) {
	rows, err := q.db.Query(ctx, listAccountsByTenant, arg.TenantID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Account{}
	for rows.Next() {
		var i Account
		if err := rows.Scan(
			&i.ID,
			&i.TenantID,
			&i.OwnerID,
			&i.Kind,
			&i.Currency,
			&i.Balance,
			&i.Version,
			&i.IsActive,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const setAccountActive = `-- name: SetAccountActive :exec
UPDATE accounts SET is_active = $2, updated_at = $3 WHERE id = $1
`

type SetAccountActiveParams struct {
	ID        string             `json:"id"`
	IsActive  bool               `json:"is_active"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) SetAccountActive(ctx context.Context, arg SetAccountActiveParams) error {
	_, err := q.db.Exec(ctx, setAccountActive, arg.ID, arg.IsActive, arg.UpdatedAt)
	return err
}

const updateAccountBalance = `-- name: UpdateAccountBalance :exec
UPDATE accounts SET balance = $2, version = version + 1, updated_at = $3 WHERE id = $1
`

type UpdateAccountBalanceParams struct {
	ID        string             `json:"id"`
	Balance   pgtype.Numeric     `json:"balance"`
	UpdatedAt pgtype.Timestamptz `json:"updated_at"`
}

func (q *Queries) UpdateAccountBalance(ctx context.Context, arg UpdateAccountBalanceParams) error {
	_, err := q.db.Exec(ctx, updateAccountBalance, arg.ID, arg.Balance, arg.UpdatedAt)
	return err
}
