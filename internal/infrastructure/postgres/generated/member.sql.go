package generated

import (
	"context"
)

const findMemberByReference = `-- name: FindMemberByReference :one
SELECT id, tenant_id, member_number, first_name, last_name, email, is_active, created_at FROM members
WHERE tenant_id = $1 AND (id = $2 OR member_number = $2)
ORDER BY (id = $2) DESC
LIMIT 1
`

type FindMemberByReferenceParams struct {
	TenantID  string `json:"tenant_id"`
	Reference string `json:"reference"`
}

func (q *Queries) FindMemberByReference(ctx context.Context, arg FindMemberByReferenceParams) (Member, error) {
	row := q.db.QueryRow(ctx, findMemberByReference, arg.TenantID, arg.Reference)
	var i Member
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.MemberNumber,
		&i.FirstName,
		&i.LastName,
		&i.Email,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const getMemberByID = `-- name: GetMemberByID :one
SELECT id, tenant_id, member_number, first_name, last_name, email, is_active, created_at FROM members
WHERE tenant_id = $1 AND id = $2
`

type GetMemberByIDParams struct {
	TenantID string `json:"tenant_id"`
	ID       string `json:"id"`
}

func (q *Queries) GetMemberByID(ctx context.Context, arg GetMemberByIDParams) (Member, error) {
	row := q.db.QueryRow(ctx, getMemberByID, arg.TenantID, arg.ID)
	var i Member
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.MemberNumber,
		&i.FirstName,
		&i.LastName,
		&i.Email,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}

const lockMember = `-- name: LockMember :one
SELECT id, tenant_id, member_number, first_name, last_name, email, is_active, created_at FROM members
WHERE tenant_id = $1 AND id = $2
FOR UPDATE
`

type LockMemberParams struct {
	TenantID string `json:"tenant_id"`
	ID       string `json:"id"`
}

func (q *Queries) LockMember(ctx context.Context, arg LockMemberParams) (Member, error) {
	row := q.db.QueryRow(ctx, lockMember, arg.TenantID, arg.ID)
	var i Member
	err := row.Scan(
		&i.ID,
		&i.TenantID,
		&i.MemberNumber,
		&i.FirstName,
		&i.LastName,
		&i.Email,
		&i.IsActive,
		&i.CreatedAt,
	)
	return i, err
}
