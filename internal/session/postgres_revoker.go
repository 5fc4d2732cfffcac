package session

import (
	"context"
	"time"
)

// SessionTable is the persistence a database-backed revoker needs.
type SessionTable interface {
	RevokeSession(ctx context.Context, jti string, expiresAt time.Time) error
	IsSessionRevoked(ctx context.Context, jti string) (bool, error)
}

// TableRevoker stores revocations in the database. It is used when Redis is
// not configured.
type TableRevoker struct {
	table SessionTable
}

func NewTableRevoker(table SessionTable) *TableRevoker {
	return &TableRevoker{table: table}
}

func (r *TableRevoker) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	return r.table.RevokeSession(ctx, jti, expiresAt)
}

func (r *TableRevoker) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return r.table.IsSessionRevoked(ctx, jti)
}
