package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// ImportTransactionTimeout bounds the single transaction of a refund import.
	ImportTransactionTimeout = 2 * time.Minute

	// DefaultImportLockTTL is how long an import lock is held before it expires on its own.
	DefaultImportLockTTL = 10 * time.Minute

	// DefaultImportMaxRows caps the number of data rows accepted in one upload.
	DefaultImportMaxRows = 10000

	// MemberCacheTTL is how long resolved member references are cached.
	MemberCacheTTL = 5 * time.Minute
)
