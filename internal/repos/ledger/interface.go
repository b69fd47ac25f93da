package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrDuplicateTransaction = errors.New("duplicate transaction")

// DefaultStatementLimit caps a statement listing when the caller passes a
// non-positive limit.
const DefaultStatementLimit = 20

// Ledger record descriptions form a small fixed vocabulary: a transfer is
// recorded as a Withdraw on the source plus a Deposit on the destination.
const (
	DescriptionWithdraw = "Withdraw"
	DescriptionDeposit  = "Deposit"
)

// Record is one immutable ledger entry. OperationID groups the rows written
// by a single engine operation, so the two legs of a transfer stay linked.
type Record struct {
	ID            int64
	TransactionID string
	OperationID   uuid.UUID
	AccountID     int64
	Description   string
	Amount        int64
	CreatedAt     time.Time
}

type Ledger interface {
	// Append inserts rec inside tx. A reused TransactionID fails with
	// ErrDuplicateTransaction. Records are never updated or deleted.
	Append(tx *sql.Tx, rec *Record) error
	// ListByAccount returns the newest limit records for one account,
	// most recent first. A non-positive limit falls back to
	// DefaultStatementLimit.
	ListByAccount(ctx context.Context, accountID int64, limit int) ([]Record, error)
}

// NewTransactionID builds a persisted transaction identifier: a sortable
// UTC timestamp prefix plus a UUID for uniqueness.
func NewTransactionID(now time.Time) string {
	return now.UTC().Format("20060102T150405") + "-" + uuid.NewString()
}
