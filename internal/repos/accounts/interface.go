package accounts

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

var ErrAccountNotFound = errors.New("account not found")
var ErrInsufficientFunds = errors.New("insufficient funds")

// AccountType mirrors the account_type column.
type AccountType int16

const (
	TypeCurrent AccountType = 1
	TypeSaving  AccountType = 2
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	return t == TypeCurrent || t == TypeSaving
}

func (t AccountType) String() string {
	switch t {
	case TypeCurrent:
		return "Current"
	case TypeSaving:
		return "Saving"
	default:
		return "Unknown"
	}
}

// Account is one row of the accounts table. Balance is in minor currency
// units. Locked is the advisory flag owned by the lock coordinator; nothing
// else may flip it.
type Account struct {
	ID         int64
	CustomerID int64
	Type       AccountType
	Balance    int64
	Locked     bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Accounts interface {
	// Get reads an account snapshot outside any transaction.
	Get(ctx context.Context, id int64) (*Account, error)
	// GetForUpdate reads an account inside tx holding its row lock.
	GetForUpdate(tx *sql.Tx, id int64) (*Account, error)
	// Create inserts a new account and returns its generated id.
	Create(tx *sql.Tx, acct *Account) (int64, error)
	// AddBalance credits amount to the account inside tx.
	AddBalance(tx *sql.Tx, id int64, amount int64) error
	// SubtractBalance debits amount inside tx; it fails with
	// ErrInsufficientFunds instead of driving the balance negative.
	SubtractBalance(tx *sql.Tx, id int64, amount int64) error

	// TryLock atomically flips the locked flag on every listed account,
	// provided all of them are currently unlocked. Returns false (and
	// changes nothing) otherwise.
	TryLock(ctx context.Context, ids []int64) (bool, error)
	// Unlock clears the locked flag on every listed account.
	Unlock(ctx context.Context, ids []int64) error
	// Locked reports whether any listed account carries the locked flag.
	Locked(ctx context.Context, ids []int64) (bool, error)
}
