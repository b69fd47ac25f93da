package funds

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Ari-Ghosh/Banking-MS/internal/infra/pgutils"
	"github.com/Ari-Ghosh/Banking-MS/internal/repos/accounts"
	"github.com/Ari-Ghosh/Banking-MS/internal/repos/ledger"
	"github.com/google/uuid"
)

// GetAccount returns a point-in-time snapshot; no locks are taken.
func (e *Engine) GetAccount(ctx context.Context, id int64) (*accounts.Account, error) {
	acct, err := e.accounts.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get account: %w", err)
	}

	return acct, nil
}

// Statement lists the newest ledger records for one account.
func (e *Engine) Statement(ctx context.Context, accountID int64, limit int) ([]ledger.Record, error) {
	recs, err := e.ledger.ListByAccount(ctx, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("statement: %w", err)
	}

	return recs, nil
}

// OpenAccount creates an account for a customer. A positive opening balance
// is recorded as the account's first Deposit, in the same transaction as the
// insert.
func (e *Engine) OpenAccount(ctx context.Context, customerID int64, accountType accounts.AccountType, openingBalance int64) (int64, error) {
	if !accountType.Valid() {
		return 0, fmt.Errorf("%w: unknown account type %d", ErrInvalidRequest, accountType)
	}

	if openingBalance < 0 {
		return 0, fmt.Errorf("%w: opening balance must not be negative", ErrInvalidRequest)
	}

	var id int64

	err := pgutils.WithTx(ctx, e.db, func(tx *sql.Tx) error {
		var err error

		id, err = e.accounts.Create(tx, &accounts.Account{
			CustomerID: customerID,
			Type:       accountType,
			Balance:    openingBalance,
		})
		if err != nil {
			return fmt.Errorf("create account: %w", err)
		}

		if openingBalance > 0 {
			now := time.Now().UTC()

			err = e.ledger.Append(tx, newRecord(uuid.New(), id, ledger.DescriptionDeposit, openingBalance, now))
			if err != nil {
				return fmt.Errorf("record opening deposit: %w", err)
			}
		}

		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("open account: %w", err)
	}

	return id, nil
}

// LocksHeld reports whether any of the listed accounts currently carries a
// locked flag. Diagnostic read only; it guarantees nothing about what a
// concurrent operation does next.
func (e *Engine) LocksHeld(ctx context.Context, ids ...int64) (bool, error) {
	held, err := e.locks.IsLocked(ctx, ids...)
	if err != nil {
		return false, fmt.Errorf("locks held: %w", err)
	}

	return held, nil
}

// ForceUnlock clears stuck locked flags, e.g. after a process died while
// holding them. Strictly an operator action: running it against accounts
// with a live holder breaks exclusion.
func (e *Engine) ForceUnlock(ctx context.Context, ids ...int64) error {
	err := e.locks.Release(ctx, ids...)
	if err != nil {
		return fmt.Errorf("force unlock: %w", err)
	}

	return nil
}
