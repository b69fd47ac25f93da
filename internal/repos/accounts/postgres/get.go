package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ari-Ghosh/Banking-MS/internal/repos/accounts"
)

const accountColumns = `id, customer_id, account_type, balance, locked, created_at, updated_at`

func scanAccount(row *sql.Row) (*accounts.Account, error) {
	var a accounts.Account

	err := row.Scan(&a.ID, &a.CustomerID, &a.Type, &a.Balance, &a.Locked, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, accounts.ErrAccountNotFound
		}

		return nil, fmt.Errorf("scan account: %w", err)
	}

	return &a, nil
}

func (r *accountsRepo) Get(ctx context.Context, id int64) (*accounts.Account, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id)

	return scanAccount(row)
}

// GetForUpdate reads the account under FOR UPDATE so the row stays pinned
// for the rest of tx even while the advisory flag is held.
func (r *accountsRepo) GetForUpdate(tx *sql.Tx, id int64) (*accounts.Account, error) {
	row := tx.QueryRow(`
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
		FOR UPDATE
	`, id)

	return scanAccount(row)
}
