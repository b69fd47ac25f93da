package accounts

import (
	"database/sql"
	"fmt"

	"github.com/Ari-Ghosh/Banking-MS/internal/repos/accounts"
)

func (r *accountsRepo) AddBalance(tx *sql.Tx, id int64, amount int64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance + $2,
		    updated_at = now()
		WHERE id = $1
	`, id, amount)
	if err != nil {
		return fmt.Errorf("add balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrAccountNotFound
	}

	return nil
}
