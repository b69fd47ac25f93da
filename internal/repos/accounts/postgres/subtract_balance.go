package accounts

import (
	"database/sql"
	"fmt"

	"github.com/Ari-Ghosh/Banking-MS/internal/repos/accounts"
)

// SubtractBalance debits the account with a conditional update so a
// concurrent writer can never observe or produce a negative balance.
func (r *accountsRepo) SubtractBalance(tx *sql.Tx, id int64, amount int64) error {
	res, err := tx.Exec(`
		UPDATE accounts
		SET balance = balance - $2,
		    updated_at = now()
		WHERE id = $1
		  AND balance >= $2
	`, id, amount)
	if err != nil {
		return fmt.Errorf("subtract balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return accounts.ErrInsufficientFunds
	}

	return nil
}
