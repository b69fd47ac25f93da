package accounts

import (
	"database/sql"
	"fmt"

	"github.com/Ari-Ghosh/Banking-MS/internal/repos/accounts"
)

func (r *accountsRepo) Create(tx *sql.Tx, acct *accounts.Account) (int64, error) {
	var id int64

	err := tx.QueryRow(`
		INSERT INTO accounts (customer_id, account_type, balance)
		VALUES ($1, $2, $3)
		RETURNING id
	`, acct.CustomerID, acct.Type, acct.Balance).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}

	return id, nil
}
