package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Ari-Ghosh/Banking-MS/internal/repos/ledger"
	"github.com/jackc/pgx/v5/pgconn"
)

var _ ledger.Ledger = (*ledgerRepo)(nil)

type ledgerRepo struct{ db *sql.DB }

func New(db *sql.DB) *ledgerRepo {
	return &ledgerRepo{db: db}
}

func (r *ledgerRepo) Append(tx *sql.Tx, rec *ledger.Record) error {
	err := tx.QueryRow(`
		INSERT INTO transactions (transaction_id, operation_id, account_id, description, amount, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, rec.TransactionID, rec.OperationID, rec.AccountID, rec.Description, rec.Amount, rec.CreatedAt).Scan(&rec.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == "23505" { // unique_violation
				return ledger.ErrDuplicateTransaction
			}
		}

		return fmt.Errorf("insert ledger record: %w", err)
	}

	return nil
}

func (r *ledgerRepo) ListByAccount(ctx context.Context, accountID int64, limit int) ([]ledger.Record, error) {
	// Postgres rejects a negative LIMIT at runtime.
	if limit <= 0 {
		limit = ledger.DefaultStatementLimit
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, transaction_id, operation_id, account_id, description, amount, created_at
		FROM transactions
		WHERE account_id = $1
		ORDER BY id DESC
		LIMIT $2
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("list ledger records: %w", err)
	}
	defer rows.Close()

	var recs []ledger.Record

	for rows.Next() {
		var rec ledger.Record

		err = rows.Scan(&rec.ID, &rec.TransactionID, &rec.OperationID, &rec.AccountID, &rec.Description, &rec.Amount, &rec.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan ledger record: %w", err)
		}

		recs = append(recs, rec)
	}

	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("iterate ledger records: %w", err)
	}

	return recs, nil
}
