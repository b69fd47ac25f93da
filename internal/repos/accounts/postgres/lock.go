package accounts

import (
	"context"
	"fmt"

	"github.com/Ari-Ghosh/Banking-MS/internal/repos/accounts"
)

// TryLock flips the locked flag on every listed account in one conditional
// UPDATE inside its own transaction. Rows already locked are not matched, so
// a short count means some flag was held; the transaction rolls back and no
// partial set of flags leaks out.
func (r *accountsRepo) TryLock(ctx context.Context, ids []int64) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin lock tx: %w", err)
	}

	res, err := tx.ExecContext(ctx, `
		UPDATE accounts
		SET locked = TRUE,
		    updated_at = now()
		WHERE id = ANY($1)
		  AND locked = FALSE
	`, ids)
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("set locked flags: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		_ = tx.Rollback()
		return false, fmt.Errorf("rows affected: %w", err)
	}

	if affected != int64(len(ids)) {
		// A short count can also mean a listed account does not exist;
		// report that instead of letting the caller poll forever.
		var present int64

		err = tx.QueryRowContext(ctx, `
			SELECT count(*) FROM accounts WHERE id = ANY($1)
		`, ids).Scan(&present)
		if err != nil {
			_ = tx.Rollback()
			return false, fmt.Errorf("count lock targets: %w", err)
		}

		rbErr := tx.Rollback()
		if rbErr != nil {
			return false, fmt.Errorf("rollback partial lock: %w", rbErr)
		}

		if present != int64(len(ids)) {
			return false, accounts.ErrAccountNotFound
		}

		return false, nil
	}

	err = tx.Commit()
	if err != nil {
		return false, fmt.Errorf("commit lock tx: %w", err)
	}

	return true, nil
}

func (r *accountsRepo) Unlock(ctx context.Context, ids []int64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE accounts
		SET locked = FALSE,
		    updated_at = now()
		WHERE id = ANY($1)
	`, ids)
	if err != nil {
		return fmt.Errorf("clear locked flags: %w", err)
	}

	return nil
}

func (r *accountsRepo) Locked(ctx context.Context, ids []int64) (bool, error) {
	var locked bool

	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM accounts
			WHERE id = ANY($1) AND locked
		)
	`, ids).Scan(&locked)
	if err != nil {
		return false, fmt.Errorf("check locked flags: %w", err)
	}

	return locked, nil
}
