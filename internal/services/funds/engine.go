// Package funds implements the transaction engine: it validates a single
// withdraw, deposit or transfer, serializes it against every other operation
// touching the same accounts, applies the balance mutation(s) and ledger
// record(s) as one durable unit, and always leaves the accounts unlocked.
package funds

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/Ari-Ghosh/Banking-MS/internal/events"
	"github.com/Ari-Ghosh/Banking-MS/internal/infra/pgutils"
	"github.com/Ari-Ghosh/Banking-MS/internal/repos/accounts"
	pgaccounts "github.com/Ari-Ghosh/Banking-MS/internal/repos/accounts/postgres"
	"github.com/Ari-Ghosh/Banking-MS/internal/repos/ledger"
	pgledger "github.com/Ari-Ghosh/Banking-MS/internal/repos/ledger/postgres"
	"github.com/Ari-Ghosh/Banking-MS/internal/services/lockguard"
	"github.com/google/uuid"
)

type Engine struct {
	db       *sql.DB
	accounts accounts.Accounts
	ledger   ledger.Ledger
	locks    *lockguard.Guard
	events   events.Publisher
}

// New wires the engine over dbx. pub may be nil to disable event publishing.
func New(dbx *sql.DB, pub events.Publisher) *Engine {
	repo := pgaccounts.New(dbx)

	return &Engine{
		db:       dbx,
		accounts: repo,
		ledger:   pgledger.New(dbx),
		locks:    lockguard.New(repo, lockguard.DefaultRetryDelay),
		events:   pub,
	}
}

// Execute runs one funds operation:
//
// 1) Validate the request (no lock, no side effects on failure).
// 2) Acquire the locked flag on every involved account in one atomic step.
// 3) Mutate balance(s) and append ledger record(s) in a single DB
//    transaction; any failure rolls the whole unit back.
// 4) Release the flags, whatever happened after acquisition.
func (e *Engine) Execute(ctx context.Context, op Operation) error {
	err := op.validate()
	if err != nil {
		return err
	}

	ids := op.accountIDs()

	err = e.locks.Acquire(ctx, ids...)
	if err != nil {
		return fmt.Errorf("acquire account locks: %w", err)
	}

	defer func() {
		// Release must happen even when ctx is already canceled.
		rerr := e.locks.Release(context.WithoutCancel(ctx), ids...)
		if rerr != nil {
			slog.Error("release account locks", "accounts", ids, "error", rerr)
		}
	}()

	opID := uuid.New()

	err = pgutils.WithTx(ctx, e.db, func(tx *sql.Tx) error {
		return e.apply(tx, op, opID)
	})
	if err != nil {
		return fmt.Errorf("execute %s: %w", op.Kind, err)
	}

	e.publish(ctx, op, opID)

	return nil
}

func (e *Engine) apply(tx *sql.Tx, op Operation, opID uuid.UUID) error {
	src, err := e.accounts.GetForUpdate(tx, op.Source)
	if err != nil {
		return fmt.Errorf("load source account: %w", err)
	}

	// Funds check before any mutation; the conditional update below
	// re-enforces it at write time.
	if op.Kind != Deposit && src.Balance < op.Amount {
		return fmt.Errorf("pre-check withdraw: %w", accounts.ErrInsufficientFunds)
	}

	now := time.Now().UTC()

	switch op.Kind {
	case Withdraw:
		err = e.accounts.SubtractBalance(tx, op.Source, op.Amount)
		if err != nil {
			return fmt.Errorf("subtract balance: %w", err)
		}

		err = e.ledger.Append(tx, newRecord(opID, op.Source, ledger.DescriptionWithdraw, op.Amount, now))
		if err != nil {
			return fmt.Errorf("record withdraw: %w", err)
		}

	case Deposit:
		err = e.accounts.AddBalance(tx, op.Source, op.Amount)
		if err != nil {
			return fmt.Errorf("add balance: %w", err)
		}

		err = e.ledger.Append(tx, newRecord(opID, op.Source, ledger.DescriptionDeposit, op.Amount, now))
		if err != nil {
			return fmt.Errorf("record deposit: %w", err)
		}

	case Transfer:
		_, err = e.accounts.GetForUpdate(tx, op.Destination)
		if err != nil {
			return fmt.Errorf("load destination account: %w", err)
		}

		err = e.accounts.SubtractBalance(tx, op.Source, op.Amount)
		if err != nil {
			return fmt.Errorf("subtract balance: %w", err)
		}

		err = e.accounts.AddBalance(tx, op.Destination, op.Amount)
		if err != nil {
			return fmt.Errorf("add balance: %w", err)
		}

		// Withdraw leg first, then deposit leg, both under one opID.
		err = e.ledger.Append(tx, newRecord(opID, op.Source, ledger.DescriptionWithdraw, op.Amount, now))
		if err != nil {
			return fmt.Errorf("record transfer withdraw: %w", err)
		}

		err = e.ledger.Append(tx, newRecord(opID, op.Destination, ledger.DescriptionDeposit, op.Amount, now))
		if err != nil {
			return fmt.Errorf("record transfer deposit: %w", err)
		}
	}

	return nil
}

func (e *Engine) publish(ctx context.Context, op Operation, opID uuid.UUID) {
	if e.events == nil {
		return
	}

	ev := events.OperationCompleted{
		OperationID: opID,
		Kind:        string(op.Kind),
		Amount:      op.Amount,
		Source:      op.Source,
		Destination: op.Destination,
		CompletedAt: time.Now().UTC(),
	}

	err := e.events.PublishOperationCompleted(ctx, ev)
	if err != nil {
		// The operation already committed; losing the event is logged,
		// never surfaced as an operation failure.
		slog.Error("publish operation event", "operation_id", opID, "error", err)
	}
}

func newRecord(opID uuid.UUID, accountID int64, description string, amount int64, now time.Time) *ledger.Record {
	return &ledger.Record{
		TransactionID: ledger.NewTransactionID(now),
		OperationID:   opID,
		AccountID:     accountID,
		Description:   description,
		Amount:        amount,
		CreatedAt:     now,
	}
}
