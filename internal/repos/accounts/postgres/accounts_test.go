package accounts

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/Ari-Ghosh/Banking-MS/internal/infra/pgtestutil"
	"github.com/Ari-Ghosh/Banking-MS/internal/repos/accounts"
)

func seedAccount(t *testing.T, db *sql.DB, id, balance int64) {
	t.Helper()

	_, err := db.Exec(`
		INSERT INTO accounts (id, customer_id, account_type, balance)
		VALUES ($1, 1, 1, $2)
	`, id, balance)
	if err != nil {
		t.Fatalf("seed account %d: %v", id, err)
	}
}

func TestAccounts_Get(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		seed    func(db *sql.DB)
		id      int64
		wantErr error
	}{
		{
			name: "found",
			seed: func(db *sql.DB) {
				_, err := db.Exec(`
					INSERT INTO accounts (id, customer_id, account_type, balance)
					VALUES (42, 7, 2, 1500)
				`)
				if err != nil {
					t.Fatalf("seed: %v", err)
				}
			},
			id: 42,
		},
		{
			name:    "not_found",
			seed:    func(db *sql.DB) {},
			id:      999,
			wantErr: accounts.ErrAccountNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			repo := New(db)
			tt.seed(db)

			acct, err := repo.Get(context.Background(), tt.id)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("unexpected error: got %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if acct.ID != 42 || acct.CustomerID != 7 || acct.Type != accounts.TypeSaving || acct.Balance != 1500 {
				t.Fatalf("account mismatch: %+v", acct)
			}

			if acct.Locked {
				t.Fatalf("fresh account must not be locked")
			}
		})
	}
}

func TestAccounts_GetForUpdate(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	seedAccount(t, db, 1, 500)

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}
	defer tx.Rollback()

	acct, err := repo.GetForUpdate(tx, 1)
	if err != nil {
		t.Fatalf("get for update: %v", err)
	}

	if acct.Balance != 500 {
		t.Fatalf("balance: got %d, want 500", acct.Balance)
	}

	_, err = repo.GetForUpdate(tx, 999)
	if !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestAccounts_Create(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	id, err := repo.Create(tx, &accounts.Account{CustomerID: 9, Type: accounts.TypeCurrent, Balance: 100})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	// Generated ids start in the reserved account-number range.
	if id < 300000000 {
		t.Fatalf("generated id out of range: %d", id)
	}

	acct, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get created: %v", err)
	}

	if acct.CustomerID != 9 || acct.Balance != 100 {
		t.Fatalf("created account mismatch: %+v", acct)
	}
}

func TestAccounts_SubtractBalance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		start       int64
		amount      int64
		wantErr     error
		wantBalance int64
	}{
		{name: "ok", start: 1000, amount: 300, wantBalance: 700},
		{name: "exact_to_zero", start: 300, amount: 300, wantBalance: 0},
		{name: "insufficient", start: 200, amount: 300, wantErr: accounts.ErrInsufficientFunds, wantBalance: 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			db, cleanup := pgtestutil.NewTestDB(t)
			defer cleanup()

			repo := New(db)
			seedAccount(t, db, 1, tt.start)

			tx, err := db.BeginTx(context.Background(), nil)
			if err != nil {
				t.Fatalf("begin tx: %v", err)
			}

			err = repo.SubtractBalance(tx, 1, tt.amount)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("unexpected error: got %v, want %v", err, tt.wantErr)
				}

				_ = tx.Rollback()
			} else {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}

				err = tx.Commit()
				if err != nil {
					t.Fatalf("commit: %v", err)
				}
			}

			acct, err := repo.Get(context.Background(), 1)
			if err != nil {
				t.Fatalf("get: %v", err)
			}

			if acct.Balance != tt.wantBalance {
				t.Fatalf("balance: got %d, want %d", acct.Balance, tt.wantBalance)
			}
		})
	}
}

func TestAccounts_AddBalance(t *testing.T) {
	t.Parallel()

	db, cleanup := pgtestutil.NewTestDB(t)
	defer cleanup()

	repo := New(db)
	seedAccount(t, db, 1, 100)

	tx, err := db.BeginTx(context.Background(), nil)
	if err != nil {
		t.Fatalf("begin tx: %v", err)
	}

	err = repo.AddBalance(tx, 1, 250)
	if err != nil {
		t.Fatalf("add balance: %v", err)
	}

	err = repo.AddBalance(tx, 999, 250)
	if !errors.Is(err, accounts.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}

	err = tx.Commit()
	if err != nil {
		t.Fatalf("commit: %v", err)
	}

	acct, err := repo.Get(context.Background(), 1)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if acct.Balance != 350 {
		t.Fatalf("balance: got %d, want 350", acct.Balance)
	}
}
