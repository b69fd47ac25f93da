// Command teller is a one-shot operator CLI over the funds engine:
//
//	teller open -customer 7 -type saving -balance 10000
//	teller balance -account 300000001
//	teller withdraw -account 300000001 -amount 300
//	teller deposit -account 300000001 -amount 500
//	teller transfer -from 300000001 -to 300000002 -amount 500
//	teller statement -account 300000001 -limit 20
//	teller locks -accounts 300000001,300000002
//	teller unlock -accounts 300000001,300000002
//
// Amounts are in minor currency units. unlock clears flags left behind by a
// crashed holder; never run it against accounts with a live operation.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/Ari-Ghosh/Banking-MS/internal/infra/logging"
	"github.com/Ari-Ghosh/Banking-MS/internal/infra/pgutils"
	"github.com/Ari-Ghosh/Banking-MS/internal/repos/accounts"
	"github.com/Ari-Ghosh/Banking-MS/internal/services/funds"
	"github.com/Ari-Ghosh/Banking-MS/pkg/envconf"
	"github.com/Ari-Ghosh/Banking-MS/pkg/shutdownqueue"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "teller: %v\n", err)
		//nolint:gocritic
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) (retErr error) {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := new(tellerConfig)

	err := envconf.Load(cfg)
	if err != nil {
		return fmt.Errorf("init config: %w", err)
	}

	logging.SetupText(cfg.LogLevel)

	if len(args) == 0 {
		return errors.New("usage: teller <open|balance|withdraw|deposit|transfer|statement|locks|unlock> [flags]")
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		serr := shutdownqueue.Shutdown(shutdownCtx)
		if serr != nil {
			retErr = errors.Join(retErr, serr)
		}
	}()

	db, err := pgutils.OpenDB(ctx, cfg.Postgres)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}

	shutdownqueue.Add(func(context.Context) error { return db.Close() })

	engine := funds.New(db, nil)

	cmd, args := args[0], args[1:]

	switch cmd {
	case "open":
		return runOpen(ctx, engine, args)
	case "balance":
		return runBalance(ctx, engine, args)
	case "withdraw", "deposit":
		return runSingleAccountOp(ctx, engine, funds.Kind(cmd), args)
	case "transfer":
		return runTransfer(ctx, engine, args)
	case "statement":
		return runStatement(ctx, engine, args)
	case "locks":
		return runLocks(ctx, engine, args)
	case "unlock":
		return runUnlock(ctx, engine, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func runOpen(ctx context.Context, engine *funds.Engine, args []string) error {
	fs := flag.NewFlagSet("open", flag.ContinueOnError)
	customer := fs.Int64("customer", 0, "customer id")
	accType := fs.String("type", "current", "account type: current or saving")
	balance := fs.Int64("balance", 0, "opening balance in minor units")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	t, err := parseAccountType(*accType)
	if err != nil {
		return err
	}

	id, err := engine.OpenAccount(ctx, *customer, t, *balance)
	if err != nil {
		return err
	}

	fmt.Printf("account %d opened (%s, balance %s)\n", id, t, formatMinor(*balance))

	return nil
}

func runBalance(ctx context.Context, engine *funds.Engine, args []string) error {
	fs := flag.NewFlagSet("balance", flag.ContinueOnError)
	account := fs.Int64("account", 0, "account id")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	acct, err := engine.GetAccount(ctx, *account)
	if err != nil {
		return err
	}

	fmt.Printf("account %d (%s): %s\n", acct.ID, acct.Type, formatMinor(acct.Balance))

	return nil
}

func runSingleAccountOp(ctx context.Context, engine *funds.Engine, kind funds.Kind, args []string) error {
	fs := flag.NewFlagSet(string(kind), flag.ContinueOnError)
	account := fs.Int64("account", 0, "account id")
	amount := fs.Int64("amount", 0, "amount in minor units")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	err = engine.Execute(ctx, funds.Operation{Kind: kind, Amount: *amount, Source: *account})
	if err != nil {
		if errors.Is(err, accounts.ErrInsufficientFunds) {
			return errors.New("amount exceeds available balance")
		}

		return err
	}

	fmt.Printf("%s of %s on account %d completed\n", kind, formatMinor(*amount), *account)

	return nil
}

func runTransfer(ctx context.Context, engine *funds.Engine, args []string) error {
	fs := flag.NewFlagSet("transfer", flag.ContinueOnError)
	from := fs.Int64("from", 0, "source account id")
	to := fs.Int64("to", 0, "destination account id")
	amount := fs.Int64("amount", 0, "amount in minor units")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	err = engine.Execute(ctx, funds.Operation{
		Kind:        funds.Transfer,
		Amount:      *amount,
		Source:      *from,
		Destination: *to,
	})
	if err != nil {
		if errors.Is(err, accounts.ErrInsufficientFunds) {
			return errors.New("amount exceeds available balance")
		}

		return err
	}

	fmt.Printf("transfer of %s from %d to %d completed\n", formatMinor(*amount), *from, *to)

	return nil
}

func runStatement(ctx context.Context, engine *funds.Engine, args []string) error {
	fs := flag.NewFlagSet("statement", flag.ContinueOnError)
	account := fs.Int64("account", 0, "account id")
	limit := fs.Int("limit", 20, "max records")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	recs, err := engine.Statement(ctx, *account, *limit)
	if err != nil {
		return err
	}

	for _, rec := range recs {
		fmt.Printf("%s  %-8s  %12s  %s\n",
			rec.CreatedAt.Format(time.RFC3339), rec.Description, formatMinor(rec.Amount), rec.TransactionID)
	}

	return nil
}

func runLocks(ctx context.Context, engine *funds.Engine, args []string) error {
	fs := flag.NewFlagSet("locks", flag.ContinueOnError)
	list := fs.String("accounts", "", "comma-separated account ids")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	ids, err := parseIDList(*list)
	if err != nil {
		return err
	}

	held, err := engine.LocksHeld(ctx, ids...)
	if err != nil {
		return err
	}

	if held {
		fmt.Println("locked")
	} else {
		fmt.Println("free")
	}

	return nil
}

func runUnlock(ctx context.Context, engine *funds.Engine, args []string) error {
	fs := flag.NewFlagSet("unlock", flag.ContinueOnError)
	list := fs.String("accounts", "", "comma-separated account ids")

	err := fs.Parse(args)
	if err != nil {
		return err
	}

	ids, err := parseIDList(*list)
	if err != nil {
		return err
	}

	err = engine.ForceUnlock(ctx, ids...)
	if err != nil {
		return err
	}

	fmt.Printf("cleared lock flags on %d account(s)\n", len(ids))

	return nil
}

func parseAccountType(s string) (accounts.AccountType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "current":
		return accounts.TypeCurrent, nil
	case "saving":
		return accounts.TypeSaving, nil
	default:
		return 0, fmt.Errorf("invalid account type %q", s)
	}
}

func parseIDList(s string) ([]int64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, errors.New("no account ids given")
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))

	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid account id %q: %w", p, err)
		}

		ids = append(ids, id)
	}

	return ids, nil
}

func formatMinor(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	return fmt.Sprintf("%s%d.%02d", sign, amount/100, amount%100)
}
