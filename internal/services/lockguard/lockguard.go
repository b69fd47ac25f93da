// Package lockguard grants exclusive access to a set of accounts for the
// duration of one funds operation. The lock state is the persisted locked
// flag on each account row, so exclusion survives across processes sharing
// the database. Acquisition is an atomic flip of every flag at once, retried
// on a fixed interval; waiting callers poll rather than being woken.
package lockguard

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// DefaultRetryDelay is the pause between acquisition attempts.
const DefaultRetryDelay = 500 * time.Millisecond

// ErrLockWait is returned when the caller's context expires before the
// locks could be acquired.
var ErrLockWait = errors.New("gave up waiting for account locks")

// FlagStore is the slice of the accounts repository the guard needs.
type FlagStore interface {
	TryLock(ctx context.Context, ids []int64) (bool, error)
	Unlock(ctx context.Context, ids []int64) error
	Locked(ctx context.Context, ids []int64) (bool, error)
}

type Guard struct {
	flags      FlagStore
	retryDelay time.Duration
}

// New returns a Guard polling at retryDelay; zero means DefaultRetryDelay.
func New(flags FlagStore, retryDelay time.Duration) *Guard {
	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	return &Guard{flags: flags, retryDelay: retryDelay}
}

// Acquire blocks until the locked flag could be set on every listed account
// in a single atomic step. There is no fairness between waiters. The only
// way out without the locks is ctx expiring, reported as ErrLockWait.
func (g *Guard) Acquire(ctx context.Context, ids ...int64) error {
	ids = normalize(ids)
	if len(ids) == 0 {
		return nil
	}

	ticker := time.NewTicker(g.retryDelay)
	defer ticker.Stop()

	for {
		ok, err := g.flags.TryLock(ctx, ids)
		if err != nil {
			return fmt.Errorf("try lock accounts: %w", err)
		}

		if ok {
			return nil
		}

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %w", ErrLockWait, ctx.Err())
		case <-ticker.C:
		}
	}
}

// Release clears the locked flag on every listed account. It must run on
// every exit path of an operation that acquired the locks, whatever the
// outcome of the operation itself. A failed unlock is retried once after
// the retry delay; flags left behind by a persistent failure need an
// operator reset.
func (g *Guard) Release(ctx context.Context, ids ...int64) error {
	ids = normalize(ids)
	if len(ids) == 0 {
		return nil
	}

	err := g.flags.Unlock(ctx, ids)
	if err == nil {
		return nil
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("unlock accounts: %w", err)
	case <-time.After(g.retryDelay):
	}

	rerr := g.flags.Unlock(ctx, ids)
	if rerr != nil {
		return fmt.Errorf("unlock accounts after retry: %w", rerr)
	}

	return nil
}

// IsLocked reports whether any listed account currently carries the flag.
// It is a point-in-time read, not atomic with anything the caller does next;
// Acquire is the only race-free way to take the locks.
func (g *Guard) IsLocked(ctx context.Context, ids ...int64) (bool, error) {
	ids = normalize(ids)
	if len(ids) == 0 {
		return false, nil
	}

	locked, err := g.flags.Locked(ctx, ids)
	if err != nil {
		return false, fmt.Errorf("check account locks: %w", err)
	}

	return locked, nil
}

// normalize sorts and dedupes so overlapping waiters touch rows in the same
// order and a transfer never asks for the same flag twice.
func normalize(ids []int64) []int64 {
	out := make([]int64, 0, len(ids))

	for _, id := range ids {
		if id == 0 {
			continue
		}

		out = append(out, id)
	}

	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })

	n := 0
	for i, id := range out {
		if i > 0 && id == out[i-1] {
			continue
		}

		out[n] = id
		n++
	}

	return out[:n]
}
