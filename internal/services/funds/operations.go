package funds

import (
	"errors"
	"fmt"
)

// ErrInvalidRequest covers malformed operations: unknown kind, non-positive
// amount, a transfer without a destination or onto itself. Detected before
// any lock is taken; such a call has no side effects.
var ErrInvalidRequest = errors.New("invalid request")

type Kind string

const (
	Withdraw Kind = "withdraw"
	Deposit  Kind = "deposit"
	Transfer Kind = "transfer"
)

// Operation is one money movement against one or two accounts. Amount is in
// minor currency units and must be strictly positive. Destination is only
// meaningful for transfers.
type Operation struct {
	Kind        Kind
	Amount      int64
	Source      int64
	Destination int64
}

func (op Operation) validate() error {
	switch op.Kind {
	case Withdraw, Deposit:
		if op.Destination != 0 {
			return fmt.Errorf("%w: destination not allowed for %s", ErrInvalidRequest, op.Kind)
		}
	case Transfer:
		if op.Destination == 0 {
			return fmt.Errorf("%w: transfer requires a destination", ErrInvalidRequest)
		}

		if op.Destination == op.Source {
			return fmt.Errorf("%w: transfer onto the same account", ErrInvalidRequest)
		}
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidRequest, string(op.Kind))
	}

	if op.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidRequest)
	}

	if op.Source == 0 {
		return fmt.Errorf("%w: source account required", ErrInvalidRequest)
	}

	return nil
}

// accountIDs lists every account the operation touches.
func (op Operation) accountIDs() []int64 {
	if op.Kind == Transfer {
		return []int64{op.Source, op.Destination}
	}

	return []int64{op.Source}
}
