// Package source defines the transaction source ports the analytics service
// reads from. Implementations live in subpackages and in internal/storage.
package source

import (
	"context"
	"errors"

	"spendwise/internal/core"
)

// ErrReadOnly is returned by sources that cannot record transactions.
var ErrReadOnly = errors.New("transaction source is read-only")

// Ports for outbound adapters.
type (
	// TransactionSource returns a user's transactions dated inside r, both ends
	// inclusive. Returned transactions are normalised.
	TransactionSource interface {
		Find(ctx context.Context, userID string, r core.DateRange) ([]core.Transaction, error)
	}

	// TransactionWriter records transactions and returns their id.
	TransactionWriter interface {
		Add(ctx context.Context, tx core.Transaction) (id string, err error)
	}
)
