package ports

import (
	"context"
	"time"

	"github.com/drips-network/multiplayer/internal/core/domain"
)

// AuthStrategy verifies the signatures and ownership claims that gate every
// mutation. The core never verifies signatures itself; it builds the
// canonical message and hands it to this capability.
type AuthStrategy interface {
	// VerifyMessage checks that signature is a valid signature of message by
	// signer and that issuedAt is fresh. Returns an error wrapping
	// domain.ErrUnauthorized on any mismatch.
	VerifyMessage(ctx context.Context, message string, signature string, signer domain.Address, issuedAt time.Time) error

	// VerifyDripListOwnership checks that publisher owns the drip list on the
	// given chain. Returns an error wrapping domain.ErrUnauthorized or
	// domain.ErrBadRequest.
	VerifyDripListOwnership(ctx context.Context, publisher domain.Address, chainID int64, dripListID string) error
}

// SafeTransactionService looks up a multisig transaction by hash. The core
// only consumes the returned shape.
type SafeTransactionService interface {
	GetTransaction(ctx context.Context, chainID int64, hash string) (domain.SafeTransaction, error)
}
