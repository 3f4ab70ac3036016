package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type LinkStatus string

const (
	LinkStatusCompleted               LinkStatus = "completed"
	LinkStatusAwaitingSafeTxExecution LinkStatus = "awaitingSafeTxExecution"
)

// SafeTransaction is the result shape of the external multisig transaction
// lookup. The core only consumes it; it never fetches transactions itself.
type SafeTransaction struct {
	Hash         string
	SafeAddress  Address
	IsExecuted   bool
	IsSuccessful bool
}

// Link binds a completed voting round to an on-chain drip list. When the
// publisher is a multisig, completion waits for the Safe transaction to
// execute; an executed-but-failed transaction can never complete a link.
type Link struct {
	ID                        uuid.UUID `json:"id"`
	VotingRoundID             uuid.UUID `json:"votingRoundId"`
	DripListID                string    `json:"dripListId"`
	SafeTransactionHash       *string   `json:"safeTransactionHash,omitempty"`
	IsSafeTransactionExecuted bool      `json:"isSafeTransactionExecuted"`
	CreatedAt                 time.Time `json:"createdAt"`
	UpdatedAt                 time.Time `json:"updatedAt"`
}

func newLink(votingRoundID uuid.UUID, dripListID string, publisher Address, safeTx *SafeTransaction, now time.Time) (*Link, error) {
	if dripListID == "" {
		return nil, fmt.Errorf("%w: drip list id is required", ErrInvalidArgument)
	}

	link := &Link{
		ID:            uuid.New(),
		VotingRoundID: votingRoundID,
		DripListID:    dripListID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if safeTx == nil {
		return link, nil
	}

	if safeTx.Hash == "" {
		return nil, fmt.Errorf("%w: safe transaction hash is empty", ErrInvalidArgument)
	}
	if !safeTx.SafeAddress.Equal(publisher) {
		return nil, fmt.Errorf("%w: safe address %s does not match the publisher %s", ErrUnauthorized, safeTx.SafeAddress, publisher)
	}
	if safeTx.IsExecuted && !safeTx.IsSuccessful {
		return nil, fmt.Errorf("%w: safe transaction %s executed unsuccessfully", ErrInvalidOperation, safeTx.Hash)
	}

	hash := safeTx.Hash
	link.SafeTransactionHash = &hash
	link.IsSafeTransactionExecuted = safeTx.IsExecuted

	return link, nil
}

// Status is derived, never stored: a link without a multisig hash is
// complete from the start; one with a hash completes when the transaction
// executes.
func (l *Link) Status() LinkStatus {
	if l.SafeTransactionHash != nil && !l.IsSafeTransactionExecuted {
		return LinkStatusAwaitingSafeTxExecution
	}
	return LinkStatusCompleted
}

// MarkSafeTransactionAsExecuted completes a pending multisig link. It is a
// no-op for links that are already complete.
func (l *Link) MarkSafeTransactionAsExecuted(now time.Time) {
	if l.SafeTransactionHash == nil || l.IsSafeTransactionExecuted {
		return
	}
	l.IsSafeTransactionExecuted = true
	l.UpdatedAt = now
}

// LinkedAt is the last-modified timestamp, defined only once the link is
// complete.
func (l *Link) LinkedAt() *time.Time {
	if l.Status() != LinkStatusCompleted {
		return nil
	}
	t := l.UpdatedAt
	return &t
}
