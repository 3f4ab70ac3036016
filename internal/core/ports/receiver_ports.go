package ports

import (
	"context"

	"github.com/drips-network/multiplayer/internal/core/domain"
)

// ReceiverInput is the user-supplied receiver shape before resolution: an
// address, a project URL or a drip-list account id, optionally with a vote
// weight.
type ReceiverInput struct {
	Type      string `json:"type"`
	Address   string `json:"address,omitempty"`
	URL       string `json:"url,omitempty"`
	AccountID string `json:"accountId,omitempty"`
	Weight    int    `json:"weight,omitempty"`
}

// ReceiverResolver maps a receiver input to a receiver with its canonical
// on-chain account id. The core's vote and nomination types consume only
// resolved receivers.
type ReceiverResolver interface {
	Resolve(ctx context.Context, chainID int64, input ReceiverInput) (domain.Receiver, error)
}
