package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/drips-network/multiplayer/internal/core/domain"
)

type CastVoteInput struct {
	VotingRoundID uuid.UUID
	Collaborator  string
	Receivers     []ReceiverInput
	Signature     string
	SignedAt      time.Time
}

type RevealInput struct {
	VotingRoundID uuid.UUID
	Signature     string
	SignedAt      time.Time
}

type VoteService interface {
	CastVote(ctx context.Context, input CastVoteInput) (domain.Vote, error)

	// RevealVotes returns the latest votes of a private round after
	// verifying a publisher reveal signature. For public rounds the view on
	// VotingRoundService.Get already carries the votes.
	RevealVotes(ctx context.Context, input RevealInput) ([]domain.Vote, error)

	// RevealResult returns the result of a private round after verifying a
	// publisher reveal signature.
	RevealResult(ctx context.Context, input RevealInput) ([]domain.ResultReceiver, error)
}
