package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	// TotalVoteWeight is the fixed allocation unit every vote distributes.
	TotalVoteWeight = 1_000_000

	// MaxVoteReceivers caps the receiver entries of a single vote.
	MaxVoteReceivers = 200
)

// Vote is one collaborator's weighted allocation over receivers. Votes are
// append-only: re-voting stores a new record and the previous ones stay for
// audit. The "current" vote is derived by recency, never by mutation.
type Vote struct {
	ID                  uuid.UUID      `json:"id"`
	VotingRoundID       uuid.UUID      `json:"votingRoundId"`
	CollaboratorAddress Address        `json:"collaboratorAddress"`
	Receivers           []VoteReceiver `json:"receivers"`
	UpdatedAt           time.Time      `json:"updatedAt"`
}

func newVote(votingRoundID uuid.UUID, collaborator Address, receivers []VoteReceiver, now time.Time) (Vote, error) {
	if len(receivers) == 0 {
		return Vote{}, fmt.Errorf("%w: a vote requires at least one receiver", ErrInvalidArgument)
	}
	if len(receivers) > MaxVoteReceivers {
		return Vote{}, fmt.Errorf("%w: a vote can have at most %d receivers, got %d", ErrInvalidArgument, MaxVoteReceivers, len(receivers))
	}

	total := 0
	for _, r := range receivers {
		if err := r.Validate(); err != nil {
			return Vote{}, err
		}
		total += r.Weight
	}
	if total != TotalVoteWeight {
		return Vote{}, fmt.Errorf("%w: receiver weights must sum to %d, got %d", ErrInvalidArgument, TotalVoteWeight, total)
	}

	return Vote{
		ID:                  uuid.New(),
		VotingRoundID:       votingRoundID,
		CollaboratorAddress: collaborator,
		Receivers:           receivers,
		UpdatedAt:           now,
	}, nil
}
