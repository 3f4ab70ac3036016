package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drips-network/multiplayer/internal/core/domain"
	"github.com/drips-network/multiplayer/internal/core/ports"
)

func TestCastVoteVerifiesCanonicalMessage(t *testing.T) {
	now := time.Now()
	env := newTestEnv(now)
	ctx := context.Background()

	round, err := env.createRound(baseCreateInput(now))
	require.NoError(t, err)

	env.clock.Advance(25 * time.Hour)
	_, err = env.votes.CastVote(ctx, ports.CastVoteInput{
		VotingRoundID: round.ID,
		Collaborator:  collaboratorAddr,
		Receivers:     []ports.ReceiverInput{projectReceiverInput("100", domain.TotalVoteWeight)},
		Signature:     "0xsig",
		SignedAt:      env.clock.Now(),
	})
	require.NoError(t, err)

	last := env.auth.messages[len(env.auth.messages)-1]
	assert.Contains(t, last, "Cast a vote in the voting round "+round.ID.String())
}

func TestCastVoteUnknownRound(t *testing.T) {
	now := time.Now()
	env := newTestEnv(now)

	_, err := env.votes.CastVote(context.Background(), ports.CastVoteInput{
		VotingRoundID: uuid.New(),
		Collaborator:  collaboratorAddr,
		Receivers:     []ports.ReceiverInput{projectReceiverInput("100", domain.TotalVoteWeight)},
		Signature:     "0xsig",
		SignedAt:      now,
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Two concurrent casts for the same collaborator both persist because the
// repository's vote writes are append-only; the aggregate never loses a
// record to a lost update. Picking the effective vote stays a pure
// latest-by-recency read.
func TestConcurrentCastVotesAreSerializedByRepository(t *testing.T) {
	now := time.Now()
	env := newTestEnv(now)
	ctx := context.Background()

	round, err := env.createRound(baseCreateInput(now))
	require.NoError(t, err)

	env.clock.Advance(25 * time.Hour)

	var wg sync.WaitGroup
	accountIDs := []string{"100", "200"}
	errs := make([]error, len(accountIDs))
	for i, accountID := range accountIDs {
		wg.Add(1)
		go func(i int, accountID string) {
			defer wg.Done()
			_, errs[i] = env.votes.CastVote(ctx, ports.CastVoteInput{
				VotingRoundID: round.ID,
				Collaborator:  collaboratorAddr,
				Receivers:     []ports.ReceiverInput{projectReceiverInput(accountID, domain.TotalVoteWeight)},
				Signature:     "0xsig",
				SignedAt:      env.clock.Now(),
			})
		}(i, accountID)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}

	stored, err := env.repo.GetByID(ctx, round.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Votes, 2, "both vote records persisted")
	assert.Len(t, stored.LatestVotes(), 1, "one effective vote per collaborator")
}

func TestRevealVotesRequiresPublisherSignature(t *testing.T) {
	now := time.Now()
	env := newTestEnv(now)
	ctx := context.Background()

	input := baseCreateInput(now)
	input.AreVotesPrivate = true
	round, err := env.createRound(input)
	require.NoError(t, err)

	env.clock.Advance(25 * time.Hour)
	_, err = env.votes.CastVote(ctx, ports.CastVoteInput{
		VotingRoundID: round.ID,
		Collaborator:  collaboratorAddr,
		Receivers:     []ports.ReceiverInput{projectReceiverInput("100", domain.TotalVoteWeight)},
		Signature:     "0xsig",
		SignedAt:      env.clock.Now(),
	})
	require.NoError(t, err)

	votes, err := env.votes.RevealVotes(ctx, ports.RevealInput{
		VotingRoundID: round.ID,
		Signature:     "0xsig",
		SignedAt:      env.clock.Now(),
	})
	require.NoError(t, err)
	assert.Len(t, votes, 1)

	env.auth.err = domain.ErrSignatureMismatch
	_, err = env.votes.RevealVotes(ctx, ports.RevealInput{
		VotingRoundID: round.ID,
		Signature:     "0xbad",
		SignedAt:      env.clock.Now(),
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRevealResult(t *testing.T) {
	now := time.Now()
	env := newTestEnv(now)
	ctx := context.Background()

	input := baseCreateInput(now)
	input.AreVotesPrivate = true
	round, err := env.createRound(input)
	require.NoError(t, err)

	env.clock.Advance(25 * time.Hour)
	_, err = env.votes.CastVote(ctx, ports.CastVoteInput{
		VotingRoundID: round.ID,
		Collaborator:  collaboratorAddr,
		Receivers: []ports.ReceiverInput{
			projectReceiverInput("100", 250_000),
			projectReceiverInput("200", 750_000),
		},
		Signature: "0xsig",
		SignedAt:  env.clock.Now(),
	})
	require.NoError(t, err)

	result, err := env.votes.RevealResult(ctx, ports.RevealInput{
		VotingRoundID: round.ID,
		Signature:     "0xsig",
		SignedAt:      env.clock.Now(),
	})
	require.NoError(t, err)
	require.Len(t, result, 2)

	total := 0.0
	for _, r := range result {
		total += r.Weight
	}
	assert.Equal(t, float64(domain.TotalVoteWeight), total)
}
