package domain

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testPublisher    = Address("0x1111111111111111111111111111111111111111")
	testCollaborator = Address("0x2222222222222222222222222222222222222222")
	testCollabOther  = Address("0x3333333333333333333333333333333333333333")
)

func validParams(now time.Time) NewVotingRoundParams {
	name := "Open Source Round"
	description := "Funding round for open source dependencies"
	return NewVotingRoundParams{
		ChainID:        11155111,
		Publisher:      Publisher{Address: testPublisher},
		VotingStartsAt: now.Add(24 * time.Hour),
		VotingEndsAt:   now.Add(48 * time.Hour),
		Name:           &name,
		Description:    &description,
		Collaborators: []Collaborator{
			{Address: testCollaborator},
			{Address: testCollabOther},
		},
	}
}

func addressReceiver(accountID string, addr Address, weight int) VoteReceiver {
	return VoteReceiver{
		Receiver: Receiver{Type: ReceiverTypeAddress, AccountID: accountID, Address: addr},
		Weight:   weight,
	}
}

func projectReceiver(accountID string, weight int) VoteReceiver {
	return VoteReceiver{
		Receiver: Receiver{Type: ReceiverTypeProject, AccountID: accountID, URL: "https://github.com/drips-network/app"},
		Weight:   weight,
	}
}

func TestNewVotingRoundStartsImmediately(t *testing.T) {
	now := time.Now()

	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)

	assert.Equal(t, VotingRoundStatusStarted, round.Status(now))
	assert.False(t, round.HasVotingPeriodStarted(now))
}

func TestNewVotingRoundValidation(t *testing.T) {
	now := time.Now()
	longName := make([]byte, MaxNameLength+1)
	for i := range longName {
		longName[i] = 'a'
	}
	tooLongName := string(longName)

	longDescription := make([]byte, MaxDescriptionLength+1)
	for i := range longDescription {
		longDescription[i] = 'b'
	}
	tooLongDescription := string(longDescription)

	dripListID := "42"
	nominationStart := now.Add(30 * time.Minute)
	nominationEnd := now.Add(23 * time.Hour)
	nominationPast := now.Add(-time.Hour)
	nominationAfterVoting := now.Add(25 * time.Hour)

	cases := []struct {
		name   string
		mutate func(*NewVotingRoundParams)
	}{
		{"start after end", func(p *NewVotingRoundParams) {
			p.VotingStartsAt = p.VotingEndsAt.Add(time.Hour)
		}},
		{"start equals end", func(p *NewVotingRoundParams) {
			p.VotingStartsAt = p.VotingEndsAt
		}},
		{"start in the past", func(p *NewVotingRoundParams) {
			p.VotingStartsAt = now.Add(-time.Minute)
		}},
		{"nomination start without end", func(p *NewVotingRoundParams) {
			p.NominationStartsAt = &nominationStart
		}},
		{"nomination end without start", func(p *NewVotingRoundParams) {
			p.NominationEndsAt = &nominationEnd
		}},
		{"nomination start in the past", func(p *NewVotingRoundParams) {
			p.NominationStartsAt = &nominationPast
			p.NominationEndsAt = &nominationEnd
		}},
		{"nomination start after end", func(p *NewVotingRoundParams) {
			p.NominationStartsAt = &nominationEnd
			p.NominationEndsAt = &nominationStart
		}},
		{"nomination ends after voting starts", func(p *NewVotingRoundParams) {
			p.NominationStartsAt = &nominationStart
			p.NominationEndsAt = &nominationAfterVoting
		}},
		{"name too long", func(p *NewVotingRoundParams) {
			p.Name = &tooLongName
		}},
		{"description too long", func(p *NewVotingRoundParams) {
			p.Description = &tooLongDescription
		}},
		{"description without name", func(p *NewVotingRoundParams) {
			p.Name = nil
		}},
		{"both drip list and name", func(p *NewVotingRoundParams) {
			p.DripListID = &dripListID
		}},
		{"neither drip list nor name", func(p *NewVotingRoundParams) {
			p.DripListID = nil
			p.Name = nil
			p.Description = nil
		}},
		{"duplicate collaborators", func(p *NewVotingRoundParams) {
			p.Collaborators = append(p.Collaborators, Collaborator{Address: testCollaborator})
		}},
		{"duplicate collaborators different casing", func(p *NewVotingRoundParams) {
			p.Collaborators = []Collaborator{
				{Address: Address("0xabcd00000000000000000000000000000000abcd")},
				{Address: Address("0xABCD00000000000000000000000000000000ABCD")},
			}
		}},
		{"unsupported chain", func(p *NewVotingRoundParams) {
			p.ChainID = 999999
		}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			params := validParams(now)
			tc.mutate(&params)

			_, err := NewVotingRound(params, now)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestNewVotingRoundWithExistingDripList(t *testing.T) {
	now := time.Now()
	dripListID := "846959513016227493489143736695218182523669298507"

	params := validParams(now)
	params.Name = nil
	params.Description = nil
	params.DripListID = &dripListID

	round, err := NewVotingRound(params, now)
	require.NoError(t, err)
	assert.Equal(t, dripListID, *round.DripListID)
}

func TestStatusDerivation(t *testing.T) {
	now := time.Now()
	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)

	assert.Equal(t, VotingRoundStatusStarted, round.Status(round.VotingStartsAt.Add(time.Hour)))
	assert.Equal(t, VotingRoundStatusCompleted, round.Status(round.VotingEndsAt.Add(time.Second)))

	afterEnd := round.VotingEndsAt.Add(time.Hour)
	_, err = round.CastVote(testCollaborator, []VoteReceiver{projectReceiver("100", TotalVoteWeight)}, now.Add(25*time.Hour))
	require.NoError(t, err)

	hash := "0xabc"
	require.NoError(t, round.LinkToDripList("42", &SafeTransaction{
		Hash:        hash,
		SafeAddress: testPublisher,
		IsExecuted:  false,
	}, afterEnd))
	assert.Equal(t, VotingRoundStatusPendingLinkCompletion, round.Status(afterEnd))

	round.Link.MarkSafeTransactionAsExecuted(afterEnd.Add(time.Minute))
	assert.Equal(t, VotingRoundStatusLinked, round.Status(afterEnd.Add(time.Minute)))
}

func TestDeleteTombstonesRound(t *testing.T) {
	now := time.Now()
	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)

	require.NoError(t, round.Delete(now.Add(time.Minute)))
	assert.Equal(t, VotingRoundStatusDeleted, round.Status(now.Add(time.Hour)))

	// Deleted is terminal.
	assert.ErrorIs(t, round.Delete(now.Add(time.Hour)), ErrVotingRoundDeleted)
	_, err = round.CastVote(testCollaborator, []VoteReceiver{projectReceiver("100", TotalVoteWeight)}, now.Add(25*time.Hour))
	assert.ErrorIs(t, err, ErrVotingRoundDeleted)
}

func TestCastVoteWeightBoundaries(t *testing.T) {
	now := time.Now()
	voteTime := now.Add(25 * time.Hour)

	cases := []struct {
		total int
		ok    bool
	}{
		{TotalVoteWeight - 1, false},
		{TotalVoteWeight, true},
		{TotalVoteWeight + 1, false},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("total %d", tc.total), func(t *testing.T) {
			round, err := NewVotingRound(validParams(now), now)
			require.NoError(t, err)

			receivers := []VoteReceiver{
				projectReceiver("100", tc.total-1),
				projectReceiver("200", 1),
			}
			_, err = round.CastVote(testCollaborator, receivers, voteTime)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidArgument)
			}
		})
	}
}

func TestCastVoteRejectsWeightSumOverflow(t *testing.T) {
	now := time.Now()
	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)

	// The individual weights wrap around to exactly the total allocation
	// unit when summed in an int.
	receivers := []VoteReceiver{
		projectReceiver("100", math.MaxInt),
		projectReceiver("200", math.MaxInt),
		projectReceiver("300", TotalVoteWeight+2),
	}
	_, err = round.CastVote(testCollaborator, receivers, now.Add(25*time.Hour))
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCastVoteNormalizesCollaboratorCasing(t *testing.T) {
	now := time.Now()
	voteTime := now.Add(25 * time.Hour)

	params := validParams(now)
	params.Collaborators = []Collaborator{
		{Address: Address("0xabcd00000000000000000000000000000000abcd")},
	}
	round, err := NewVotingRound(params, now)
	require.NoError(t, err)

	upper := Address("0xABCD00000000000000000000000000000000ABCD")
	vote, err := round.CastVote(upper, []VoteReceiver{projectReceiver("100", TotalVoteWeight)}, voteTime)
	require.NoError(t, err)
	assert.Equal(t, round.Collaborators[0].Address, vote.CollaboratorAddress)

	require.Len(t, round.LatestVotes(), 1)
	require.Len(t, round.Result(), 1)
}

func TestCastVoteReceiverCountBoundaries(t *testing.T) {
	now := time.Now()
	voteTime := now.Add(25 * time.Hour)

	makeReceivers := func(n int) []VoteReceiver {
		receivers := make([]VoteReceiver, n)
		weight := TotalVoteWeight / n
		remainder := TotalVoteWeight - weight*n
		for i := range receivers {
			receivers[i] = projectReceiver(fmt.Sprintf("%d", i+1), weight)
		}
		receivers[0].Weight += remainder
		return receivers
	}

	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)
	_, err = round.CastVote(testCollaborator, makeReceivers(MaxVoteReceivers), voteTime)
	assert.NoError(t, err)

	round, err = NewVotingRound(validParams(now), now)
	require.NoError(t, err)
	_, err = round.CastVote(testCollaborator, makeReceivers(MaxVoteReceivers+1), voteTime)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestCastVoteRequiresMembership(t *testing.T) {
	now := time.Now()
	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)

	outsider := Address("0x9999999999999999999999999999999999999999")
	_, err = round.CastVote(outsider, []VoteReceiver{projectReceiver("100", TotalVoteWeight)}, now.Add(25*time.Hour))
	assert.ErrorIs(t, err, ErrCollaboratorNotFound)
}

func TestCastVoteAppendsAndLatestWins(t *testing.T) {
	now := time.Now()
	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)

	first := []VoteReceiver{projectReceiver("100", TotalVoteWeight)}
	second := []VoteReceiver{projectReceiver("200", TotalVoteWeight)}

	_, err = round.CastVote(testCollaborator, first, now.Add(25*time.Hour))
	require.NoError(t, err)
	_, err = round.CastVote(testCollaborator, second, now.Add(26*time.Hour))
	require.NoError(t, err)

	assert.Len(t, round.Votes, 2, "both vote records stay for audit")

	latest := round.LatestVotes()
	require.Len(t, latest, 1)
	assert.Equal(t, "200", latest[0].Receivers[0].AccountID)
}

func TestLatestVotesTieBreaksToLaterVote(t *testing.T) {
	now := time.Now()
	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)

	sameInstant := now.Add(25 * time.Hour)
	_, err = round.CastVote(testCollaborator, []VoteReceiver{projectReceiver("100", TotalVoteWeight)}, sameInstant)
	require.NoError(t, err)
	_, err = round.CastVote(testCollaborator, []VoteReceiver{projectReceiver("200", TotalVoteWeight)}, sameInstant)
	require.NoError(t, err)

	latest := round.LatestVotes()
	require.Len(t, latest, 1)
	assert.Equal(t, "200", latest[0].Receivers[0].AccountID)
}

func TestResultNormalizesAcrossVoters(t *testing.T) {
	now := time.Now()
	voteTime := now.Add(25 * time.Hour)
	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)

	_, err = round.CastVote(testCollaborator, []VoteReceiver{
		projectReceiver("100", 600_000),
		projectReceiver("200", 400_000),
	}, voteTime)
	require.NoError(t, err)

	_, err = round.CastVote(testCollabOther, []VoteReceiver{
		projectReceiver("200", TotalVoteWeight),
	}, voteTime)
	require.NoError(t, err)

	result := round.Result()
	require.Len(t, result, 2)

	byAccount := make(map[string]float64)
	total := 0.0
	for _, r := range result {
		byAccount[r.AccountID] = r.Weight
		total += r.Weight
	}

	assert.Equal(t, 300_000.0, byAccount["100"])
	assert.Equal(t, 700_000.0, byAccount["200"])
	assert.Equal(t, float64(TotalVoteWeight), total, "result weights sum to the total allocation")
}

func TestResultUsesLatestVotesOnly(t *testing.T) {
	now := time.Now()
	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)

	_, err = round.CastVote(testCollaborator, []VoteReceiver{projectReceiver("100", TotalVoteWeight)}, now.Add(25*time.Hour))
	require.NoError(t, err)
	_, err = round.CastVote(testCollaborator, []VoteReceiver{projectReceiver("200", TotalVoteWeight)}, now.Add(26*time.Hour))
	require.NoError(t, err)

	result := round.Result()
	require.Len(t, result, 1)
	assert.Equal(t, "200", result[0].AccountID)
	assert.Equal(t, float64(TotalVoteWeight), result[0].Weight)
}

func TestResultEmptyWithoutVotes(t *testing.T) {
	now := time.Now()
	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)

	assert.Nil(t, round.Result())
}

func nominationParams(now time.Time) NewVotingRoundParams {
	params := validParams(now)
	start := now.Add(30 * time.Minute)
	end := now.Add(23 * time.Hour)
	params.NominationStartsAt = &start
	params.NominationEndsAt = &end
	return params
}

func nominationRequest(accountID string) NominationRequest {
	return NominationRequest{
		Receiver:    Receiver{Type: ReceiverTypeProject, AccountID: accountID, URL: "https://github.com/drips-network/app"},
		NominatedBy: testCollaborator,
		Description: "core infrastructure",
		ImpactMetrics: []ImpactMetric{
			{Key: "downloads", Value: "120000", Link: "https://npmjs.com"},
		},
	}
}

func TestNominateRequiresConfiguredWindow(t *testing.T) {
	now := time.Now()
	round, err := NewVotingRound(validParams(now), now)
	require.NoError(t, err)

	_, err = round.Nominate(nominationRequest("100"), now.Add(time.Hour))
	assert.ErrorIs(t, err, ErrNominationNotConfigured)
}

func TestNominateRespectsWindow(t *testing.T) {
	now := time.Now()
	round, err := NewVotingRound(nominationParams(now), now)
	require.NoError(t, err)

	// Before the window opens.
	_, err = round.Nominate(nominationRequest("100"), now.Add(10*time.Minute))
	assert.ErrorIs(t, err, ErrNominationPeriodClosed)

	// Inside the window.
	_, err = round.Nominate(nominationRequest("100"), now.Add(time.Hour))
	assert.NoError(t, err)

	// After the window closes.
	_, err = round.Nominate(nominationRequest("200"), now.Add(23*time.Hour+time.Minute))
	assert.ErrorIs(t, err, ErrNominationPeriodClosed)
}

func TestNominateRejectsDuplicates(t *testing.T) {
	now := time.Now()
	inWindow := now.Add(time.Hour)
	round, err := NewVotingRound(nominationParams(now), now)
	require.NoError(t, err)

	_, err = round.Nominate(nominationRequest("100"), inWindow)
	require.NoError(t, err)

	_, err = round.Nominate(nominationRequest("100"), inWindow.Add(time.Minute))
	assert.ErrorIs(t, err, ErrDuplicateNomination)
}

func TestRejectedNominationIsReused(t *testing.T) {
	now := time.Now()
	inWindow := now.Add(time.Hour)
	round, err := NewVotingRound(nominationParams(now), now)
	require.NoError(t, err)

	first, err := round.Nominate(nominationRequest("100"), inWindow)
	require.NoError(t, err)

	err = round.SetNominationStatuses([]NominationStatusUpdate{
		{AccountID: "100", Status: NominationStatusRejected},
	}, inWindow.Add(time.Minute))
	require.NoError(t, err)

	resubmitted, err := round.Nominate(nominationRequest("100"), inWindow.Add(2*time.Minute))
	require.NoError(t, err)

	assert.Equal(t, first.ID, resubmitted.ID, "rejected nomination keeps its identity")
	assert.Equal(t, NominationStatusPending, resubmitted.Status)
	assert.Len(t, round.Nominations, 1, "no duplicate record")
}

func TestSetNominationStatuses(t *testing.T) {
	now := time.Now()
	inWindow := now.Add(time.Hour)
	round, err := NewVotingRound(nominationParams(now), now)
	require.NoError(t, err)

	t.Run("fails without nominations", func(t *testing.T) {
		err := round.SetNominationStatuses([]NominationStatusUpdate{
			{AccountID: "100", Status: NominationStatusAccepted},
		}, inWindow)
		assert.ErrorIs(t, err, ErrNominationNotFound)
	})

	_, err = round.Nominate(nominationRequest("100"), inWindow)
	require.NoError(t, err)

	t.Run("fails for unknown account id", func(t *testing.T) {
		err := round.SetNominationStatuses([]NominationStatusUpdate{
			{AccountID: "404", Status: NominationStatusAccepted},
		}, inWindow)
		assert.ErrorIs(t, err, ErrNominationNotFound)
	})

	t.Run("fails after voting starts", func(t *testing.T) {
		err := round.SetNominationStatuses([]NominationStatusUpdate{
			{AccountID: "100", Status: NominationStatusAccepted},
		}, round.VotingStartsAt)
		assert.ErrorIs(t, err, ErrInvalidOperation)
	})

	t.Run("applies updates and refreshes timestamps", func(t *testing.T) {
		statusTime := inWindow.Add(time.Minute)
		err := round.SetNominationStatuses([]NominationStatusUpdate{
			{AccountID: "100", Status: NominationStatusAccepted},
		}, statusTime)
		require.NoError(t, err)
		assert.Equal(t, NominationStatusAccepted, round.Nominations[0].Status)
		assert.Equal(t, statusTime, round.Nominations[0].StatusChangedAt)
	})
}

func TestCastVoteHonorsVotableSet(t *testing.T) {
	now := time.Now()
	inWindow := now.Add(time.Hour)
	round, err := NewVotingRound(nominationParams(now), now)
	require.NoError(t, err)

	_, err = round.Nominate(nominationRequest("100"), inWindow)
	require.NoError(t, err)
	require.NoError(t, round.SetNominationStatuses([]NominationStatusUpdate{
		{AccountID: "100", Status: NominationStatusAccepted},
	}, inWindow.Add(time.Minute)))

	voteTime := now.Add(25 * time.Hour)

	_, err = round.CastVote(testCollaborator, []VoteReceiver{projectReceiver("100", TotalVoteWeight)}, voteTime)
	assert.NoError(t, err)

	_, err = round.CastVote(testCollabOther, []VoteReceiver{projectReceiver("666", TotalVoteWeight)}, voteTime)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestLinkToDripList(t *testing.T) {
	now := time.Now()
	voteTime := now.Add(25 * time.Hour)
	afterEnd := now.Add(49 * time.Hour)

	t.Run("fails with zero votes even when completed", func(t *testing.T) {
		round, err := NewVotingRound(validParams(now), now)
		require.NoError(t, err)
		require.Equal(t, VotingRoundStatusCompleted, round.Status(afterEnd))

		err = round.LinkToDripList("42", nil, afterEnd)
		assert.ErrorIs(t, err, ErrNoVotes)
	})

	t.Run("fails before completion", func(t *testing.T) {
		round, err := NewVotingRound(validParams(now), now)
		require.NoError(t, err)
		_, err = round.CastVote(testCollaborator, []VoteReceiver{projectReceiver("100", TotalVoteWeight)}, voteTime)
		require.NoError(t, err)

		err = round.LinkToDripList("42", nil, voteTime)
		assert.ErrorIs(t, err, ErrRoundNotCompleted)
	})

	t.Run("fails for a different drip list", func(t *testing.T) {
		dripListID := "42"
		params := validParams(now)
		params.Name = nil
		params.Description = nil
		params.DripListID = &dripListID

		round, err := NewVotingRound(params, now)
		require.NoError(t, err)
		_, err = round.CastVote(testCollaborator, []VoteReceiver{projectReceiver("100", TotalVoteWeight)}, voteTime)
		require.NoError(t, err)

		err = round.LinkToDripList("43", nil, afterEnd)
		assert.ErrorIs(t, err, ErrDripListMismatch)
	})

	t.Run("links without multisig immediately", func(t *testing.T) {
		round, err := NewVotingRound(validParams(now), now)
		require.NoError(t, err)
		_, err = round.CastVote(testCollaborator, []VoteReceiver{projectReceiver("100", TotalVoteWeight)}, voteTime)
		require.NoError(t, err)

		require.NoError(t, round.LinkToDripList("42", nil, afterEnd))
		assert.Equal(t, VotingRoundStatusLinked, round.Status(afterEnd))
		assert.Equal(t, "42", *round.DripListID)
		require.NotNil(t, round.Link.LinkedAt())

		// Linking is terminal.
		err = round.LinkToDripList("42", nil, afterEnd)
		assert.ErrorIs(t, err, ErrAlreadyLinked)
	})

	t.Run("rejects safe address that is not the publisher", func(t *testing.T) {
		round, err := NewVotingRound(validParams(now), now)
		require.NoError(t, err)
		_, err = round.CastVote(testCollaborator, []VoteReceiver{projectReceiver("100", TotalVoteWeight)}, voteTime)
		require.NoError(t, err)

		err = round.LinkToDripList("42", &SafeTransaction{
			Hash:        "0xabc",
			SafeAddress: testCollabOther,
		}, afterEnd)
		assert.ErrorIs(t, err, ErrUnauthorized)
	})
}
