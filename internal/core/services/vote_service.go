package services

import (
	"context"
	"fmt"

	"github.com/drips-network/multiplayer/internal/core/domain"
	"github.com/drips-network/multiplayer/internal/core/ports"
)

type voteService struct {
	repo     ports.VotingRoundRepository
	auth     ports.AuthStrategy
	resolver ports.ReceiverResolver
	clock    ports.Clock
}

func NewVoteService(
	repo ports.VotingRoundRepository,
	auth ports.AuthStrategy,
	resolver ports.ReceiverResolver,
	clock ports.Clock,
) ports.VoteService {
	return &voteService{
		repo:     repo,
		auth:     auth,
		resolver: resolver,
		clock:    clock,
	}
}

func (s *voteService) CastVote(ctx context.Context, input ports.CastVoteInput) (domain.Vote, error) {
	round, err := s.repo.GetByID(ctx, input.VotingRoundID)
	if err != nil {
		return domain.Vote{}, err
	}
	if round == nil {
		return domain.Vote{}, domain.ErrVotingRoundNotFound
	}

	collaborator, err := domain.NewAddress(input.Collaborator)
	if err != nil {
		return domain.Vote{}, fmt.Errorf("collaborator: %w", err)
	}

	receivers := make([]domain.VoteReceiver, 0, len(input.Receivers))
	for _, in := range input.Receivers {
		receiver, err := s.resolver.Resolve(ctx, round.ChainID, in)
		if err != nil {
			return domain.Vote{}, err
		}
		receivers = append(receivers, domain.VoteReceiver{Receiver: receiver, Weight: in.Weight})
	}

	message := domain.CastVoteMessage(round.ChainID, collaborator, input.SignedAt, round.ID, receivers)
	if err := s.auth.VerifyMessage(ctx, message, input.Signature, collaborator, input.SignedAt); err != nil {
		return domain.Vote{}, err
	}

	vote, err := round.CastVote(collaborator, receivers, s.clock.Now())
	if err != nil {
		return domain.Vote{}, err
	}

	if err := s.repo.Save(ctx, round); err != nil {
		return domain.Vote{}, err
	}

	return vote, nil
}

func (s *voteService) RevealVotes(ctx context.Context, input ports.RevealInput) ([]domain.Vote, error) {
	round, err := s.repo.GetByID(ctx, input.VotingRoundID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, domain.ErrVotingRoundNotFound
	}

	message := domain.RevealVotesMessage(round.ChainID, round.Publisher.Address, input.SignedAt, round.ID)
	if err := s.auth.VerifyMessage(ctx, message, input.Signature, round.Publisher.Address, input.SignedAt); err != nil {
		return nil, err
	}

	return round.LatestVotes(), nil
}

func (s *voteService) RevealResult(ctx context.Context, input ports.RevealInput) ([]domain.ResultReceiver, error) {
	round, err := s.repo.GetByID(ctx, input.VotingRoundID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, domain.ErrVotingRoundNotFound
	}

	message := domain.RevealResultMessage(round.ChainID, round.Publisher.Address, input.SignedAt, round.ID)
	if err := s.auth.VerifyMessage(ctx, message, input.Signature, round.Publisher.Address, input.SignedAt); err != nil {
		return nil, err
	}

	return round.Result(), nil
}
