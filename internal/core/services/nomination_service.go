package services

import (
	"context"
	"fmt"

	"github.com/drips-network/multiplayer/internal/core/domain"
	"github.com/drips-network/multiplayer/internal/core/ports"
)

type nominationService struct {
	repo     ports.VotingRoundRepository
	auth     ports.AuthStrategy
	resolver ports.ReceiverResolver
	clock    ports.Clock
}

func NewNominationService(
	repo ports.VotingRoundRepository,
	auth ports.AuthStrategy,
	resolver ports.ReceiverResolver,
	clock ports.Clock,
) ports.NominationService {
	return &nominationService{
		repo:     repo,
		auth:     auth,
		resolver: resolver,
		clock:    clock,
	}
}

func (s *nominationService) Nominate(ctx context.Context, input ports.NominateInput) (domain.Nomination, error) {
	round, err := s.repo.GetByID(ctx, input.VotingRoundID)
	if err != nil {
		return domain.Nomination{}, err
	}
	if round == nil {
		return domain.Nomination{}, domain.ErrVotingRoundNotFound
	}

	nominatedBy, err := domain.NewAddress(input.NominatedBy)
	if err != nil {
		return domain.Nomination{}, fmt.Errorf("nominated by: %w", err)
	}

	receiver, err := s.resolver.Resolve(ctx, round.ChainID, input.Receiver)
	if err != nil {
		return domain.Nomination{}, err
	}

	message := domain.NominateMessage(round.ChainID, nominatedBy, input.SignedAt, round.ID, receiver)
	if err := s.auth.VerifyMessage(ctx, message, input.Signature, nominatedBy, input.SignedAt); err != nil {
		return domain.Nomination{}, err
	}

	nomination, err := round.Nominate(domain.NominationRequest{
		Receiver:      receiver,
		NominatedBy:   nominatedBy,
		Description:   input.Description,
		ImpactMetrics: input.ImpactMetrics,
	}, s.clock.Now())
	if err != nil {
		return domain.Nomination{}, err
	}

	if err := s.repo.Save(ctx, round); err != nil {
		return domain.Nomination{}, err
	}

	return nomination, nil
}

func (s *nominationService) SetNominationStatuses(ctx context.Context, input ports.SetNominationStatusesInput) error {
	round, err := s.repo.GetByID(ctx, input.VotingRoundID)
	if err != nil {
		return err
	}
	if round == nil {
		return domain.ErrVotingRoundNotFound
	}

	updates := make([]domain.NominationStatusUpdate, 0, len(input.Updates))
	for _, u := range input.Updates {
		updates = append(updates, domain.NominationStatusUpdate{
			AccountID: u.AccountID,
			Status:    domain.NominationStatus(u.Status),
		})
	}

	message := domain.SetNominationStatusesMessage(round.ChainID, round.Publisher.Address, input.SignedAt, round.ID, updates)
	if err := s.auth.VerifyMessage(ctx, message, input.Signature, round.Publisher.Address, input.SignedAt); err != nil {
		return err
	}

	if err := round.SetNominationStatuses(updates, s.clock.Now()); err != nil {
		return err
	}

	return s.repo.Save(ctx, round)
}
