package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/drips-network/multiplayer/internal/core/domain"
	"github.com/drips-network/multiplayer/internal/core/ports"
)

type votingRoundService struct {
	repo     ports.VotingRoundRepository
	auth     ports.AuthStrategy
	safe     ports.SafeTransactionService
	resolver ports.ReceiverResolver
	clock    ports.Clock
}

func NewVotingRoundService(
	repo ports.VotingRoundRepository,
	auth ports.AuthStrategy,
	safe ports.SafeTransactionService,
	resolver ports.ReceiverResolver,
	clock ports.Clock,
) ports.VotingRoundService {
	return &votingRoundService{
		repo:     repo,
		auth:     auth,
		safe:     safe,
		resolver: resolver,
		clock:    clock,
	}
}

func (s *votingRoundService) Create(ctx context.Context, input ports.CreateVotingRoundInput) (*domain.VotingRound, error) {
	publisher, err := domain.NewAddress(input.Publisher)
	if err != nil {
		return nil, fmt.Errorf("publisher: %w", err)
	}

	collaborators := make([]domain.Collaborator, 0, len(input.Collaborators))
	addresses := make([]domain.Address, 0, len(input.Collaborators))
	for _, c := range input.Collaborators {
		addr, err := domain.NewAddress(c)
		if err != nil {
			return nil, fmt.Errorf("collaborator: %w", err)
		}
		collaborators = append(collaborators, domain.Collaborator{Address: addr})
		addresses = append(addresses, addr)
	}

	dripListID := ""
	if input.DripListID != nil {
		dripListID = *input.DripListID
	}

	message := domain.CreateVotingRoundMessage(input.ChainID, publisher, input.SignedAt, addresses, dripListID)
	if err := s.auth.VerifyMessage(ctx, message, input.Signature, publisher, input.SignedAt); err != nil {
		return nil, err
	}

	if dripListID != "" {
		if err := s.auth.VerifyDripListOwnership(ctx, publisher, input.ChainID, dripListID); err != nil {
			return nil, err
		}
		existing, err := s.repo.GetByDripListID(ctx, input.ChainID, dripListID)
		if err != nil {
			return nil, err
		}
		if existing != nil && existing.DeletedAt == nil && existing.Status(s.clock.Now()) == domain.VotingRoundStatusStarted {
			return nil, fmt.Errorf("%w: drip list %s already has an open voting round", domain.ErrInvalidOperation, dripListID)
		}
	}

	allowedReceivers := make([]domain.Receiver, 0, len(input.AllowedReceivers))
	for _, in := range input.AllowedReceivers {
		receiver, err := s.resolver.Resolve(ctx, input.ChainID, in)
		if err != nil {
			return nil, fmt.Errorf("allowed receiver: %w", err)
		}
		allowedReceivers = append(allowedReceivers, receiver)
	}

	round, err := domain.NewVotingRound(domain.NewVotingRoundParams{
		ChainID:            input.ChainID,
		Publisher:          domain.Publisher{Address: publisher},
		VotingStartsAt:     input.VotingStartsAt,
		VotingEndsAt:       input.VotingEndsAt,
		NominationStartsAt: input.NominationStartsAt,
		NominationEndsAt:   input.NominationEndsAt,
		DripListID:         input.DripListID,
		Name:               input.Name,
		Description:        input.Description,
		AreVotesPrivate:    input.AreVotesPrivate,
		Collaborators:      collaborators,
		AllowedReceivers:   allowedReceivers,
	}, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Save(ctx, round); err != nil {
		return nil, err
	}

	return round, nil
}

func (s *votingRoundService) Get(ctx context.Context, id uuid.UUID) (*ports.VotingRoundView, error) {
	round, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, domain.ErrVotingRoundNotFound
	}

	now := s.clock.Now()
	status := round.Status(now)

	view := &ports.VotingRoundView{
		ID:                     round.ID,
		ChainID:                round.ChainID,
		Publisher:              round.Publisher.Address.String(),
		Status:                 status,
		VotingStartsAt:         round.VotingStartsAt,
		VotingEndsAt:           round.VotingEndsAt,
		DripListID:             round.DripListID,
		Name:                   round.Name,
		Description:            round.Description,
		AreVotesPrivate:        round.AreVotesPrivate,
		HasVotingPeriodStarted: round.HasVotingPeriodStarted(now),
		AllowedReceivers:       round.AllowedReceivers,
	}

	if round.Link != nil {
		view.LinkedAt = round.Link.LinkedAt()
	}

	if round.HasNominationPeriod() {
		view.NominationPeriod = &ports.NominationPeriodView{
			StartsAt:    round.NominationStartsAt,
			EndsAt:      round.NominationEndsAt,
			IsOpen:      round.IsNominationPeriodOpen(now),
			Nominations: round.Nominations,
		}
	}

	if !round.AreVotesPrivate {
		view.Votes = round.LatestVotes()
	}

	roundConcluded := status == domain.VotingRoundStatusCompleted ||
		status == domain.VotingRoundStatusPendingLinkCompletion ||
		status == domain.VotingRoundStatusLinked
	if len(round.Votes) > 0 && (!round.AreVotesPrivate || roundConcluded) {
		view.Result = round.Result()
	}

	return view, nil
}

func (s *votingRoundService) Delete(ctx context.Context, input ports.DeleteVotingRoundInput) error {
	round, err := s.repo.GetByID(ctx, input.VotingRoundID)
	if err != nil {
		return err
	}
	if round == nil {
		return domain.ErrVotingRoundNotFound
	}

	message := domain.DeleteVotingRoundMessage(round.ChainID, round.Publisher.Address, input.SignedAt, round.ID)
	if err := s.auth.VerifyMessage(ctx, message, input.Signature, round.Publisher.Address, input.SignedAt); err != nil {
		return err
	}

	if err := round.Delete(s.clock.Now()); err != nil {
		return err
	}

	return s.repo.Save(ctx, round)
}

func (s *votingRoundService) Link(ctx context.Context, input ports.LinkVotingRoundInput) error {
	round, err := s.repo.GetByID(ctx, input.VotingRoundID)
	if err != nil {
		return err
	}
	if round == nil {
		return domain.ErrVotingRoundNotFound
	}

	message := domain.LinkVotingRoundMessage(round.ChainID, round.Publisher.Address, input.SignedAt, round.ID, input.DripListID)
	if err := s.auth.VerifyMessage(ctx, message, input.Signature, round.Publisher.Address, input.SignedAt); err != nil {
		return err
	}
	if err := s.auth.VerifyDripListOwnership(ctx, round.Publisher.Address, round.ChainID, input.DripListID); err != nil {
		return err
	}

	var safeTx *domain.SafeTransaction
	if input.SafeTransactionHash != nil {
		tx, err := s.safe.GetTransaction(ctx, round.ChainID, *input.SafeTransactionHash)
		if err != nil {
			return err
		}
		safeTx = &tx
	}

	if err := round.LinkToDripList(input.DripListID, safeTx, s.clock.Now()); err != nil {
		return err
	}

	return s.repo.Save(ctx, round)
}

// CompletePendingLink re-checks the Safe transaction of a round awaiting
// multisig execution and completes the link once the transaction executed
// successfully.
func (s *votingRoundService) CompletePendingLink(ctx context.Context, id uuid.UUID) error {
	round, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if round == nil {
		return domain.ErrVotingRoundNotFound
	}
	if round.Link == nil || round.Link.Status() != domain.LinkStatusAwaitingSafeTxExecution {
		return fmt.Errorf("%w: voting round has no pending link", domain.ErrInvalidOperation)
	}

	tx, err := s.safe.GetTransaction(ctx, round.ChainID, *round.Link.SafeTransactionHash)
	if err != nil {
		return err
	}
	if !tx.IsExecuted {
		return nil
	}
	if !tx.IsSuccessful {
		return fmt.Errorf("%w: safe transaction %s executed unsuccessfully", domain.ErrInvalidOperation, tx.Hash)
	}

	round.Link.MarkSafeTransactionAsExecuted(s.clock.Now())
	round.UpdatedAt = s.clock.Now()

	return s.repo.Save(ctx, round)
}
