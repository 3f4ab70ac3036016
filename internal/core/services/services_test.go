package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/drips-network/multiplayer/internal/core/domain"
	"github.com/drips-network/multiplayer/internal/core/ports"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// memoryRepo mimics the postgres adapter's write semantics: the round row
// is upserted while votes are insert-only, so concurrent casts both land.
// Serializing the aggregate is this layer's job, not the core's.
type memoryRepo struct {
	mu     sync.Mutex
	rounds map[uuid.UUID]*domain.VotingRound
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{rounds: make(map[uuid.UUID]*domain.VotingRound)}
}

func copyRound(r *domain.VotingRound) *domain.VotingRound {
	c := *r
	c.Collaborators = append([]domain.Collaborator(nil), r.Collaborators...)
	c.AllowedReceivers = append([]domain.Receiver(nil), r.AllowedReceivers...)
	c.Votes = append([]domain.Vote(nil), r.Votes...)
	c.Nominations = append([]domain.Nomination(nil), r.Nominations...)
	if r.Link != nil {
		link := *r.Link
		c.Link = &link
	}
	return &c
}

func (m *memoryRepo) Save(ctx context.Context, round *domain.VotingRound) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.rounds[round.ID]
	if !ok {
		m.rounds[round.ID] = copyRound(round)
		return nil
	}

	merged := copyRound(round)
	seen := make(map[uuid.UUID]struct{}, len(merged.Votes))
	for _, v := range merged.Votes {
		seen[v.ID] = struct{}{}
	}
	for _, v := range existing.Votes {
		if _, dup := seen[v.ID]; !dup {
			merged.Votes = append(merged.Votes, v)
		}
	}
	m.rounds[round.ID] = merged

	return nil
}

func (m *memoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.VotingRound, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	round, ok := m.rounds[id]
	if !ok {
		return nil, nil
	}
	return copyRound(round), nil
}

func (m *memoryRepo) GetByDripListID(ctx context.Context, chainID int64, dripListID string) (*domain.VotingRound, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, round := range m.rounds {
		if round.ChainID == chainID && round.DripListID != nil && *round.DripListID == dripListID && round.DeletedAt == nil {
			return copyRound(round), nil
		}
	}
	return nil, nil
}

// fakeAuth accepts every signature and records the canonical messages it
// was asked to verify. Set err to simulate rejection.
type fakeAuth struct {
	mu       sync.Mutex
	err      error
	ownerErr error
	messages []string
}

func (a *fakeAuth) VerifyMessage(ctx context.Context, message, signature string, signer domain.Address, issuedAt time.Time) error {
	a.mu.Lock()
	a.messages = append(a.messages, message)
	a.mu.Unlock()
	return a.err
}

func (a *fakeAuth) VerifyDripListOwnership(ctx context.Context, publisher domain.Address, chainID int64, dripListID string) error {
	return a.ownerErr
}

type fakeSafe struct {
	tx  domain.SafeTransaction
	err error
}

func (s *fakeSafe) GetTransaction(ctx context.Context, chainID int64, hash string) (domain.SafeTransaction, error) {
	return s.tx, s.err
}

// fakeResolver resolves address receivers to a synthetic account id and
// passes caller-resolved ids through, mirroring the production resolver's
// contract without the address-driver arithmetic.
type fakeResolver struct{}

func (fakeResolver) Resolve(ctx context.Context, chainID int64, input ports.ReceiverInput) (domain.Receiver, error) {
	switch domain.ReceiverType(input.Type) {
	case domain.ReceiverTypeAddress:
		addr, err := domain.NewAddress(input.Address)
		if err != nil {
			return domain.Receiver{}, err
		}
		return domain.Receiver{Type: domain.ReceiverTypeAddress, AccountID: "addr-" + string(addr), Address: addr}, nil
	case domain.ReceiverTypeProject:
		return domain.Receiver{Type: domain.ReceiverTypeProject, AccountID: input.AccountID, URL: input.URL}, nil
	case domain.ReceiverTypeDripList:
		return domain.Receiver{Type: domain.ReceiverTypeDripList, AccountID: input.AccountID}, nil
	default:
		return domain.Receiver{}, fmt.Errorf("%w: unknown receiver type %q", domain.ErrInvalidArgument, input.Type)
	}
}

const (
	publisherAddr    = "0x1111111111111111111111111111111111111111"
	collaboratorAddr = "0x2222222222222222222222222222222222222222"
	otherCollabAddr  = "0x3333333333333333333333333333333333333333"
)

type testEnv struct {
	repo  *memoryRepo
	auth  *fakeAuth
	safe  *fakeSafe
	clock *fakeClock

	rounds      ports.VotingRoundService
	votes       ports.VoteService
	nominations ports.NominationService
}

func newTestEnv(now time.Time) *testEnv {
	env := &testEnv{
		repo:  newMemoryRepo(),
		auth:  &fakeAuth{},
		safe:  &fakeSafe{},
		clock: newFakeClock(now),
	}
	resolver := fakeResolver{}
	env.rounds = NewVotingRoundService(env.repo, env.auth, env.safe, resolver, env.clock)
	env.votes = NewVoteService(env.repo, env.auth, resolver, env.clock)
	env.nominations = NewNominationService(env.repo, env.auth, resolver, env.clock)
	return env
}

func (e *testEnv) createRound(input ports.CreateVotingRoundInput) (*domain.VotingRound, error) {
	return e.rounds.Create(context.Background(), input)
}

func baseCreateInput(now time.Time) ports.CreateVotingRoundInput {
	name := "Open Source Round"
	description := "Funding round for open source dependencies"
	return ports.CreateVotingRoundInput{
		ChainID:        11155111,
		Publisher:      publisherAddr,
		VotingStartsAt: now.Add(24 * time.Hour),
		VotingEndsAt:   now.Add(48 * time.Hour),
		Name:           &name,
		Description:    &description,
		Collaborators:  []string{collaboratorAddr, otherCollabAddr},
		Signature:      "0xsig",
		SignedAt:       now,
	}
}

func projectReceiverInput(accountID string, weight int) ports.ReceiverInput {
	return ports.ReceiverInput{
		Type:      string(domain.ReceiverTypeProject),
		AccountID: accountID,
		URL:       "https://github.com/drips-network/app",
		Weight:    weight,
	}
}
