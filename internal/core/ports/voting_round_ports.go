package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/drips-network/multiplayer/internal/core/domain"
)

// VotingRoundRepository persists the aggregate with all child collections.
// The caller owns the read-modify-write transaction boundary; concurrent
// mutations of one round are serialized here, not in the core.
type VotingRoundRepository interface {
	Save(ctx context.Context, round *domain.VotingRound) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.VotingRound, error)
	GetByDripListID(ctx context.Context, chainID int64, dripListID string) (*domain.VotingRound, error)
}

type CreateVotingRoundInput struct {
	ChainID            int64
	Publisher          string
	VotingStartsAt     time.Time
	VotingEndsAt       time.Time
	NominationStartsAt *time.Time
	NominationEndsAt   *time.Time
	DripListID         *string
	Name               *string
	Description        *string
	AreVotesPrivate    bool
	Collaborators      []string
	AllowedReceivers   []ReceiverInput
	Signature          string
	SignedAt           time.Time
}

type DeleteVotingRoundInput struct {
	VotingRoundID uuid.UUID
	Signature     string
	SignedAt      time.Time
}

type LinkVotingRoundInput struct {
	VotingRoundID       uuid.UUID
	DripListID          string
	SafeTransactionHash *string
	Signature           string
	SignedAt            time.Time
}

// NominationPeriodView is the nomination section of the round view.
type NominationPeriodView struct {
	StartsAt    *time.Time          `json:"startsAt,omitempty"`
	EndsAt      *time.Time          `json:"endsAt,omitempty"`
	IsOpen      bool                `json:"isOpen"`
	Nominations []domain.Nomination `json:"nominations,omitempty"`
}

// VotingRoundView is the read model of a round. Votes are nil when the
// round is private; the result is nil until it may be shown.
type VotingRoundView struct {
	ID                     uuid.UUID                `json:"id"`
	ChainID                int64                    `json:"chainId"`
	Publisher              string                   `json:"publisher"`
	Status                 domain.VotingRoundStatus `json:"status"`
	VotingStartsAt         time.Time                `json:"votingStartsAt"`
	VotingEndsAt           time.Time                `json:"votingEndsAt"`
	DripListID             *string                  `json:"dripListId,omitempty"`
	Name                   *string                  `json:"name,omitempty"`
	Description            *string                  `json:"description,omitempty"`
	AreVotesPrivate        bool                     `json:"areVotesPrivate"`
	LinkedAt               *time.Time               `json:"linkedAt,omitempty"`
	HasVotingPeriodStarted bool                     `json:"hasVotingPeriodStarted"`
	NominationPeriod       *NominationPeriodView    `json:"nominationPeriod,omitempty"`
	AllowedReceivers       []domain.Receiver        `json:"allowedReceivers,omitempty"`
	Votes                  []domain.Vote            `json:"votes,omitempty"`
	Result                 []domain.ResultReceiver  `json:"result,omitempty"`
}

type VotingRoundService interface {
	Create(ctx context.Context, input CreateVotingRoundInput) (*domain.VotingRound, error)
	Get(ctx context.Context, id uuid.UUID) (*VotingRoundView, error)
	Delete(ctx context.Context, input DeleteVotingRoundInput) error
	Link(ctx context.Context, input LinkVotingRoundInput) error

	// CompletePendingLink re-checks the Safe transaction of a round whose
	// link awaits multisig execution and completes the link when the
	// transaction has executed successfully.
	CompletePendingLink(ctx context.Context, id uuid.UUID) error
}
