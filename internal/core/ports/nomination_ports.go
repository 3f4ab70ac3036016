package ports

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/drips-network/multiplayer/internal/core/domain"
)

type NominateInput struct {
	VotingRoundID uuid.UUID
	Receiver      ReceiverInput
	NominatedBy   string
	Description   string
	ImpactMetrics []domain.ImpactMetric
	Signature     string
	SignedAt      time.Time
}

type NominationStatusUpdateInput struct {
	AccountID string `json:"accountId"`
	Status    string `json:"status"`
}

type SetNominationStatusesInput struct {
	VotingRoundID uuid.UUID
	Updates       []NominationStatusUpdateInput
	Signature     string
	SignedAt      time.Time
}

type NominationService interface {
	Nominate(ctx context.Context, input NominateInput) (domain.Nomination, error)
	SetNominationStatuses(ctx context.Context, input SetNominationStatusesInput) error
}
