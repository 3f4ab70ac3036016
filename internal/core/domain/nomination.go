package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

type NominationStatus string

const (
	NominationStatusPending  NominationStatus = "pending"
	NominationStatusAccepted NominationStatus = "accepted"
	NominationStatusRejected NominationStatus = "rejected"
)

// ImpactMetric is a key/value/link triple attached to a nomination to back
// up the proposal (e.g. downloads, dependents, a dashboard link).
type ImpactMetric struct {
	Key   string `json:"key"`
	Value string `json:"value"`
	Link  string `json:"link,omitempty"`
}

// Nomination proposes a receiver for the votable set of a round. At most one
// non-rejected nomination per receiver account id exists at a time; a
// rejected one is reused in place when the receiver is nominated again.
type Nomination struct {
	ID              uuid.UUID        `json:"id"`
	VotingRoundID   uuid.UUID        `json:"votingRoundId"`
	Receiver        Receiver         `json:"receiver"`
	Status          NominationStatus `json:"status"`
	NominatedBy     Address          `json:"nominatedBy"`
	Description     string           `json:"description"`
	ImpactMetrics   []ImpactMetric   `json:"impactMetrics,omitempty"`
	NominatedAt     time.Time        `json:"nominatedAt"`
	StatusChangedAt time.Time        `json:"statusChangedAt"`
}

// NominationRequest is the caller-supplied part of a nomination.
type NominationRequest struct {
	Receiver      Receiver
	NominatedBy   Address
	Description   string
	ImpactMetrics []ImpactMetric
}

func (nr NominationRequest) validate() error {
	if err := nr.Receiver.Validate(); err != nil {
		return err
	}
	if _, err := NewAddress(string(nr.NominatedBy)); err != nil {
		return err
	}
	if len(nr.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: nomination description exceeds %d characters", ErrInvalidArgument, MaxDescriptionLength)
	}
	return nil
}

func newNomination(votingRoundID uuid.UUID, req NominationRequest, now time.Time) Nomination {
	return Nomination{
		ID:              uuid.New(),
		VotingRoundID:   votingRoundID,
		Receiver:        req.Receiver,
		Status:          NominationStatusPending,
		NominatedBy:     req.NominatedBy,
		Description:     req.Description,
		ImpactMetrics:   req.ImpactMetrics,
		NominatedAt:     now,
		StatusChangedAt: now,
	}
}

// resubmit reuses a rejected nomination record for a fresh proposal of the
// same receiver, keeping the original ID.
func (n *Nomination) resubmit(req NominationRequest, now time.Time) {
	n.Receiver = req.Receiver
	n.Status = NominationStatusPending
	n.NominatedBy = req.NominatedBy
	n.Description = req.Description
	n.ImpactMetrics = req.ImpactMetrics
	n.NominatedAt = now
	n.StatusChangedAt = now
}

func (n *Nomination) setStatus(status NominationStatus, now time.Time) error {
	switch status {
	case NominationStatusPending, NominationStatusAccepted, NominationStatusRejected:
	default:
		return fmt.Errorf("%w: unknown nomination status %q", ErrInvalidArgument, status)
	}
	n.Status = status
	n.StatusChangedAt = now
	return nil
}

// NominationStatusUpdate addresses one nomination by receiver account id.
type NominationStatusUpdate struct {
	AccountID string
	Status    NominationStatus
}
