package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

const (
	MaxNameLength        = 80
	MaxDescriptionLength = 1000
)

type VotingRoundStatus string

const (
	VotingRoundStatusStarted               VotingRoundStatus = "started"
	VotingRoundStatusCompleted             VotingRoundStatus = "completed"
	VotingRoundStatusLinked                VotingRoundStatus = "linked"
	VotingRoundStatusPendingLinkCompletion VotingRoundStatus = "pendingLinkCompletion"
	VotingRoundStatusDeleted               VotingRoundStatus = "deleted"
)

// VotingRound is the aggregate root. Votes, nominations and the link are
// mutated only through its methods; callers load the full aggregate, call
// one method and persist it back. The round performs no I/O and takes the
// current time as an argument so every window check sees a fresh "now".
type VotingRound struct {
	ID                 uuid.UUID
	ChainID            int64
	Publisher          Publisher
	VotingStartsAt     time.Time
	VotingEndsAt       time.Time
	NominationStartsAt *time.Time
	NominationEndsAt   *time.Time
	DripListID         *string
	Name               *string
	Description        *string
	AreVotesPrivate    bool
	Collaborators      []Collaborator
	AllowedReceivers   []Receiver
	Votes              []Vote
	Nominations        []Nomination
	Link               *Link
	CreatedAt          time.Time
	UpdatedAt          time.Time
	DeletedAt          *time.Time
}

type NewVotingRoundParams struct {
	ChainID            int64
	Publisher          Publisher
	VotingStartsAt     time.Time
	VotingEndsAt       time.Time
	NominationStartsAt *time.Time
	NominationEndsAt   *time.Time
	DripListID         *string
	Name               *string
	Description        *string
	AreVotesPrivate    bool
	Collaborators      []Collaborator
	AllowedReceivers   []Receiver
}

func NewVotingRound(p NewVotingRoundParams, now time.Time) (*VotingRound, error) {
	if !p.VotingStartsAt.Before(p.VotingEndsAt) {
		return nil, fmt.Errorf("%w: voting must start before it ends", ErrInvalidArgument)
	}
	if p.VotingStartsAt.Before(now) {
		return nil, fmt.Errorf("%w: voting cannot start in the past", ErrInvalidArgument)
	}

	if (p.NominationStartsAt == nil) != (p.NominationEndsAt == nil) {
		return nil, fmt.Errorf("%w: nomination start and end must be set together", ErrInvalidArgument)
	}
	if p.NominationStartsAt != nil {
		if p.NominationStartsAt.Before(now) {
			return nil, fmt.Errorf("%w: nomination cannot start in the past", ErrInvalidArgument)
		}
		if !p.NominationStartsAt.Before(*p.NominationEndsAt) {
			return nil, fmt.Errorf("%w: nomination must start before it ends", ErrInvalidArgument)
		}
		if !p.NominationEndsAt.Before(p.VotingStartsAt) {
			return nil, fmt.Errorf("%w: nomination must end before voting starts", ErrInvalidArgument)
		}
	}

	if p.Name != nil && len(*p.Name) > MaxNameLength {
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidArgument, MaxNameLength)
	}
	if p.Description != nil && len(*p.Description) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidArgument, MaxDescriptionLength)
	}
	if p.Description != nil && p.Name == nil {
		return nil, fmt.Errorf("%w: a description requires a name", ErrInvalidArgument)
	}

	hasDripList := p.DripListID != nil && *p.DripListID != ""
	hasNewList := p.Name != nil && p.Description != nil
	if hasDripList == hasNewList {
		return nil, fmt.Errorf("%w: exactly one of drip list id or name and description must be provided", ErrInvalidArgument)
	}

	if _, err := NewAddress(string(p.Publisher.Address)); err != nil {
		return nil, fmt.Errorf("publisher: %w", err)
	}
	if !IsSupportedChain(p.ChainID) {
		return nil, fmt.Errorf("%w: unsupported chain id %d", ErrInvalidArgument, p.ChainID)
	}

	// Collaborators are stored in checksummed form so later lookups can
	// compare addresses directly regardless of the casing they arrive in.
	collaborators := make([]Collaborator, 0, len(p.Collaborators))
	seen := make(map[string]struct{}, len(p.Collaborators))
	for _, c := range p.Collaborators {
		addr, err := NewAddress(string(c.Address))
		if err != nil {
			return nil, fmt.Errorf("collaborator: %w", err)
		}
		if _, dup := seen[string(addr)]; dup {
			return nil, fmt.Errorf("%w: duplicate collaborator address %s", ErrInvalidArgument, addr)
		}
		seen[string(addr)] = struct{}{}
		collaborators = append(collaborators, Collaborator{Address: addr})
	}

	for _, r := range p.AllowedReceivers {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("allowed receiver: %w", err)
		}
	}

	return &VotingRound{
		ID:                 uuid.New(),
		ChainID:            p.ChainID,
		Publisher:          p.Publisher,
		VotingStartsAt:     p.VotingStartsAt,
		VotingEndsAt:       p.VotingEndsAt,
		NominationStartsAt: p.NominationStartsAt,
		NominationEndsAt:   p.NominationEndsAt,
		DripListID:         p.DripListID,
		Name:               p.Name,
		Description:        p.Description,
		AreVotesPrivate:    p.AreVotesPrivate,
		Collaborators:      collaborators,
		AllowedReceivers:   p.AllowedReceivers,
		CreatedAt:          now,
		UpdatedAt:          now,
	}, nil
}

// Status is derived on every read from timestamps, the tombstone and the
// link sub-status. It is never stored.
func (r *VotingRound) Status(now time.Time) VotingRoundStatus {
	switch {
	case r.DeletedAt != nil:
		return VotingRoundStatusDeleted
	case r.Link != nil && r.Link.Status() == LinkStatusCompleted:
		return VotingRoundStatusLinked
	case r.Link != nil:
		return VotingRoundStatusPendingLinkCompletion
	case now.After(r.VotingEndsAt):
		return VotingRoundStatusCompleted
	default:
		return VotingRoundStatusStarted
	}
}

func (r *VotingRound) HasVotingPeriodStarted(now time.Time) bool {
	return !now.Before(r.VotingStartsAt)
}

func (r *VotingRound) HasNominationPeriod() bool {
	return r.NominationStartsAt != nil && r.NominationEndsAt != nil
}

func (r *VotingRound) IsNominationPeriodOpen(now time.Time) bool {
	if !r.HasNominationPeriod() {
		return false
	}
	return !now.Before(*r.NominationStartsAt) && !now.After(*r.NominationEndsAt)
}

func (r *VotingRound) HasCollaborator(address Address) bool {
	for _, c := range r.Collaborators {
		if c.Address.Equal(address) {
			return true
		}
	}
	return false
}

// votableAccountIDs is the whitelist CastVote checks receivers against. It
// is nil (no restriction) when the round has neither allowed receivers nor a
// nomination period; otherwise it is the allowed receivers plus every
// accepted nomination.
func (r *VotingRound) votableAccountIDs() map[string]struct{} {
	if len(r.AllowedReceivers) == 0 && !r.HasNominationPeriod() {
		return nil
	}
	ids := make(map[string]struct{}, len(r.AllowedReceivers))
	for _, ar := range r.AllowedReceivers {
		ids[ar.AccountID] = struct{}{}
	}
	for _, n := range r.Nominations {
		if n.Status == NominationStatusAccepted {
			ids[n.Receiver.AccountID] = struct{}{}
		}
	}
	return ids
}

// CastVote appends a new vote record for the collaborator. Previous votes
// stay untouched; they are excluded from latest-vote views by recency.
func (r *VotingRound) CastVote(collaborator Address, receivers []VoteReceiver, now time.Time) (Vote, error) {
	if r.DeletedAt != nil {
		return Vote{}, ErrVotingRoundDeleted
	}

	// Checksum the address so the stored vote matches the stored
	// collaborator whatever casing the caller used.
	collaborator, err := NewAddress(string(collaborator))
	if err != nil {
		return Vote{}, fmt.Errorf("collaborator: %w", err)
	}
	if !r.HasCollaborator(collaborator) {
		return Vote{}, ErrCollaboratorNotFound
	}

	if votable := r.votableAccountIDs(); votable != nil {
		for _, vr := range receivers {
			if _, ok := votable[vr.AccountID]; !ok {
				return Vote{}, fmt.Errorf("%w: receiver %s is not votable in this round", ErrInvalidArgument, vr.AccountID)
			}
		}
	}

	vote, err := newVote(r.ID, collaborator, receivers, now)
	if err != nil {
		return Vote{}, err
	}

	r.Votes = append(r.Votes, vote)
	r.UpdatedAt = now

	return vote, nil
}

// LatestVotes returns one vote per collaborator who has voted: the record
// with the greatest UpdatedAt, ties resolved to the later-appended one.
// Output order follows the round's collaborator order, so the view is
// stable across reads.
func (r *VotingRound) LatestVotes() []Vote {
	latest := make(map[string]Vote, len(r.Collaborators))
	for _, v := range r.Votes {
		key := string(v.CollaboratorAddress)
		current, ok := latest[key]
		if !ok || !v.UpdatedAt.Before(current.UpdatedAt) {
			latest[key] = v
		}
	}

	votes := make([]Vote, 0, len(latest))
	for _, c := range r.Collaborators {
		if v, ok := latest[string(c.Address)]; ok {
			votes = append(votes, v)
		}
	}
	return votes
}

// Result aggregates the latest vote of every collaborator who has voted.
// Each receiver's combined weight is the sum of its per-vote weights divided
// by the number of voters, so the weights of a full result sum to the total
// allocation unit. Receivers are returned in first-seen order.
func (r *VotingRound) Result() []ResultReceiver {
	votes := r.LatestVotes()
	if len(votes) == 0 {
		return nil
	}

	totals := make(map[string]int)
	receivers := make(map[string]Receiver)
	var order []string

	for _, v := range votes {
		for _, vr := range v.Receivers {
			if _, seen := totals[vr.AccountID]; !seen {
				order = append(order, vr.AccountID)
				receivers[vr.AccountID] = vr.Receiver
			}
			totals[vr.AccountID] += vr.Weight
		}
	}

	voters := float64(len(votes))
	result := make([]ResultReceiver, 0, len(order))
	for _, accountID := range order {
		result = append(result, ResultReceiver{
			Receiver: receivers[accountID],
			Weight:   float64(totals[accountID]) / voters,
		})
	}
	return result
}

// Nominate proposes a receiver while the nomination window is open. A
// receiver with a pending or accepted nomination cannot be nominated again;
// a previously rejected nomination is reused in place under its original ID.
func (r *VotingRound) Nominate(req NominationRequest, now time.Time) (Nomination, error) {
	if r.DeletedAt != nil {
		return Nomination{}, ErrVotingRoundDeleted
	}
	if !r.HasNominationPeriod() {
		return Nomination{}, ErrNominationNotConfigured
	}
	if !r.IsNominationPeriodOpen(now) {
		return Nomination{}, ErrNominationPeriodClosed
	}
	if err := req.validate(); err != nil {
		return Nomination{}, err
	}

	for i := range r.Nominations {
		if r.Nominations[i].Receiver.AccountID != req.Receiver.AccountID {
			continue
		}
		if r.Nominations[i].Status != NominationStatusRejected {
			return Nomination{}, ErrDuplicateNomination
		}
		r.Nominations[i].resubmit(req, now)
		r.UpdatedAt = now
		return r.Nominations[i], nil
	}

	nomination := newNomination(r.ID, req, now)
	r.Nominations = append(r.Nominations, nomination)
	r.UpdatedAt = now

	return nomination, nil
}

// SetNominationStatuses applies publisher decisions. Statuses are frozen
// once the voting period starts.
func (r *VotingRound) SetNominationStatuses(updates []NominationStatusUpdate, now time.Time) error {
	if r.DeletedAt != nil {
		return ErrVotingRoundDeleted
	}
	if len(r.Nominations) == 0 {
		return ErrNominationNotFound
	}
	if r.HasVotingPeriodStarted(now) {
		return fmt.Errorf("%w: nomination statuses cannot change after voting starts", ErrInvalidOperation)
	}

	// Validate every update before applying any, so a bad account id does
	// not leave the round half-updated.
	indexes := make([]int, len(updates))
	for i, u := range updates {
		found := -1
		for j := range r.Nominations {
			if r.Nominations[j].Receiver.AccountID == u.AccountID {
				found = j
				break
			}
		}
		if found < 0 {
			return fmt.Errorf("%w: account id %s", ErrNominationNotFound, u.AccountID)
		}
		indexes[i] = found
	}

	for i, u := range updates {
		if err := r.Nominations[indexes[i]].setStatus(u.Status, now); err != nil {
			return err
		}
	}
	r.UpdatedAt = now

	return nil
}

// LinkToDripList binds the round to its on-chain list. The round must be
// completed and have votes; a multisig publisher supplies the looked-up Safe
// transaction, which gates link completion.
func (r *VotingRound) LinkToDripList(dripListID string, safeTx *SafeTransaction, now time.Time) error {
	if r.DeletedAt != nil {
		return ErrVotingRoundDeleted
	}
	if r.Link != nil {
		return ErrAlreadyLinked
	}
	if r.DripListID != nil && *r.DripListID != "" && *r.DripListID != dripListID {
		return ErrDripListMismatch
	}
	if r.Status(now) != VotingRoundStatusCompleted {
		return ErrRoundNotCompleted
	}
	if len(r.Votes) == 0 {
		return ErrNoVotes
	}

	link, err := newLink(r.ID, dripListID, r.Publisher.Address, safeTx, now)
	if err != nil {
		return err
	}

	r.DripListID = &dripListID
	r.Link = link
	r.UpdatedAt = now

	return nil
}

// Delete tombstones the round. Rounds that already reached the link stage
// stay around for audit and cannot be deleted.
func (r *VotingRound) Delete(now time.Time) error {
	if r.DeletedAt != nil {
		return ErrVotingRoundDeleted
	}
	if r.Link != nil {
		return ErrAlreadyLinked
	}
	t := now
	r.DeletedAt = &t
	r.UpdatedAt = now
	return nil
}
