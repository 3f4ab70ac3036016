package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Specific errors below wrap one of these so the transport
// layer can map them to status codes with errors.Is.
var (
	ErrInvalidArgument  = errors.New("invalid argument")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrNotFound         = errors.New("not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrBadRequest       = errors.New("bad request")
)

var (
	ErrVotingRoundNotFound     = fmt.Errorf("%w: voting round does not exist", ErrNotFound)
	ErrVotingRoundDeleted      = fmt.Errorf("%w: voting round has been deleted", ErrInvalidOperation)
	ErrCollaboratorNotFound    = fmt.Errorf("%w: collaborator is not part of this voting round", ErrUnauthorized)
	ErrNominationPeriodClosed  = fmt.Errorf("%w: nomination period is closed", ErrInvalidOperation)
	ErrNominationNotConfigured = fmt.Errorf("%w: voting round has no nomination period", ErrInvalidOperation)
	ErrNominationNotFound      = fmt.Errorf("%w: no nomination for the given account id", ErrNotFound)
	ErrDuplicateNomination     = fmt.Errorf("%w: receiver already has a pending or accepted nomination", ErrInvalidOperation)
	ErrNoVotes                 = fmt.Errorf("%w: voting round has no votes", ErrInvalidOperation)
	ErrRoundNotCompleted       = fmt.Errorf("%w: voting round is not completed", ErrInvalidOperation)
	ErrDripListMismatch        = fmt.Errorf("%w: voting round refers to a different drip list", ErrBadRequest)
	ErrAlreadyLinked           = fmt.Errorf("%w: voting round is already linked", ErrInvalidOperation)
	ErrSignatureMismatch       = fmt.Errorf("%w: signature does not match the signer address", ErrUnauthorized)
	ErrSignatureExpired        = fmt.Errorf("%w: signed message timestamp is too old or in the future", ErrUnauthorized)
	ErrNotDripListOwner        = fmt.Errorf("%w: publisher does not own the drip list", ErrUnauthorized)
)
