package domain

import "fmt"

type ReceiverType string

const (
	ReceiverTypeAddress  ReceiverType = "address"
	ReceiverTypeProject  ReceiverType = "project"
	ReceiverTypeDripList ReceiverType = "dripList"
)

// Receiver is a fund-split target: an address, a GitHub-backed project, or
// another drip list. The union is a flat struct with a type tag; Address is
// set only for address receivers and URL only for project receivers.
// AccountID is the canonical on-chain account id, resolved before the
// receiver reaches the core.
type Receiver struct {
	Type      ReceiverType `json:"type"`
	AccountID string       `json:"accountId"`
	Address   Address      `json:"address,omitempty"`
	URL       string       `json:"url,omitempty"`
}

func (r Receiver) Validate() error {
	if r.AccountID == "" {
		return fmt.Errorf("%w: receiver account id is required", ErrInvalidArgument)
	}

	switch r.Type {
	case ReceiverTypeAddress:
		if _, err := NewAddress(string(r.Address)); err != nil {
			return fmt.Errorf("address receiver: %w", err)
		}
	case ReceiverTypeProject:
		if r.URL == "" {
			return fmt.Errorf("%w: project receiver requires a url", ErrInvalidArgument)
		}
	case ReceiverTypeDripList:
		// A drip-list receiver is identified by its account id alone.
	default:
		return fmt.Errorf("%w: unknown receiver type %q", ErrInvalidArgument, r.Type)
	}

	return nil
}

// VoteReceiver is a receiver with the integer share of the total allocation
// unit a collaborator assigned to it within one vote.
type VoteReceiver struct {
	Receiver
	Weight int `json:"weight"`
}

func (vr VoteReceiver) Validate() error {
	if vr.Weight <= 0 {
		return fmt.Errorf("%w: receiver weight must be positive", ErrInvalidArgument)
	}
	// Capping each weight at the total also keeps the weight sum far from
	// integer overflow with the receiver count capped.
	if vr.Weight > TotalVoteWeight {
		return fmt.Errorf("%w: receiver weight cannot exceed %d", ErrInvalidArgument, TotalVoteWeight)
	}
	return vr.Receiver.Validate()
}

// ResultReceiver is a receiver paired with its combined weight in the round
// result. Weights are fractional because each collaborator's allocation is
// divided by the number of voters.
type ResultReceiver struct {
	Receiver
	Weight float64 `json:"weight"`
}
