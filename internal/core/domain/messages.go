package domain

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Canonical signed-message builders. Signer and verifier must construct
// byte-identical strings, so every list is sorted by numeric comparison of
// its first differentiating field (address or account id) before it is
// JSON-serialized, and timestamps are rendered as UTC RFC3339.

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// compareNumeric orders two numeric strings (decimal account ids or 0x-hex
// addresses) by value. Unparseable values fall back to string comparison so
// the order stays total.
func compareNumeric(a, b string) int {
	x, okX := new(big.Int).SetString(strings.ToLower(a), 0)
	y, okY := new(big.Int).SetString(strings.ToLower(b), 0)
	if !okX || !okY {
		return strings.Compare(a, b)
	}
	return x.Cmp(y)
}

func sortedAddressesJSON(addresses []Address) string {
	sorted := make([]string, len(addresses))
	for i, a := range addresses {
		sorted[i] = strings.ToLower(string(a))
	}
	sort.Slice(sorted, func(i, j int) bool {
		return compareNumeric(sorted[i], sorted[j]) < 0
	})
	out, _ := json.Marshal(sorted)
	return string(out)
}

func sortedVoteReceiversJSON(receivers []VoteReceiver) string {
	sorted := make([]VoteReceiver, len(receivers))
	copy(sorted, receivers)
	sort.Slice(sorted, func(i, j int) bool {
		return compareNumeric(sorted[i].AccountID, sorted[j].AccountID) < 0
	})
	out, _ := json.Marshal(sorted)
	return string(out)
}

func receiverJSON(receiver Receiver) string {
	out, _ := json.Marshal(receiver)
	return string(out)
}

func CreateVotingRoundMessage(chainID int64, publisher Address, issuedAt time.Time, collaborators []Address, dripListID string) string {
	target := dripListID
	if target == "" {
		target = "new"
	}
	return fmt.Sprintf(
		"Create a new voting round on chain %d for the drip list %s. Publisher: %s. Issued at: %s. Collaborators: %s",
		chainID, target, strings.ToLower(string(publisher)), formatTime(issuedAt), sortedAddressesJSON(collaborators),
	)
}

func DeleteVotingRoundMessage(chainID int64, publisher Address, issuedAt time.Time, votingRoundID uuid.UUID) string {
	return fmt.Sprintf(
		"Delete the voting round %s on chain %d. Publisher: %s. Issued at: %s",
		votingRoundID, chainID, strings.ToLower(string(publisher)), formatTime(issuedAt),
	)
}

func CastVoteMessage(chainID int64, collaborator Address, issuedAt time.Time, votingRoundID uuid.UUID, receivers []VoteReceiver) string {
	return fmt.Sprintf(
		"Cast a vote in the voting round %s on chain %d. Collaborator: %s. Issued at: %s. Receivers: %s",
		votingRoundID, chainID, strings.ToLower(string(collaborator)), formatTime(issuedAt), sortedVoteReceiversJSON(receivers),
	)
}

func LinkVotingRoundMessage(chainID int64, publisher Address, issuedAt time.Time, votingRoundID uuid.UUID, dripListID string) string {
	return fmt.Sprintf(
		"Link the voting round %s on chain %d to the drip list %s. Publisher: %s. Issued at: %s",
		votingRoundID, chainID, dripListID, strings.ToLower(string(publisher)), formatTime(issuedAt),
	)
}

func NominateMessage(chainID int64, nominatedBy Address, issuedAt time.Time, votingRoundID uuid.UUID, receiver Receiver) string {
	return fmt.Sprintf(
		"Nominate a receiver in the voting round %s on chain %d. Nominated by: %s. Issued at: %s. Receiver: %s",
		votingRoundID, chainID, strings.ToLower(string(nominatedBy)), formatTime(issuedAt), receiverJSON(receiver),
	)
}

func SetNominationStatusesMessage(chainID int64, publisher Address, issuedAt time.Time, votingRoundID uuid.UUID, updates []NominationStatusUpdate) string {
	sorted := make([]NominationStatusUpdate, len(updates))
	copy(sorted, updates)
	sort.Slice(sorted, func(i, j int) bool {
		return compareNumeric(sorted[i].AccountID, sorted[j].AccountID) < 0
	})
	parts := make([]string, len(sorted))
	for i, u := range sorted {
		parts[i] = fmt.Sprintf("%s=%s", u.AccountID, u.Status)
	}
	out, _ := json.Marshal(parts)
	return fmt.Sprintf(
		"Set nomination statuses in the voting round %s on chain %d. Publisher: %s. Issued at: %s. Updates: %s",
		votingRoundID, chainID, strings.ToLower(string(publisher)), formatTime(issuedAt), string(out),
	)
}

func RevealVotesMessage(chainID int64, publisher Address, issuedAt time.Time, votingRoundID uuid.UUID) string {
	return fmt.Sprintf(
		"Reveal the votes of the voting round %s on chain %d. Publisher: %s. Issued at: %s",
		votingRoundID, chainID, strings.ToLower(string(publisher)), formatTime(issuedAt),
	)
}

func RevealResultMessage(chainID int64, publisher Address, issuedAt time.Time, votingRoundID uuid.UUID) string {
	return fmt.Sprintf(
		"Reveal the result of the voting round %s on chain %d. Publisher: %s. Issued at: %s",
		votingRoundID, chainID, strings.ToLower(string(publisher)), formatTime(issuedAt),
	)
}
