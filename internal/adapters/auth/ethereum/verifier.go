package ethereum

import (
	"context"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/drips-network/multiplayer/internal/core/domain"
	"github.com/drips-network/multiplayer/internal/core/ports"
)

// MaxMessageAge bounds how old a signed message may be before it is
// rejected. Signers embed the issue timestamp in the message itself, so a
// captured signature cannot be replayed later.
const MaxMessageAge = 5 * time.Minute

// clockSkew tolerates small clock drift between signer and server.
const clockSkew = time.Minute

// OwnershipLookup resolves the current owner address of a drip list. The
// production implementation queries the drips GraphQL API; tests inject a
// stub.
type OwnershipLookup func(ctx context.Context, chainID int64, dripListID string) (domain.Address, error)

// Verifier checks personal-sign (EIP-191) signatures by recovering the
// signer public key and comparing the derived address.
type Verifier struct {
	ownerOf OwnershipLookup
	clock   ports.Clock
}

func NewVerifier(ownerOf OwnershipLookup, clock ports.Clock) *Verifier {
	return &Verifier{
		ownerOf: ownerOf,
		clock:   clock,
	}
}

func (v *Verifier) VerifyMessage(ctx context.Context, message string, signature string, signer domain.Address, issuedAt time.Time) error {
	now := v.clock.Now()
	if issuedAt.After(now.Add(clockSkew)) || now.Sub(issuedAt) > MaxMessageAge {
		return domain.ErrSignatureExpired
	}

	sig, err := hex.DecodeString(strings.TrimPrefix(signature, "0x"))
	if err != nil {
		return fmt.Errorf("%w: signature is not hex-encoded", domain.ErrUnauthorized)
	}
	if len(sig) != crypto.SignatureLength {
		return fmt.Errorf("%w: signature must be %d bytes", domain.ErrUnauthorized, crypto.SignatureLength)
	}

	// Wallets encode the recovery id as 27/28 per the original Ethereum
	// convention; crypto.SigToPub expects 0/1.
	if sig[crypto.RecoveryIDOffset] >= 27 {
		sig = append([]byte(nil), sig...)
		sig[crypto.RecoveryIDOffset] -= 27
	}

	pubKey, err := crypto.SigToPub(accounts.TextHash([]byte(message)), sig)
	if err != nil {
		return fmt.Errorf("%w: signature recovery failed", domain.ErrUnauthorized)
	}

	recovered := domain.Address(crypto.PubkeyToAddress(*pubKey).Hex())
	if !recovered.Equal(signer) {
		return domain.ErrSignatureMismatch
	}

	return nil
}

func (v *Verifier) VerifyDripListOwnership(ctx context.Context, publisher domain.Address, chainID int64, dripListID string) error {
	owner, err := v.ownerOf(ctx, chainID, dripListID)
	if err != nil {
		return fmt.Errorf("%w: drip list %s lookup failed: %v", domain.ErrBadRequest, dripListID, err)
	}
	if !owner.Equal(publisher) {
		return domain.ErrNotDripListOwner
	}
	return nil
}
