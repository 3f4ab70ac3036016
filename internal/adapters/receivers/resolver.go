package receivers

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/drips-network/multiplayer/internal/core/domain"
	"github.com/drips-network/multiplayer/internal/core/ports"
)

// Resolver maps user-supplied receiver DTOs to receivers with canonical
// on-chain account ids. Address receivers are derived locally from the
// address-driver encoding; project and drip-list receivers arrive with
// account ids already resolved by the caller (the drips GraphQL API owns
// that mapping).
type Resolver struct{}

func NewResolver() *Resolver {
	return &Resolver{}
}

func (r *Resolver) Resolve(ctx context.Context, chainID int64, input ports.ReceiverInput) (domain.Receiver, error) {
	switch domain.ReceiverType(input.Type) {
	case domain.ReceiverTypeAddress:
		addr, err := domain.NewAddress(input.Address)
		if err != nil {
			return domain.Receiver{}, err
		}
		accountID, err := AddressAccountID(chainID, addr)
		if err != nil {
			return domain.Receiver{}, err
		}
		return domain.Receiver{
			Type:      domain.ReceiverTypeAddress,
			AccountID: accountID,
			Address:   addr,
		}, nil

	case domain.ReceiverTypeProject:
		if input.URL == "" {
			return domain.Receiver{}, fmt.Errorf("%w: project receiver requires a url", domain.ErrInvalidArgument)
		}
		if input.AccountID == "" {
			return domain.Receiver{}, fmt.Errorf("%w: project receiver requires a resolved account id", domain.ErrInvalidArgument)
		}
		return domain.Receiver{
			Type:      domain.ReceiverTypeProject,
			AccountID: input.AccountID,
			URL:       input.URL,
		}, nil

	case domain.ReceiverTypeDripList:
		if input.AccountID == "" {
			return domain.Receiver{}, fmt.Errorf("%w: drip list receiver requires an account id", domain.ErrInvalidArgument)
		}
		return domain.Receiver{
			Type:      domain.ReceiverTypeDripList,
			AccountID: input.AccountID,
		}, nil

	default:
		return domain.Receiver{}, fmt.Errorf("%w: unknown receiver type %q", domain.ErrInvalidArgument, input.Type)
	}
}

// AddressAccountID derives the address-driver account id for an address:
// the driver id in the top 32 bits of a uint256, the address itself in the
// low 160 bits.
func AddressAccountID(chainID int64, address domain.Address) (string, error) {
	cfg, err := domain.ChainConfigFor(chainID)
	if err != nil {
		return "", err
	}

	accountID := new(big.Int).Lsh(big.NewInt(int64(cfg.AddressDriverID)), 224)
	accountID.Or(accountID, common.HexToAddress(string(address)).Big())

	return accountID.String(), nil
}
