package domain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
)

// Address is a checksummed or plain hex Ethereum address. Collaborators and
// publishers are compared strictly by address string equality, so addresses
// are normalized once, at construction.
type Address string

func NewAddress(s string) (Address, error) {
	if !common.IsHexAddress(s) {
		return "", fmt.Errorf("%w: %q is not a valid address", ErrInvalidArgument, s)
	}
	return Address(common.HexToAddress(s).Hex()), nil
}

func (a Address) String() string {
	return string(a)
}

// Equal compares addresses case-insensitively so that a checksummed and a
// lowercased form of the same address are one collaborator, not two.
func (a Address) Equal(other Address) bool {
	return strings.EqualFold(string(a), string(other))
}

type Publisher struct {
	Address Address
}

type Collaborator struct {
	Address Address
}
