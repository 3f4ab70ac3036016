package domain

import "fmt"

// ChainConfig holds the per-network constants the application needs: the
// drips address-driver id used to derive address account ids and the Safe
// transaction-service endpoint for multisig lookups.
type ChainConfig struct {
	Name               string
	AddressDriverID    uint32
	SafeServiceBaseURL string
}

// chainConfigs is loaded once and treated as immutable configuration data.
var chainConfigs = map[int64]ChainConfig{
	1:        {Name: "mainnet", AddressDriverID: 1, SafeServiceBaseURL: "https://safe-transaction-mainnet.safe.global"},
	10:       {Name: "optimism", AddressDriverID: 1, SafeServiceBaseURL: "https://safe-transaction-optimism.safe.global"},
	137:      {Name: "polygon", AddressDriverID: 1, SafeServiceBaseURL: "https://safe-transaction-polygon.safe.global"},
	8453:     {Name: "base", AddressDriverID: 1, SafeServiceBaseURL: "https://safe-transaction-base.safe.global"},
	11155111: {Name: "sepolia", AddressDriverID: 1, SafeServiceBaseURL: "https://safe-transaction-sepolia.safe.global"},
	314:      {Name: "filecoin", AddressDriverID: 1, SafeServiceBaseURL: ""},
}

func ChainConfigFor(chainID int64) (ChainConfig, error) {
	cfg, ok := chainConfigs[chainID]
	if !ok {
		return ChainConfig{}, fmt.Errorf("%w: unsupported chain id %d", ErrInvalidArgument, chainID)
	}
	return cfg, nil
}

func IsSupportedChain(chainID int64) bool {
	_, ok := chainConfigs[chainID]
	return ok
}
