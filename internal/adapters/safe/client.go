package safe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/drips-network/multiplayer/internal/core/domain"
	"github.com/drips-network/multiplayer/internal/core/ports"
)

// Client looks up multisig transactions on the Safe transaction service of
// the round's chain.
type Client struct {
	httpClient *http.Client
	// baseURLFor overrides the chain-config endpoint in tests.
	baseURLFor func(chainID int64) (string, error)
}

func NewClient() ports.SafeTransactionService {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURLFor: chainBaseURL,
	}
}

func NewClientWithBaseURL(baseURL string) ports.SafeTransactionService {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURLFor: func(int64) (string, error) { return baseURL, nil },
	}
}

func chainBaseURL(chainID int64) (string, error) {
	cfg, err := domain.ChainConfigFor(chainID)
	if err != nil {
		return "", err
	}
	if cfg.SafeServiceBaseURL == "" {
		return "", fmt.Errorf("%w: chain %s has no safe transaction service", domain.ErrInvalidArgument, cfg.Name)
	}
	return cfg.SafeServiceBaseURL, nil
}

type multisigTransactionResponse struct {
	Safe         string `json:"safe"`
	SafeTxHash   string `json:"safeTxHash"`
	IsExecuted   bool   `json:"isExecuted"`
	IsSuccessful *bool  `json:"isSuccessful"`
}

func (c *Client) GetTransaction(ctx context.Context, chainID int64, hash string) (domain.SafeTransaction, error) {
	baseURL, err := c.baseURLFor(chainID)
	if err != nil {
		return domain.SafeTransaction{}, err
	}

	url := fmt.Sprintf("%s/api/v1/multisig-transactions/%s/", baseURL, hash)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return domain.SafeTransaction{}, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.SafeTransaction{}, fmt.Errorf("safe transaction lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return domain.SafeTransaction{}, fmt.Errorf("%w: safe transaction %s", domain.ErrNotFound, hash)
	}
	if resp.StatusCode != http.StatusOK {
		return domain.SafeTransaction{}, fmt.Errorf("safe transaction lookup: unexpected status %d", resp.StatusCode)
	}

	var body multisigTransactionResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.SafeTransaction{}, fmt.Errorf("safe transaction lookup: %w", err)
	}

	safeAddress, err := domain.NewAddress(body.Safe)
	if err != nil {
		return domain.SafeTransaction{}, fmt.Errorf("safe transaction lookup: %w", err)
	}

	return domain.SafeTransaction{
		Hash:         body.SafeTxHash,
		SafeAddress:  safeAddress,
		IsExecuted:   body.IsExecuted,
		IsSuccessful: body.IsSuccessful != nil && *body.IsSuccessful,
	}, nil
}
