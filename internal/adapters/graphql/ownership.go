package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/drips-network/multiplayer/internal/core/domain"
)

// OwnershipClient resolves drip-list owners from the drips GraphQL API. The
// verifier consumes it as a plain lookup function.
type OwnershipClient struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

func NewOwnershipClient(endpoint, apiKey string) *OwnershipClient {
	return &OwnershipClient{
		endpoint:   endpoint,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

const ownerQuery = `query DripListOwner($id: ID!, $chain: SupportedChain!) {
  dripList(id: $id, chain: $chain) {
    owner { address }
  }
}`

type ownerResponse struct {
	Data struct {
		DripList *struct {
			Owner struct {
				Address string `json:"address"`
			} `json:"owner"`
		} `json:"dripList"`
	} `json:"data"`
}

func (c *OwnershipClient) OwnerOf(ctx context.Context, chainID int64, dripListID string) (domain.Address, error) {
	cfg, err := domain.ChainConfigFor(chainID)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(map[string]any{
		"query": ownerQuery,
		"variables": map[string]any{
			"id":    dripListID,
			"chain": cfg.Name,
		},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("drip list owner lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("drip list owner lookup: unexpected status %d", resp.StatusCode)
	}

	var body ownerResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("drip list owner lookup: %w", err)
	}
	if body.Data.DripList == nil {
		return "", fmt.Errorf("%w: drip list %s", domain.ErrNotFound, dripListID)
	}

	return domain.NewAddress(body.Data.DripList.Owner.Address)
}
