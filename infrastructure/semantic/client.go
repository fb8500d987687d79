// Package semantic adapts an external embedding/nearest-neighbor
// service to the SemanticIndex port. How embeddings are computed is
// the service's concern; this client only speaks its query API.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"recall-backend/application/ports"
	"recall-backend/domain/core/entities"
)

// Client queries a nearest-neighbor HTTP endpoint
type Client struct {
	endpoint   string
	httpClient *http.Client
}

// NewClient creates a semantic index client for the given endpoint
func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

type neighborsRequest struct {
	ItemID string `json:"item_id"`
	Text   string `json:"text"`
	K      int    `json:"k"`
}

type neighborsResponse struct {
	Neighbors []struct {
		ID    string  `json:"id"`
		Score float64 `json:"score"`
	} `json:"neighbors"`
}

// NearestNeighbors returns the top-k semantic neighbors for an item
func (c *Client) NearestNeighbors(ctx context.Context, item *entities.Item, k int) ([]ports.Neighbor, error) {
	body, err := json.Marshal(neighborsRequest{
		ItemID: item.ID,
		Text:   item.SearchText(),
		K:      k,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/neighbors", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("semantic index returned status %d", resp.StatusCode)
	}

	var decoded neighborsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, err
	}

	neighbors := make([]ports.Neighbor, 0, len(decoded.Neighbors))
	for _, n := range decoded.Neighbors {
		neighbors = append(neighbors, ports.Neighbor{ID: n.ID, Score: n.Score})
	}
	return neighbors, nil
}
