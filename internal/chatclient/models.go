package chatclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type ModelInfo struct {
	ID         string `json:"id"`
	Label      string `json:"label"`
	Vendor     string `json:"vendor"`
	MaxTokens  int    `json:"max_tokens"`
	Configured bool   `json:"configured"`
}

// Models запрашивает у relay список моделей.
func (c *Client) Models(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/v1/models", nil)
	if err != nil {
		return nil, fmt.Errorf("build models request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, decodeServerError(res)
	}

	var out struct {
		Models []ModelInfo `json:"models"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}
	return out.Models, nil
}
