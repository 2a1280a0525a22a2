// workers/helius.go
package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// HeliusClient talks to the Helius Enhanced Transactions API, which returns
// human-readable swap data from Jupiter, Raydium, Pump.fun and the other
// DEXes.
type HeliusClient struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
}

func NewHeliusClient(apiKey string) *HeliusClient {
	return &HeliusClient{
		BaseURL: "https://api.helius.dev",
		APIKey:  apiKey,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type HeliusTokenTransfer struct {
	Mint          string  `json:"mint"`
	Amount        float64 `json:"amount"`
	TokenStandard string  `json:"tokenStandard"`
}

type HeliusNativeAmount struct {
	Amount float64 `json:"amount"`
}

type HeliusSwap struct {
	Signature    string                `json:"signature"`
	Timestamp    int64                 `json:"timestamp"`
	Type         string                `json:"type"`
	Source       string                `json:"source"` // e.g. "JUPITER", "RAYDIUM", "PUMP_FUN"
	Description  string                `json:"description"`
	TokenInputs  []HeliusTokenTransfer `json:"tokenInputs"`
	TokenOutputs []HeliusTokenTransfer `json:"tokenOutputs"`
	NativeInput  *HeliusNativeAmount   `json:"nativeInput"`
	NativeOutput *HeliusNativeAmount   `json:"nativeOutput"`
	Fee          float64               `json:"fee"`
}

// FetchSwaps returns the wallet's most recent parsed SWAP transactions.
func (c *HeliusClient) FetchSwaps(ctx context.Context, walletAddress string, limit int) ([]HeliusSwap, error) {
	u, err := url.Parse(fmt.Sprintf("%s/v0/addresses/%s/transactions", c.BaseURL, walletAddress))
	if err != nil {
		return nil, fmt.Errorf("failed to parse helius URL: %w", err)
	}

	q := u.Query()
	q.Set("api-key", c.APIKey)
	q.Set("limit", fmt.Sprintf("%d", limit))
	q.Set("type", "SWAP")
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call helius: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("helius returned status %d: %s", resp.StatusCode, string(body))
	}

	var swaps []HeliusSwap
	if err := json.NewDecoder(resp.Body).Decode(&swaps); err != nil {
		return nil, fmt.Errorf("failed to decode helius response: %w", err)
	}
	return swaps, nil
}

// ResolveTokenSymbols maps mint addresses to token symbols via the Helius
// token-metadata endpoint. Mints it cannot resolve are simply absent from
// the returned map; callers fall back to a truncated mint.
func (c *HeliusClient) ResolveTokenSymbols(ctx context.Context, mints []string) (map[string]string, error) {
	symbols := make(map[string]string)
	if len(mints) == 0 {
		return symbols, nil
	}

	seen := make(map[string]bool, len(mints))
	unique := make([]string, 0, len(mints))
	for _, m := range mints {
		if !seen[m] {
			seen[m] = true
			unique = append(unique, m)
		}
	}

	reqBody, err := json.Marshal(map[string]any{
		"mintAccounts":    unique,
		"includeOffChain": true,
		"disableCache":    false,
	})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/v0/token-metadata?api-key=%s", c.BaseURL, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call helius token-metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("helius token-metadata returned status %d: %s", resp.StatusCode, string(body))
	}

	var items []struct {
		Account         string `json:"account"`
		OnChainMetadata struct {
			Metadata struct {
				Data struct {
					Symbol string `json:"symbol"`
				} `json:"data"`
			} `json:"metadata"`
		} `json:"onChainMetadata"`
		OffChainMetadata struct {
			Metadata struct {
				Symbol string `json:"symbol"`
			} `json:"metadata"`
		} `json:"offChainMetadata"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode token metadata: %w", err)
	}

	for _, item := range items {
		symbol := item.OnChainMetadata.Metadata.Data.Symbol
		if symbol == "" {
			symbol = item.OffChainMetadata.Metadata.Symbol
		}
		if symbol != "" {
			symbols[item.Account] = strings.TrimSpace(symbol)
		}
	}
	return symbols, nil
}
