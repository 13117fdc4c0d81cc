package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"cryptoquote/internal/rates"
)

var _ RateFeed = (*CoinCapFeed)(nil)

// CoinCapFeed fetches rates from the CoinCap /rates endpoint.
type CoinCapFeed struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewCoinCapFeed creates a new CoinCapFeed. apiKey may be empty.
func NewCoinCapFeed(baseURL, apiKey string, timeoutSec int) *CoinCapFeed {
	if baseURL == "" {
		baseURL = "https://api.coincap.io/v2"
	}
	return &CoinCapFeed{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: time.Duration(timeoutSec) * time.Second},
	}
}

type coinCapResponse struct {
	Data []coinCapRate `json:"data"`
}

type coinCapRate struct {
	ID      string     `json:"id"`
	Symbol  string     `json:"symbol"`
	RateUSD flexNumber `json:"rateUsd"`
}

// flexNumber accepts a JSON number or a JSON string holding a number. Any
// other JSON value decodes to "" so one malformed entry does not void the feed.
type flexNumber string

func (n *flexNumber) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	*n = ""
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = flexNumber(s)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(b, &num); err == nil {
		*n = flexNumber(num.String())
	}
	return nil
}

// FetchRates retrieves every rate. A body without a data array yields an empty list.
func (p *CoinCapFeed) FetchRates(ctx context.Context) ([]rates.Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/rates", http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("coincap API request creation failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if p.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.apiKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("coincap API request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // best-effort close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("coincap API returned status %d: %s", resp.StatusCode, string(body))
	}

	var result coinCapResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode coincap API response: %w", err)
	}

	entries := make([]rates.Entry, 0, len(result.Data))
	for _, r := range result.Data {
		entries = append(entries, rates.Entry{Symbol: r.Symbol, RateInUSD: string(r.RateUSD)})
	}
	return entries, nil
}
