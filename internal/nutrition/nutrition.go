package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	apiURL         = "https://api.api-ninjas.com/v1/nutrition"
	cacheKeyPrefix = "nutrition:"
	cacheTTL       = 30 * 24 * time.Hour // nutrition facts don't change

	// The free API tier replaces some fields with this marker string.
	premiumPlaceholder = "only available for premium subscribers."
)

// ErrNoMatch is returned when the API recognizes the request but has no
// nutrition data for the given food name.
var ErrNoMatch = errors.New("no nutrition data found for food name")

// Facts is the subset of the API response we persist. Fields are strings
// because premium-gated values are normalized to "N/A".
type Facts struct {
	Protein      string `json:"protein"`
	Carbohydrate string `json:"carbohydrate"`
	Fat          string `json:"fat"`
	Fiber        string `json:"fiber"`
	Calories     string `json:"calories"`
}

// apiItem mirrors one element of the api-ninjas response. Values arrive as
// either numbers or the premium placeholder string, so everything decodes
// into json.RawMessage first.
type apiItem struct {
	Name           json.RawMessage `json:"name"`
	Calories       json.RawMessage `json:"calories"`
	ProteinG       json.RawMessage `json:"protein_g"`
	CarbohydratesG json.RawMessage `json:"carbohydrates_total_g"`
	FatTotalG      json.RawMessage `json:"fat_total_g"`
	FiberG         json.RawMessage `json:"fiber_g"`
}

// Client looks up nutrition facts for a food name, with a Redis
// read-through cache in front of the HTTP API. A nil redis client disables
// caching; a failing one degrades to a direct API call.
type Client struct {
	APIKey  string
	BaseURL string
	HTTP    *http.Client
	Cache   *redis.Client
}

func NewClient(apiKey string, cacheClient *redis.Client) *Client {
	return &Client{
		APIKey:  apiKey,
		BaseURL: apiURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
		Cache:   cacheClient,
	}
}

// Lookup fetches nutrition facts for foodName.
func (c *Client) Lookup(ctx context.Context, foodName string) (*Facts, error) {
	key := cacheKeyPrefix + strings.ToLower(strings.TrimSpace(foodName))

	// 1. --- Try the cache ---
	if c.Cache != nil {
		cached, err := c.Cache.Get(ctx, key).Result()
		if err == nil {
			var facts Facts
			if err := json.Unmarshal([]byte(cached), &facts); err == nil {
				return &facts, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			// Cache trouble is never a lookup failure.
			log.Printf("nutrition cache read failed for %q: %v", foodName, err)
		}
	}

	// 2. --- Call the API ---
	facts, err := c.fetch(ctx, foodName)
	if err != nil {
		return nil, err
	}

	// 3. --- Populate the cache (best effort) ---
	if c.Cache != nil {
		if payload, err := json.Marshal(facts); err == nil {
			if err := c.Cache.Set(ctx, key, payload, cacheTTL).Err(); err != nil {
				log.Printf("nutrition cache write failed for %q: %v", foodName, err)
			}
		}
	}

	return facts, nil
}

func (c *Client) fetch(ctx context.Context, foodName string) (*Facts, error) {
	reqURL := fmt.Sprintf("%s?query=%s", c.BaseURL, url.QueryEscape(foodName))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Api-Key", c.APIKey)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, fmt.Errorf("nutrition API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("nutrition API returned %d: %s", resp.StatusCode, body)
	}

	var items []apiItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode nutrition response: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrNoMatch
	}

	item := items[0]
	return &Facts{
		Protein:      normalizeValue(item.ProteinG),
		Carbohydrate: normalizeValue(item.CarbohydratesG),
		Fat:          normalizeValue(item.FatTotalG),
		Fiber:        normalizeValue(item.FiberG),
		Calories:     normalizeValue(item.Calories),
	}, nil
}

// normalizeValue renders a raw JSON field as a string, mapping absent
// values and the premium-subscription placeholder to "N/A".
func normalizeValue(raw json.RawMessage) string {
	if len(raw) == 0 {
		return "N/A"
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.EqualFold(strings.TrimSpace(s), premiumPlaceholder) {
			return "N/A"
		}
		return s
	}

	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return fmt.Sprintf("%g", n)
	}

	return "N/A"
}
