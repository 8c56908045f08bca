// Package geocode implements the geocoding collaborator: free-text address
// to coordinates, with a bounded TTL cache keyed by normalized address text
// so a stable home address is not re-resolved on every request.
package geocode

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/go-resty/resty/v2"
	"github.com/maypok86/otter/v2"
	"github.com/rs/zerolog"

	"github.com/careerpilot/shadowcal/internal/model"
)

// Client resolves addresses through an external geocoding API. Entries are
// immutable once cached; a concurrent refresh is last-writer-wins.
type Client struct {
	http  *resty.Client
	cache *otter.Cache[string, model.Coordinates]
	log   zerolog.Logger
}

// New builds a geocoding client. ttl bounds how long a resolved address is
// reused; maxEntries bounds the cache size.
func New(baseURL, apiKey string, ttl time.Duration, maxEntries int, log zerolog.Logger) *Client {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	if maxEntries <= 0 {
		maxEntries = 10_000
	}
	c := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(10 * time.Second)
	if apiKey != "" {
		c.SetQueryParam("key", apiKey)
	}
	cache := otter.Must(&otter.Options[string, model.Coordinates]{
		MaximumSize:      maxEntries,
		ExpiryCalculator: otter.ExpiryWriting[string, model.Coordinates](ttl),
	})
	return &Client{http: c, cache: cache, log: log}
}

type geocodeResponse struct {
	Results []struct {
		Latitude  float64 `json:"lat"`
		Longitude float64 `json:"lng"`
	} `json:"results"`
}

// Geocode implements schedule.Geocoder. A (nil, nil) return means the
// address did not resolve; errors are transport-level failures.
func (c *Client) Geocode(ctx context.Context, address string) (*model.Coordinates, error) {
	key := normalizeAddress(address)
	if key == "" {
		return nil, nil
	}
	if coords, ok := c.cache.GetIfPresent(key); ok {
		return &coords, nil
	}

	var out geocodeResponse
	err := retry.Do(
		func() error {
			resp, err := c.http.R().
				SetContext(ctx).
				SetQueryParam("address", address).
				SetResult(&out).
				// Parse as JSON whatever content type the provider claims;
				// a non-JSON body degrades to "no result".
				ForceContentType("application/json").
				Get("/v1/geocode")
			if err != nil {
				return err
			}
			if resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError {
				return fmt.Errorf("geocoding API HTTP %d", resp.StatusCode())
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(10*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug().Uint("attempt", n+1).Err(err).Msg("retrying geocode request")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("geocode: %w", err)
	}
	if len(out.Results) == 0 {
		return nil, nil
	}

	coords := model.Coordinates{
		Latitude:  out.Results[0].Latitude,
		Longitude: out.Results[0].Longitude,
	}
	c.cache.Set(key, coords)
	return &coords, nil
}

// normalizeAddress collapses case and whitespace so trivially different
// spellings of the same address share a cache entry.
func normalizeAddress(address string) string {
	return strings.Join(strings.Fields(strings.ToLower(address)), " ")
}
