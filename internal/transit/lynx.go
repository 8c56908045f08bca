// Package transit implements the transit lookup collaborator: given two
// coordinates and a travel mode it returns a route estimate, or nil when no
// route exists. The scheduling core never sees provider errors as fatal.
package transit

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/codeGROOVE-dev/retry"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/careerpilot/shadowcal/internal/model"
)

// Client talks to the regional transit routing API (Lynx-compatible plan
// endpoint). Driving and rideshare modes are routed through the same
// endpoint with a mode parameter.
type Client struct {
	http *resty.Client
	log  zerolog.Logger

	retryAttempts uint
	retryDelay    time.Duration
	retryMaxDelay time.Duration
}

// New builds a transit client for the given base URL and API key.
func New(baseURL, apiKey string, log zerolog.Logger) *Client {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetTimeout(10 * time.Second)
	if apiKey != "" {
		c.SetHeader("X-Api-Key", apiKey)
	}
	return &Client{
		http:          c,
		log:           log,
		retryAttempts: 3,
		retryDelay:    500 * time.Millisecond,
		retryMaxDelay: 10 * time.Second,
	}
}

type planResponse struct {
	Found bool `json:"found"`
	Route struct {
		DurationMinutes int      `json:"durationMinutes"`
		WalkingMinutes  int      `json:"walkingMinutes"`
		Transfers       int      `json:"transfers"`
		DistanceMiles   float64  `json:"distanceMiles"`
		Summary         string   `json:"summary"`
		RouteIDs        []string `json:"routeIds"`
	} `json:"route"`
}

// Route implements schedule.TransitLookup. It returns (nil, nil) when the
// provider reports no route, and an error only for transport-level failures
// that survived retrying. Callers upstream of the core may retry further;
// the core itself treats errors as "no route".
func (c *Client) Route(ctx context.Context, origin, destination model.Coordinates, mode model.TransitMode) (*model.TransitEstimate, error) {
	if !mode.Valid() {
		mode = model.ModeLynx
	}

	var out planResponse
	var clientErr error
	err := retry.Do(
		func() error {
			resp, err := c.http.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"fromLat": fmt.Sprintf("%f", origin.Latitude),
					"fromLng": fmt.Sprintf("%f", origin.Longitude),
					"toLat":   fmt.Sprintf("%f", destination.Latitude),
					"toLng":   fmt.Sprintf("%f", destination.Longitude),
					"mode":    string(mode),
				}).
				SetResult(&out).
				// Parse as JSON whatever content type the provider claims;
				// a non-JSON body degrades to "no route".
				ForceContentType("application/json").
				Get("/v1/plan")
			if err != nil {
				return err
			}
			if resp.StatusCode() == http.StatusTooManyRequests || resp.StatusCode() >= http.StatusInternalServerError {
				return fmt.Errorf("transit API HTTP %d", resp.StatusCode())
			}
			if resp.IsError() {
				// 4xx responses will not improve on retry.
				clientErr = fmt.Errorf("transit API HTTP %d", resp.StatusCode())
				return nil
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.MaxDelay(c.retryMaxDelay),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.log.Debug().Uint("attempt", n+1).Err(err).Msg("retrying transit plan request")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("transit plan: %w", err)
	}
	if clientErr != nil {
		return nil, clientErr
	}
	if !out.Found {
		return nil, nil
	}
	return &model.TransitEstimate{
		DurationMinutes: out.Route.DurationMinutes,
		WalkingMinutes:  out.Route.WalkingMinutes,
		Transfers:       out.Route.Transfers,
		DistanceMiles:   out.Route.DistanceMiles,
		RouteSummary:    out.Route.Summary,
		RouteIDs:        out.Route.RouteIDs,
	}, nil
}

// HealthPing implements health.Pinger. It hits the provider's health
// endpoint without retrying; the caller's checker owns the probe cadence.
func (c *Client) HealthPing(ctx context.Context) error {
	resp, err := c.http.R().SetContext(ctx).Get("/v1/health")
	if err != nil {
		return fmt.Errorf("transit health: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("transit health: HTTP %d", resp.StatusCode())
	}
	return nil
}
