// Package geocode resolves free-text addresses to coordinates through
// an external geocoding API. The call is bounded by an explicit HTTP
// timeout and guarded by a circuit breaker so a degraded provider can
// never stall the triage pipeline.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/nishkal/triage-api/geodist"
	"github.com/nishkal/triage-api/logging"
	"github.com/nishkal/triage-api/refdata/entities"
)

// Typed failure results, so callers can branch on operational
// unavailability vs an address that simply has no match.
var (
	ErrUnavailable = errors.New("geocoding service unavailable")
	ErrNoMatch     = errors.New("no coordinates found for address")
)

// Client calls the geocoding provider.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
}

// NewClient builds a client for the provider at baseURL. A
// non-positive timeout gets a 5 second default.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	settings := gobreaker.Settings{
		Name:        "geocode",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Warn("Circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// geocodeResult is the provider's wire format: coordinates as strings.
type geocodeResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve converts an address to a coordinate. Returns ErrUnavailable
// when the breaker is open or the provider fails, ErrNoMatch when the
// provider has no result for the address.
func (c *Client) Resolve(ctx context.Context, address string) (geodist.Coordinate, error) {
	if address == "" {
		return geodist.Coordinate{}, &entities.ValidationError{Field: "address", Reason: "must not be empty"}
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, address)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return geodist.Coordinate{}, fmt.Errorf("%w: circuit open", ErrUnavailable)
		}
		if errors.Is(err, ErrNoMatch) {
			return geodist.Coordinate{}, err
		}
		return geodist.Coordinate{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return result.(geodist.Coordinate), nil
}

func (c *Client) fetch(ctx context.Context, address string) (geodist.Coordinate, error) {
	query := url.Values{}
	query.Set("q", address)
	if c.apiKey != "" {
		query.Set("api_key", c.apiKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+query.Encode(), nil)
	if err != nil {
		return geodist.Coordinate{}, fmt.Errorf("failed to build geocode request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return geodist.Coordinate{}, fmt.Errorf("geocode request failed: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logging.Warn("Failed to close geocode response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return geodist.Coordinate{}, fmt.Errorf("geocode provider returned status %d", resp.StatusCode)
	}

	var results []geocodeResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return geodist.Coordinate{}, fmt.Errorf("failed to decode geocode response: %w", err)
	}
	if len(results) == 0 {
		return geodist.Coordinate{}, ErrNoMatch
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return geodist.Coordinate{}, fmt.Errorf("malformed latitude %q in geocode response", results[0].Lat)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return geodist.Coordinate{}, fmt.Errorf("malformed longitude %q in geocode response", results[0].Lon)
	}

	coord := geodist.Coordinate{Lat: lat, Lon: lon}
	if err := coord.Validate(); err != nil {
		return geodist.Coordinate{}, fmt.Errorf("geocode provider returned invalid coordinate: %w", err)
	}
	return coord, nil
}
