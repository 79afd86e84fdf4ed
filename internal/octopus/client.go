package octopus

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/segmentio/encoding/json"

	"github.com/pisolar/energylog/internal/failure"
	"github.com/pisolar/energylog/internal/infrastructure/logging"
)

// DefaultBaseURL is the public Octopus REST API root.
const DefaultBaseURL = "https://api.octopus.energy/v1/"

const consumptionPath = "electricity-meter-points/{mpan}/meters/{serial}/consumption/"

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	// Timeout is the request timeout; zero keeps the transport default.
	Timeout time.Duration
	// Log receives the HTTP library's warnings. Nil leaves them on its
	// own stderr logger.
	Log *logging.Logger
}

// Client talks to the Octopus API.
type Client struct {
	http *resty.Client
}

// NewClient returns a Client using basic auth with the API key as username.
func NewClient(cfg Config) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}

	rc := resty.New().
		SetBaseURL(base).
		SetBasicAuth(cfg.APIKey, "").
		SetHeader("Accept", "application/json")
	if cfg.Timeout > 0 {
		rc.SetTimeout(cfg.Timeout)
	}
	if cfg.Log != nil {
		rc.SetLogger(restyLogger{log: cfg.Log.With("component", "octopus-http")})
	}

	return &Client{http: rc}
}

// Consumption returns the consumption intervals for a meter, newest first.
//
// Errors are tagged: request failures and non-2xx responses as transport,
// bodies that are not the expected JSON shape as data shape.
func (c *Client) Consumption(ctx context.Context, mpan, serial string, params Params) ([]Interval, error) {
	const op = "get consumption"

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"mpan":   mpan,
			"serial": serial,
		}).
		SetQueryParams(params.query()).
		Get(consumptionPath)
	if err != nil {
		return nil, failure.Transport(op, err)
	}

	if resp.IsError() {
		return nil, failure.Transport(op, fmt.Errorf("unexpected status code %d: %s", resp.StatusCode(), resp.String()))
	}

	var page consumptionPage
	if err := json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, failure.DataShape(op, fmt.Errorf("decoding response: %w", err))
	}
	if page.Results == nil {
		return nil, failure.DataShape(op, ErrMissingResults)
	}

	return *page.Results, nil
}
