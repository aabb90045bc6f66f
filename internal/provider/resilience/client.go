package resilience

import (
	"errors"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned while the upstream's breaker is open.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// ClientConfig configures a resilient HTTP client for one upstream.
type ClientConfig struct {
	// Name identifies the upstream for breaker naming and health reports.
	Name string

	// Timeout per individual HTTP attempt. Default: 10s.
	Timeout time.Duration

	// MaxRetries after the first attempt. Default: 3.
	MaxRetries uint64

	// InitialInterval is the first retry backoff delay. Default: 100ms.
	InitialInterval time.Duration

	// MaxInterval caps the backoff delay. Default: 5s.
	MaxInterval time.Duration

	// Breaker overrides the default breaker settings.
	Breaker *BreakerConfig
}

// Client executes HTTP requests through a circuit breaker with exponential
// backoff retry on transient failures. It satisfies the HTTPDoer interface
// the provider adapters accept.
type Client struct {
	httpClient *http.Client
	breaker    *gobreaker.CircuitBreaker[*http.Response]
	cfg        ClientConfig
}

// NewClient creates a resilient client with defaults applied for zero fields.
func NewClient(cfg ClientConfig) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.InitialInterval == 0 {
		cfg.InitialInterval = 100 * time.Millisecond
	}
	if cfg.MaxInterval == 0 {
		cfg.MaxInterval = 5 * time.Second
	}

	breakerCfg := DefaultBreakerConfig(cfg.Name)
	if cfg.Breaker != nil {
		breakerCfg = *cfg.Breaker
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		breaker:    newBreaker[*http.Response](breakerCfg), //nolint:bodyclose // type parameter, not a response
		cfg:        cfg,
	}
}

// Do executes the request, retrying network errors and 5xx responses with
// exponential backoff. An open breaker fails fast with ErrCircuitOpen. 4xx
// responses are returned unretried; a 5xx that survives all retries is also
// returned rather than discarded, so callers can report the upstream status.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.cfg.InitialInterval
	bo.MaxInterval = c.cfg.MaxInterval
	bo.MaxElapsedTime = 0

	policy := backoff.WithContext(backoff.WithMaxRetries(bo, c.cfg.MaxRetries), ctx)

	var last *http.Response

	attempt := func() error {
		resp, err := c.breaker.Execute(func() (*http.Response, error) { //nolint:bodyclose // caller closes
			r, err := c.httpClient.Do(req.Clone(ctx))
			if err != nil {
				return nil, err
			}
			if r.StatusCode >= 500 {
				// 5xx counts against the breaker and is retried.
				return r, &UpstreamError{StatusCode: r.StatusCode}
			}
			return r, nil
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return backoff.Permanent(ErrCircuitOpen)
			}
			if resp != nil {
				last = resp
			}
			return err
		}

		last = resp
		return nil
	}

	if err := backoff.Retry(attempt, policy); err != nil {
		if last != nil {
			return last, nil
		}
		return nil, err
	}

	return last, nil
}

// UpstreamError marks an HTTP 5xx from the upstream.
type UpstreamError struct {
	StatusCode int
}

func (e *UpstreamError) Error() string {
	return "upstream error: " + http.StatusText(e.StatusCode)
}

// State exposes the breaker state for health reporting.
func (c *Client) State() gobreaker.State {
	return c.breaker.State()
}

// Counts exposes the breaker counters for health reporting.
func (c *Client) Counts() gobreaker.Counts {
	return c.breaker.Counts()
}
