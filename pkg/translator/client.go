package translator

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/solflu/outbreak/pkg/logging"
	"github.com/solflu/outbreak/pkg/simulation"
)

// Client fetches market metrics from the translator service and converts
// them into simulation parameters. Responses are cached briefly so a fast
// simulation cadence does not hammer the upstream API; failures degrade to
// the neutral fallback parameters so the simulation loop keeps moving.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cacheTTL   time.Duration
	logger     logging.Logger

	mu         sync.Mutex
	lastParams simulation.Parameters
	lastFetch  time.Time
	haveCached bool
	onFallback func()
}

// Source identifies where a parameter set came from.
type Source string

const (
	// SourceLive marks parameters translated from a fresh market fetch.
	SourceLive Source = "live"
	// SourceCached marks parameters served from the TTL cache.
	SourceCached Source = "cached"
	// SourceFallback marks the neutral set served when the feed failed.
	SourceFallback Source = "fallback"
)

// SetFallbackHook registers a callback invoked whenever the market feed
// fails and fallback parameters are served, so callers can count fallbacks.
func (c *Client) SetFallbackHook(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFallback = fn
}

// NewClient creates a translator client against the given base URL.
func NewClient(baseURL string, logger logging.Logger) *Client {
	if logger == nil {
		logger = logging.DefaultLogger()
	}
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		cacheTTL: time.Second,
		logger:   logger.With(logging.Component("translator")),
	}
}

// Parameters returns the current simulation parameters and where they came
// from. A cached value younger than the TTL is returned directly; otherwise
// the market endpoint is queried and translated. Any failure returns the
// fallback set.
func (c *Client) Parameters(ctx context.Context) (simulation.Parameters, Source) {
	c.mu.Lock()
	if c.haveCached && time.Since(c.lastFetch) < c.cacheTTL {
		params := c.lastParams
		c.mu.Unlock()
		return params, SourceCached
	}
	c.mu.Unlock()

	metrics, err := c.fetchMetrics(ctx)
	if err != nil {
		c.logger.Warn("market feed unavailable, using fallback parameters", logging.Error(err))
		c.mu.Lock()
		hook := c.onFallback
		c.mu.Unlock()
		if hook != nil {
			hook()
		}
		return FallbackParameters(), SourceFallback
	}

	params := Translate(*metrics)

	c.mu.Lock()
	c.lastParams = params
	c.lastFetch = time.Now()
	c.haveCached = true
	c.mu.Unlock()

	return params, SourceLive
}

// Ping checks whether the translator service is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.fetchMetrics(ctx)
	return err
}

func (c *Client) fetchMetrics(ctx context.Context) (*MarketMetrics, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/market/parameters", nil)
	if err != nil {
		return nil, fmt.Errorf("build market request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch market metrics: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market endpoint returned %d", resp.StatusCode)
	}

	var metrics MarketMetrics
	if err := json.NewDecoder(resp.Body).Decode(&metrics); err != nil {
		return nil, fmt.Errorf("decode market metrics: %w", err)
	}
	return &metrics, nil
}
