// Package fred is the series store's provider client: it fetches one
// named observation series per call from the FRED observations endpoint.
package fred

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/sawpanic/macrorun/internal/cache"
	"github.com/sawpanic/macrorun/internal/series"
)

// ErrDataUnavailable marks a series that returned zero usable
// observations. Callers degrade by omitting the series, never by aborting
// the run.
var ErrDataUnavailable = errors.New("fred: no usable observations")

// ClientConfig configures the FRED HTTP client.
type ClientConfig struct {
	BaseURL        string        `yaml:"base_url"`
	APIKey         string        `yaml:"-"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	RetryBackoff   time.Duration `yaml:"retry_backoff"`
	RequestsPerMin int           `yaml:"requests_per_min"`
	CacheTTL       time.Duration `yaml:"cache_ttl"`
}

// DefaultClientConfig returns the production defaults. FRED allows about
// 120 requests a minute per key.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:        "https://api.stlouisfed.org/fred",
		RequestTimeout: 25 * time.Second,
		RetryBackoff:   500 * time.Millisecond,
		RequestsPerMin: 100,
		CacheTTL:       6 * time.Hour,
	}
}

// Client fetches observation series with rate limiting and circuit
// breaking around the single external failure point.
type Client struct {
	config  ClientConfig
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	cache   cache.Cache
}

// NewClient builds a Client; a nil Cache disables caching.
func NewClient(cfg ClientConfig, c cache.Cache) *Client {
	if c == nil {
		c = cache.Nop{}
	}
	rpm := cfg.RequestsPerMin
	if rpm <= 0 {
		rpm = 100
	}
	return &Client{
		config:  cfg,
		http:    &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 5),
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    "fred",
			Timeout: 30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
		}),
		cache: c,
	}
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type observationsResponse struct {
	Observations []observation `json:"observations"`
}

// Fetch retrieves all published observations for a series code from the
// inclusive start date. Non-numeric sentinel values ("." and friends) are
// dropped, never parsed as zero. Transient transport errors are retried
// once with backoff. Zero usable observations yields ErrDataUnavailable.
func (c *Client) Fetch(ctx context.Context, name, code string, start time.Time) (*series.Series, error) {
	key := fmt.Sprintf("%s:%s", code, start.Format("2006-01-02"))

	payload, hit, err := c.cache.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("series", code).Msg("observation cache read failed")
	}
	if !hit {
		payload, err = c.fetchPayload(ctx, code, start)
		if err != nil {
			return nil, err
		}
		if err := c.cache.Set(ctx, key, payload, c.config.CacheTTL); err != nil {
			log.Warn().Err(err).Str("series", code).Msg("observation cache write failed")
		}
	}

	points, err := decodeObservations(payload)
	if err != nil {
		return nil, fmt.Errorf("fred: decode %s: %w", code, err)
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrDataUnavailable, code)
	}
	return series.New(name, code, points), nil
}

func (c *Client) fetchPayload(ctx context.Context, code string, start time.Time) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	payload, err := c.breaker.Execute(func() (any, error) {
		return c.doRequest(ctx, code, start)
	})
	if err == nil {
		return payload.([]byte), nil
	}

	// One retry with backoff on transport errors; FRED is the primary
	// external failure point.
	var httpErr *statusError
	if errors.As(err, &httpErr) && !httpErr.transient() {
		return nil, err
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(c.config.RetryBackoff):
	}
	log.Debug().Str("series", code).Err(err).Msg("retrying fetch after backoff")

	payload, err = c.breaker.Execute(func() (any, error) {
		return c.doRequest(ctx, code, start)
	})
	if err != nil {
		return nil, fmt.Errorf("fred: fetch %s: %w", code, err)
	}
	return payload.([]byte), nil
}

func (c *Client) doRequest(ctx context.Context, code string, start time.Time) ([]byte, error) {
	q := url.Values{}
	q.Set("series_id", code)
	q.Set("api_key", c.config.APIKey)
	q.Set("file_type", "json")
	q.Set("observation_start", start.Format("2006-01-02"))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/series/observations?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &statusError{code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

type statusError struct{ code int }

func (e *statusError) Error() string { return fmt.Sprintf("fred: http status %d", e.code) }

func (e *statusError) transient() bool {
	return e.code == http.StatusTooManyRequests || e.code >= 500
}

func decodeObservations(payload []byte) ([]series.Point, error) {
	var resp observationsResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, err
	}

	points := make([]series.Point, 0, len(resp.Observations))
	for _, obs := range resp.Observations {
		v, err := strconv.ParseFloat(obs.Value, 64)
		if err != nil {
			continue // "." sentinel and friends
		}
		d, err := time.ParseInLocation("2006-01-02", obs.Date, time.UTC)
		if err != nil {
			continue
		}
		points = append(points, series.Point{Date: d, Value: v})
	}
	return points, nil
}
