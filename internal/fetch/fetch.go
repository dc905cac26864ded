// internal/fetch/fetch.go
package fetch

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/listlift/listlift/internal/utils"
	"github.com/listlift/listlift/pkg/types"
)

var fetchLogger = utils.NewComponentLogger("fetcher")

const maxBodySize = 10 << 20 // 10 MiB

// Config defines fetcher behavior
type Config struct {
	Timeout       time.Duration     `yaml:"timeout" json:"timeout"`
	RetryAttempts int               `yaml:"retry_attempts" json:"retry_attempts"`
	RetryDelay    time.Duration     `yaml:"retry_delay" json:"retry_delay"`
	RateLimit     float64           `yaml:"rate_limit" json:"rate_limit"` // requests per second
	RateBurst     int               `yaml:"rate_burst" json:"rate_burst"`
	UserAgents    []string          `yaml:"user_agents,omitempty" json:"user_agents,omitempty"`
	Headers       map[string]string `yaml:"headers,omitempty" json:"headers,omitempty"`
}

// Fetcher downloads pages with rate limiting, retries with exponential
// backoff, and rotating browser-like request headers
type Fetcher struct {
	httpClient    *http.Client
	rateLimiter   *rate.Limiter
	retryAttempts int
	retryDelay    time.Duration
	userAgents    []string
	currentUA     int
	uaMutex       sync.Mutex
	headers       map[string]string
}

// New creates a fetcher with the specified configuration
func New(config Config) *Fetcher {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	if config.RetryAttempts == 0 {
		config.RetryAttempts = 3
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = time.Second
	}
	if config.RateLimit == 0 {
		config.RateLimit = 1.0
	}
	if config.RateBurst == 0 {
		config.RateBurst = 2
	}
	if len(config.UserAgents) == 0 {
		config.UserAgents = defaultUserAgents()
	}

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: config.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		rateLimiter:   rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
		retryAttempts: config.RetryAttempts,
		retryDelay:    config.RetryDelay,
		userAgents:    config.UserAgents,
		headers:       config.Headers,
	}
}

// Fetch downloads the page at targetURL and stamps the fetch time
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (types.RawPage, error) {
	if !utils.IsValidURL(targetURL) {
		return types.RawPage{}, utils.NewError(utils.ErrCodeValidation,
			fmt.Sprintf("invalid URL: %s", targetURL))
	}

	var lastErr error
	for attempt := 0; attempt <= f.retryAttempts; attempt++ {
		if err := f.rateLimiter.Wait(ctx); err != nil {
			return types.RawPage{}, err
		}

		body, status, err := f.doRequest(ctx, targetURL)
		if err == nil && status >= 200 && status < 300 {
			return types.RawPage{
				SourceURL: targetURL,
				Body:      body,
				FetchedAt: time.Now().UTC(),
			}, nil
		}

		if err != nil {
			lastErr = utils.WrapError(err, utils.ErrCodeNetworkTimeout,
				fmt.Sprintf("request failed (attempt %d/%d)", attempt+1, f.retryAttempts+1)).
				WithContext("url", targetURL).
				WithRetryable(true)
		} else {
			lastErr = utils.NewError(utils.ErrCodeHTTPStatus,
				fmt.Sprintf("HTTP %d for %s (attempt %d/%d)", status, targetURL, attempt+1, f.retryAttempts+1)).
				WithRetryable(retryableStatus(status))
		}
		if !utils.IsRetryableError(lastErr) {
			break
		}

		if attempt < f.retryAttempts {
			if err := f.waitForRetry(ctx, attempt); err != nil {
				return types.RawPage{}, err
			}
		}
	}
	return types.RawPage{}, lastErr
}

func (f *Fetcher) doRequest(ctx context.Context, targetURL string) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return "", 0, err
	}
	f.setRequestHeaders(req)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return "", resp.StatusCode, err
	}

	fetchLogger.Debug(fmt.Sprintf("Fetched %s: HTTP %d, %d bytes", targetURL, resp.StatusCode, len(body)))
	return string(body), resp.StatusCode, nil
}

// setRequestHeaders makes the request look browser-like
func (f *Fetcher) setRequestHeaders(req *http.Request) {
	req.Header.Set("User-Agent", f.nextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "pl-PL,pl;q=0.9,en-US;q=0.7,en;q=0.5")
	req.Header.Set("Connection", "keep-alive")
	req.Header.Set("Upgrade-Insecure-Requests", "1")

	for key, value := range f.headers {
		req.Header.Set(key, value)
	}
}

func (f *Fetcher) nextUserAgent() string {
	f.uaMutex.Lock()
	defer f.uaMutex.Unlock()
	userAgent := f.userAgents[f.currentUA]
	f.currentUA = (f.currentUA + 1) % len(f.userAgents)
	return userAgent
}

// waitForRetry sleeps with exponential backoff plus jitter, honoring
// context cancellation
func (f *Fetcher) waitForRetry(ctx context.Context, attempt int) error {
	delay := f.retryDelay * time.Duration(1<<uint(attempt))
	delay += time.Duration(rand.Int63n(int64(delay / 2)))
	if delay > 30*time.Second {
		delay = 30 * time.Second
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func retryableStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return statusCode >= 520 && statusCode <= 524
}

func defaultUserAgents() []string {
	return []string{
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
		"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.1 Safari/605.1.15",
		"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/119.0",
		"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	}
}
