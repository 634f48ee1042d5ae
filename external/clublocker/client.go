package clublocker

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/singleflight"

	"github.com/riskibarqy/clublocker/internal/domain/sweep"
	"github.com/riskibarqy/clublocker/internal/platform/logging"
	"github.com/riskibarqy/clublocker/internal/platform/resilience"
)

const (
	defaultBaseURL         = "https://api.ussquash.com/resources"
	defaultTimeout         = 10 * time.Second
	defaultRetryBackoff    = time.Second
	defaultWorkers         = 8
	defaultRankingGroup    = 9
	defaultMaxRankingPages = 19
	maxBodyBytes           = 16 << 20
)

var (
	// ErrMalformedResponse fails a whole sweep: the body was not a JSON
	// array of objects.
	ErrMalformedResponse = crerr.New("malformed club locker response")
	// ErrEmptyDataset is returned when a sweep yields no usable records.
	ErrEmptyDataset = crerr.New("club locker returned no records")

	errTransient = crerr.New("club locker transient failure")
	errStatus    = crerr.New("club locker rejected request")
)

type ClientConfig struct {
	HTTPClient       *http.Client
	BaseURL          string
	Timeout          time.Duration
	MaxRetries       int
	RetryBackoff     time.Duration
	Workers          int
	RankingGroup     int
	RankingDivisions []int
	MaxRankingPages  int
	// SweepTimeout bounds one whole sweep. Requests still pending when it
	// expires are reported as gaps.
	SweepTimeout   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	Now            func() time.Time
}

type Client struct {
	httpClient       *http.Client
	baseURL          string
	maxRetries       int
	retryBackoff     time.Duration
	workers          int
	rankingGroup     int
	rankingDivisions []int
	maxRankingPages  int
	sweepTimeout     time.Duration
	logger           *logging.Logger
	breaker          *resilience.CircuitBreaker
	validate         *validator.Validate
	now              func() time.Time
	flight           singleflight.Group
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	divisions := cfg.RankingDivisions
	if len(divisions) == 0 {
		divisions = []int{2, 1}
	}

	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Client{
		httpClient:       httpClient,
		baseURL:          baseURL,
		maxRetries:       max(cfg.MaxRetries, 0),
		retryBackoff:     positiveOr(cfg.RetryBackoff, defaultRetryBackoff),
		workers:          positiveOr(cfg.Workers, defaultWorkers),
		rankingGroup:     positiveOr(cfg.RankingGroup, defaultRankingGroup),
		rankingDivisions: divisions,
		maxRankingPages:  positiveOr(cfg.MaxRankingPages, defaultMaxRankingPages),
		sweepTimeout:     cfg.SweepTimeout,
		logger:           logger.Named("clublocker"),
		breaker:          resilience.NewCircuitBreakerFromConfig(cfg.CircuitBreaker, resilience.WithClock(now)),
		validate:         validator.New(),
		now:              now,
	}
}

// sweepContext applies the sweep deadline, if any.
func (c *Client) sweepContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.sweepTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.sweepTimeout)
}

// fetchPage issues one request. Request failures come back as a gap so the
// sweep can continue; only a malformed body or a cancelled parent context
// is returned as an error.
func (c *Client) fetchPage(parent, ctx context.Context, kind, path string, query url.Values) ([]map[string]any, *sweep.Gap, error) {
	records, err := c.getRecords(ctx, path, query)
	if err == nil {
		return records, nil, nil
	}
	if crerr.Is(err, ErrMalformedResponse) {
		return nil, nil, err
	}
	if parentErr := parent.Err(); parentErr != nil {
		return nil, nil, parentErr
	}

	gap := sweep.Gap{
		Kind:     kind,
		Request:  path + "?" + query.Encode(),
		Reason:   gapReason(ctx, err),
		Attempts: attemptsOf(err),
	}
	c.logger.WarnContext(ctx, "club locker request skipped",
		"kind", kind,
		"request", gap.Request,
		"reason", gap.Reason,
		"attempts", gap.Attempts,
		"error", err,
	)
	return nil, &gap, nil
}

// getRecords fetches one endpoint and decodes it as an array of objects.
// A JSON null body is an empty page.
func (c *Client) getRecords(ctx context.Context, path string, query url.Values) ([]map[string]any, error) {
	fullURL := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	out, err, _ := c.flight.Do(fullURL, func() (any, error) {
		var raw []byte
		err := c.breaker.Do(func() error {
			body, reqErr := c.executeRequest(ctx, fullURL)
			raw = body
			return reqErr
		}, isCircuitFailure)
		if err != nil {
			if crerr.Is(err, resilience.ErrCircuitOpen) {
				c.logger.WarnContext(ctx, "club locker circuit breaker rejected request", "state", c.breaker.State())
			}
			return nil, err
		}
		return raw, nil
	})
	if err != nil {
		return nil, err
	}

	raw, ok := out.([]byte)
	if !ok {
		return nil, crerr.Newf("unexpected response payload type %T", out)
	}
	return decodeRecords(raw)
}

func decodeRecords(raw []byte) ([]map[string]any, error) {
	var items []any
	if err := sonic.Unmarshal(raw, &items); err != nil {
		return nil, crerr.Mark(crerr.Wrapf(err, "decode body %s", abbreviateBody(raw)), ErrMalformedResponse)
	}

	records := make([]map[string]any, 0, len(items))
	for i, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			return nil, crerr.Mark(crerr.Newf("element %d is %T, not an object", i, item), ErrMalformedResponse)
		}
		records = append(records, record)
	}
	return records, nil
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		attempts++
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, crerr.Wrap(err, "build request")
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, &requestError{cause: crerr.Wrap(err, "send request"), attempts: attempts}
			}
			lastErr = crerr.Mark(crerr.Wrap(err, "send request"), errTransient)
		} else {
			raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = crerr.Mark(crerr.Wrap(readErr, "read response body"), errTransient)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				statusErr := crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
				lastErr = crerr.Mark(crerr.Mark(statusErr, errStatus), errTransient)
			default:
				return nil, &requestError{
					cause:    crerr.Mark(crerr.Newf("provider status=%d body=%s", resp.StatusCode, abbreviateBody(raw)), errStatus),
					attempts: attempts,
				}
			}
		}

		if attempt == c.maxRetries || ctx.Err() != nil {
			break
		}
		backoff := time.Duration(attempt+1) * c.retryBackoff
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, &requestError{cause: crerr.WithSecondaryError(ctx.Err(), lastErr), attempts: attempts}
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = crerr.Mark(crerr.New("provider request failed"), errTransient)
	}
	c.logger.DebugContext(ctx, "club locker request failed", "url", fullURL, "attempts", attempts, "error", lastErr)
	return nil, &requestError{cause: lastErr, attempts: attempts}
}

type requestError struct {
	cause    error
	attempts int
}

func (e *requestError) Error() string {
	return fmt.Sprintf("%v (attempts=%d)", e.cause, e.attempts)
}

func (e *requestError) Unwrap() error { return e.cause }

func attemptsOf(err error) int {
	var reqErr *requestError
	if crerr.As(err, &reqErr) {
		return reqErr.attempts
	}
	return 0
}

// gapReason classifies a failed request. ctx is the sweep context, so an
// expired sweep deadline wins over whatever the transport reported.
func gapReason(ctx context.Context, err error) string {
	var netErr net.Error
	switch {
	case ctx.Err() != nil:
		return sweep.GapDeadline
	case crerr.Is(err, resilience.ErrCircuitOpen):
		return sweep.GapCircuitOpen
	case crerr.Is(err, errStatus):
		return sweep.GapStatus
	case crerr.As(err, &netErr) && netErr.Timeout():
		return sweep.GapTimeout
	default:
		return sweep.GapTransport
	}
}

// isCircuitFailure counts only provider-side trouble against the breaker.
func isCircuitFailure(err error) bool {
	return err != nil && crerr.Is(err, errTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}

func positiveOr[T int | time.Duration](value, fallback T) T {
	if value > 0 {
		return value
	}
	return fallback
}
