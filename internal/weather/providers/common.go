package providers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const userAgent = "weather-mirror/1.0"

// HTTPClientConfig bundles the outbound client and the optional local limiter.
type HTTPClientConfig struct {
	Client  *resty.Client
	Limiter *rate.Limiter
}

var (
	errRateLimited  = errors.New("local rate limit wait failed")
	errServerError  = errors.New("server error")
	errCircuitOpen  = errors.New("circuit breaker open")
	errNoHTTPClient = errors.New("http client not configured")
)

// NewHTTPClient returns a resty client with retries disabled. The pipeline
// recovers from a failed fetch through the snapshot store only.
func NewHTTPClient(timeout time.Duration, logger *zap.Logger) *resty.Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(0).
		SetHeader("User-Agent", userAgent)

	client.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		logger.Debug("upstream response",
			zap.String("method", resp.Request.Method),
			zap.String("url", resp.Request.URL),
			zap.Int("status", resp.StatusCode()),
			zap.Duration("took", resp.Time()),
			zap.Int("bytes", len(resp.Body())),
		)
		return nil
	})
	return client
}

// NewLimiter returns nil when rps is not positive, which disables the guard.
func NewLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

func newCircuitBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Interval:    5 * time.Minute,
		Timeout:     2 * time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
}

// doRequestWithResilience performs one GET through the limiter and the circuit
// breaker. Transport failures and 5xx answers count against the breaker; the
// response is still returned for any status so the caller can classify it.
func doRequestWithResilience(
	ctx context.Context,
	cfg HTTPClientConfig,
	cb *gobreaker.CircuitBreaker,
	url string,
) (*resty.Response, error) {
	if cfg.Client == nil {
		return nil, errNoHTTPClient
	}

	if cfg.Limiter != nil {
		if err := cfg.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", errRateLimited, err)
		}
	}

	var resp *resty.Response
	_, err := cb.Execute(func() (interface{}, error) {
		r, execErr := cfg.Client.R().SetContext(ctx).Get(url)
		if execErr != nil {
			return nil, execErr
		}
		resp = r
		if r.StatusCode() >= 500 {
			return nil, fmt.Errorf("%w: %d", errServerError, r.StatusCode())
		}
		return r, nil
	})

	switch {
	case err == nil:
		return resp, nil
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return nil, fmt.Errorf("%w: %v", errCircuitOpen, err)
	case errors.Is(err, errServerError):
		return resp, nil
	default:
		return nil, err
	}
}
