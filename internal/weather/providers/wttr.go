package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/go-resty/resty/v2"
	"github.com/i474232898/weather-mirror/internal/common"
	"github.com/i474232898/weather-mirror/internal/weather"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public wttr.in endpoint.
const DefaultBaseURL = "http://wttr.in"

// unknownLocationMarker is what wttr.in puts in a 200 body when it cannot
// resolve the requested location.
const unknownLocationMarker = "Unknown location; please try"

// WttrProvider implements weather.Fetcher for wttr.in's format=j1 output.
type WttrProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	logger  *zap.Logger
	now     func() time.Time
}

func NewWttrProvider(baseURL string, client *resty.Client, limiter *rate.Limiter, logger *zap.Logger) *WttrProvider {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WttrProvider{
		name:    "wttr",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: HTTPClientConfig{
			Client:  client,
			Limiter: limiter,
		},
		circuit: newCircuitBreaker("wttr"),
		logger:  logger.Named("wttr"),
		now:     time.Now,
	}
}

func (p *WttrProvider) Name() string {
	return p.name
}

// Fetch requests the j1 forecast for location. Every failure is a
// *weather.RequestError: 404 for a location that does not form a valid URL,
// 504 when no answer arrives, 429 when wttr.in does not know the location,
// 502 for a 2xx answer that is not JSON and the upstream status for any other
// non-2xx answer.
func (p *WttrProvider) Fetch(ctx context.Context, location string) (weather.RawSnapshot, error) {
	endpoint, err := p.endpoint(location)
	if err != nil {
		p.logger.Warn("invalid location", zap.String("location", location), zap.Error(err))
		return weather.RawSnapshot{}, weather.NewRequestError(http.StatusNotFound)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, endpoint)
	if err != nil {
		p.logger.Warn("wttr request failed", zap.String("url", endpoint), zap.Error(err))
		return weather.RawSnapshot{}, weather.NewRequestError(http.StatusGatewayTimeout)
	}

	if !resp.IsSuccess() {
		return weather.RawSnapshot{}, weather.NewRequestError(resp.StatusCode())
	}

	body := resp.Body()
	if common.HasAny(body, unknownLocationMarker) {
		return weather.RawSnapshot{}, weather.NewRequestError(http.StatusTooManyRequests)
	}
	if !json.Valid(body) {
		p.logger.Warn("wttr answered with a non-JSON body", zap.Int("bytes", len(body)))
		return weather.RawSnapshot{}, weather.NewRequestError(http.StatusBadGateway)
	}

	return weather.NewRawSnapshot(body, p.now()), nil
}

func (p *WttrProvider) endpoint(location string) (string, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return "", fmt.Errorf("empty location")
	}
	if strings.ContainsFunc(location, unicode.IsControl) {
		return "", fmt.Errorf("control character in location %q", location)
	}
	// accept both raw and already percent-encoded locations
	segment, err := url.PathUnescape(location)
	if err != nil {
		return "", err
	}
	u, err := url.Parse(fmt.Sprintf("%s/%s?format=j1", p.baseURL, url.PathEscape(segment)))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}
