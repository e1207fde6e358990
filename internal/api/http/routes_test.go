package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/i474232898/weather-mirror/internal/metrics"
	"github.com/i474232898/weather-mirror/internal/scheduler"
	"github.com/i474232898/weather-mirror/internal/weather"
)

type stubSource struct {
	model      *weather.Model
	err        error
	refreshErr error
	refreshes  int
}

func (s *stubSource) Latest() (*weather.Model, error) {
	return s.model, s.err
}

func (s *stubSource) Refresh(context.Context) (*weather.Model, error) {
	s.refreshes++
	if s.refreshErr != nil {
		return nil, s.refreshErr
	}
	return s.model, nil
}

func sampleModel() *weather.Model {
	return &weather.Model{
		TimeUpdated: "02:15 pm",
		DateUpdated: "07/04/24",
		Current: weather.CurrentConditions{
			WeatherCode: "113", TempF: "72", TempC: "22", FeelsLikeF: "75", FeelsLikeC: "24",
			Description: "Sunny/Clear", Icon: "svg/wi-day-sunny.svg",
		},
		Days: []weather.ForecastDay{{
			Date: "Thursday July  4, 2024", MaxTempF: "82", MaxTempC: "28",
			Astronomy: []weather.Astronomy{{Sunrise: "05:48 AM", Sunset: "08:08 PM"}},
			Hourly:    []weather.ForecastHour{{Time: "12 AM", TempF: "64", TempC: "18"}},
		}},
	}
}

func newTestApp(src Source, gatherer prometheus.Gatherer) *fiber.App {
	app := NewApp("weather-mirror-test")
	RegisterRoutes(app, src, Options{
		Unit:     weather.Fahrenheit,
		Hour12:   true,
		Gatherer: gatherer,
		Now:      func() time.Time { return time.Date(2024, time.July, 4, 14, 20, 0, 0, time.Local) },
	})
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, target string) (*http.Response, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var body map[string]interface{}
	if strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(raw, &body); err != nil {
			t.Fatalf("decode body %q: %v", raw, err)
		}
	}
	return resp, body
}

func TestHealth(t *testing.T) {
	app := newTestApp(&stubSource{}, nil)
	resp, body := doRequest(t, app, http.MethodGet, "/health")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body: %v", body)
	}
}

// TestWeatherUnitValidation verifies that the view endpoint only accepts
// f, F, c or C for the `unit` query parameter.
func TestWeatherUnitValidation(t *testing.T) {
	app := newTestApp(&stubSource{model: sampleModel()}, nil)

	for _, unit := range []string{"K", "k", "fc", "%20c", "celsius"} {
		resp, _ := doRequest(t, app, http.MethodGet, "/api/v1/weather?unit="+unit)
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("unit %q: expected status %d, got %d", unit, http.StatusBadRequest, resp.StatusCode)
		}
	}

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/weather?unit=c")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	current := body["current"].(map[string]interface{})
	if current["temp"] != "22" || body["unit"] != "C" {
		t.Fatalf("expected celsius view, got %v", body)
	}
}

func TestWeatherDefaultUnit(t *testing.T) {
	app := newTestApp(&stubSource{model: sampleModel()}, nil)

	resp, body := doRequest(t, app, http.MethodGet, "/api/v1/weather")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	current := body["current"].(map[string]interface{})
	if current["temp"] != "72" {
		t.Fatalf("expected fahrenheit temp, got %v", current["temp"])
	}
	if body["clock"] != "02:20 PM" {
		t.Fatalf("unexpected clock %v", body["clock"])
	}
}

func TestWeatherErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "no data yet", err: scheduler.ErrNoData, want: http.StatusNotFound},
		{name: "fetch failed", err: weather.NewRequestError(http.StatusGatewayTimeout), want: http.StatusServiceUnavailable},
		{name: "bad payload", err: &weather.ParseError{What: "weather payload", Err: io.ErrUnexpectedEOF}, want: http.StatusBadGateway},
		{name: "missing fields", err: &weather.DerivationError{What: "forecast", Reason: "weather is empty"}, want: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&stubSource{err: tt.err}, nil)
			resp, body := doRequest(t, app, http.MethodGet, "/api/v1/weather/raw-model")
			if resp.StatusCode != tt.want {
				t.Fatalf("expected status %d, got %d", tt.want, resp.StatusCode)
			}
			if body["error"] != true {
				t.Fatalf("expected error body, got %v", body)
			}
		})
	}
}

func TestFetchErrorCarriesUpstreamStatus(t *testing.T) {
	app := newTestApp(&stubSource{err: weather.NewRequestError(http.StatusTooManyRequests)}, nil)
	_, body := doRequest(t, app, http.MethodGet, "/api/v1/weather")
	if body["upstream_status"] != float64(http.StatusTooManyRequests) {
		t.Fatalf("expected upstream status 429, got %v", body["upstream_status"])
	}
	if body["details"] != "Too Many Requests" {
		t.Fatalf("unexpected details %v", body["details"])
	}
}

func TestRefresh(t *testing.T) {
	src := &stubSource{model: sampleModel()}
	app := newTestApp(src, nil)

	resp, _ := doRequest(t, app, http.MethodPost, "/api/v1/weather/refresh")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, resp.StatusCode)
	}
	if src.refreshes != 1 {
		t.Fatalf("expected one refresh, got %d", src.refreshes)
	}

	src.refreshErr = weather.NewRequestError(http.StatusServiceUnavailable)
	resp, _ = doRequest(t, app, http.MethodPost, "/api/v1/weather/refresh")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, resp.StatusCode)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector := metrics.New(reg)
	collector.FetchOutcome("ok")

	app := newTestApp(&stubSource{}, reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), `weather_fetch_total{outcome="ok"} 1`) {
		t.Fatalf("metrics output missing fetch counter:\n%s", raw)
	}
}
