package httpapi

import (
	"context"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/i474232898/weather-mirror/internal/scheduler"
	"github.com/i474232898/weather-mirror/internal/weather"
)

var validate = validator.New()

// Source provides the models served by the API. *scheduler.Scheduler
// implements it.
type Source interface {
	Latest() (*weather.Model, error)
	Refresh(ctx context.Context) (*weather.Model, error)
}

// Options carries display defaults and the metrics registry.
type Options struct {
	Unit           weather.Unit
	Hour12         bool
	Gatherer       prometheus.Gatherer
	RefreshTimeout time.Duration
	Now            func() time.Time
}

// NewApp builds the Fiber app with the central error handler, the global
// middleware and the health endpoint.
func NewApp(name string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               name,
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          40 * time.Second,
		ErrorHandler:          ErrorHandler,
	})

	app.Use(logger.New())
	app.Use(recover.New())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": name,
		})
	})
	return app
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
// Fetch failures answer 503 with the classification, unusable payloads 502
// and a service without data yet 404.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	body := fiber.Map{"error": true, "message": err.Error()}

	var (
		fe     *fiber.Error
		reqErr *weather.RequestError
		perr   *weather.ParseError
		derr   *weather.DerivationError
	)
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.As(err, &reqErr):
		code = fiber.StatusServiceUnavailable
		body["upstream_status"] = reqErr.StatusCode
		body["details"] = reqErr.Details
	case errors.As(err, &perr), errors.As(err, &derr):
		code = fiber.StatusBadGateway
	case errors.Is(err, scheduler.ErrNoData):
		code = fiber.StatusNotFound
	}
	return c.Status(code).JSON(body)
}

// weatherQuery holds query parameters for the view endpoint.
type weatherQuery struct {
	Unit string `validate:"omitempty,oneof=f F c C"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, source Source, opts Options) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.RefreshTimeout <= 0 {
		opts.RefreshTimeout = 30 * time.Second
	}
	if opts.Unit == "" {
		opts.Unit = weather.Fahrenheit
	}

	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q := weatherQuery{Unit: c.Query("unit")}
		if err := validate.Struct(q); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		unit := opts.Unit
		if q.Unit != "" {
			parsed, err := weather.ParseUnit(q.Unit)
			if err != nil {
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			unit = parsed
		}

		m, err := source.Latest()
		if err != nil {
			return err
		}
		return c.JSON(weather.BuildView(m, unit, opts.Hour12, opts.Now()))
	})

	v1.Get("/weather/raw-model", func(c *fiber.Ctx) error {
		m, err := source.Latest()
		if err != nil {
			return err
		}
		return c.JSON(m)
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), opts.RefreshTimeout)
		defer cancel()

		m, err := source.Refresh(ctx)
		if err != nil {
			return err
		}
		return c.JSON(weather.BuildView(m, opts.Unit, opts.Hour12, opts.Now()))
	})

	if opts.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}
}
