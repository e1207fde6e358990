package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/i474232898/weather-mirror/internal/weather"
	"go.uber.org/zap"
)

// ErrNoData is returned by Latest before the first successful run.
var ErrNoData = errors.New("no weather data yet")

// Pipeline is the part of weather.Service the scheduler drives.
type Pipeline interface {
	GetWeather(ctx context.Context, location string, hour12 bool) (*weather.Model, error)
}

// Listener is notified after every successful run.
type Listener func(m *weather.Model)

// Scheduler periodically runs the pipeline for the configured location and
// keeps the most recent model for readers.
type Scheduler struct {
	scheduler *gocron.Scheduler
	pipeline  Pipeline
	location  string
	hour12    bool
	interval  time.Duration
	timeout   time.Duration
	logger    *zap.Logger

	mu        sync.RWMutex
	latest    *weather.Model
	lastErr   error
	listeners []Listener
}

// New creates a new Scheduler. timeout bounds each scheduled run; zero or
// less falls back to 30s.
func New(pipeline Pipeline, location string, hour12 bool, interval, timeout time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.Local),
		pipeline:  pipeline,
		location:  location,
		hour12:    hour12,
		interval:  interval,
		timeout:   timeout,
		logger:    logger.Named("scheduler"),
	}
}

// OnUpdate registers l to receive each new model.
func (s *Scheduler) OnUpdate(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Start schedules the periodic job and starts the underlying scheduler. The
// first run happens immediately.
func (s *Scheduler) Start() error {
	interval := s.interval
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	_, err := s.scheduler.Every(interval).SingletonMode().Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if _, err := s.Refresh(ctx); err != nil {
			s.logger.Warn("scheduled refresh failed", zap.Error(err))
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Refresh runs the pipeline once. On success the result replaces the latest
// model and listeners are notified. On failure the previous model is kept.
func (s *Scheduler) Refresh(ctx context.Context) (*weather.Model, error) {
	s.logger.Info("running weather refresh", zap.String("location", s.location))

	m, err := s.pipeline.GetWeather(ctx, s.location, s.hour12)

	s.mu.Lock()
	s.lastErr = err
	if err == nil {
		s.latest = m
	}
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	if err != nil {
		return nil, err
	}
	for _, l := range listeners {
		l(m)
	}
	s.logger.Info("weather refresh completed", zap.Bool("from_cache", m.FromCache))
	return m, nil
}

// Latest returns the most recent model. When no run has succeeded yet the
// error of the last attempt is returned, or ErrNoData before any attempt.
func (s *Scheduler) Latest() (*weather.Model, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.latest != nil {
		return s.latest, nil
	}
	if s.lastErr != nil {
		return nil, s.lastErr
	}
	return nil, ErrNoData
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
