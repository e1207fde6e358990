package weather

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service runs the acquisition pipeline: fetch, normalize, write through to
// the snapshot store, fall back to the stored snapshot on failure.
type Service struct {
	fetcher    Fetcher
	store      SnapshotStore
	normalizer *Normalizer
	metrics    Recorder
	logger     *zap.Logger
}

// NewService creates a new Service. A nil recorder or logger disables that concern.
func NewService(fetcher Fetcher, store SnapshotStore, normalizer *Normalizer, metrics Recorder, logger *zap.Logger) *Service {
	if metrics == nil {
		metrics = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		fetcher:    fetcher,
		store:      store,
		normalizer: normalizer,
		metrics:    metrics,
		logger:     logger,
	}
}

// GetWeather returns a normalized model for location. When the fetch fails
// and a snapshot is stored, the model is built from it and carries the fetch
// error. When nothing is stored the fetch error itself is returned.
func (s *Service) GetWeather(ctx context.Context, location string, hour12 bool) (*Model, error) {
	start := time.Now()
	defer func() { s.metrics.PipelineDuration(time.Since(start)) }()

	log := s.logger.With(zap.String("run_id", uuid.NewString()), zap.String("location", location))

	snap, err := s.fetcher.Fetch(ctx, location)
	if err == nil {
		s.metrics.FetchOutcome("ok")
		log.Debug("fetched fresh weather", zap.Int("bytes", len(snap.Body)))
		m, err := s.normalize(log, snap, hour12)
		if err != nil {
			return nil, err
		}
		s.save(ctx, log, snap)
		return m, nil
	}

	reqErr, ok := IsRequestError(err)
	if !ok {
		log.Warn("fetch returned unclassified error", zap.Error(err))
		reqErr = NewRequestError(http.StatusGatewayTimeout)
	}
	s.metrics.FetchOutcome(strconv.Itoa(reqErr.StatusCode))
	log.Warn("weather fetch failed, trying stored snapshot", zap.Error(reqErr))

	cached, cacheErr := s.store.Get(ctx)
	if cacheErr != nil {
		s.metrics.Fallback("miss")
		if !errors.Is(cacheErr, ErrCacheMiss) {
			log.Error("snapshot store read failed", zap.Error(cacheErr))
		}
		return nil, reqErr
	}
	s.metrics.Fallback("hit")
	log.Info("using stored snapshot", zap.String("captured", cached.Date+" "+cached.Time))

	m, err := s.normalize(log, cached, hour12)
	if err != nil {
		return nil, err
	}
	m.FromCache = true
	m.FetchError = reqErr
	return m, nil
}

// save writes a snapshot that normalized cleanly through to the store. A
// failed write leaves the previous snapshot in place and does not fail the run.
func (s *Service) save(ctx context.Context, log *zap.Logger, snap RawSnapshot) {
	if err := s.store.Put(ctx, snap); err != nil {
		s.metrics.SnapshotWrite("error")
		log.Error("failed to store weather snapshot", zap.Error(err))
		return
	}
	s.metrics.SnapshotWrite("ok")
}

func (s *Service) normalize(log *zap.Logger, snap RawSnapshot, hour12 bool) (*Model, error) {
	m, err := s.normalizer.Normalize(snap.Body, snap.Time, snap.Date, hour12)
	if err != nil {
		var perr *ParseError
		kind := "derivation"
		if errors.As(err, &perr) {
			kind = "parse"
		}
		s.metrics.NormalizeFailure(kind)
		log.Error("weather normalization failed", zap.String("kind", kind), zap.Error(err))
		return nil, err
	}
	return m, nil
}
