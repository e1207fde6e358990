package weather

import (
	"context"
	"time"
)

// Fetcher retrieves one raw forecast payload for a location. Failures are
// reported as *RequestError.
type Fetcher interface {
	Fetch(ctx context.Context, location string) (RawSnapshot, error)
}

// SnapshotStore holds the single most recent good payload. Get returns an
// error wrapping ErrCacheMiss when nothing usable is stored.
type SnapshotStore interface {
	Put(ctx context.Context, snap RawSnapshot) error
	Get(ctx context.Context) (RawSnapshot, error)
}

// Recorder receives pipeline outcomes for instrumentation.
type Recorder interface {
	FetchOutcome(outcome string)
	Fallback(result string)
	NormalizeFailure(kind string)
	SnapshotWrite(result string)
	PipelineDuration(d time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) FetchOutcome(string)            {}
func (nopRecorder) Fallback(string)                {}
func (nopRecorder) NormalizeFailure(string)        {}
func (nopRecorder) SnapshotWrite(string)           {}
func (nopRecorder) PipelineDuration(time.Duration) {}
