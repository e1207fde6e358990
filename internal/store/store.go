package store

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/go-redis/redis/v8"
	"github.com/i474232898/weather-mirror/internal/weather"
)

// CacheFileName is the snapshot file kept in the cache directory.
const CacheFileName = "last_weather.json"

// Backend names accepted by New.
const (
	BackendFile   = "file"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

var (
	// ErrEmptySnapshot is returned by Put for a snapshot without a body.
	ErrEmptySnapshot = errors.New("refusing to store empty snapshot")
	// ErrUnknownBackend is returned by New for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown cache backend")
)

// Options selects and configures a snapshot store backend.
type Options struct {
	Backend string
	Dir     string
	Redis   *redis.Options
}

// New builds the snapshot store named by opts.Backend.
func New(opts Options) (weather.SnapshotStore, error) {
	switch opts.Backend {
	case "", BackendFile:
		return NewFileStore(filepath.Join(opts.Dir, CacheFileName)), nil
	case BackendRedis:
		if opts.Redis == nil {
			return nil, fmt.Errorf("%w: redis backend needs connection options", ErrUnknownBackend)
		}
		return NewRedisStore(redis.NewClient(opts.Redis), DefaultRedisKey), nil
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
