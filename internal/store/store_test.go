package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/i474232898/weather-mirror/internal/weather"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleBody = []byte(`{"current_condition":[{"weatherCode":"113"}],"weather":[]}`)

func sampleSnapshot() weather.RawSnapshot {
	return weather.NewRawSnapshot(sampleBody, time.Date(2024, time.July, 4, 14, 15, 0, 0, time.Local))
}

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client, "")
}

// contract runs the checks every backend must pass.
func contract(t *testing.T, s weather.SnapshotStore) {
	ctx := context.Background()

	t.Run("empty store misses", func(t *testing.T) {
		_, err := s.Get(ctx)
		assert.ErrorIs(t, err, weather.ErrCacheMiss)
	})

	t.Run("empty snapshot is rejected", func(t *testing.T) {
		err := s.Put(ctx, weather.NewRawSnapshot([]byte("  "), time.Now()))
		assert.ErrorIs(t, err, ErrEmptySnapshot)
	})

	t.Run("round trip", func(t *testing.T) {
		want := sampleSnapshot()
		require.NoError(t, s.Put(ctx, want))

		got, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, want.Body, got.Body)
		assert.Equal(t, "02:15 pm", got.Time)
		assert.Equal(t, "07/04/24", got.Date)
	})

	t.Run("last write wins", func(t *testing.T) {
		newer := weather.NewRawSnapshot([]byte(`{"v":2}`), time.Date(2024, time.July, 5, 9, 0, 0, 0, time.Local))
		require.NoError(t, s.Put(ctx, newer))

		got, err := s.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, `{"v":2}`, string(got.Body))
		assert.Equal(t, "09:00 am", got.Time)
	})

	t.Run("concurrent writers leave one whole snapshot", func(t *testing.T) {
		var wg sync.WaitGroup
		bodies := make(map[string]bool)
		for i := 0; i < 8; i++ {
			body := fmt.Sprintf(`{"writer":%d,"pad":"%0200d"}`, i, i)
			bodies[body] = true
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, s.Put(ctx, weather.NewRawSnapshot([]byte(body), time.Now())))
			}()
		}
		wg.Wait()

		got, err := s.Get(ctx)
		require.NoError(t, err)
		assert.True(t, bodies[string(got.Body)], "unexpected body %q", got.Body)
	})
	t.Run("readers never see a partial snapshot", func(t *testing.T) {
		seed := weather.NewRawSnapshot([]byte(`{"seed":true}`), time.Now())
		require.NoError(t, s.Put(ctx, seed))

		bodies := map[string]bool{string(seed.Body): true}
		for i := 0; i < 4; i++ {
			bodies[fmt.Sprintf(`{"writer":%d,"pad":"%s"}`, i, strings.Repeat("x", 64<<10))] = true
		}

		var writers, readers sync.WaitGroup
		done := make(chan struct{})
		for body := range bodies {
			body := body
			writers.Add(1)
			go func() {
				defer writers.Done()
				for j := 0; j < 50; j++ {
					assert.NoError(t, s.Put(ctx, weather.NewRawSnapshot([]byte(body), time.Now())))
				}
			}()
		}

		var reads, bad atomic.Int64
		for i := 0; i < 4; i++ {
			readers.Add(1)
			go func() {
				defer readers.Done()
				for {
					got, err := s.Get(ctx)
					if !assert.NoError(t, err) {
						return
					}
					reads.Add(1)
					if !bodies[string(got.Body)] {
						bad.Add(1)
					}
					select {
					case <-done:
						return
					default:
					}
				}
			}()
		}

		writers.Wait()
		close(done)
		readers.Wait()

		assert.Positive(t, reads.Load())
		assert.Zero(t, bad.Load(), "reads returned a body no writer stored")
	})
}

func TestMemoryStore(t *testing.T) {
	contract(t, NewMemoryStore())
}

func TestFileStore(t *testing.T) {
	contract(t, NewFileStore(filepath.Join(t.TempDir(), CacheFileName)))
}

func TestRedisStore(t *testing.T) {
	_, s := setupRedis(t)
	contract(t, s)
}

func TestFileStoreUsesModTime(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFileName)
	require.NoError(t, os.WriteFile(path, sampleBody, 0o644))
	at := time.Date(2023, time.December, 31, 23, 45, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, at, at))

	got, err := NewFileStore(path).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "11:45 pm", got.Time)
	assert.Equal(t, "12/31/23", got.Date)
}

func TestFileStoreBlankFileMisses(t *testing.T) {
	path := filepath.Join(t.TempDir(), CacheFileName)
	require.NoError(t, os.WriteFile(path, []byte("\n"), 0o644))

	_, err := NewFileStore(path).Get(context.Background())
	assert.ErrorIs(t, err, weather.ErrCacheMiss)
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s := NewFileStore(filepath.Join(dir, CacheFileName))
	require.NoError(t, s.Put(context.Background(), sampleSnapshot()))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, CacheFileName, entries[0].Name())
}

func TestFileStoreUnwritableDir(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "missing", CacheFileName))
	err := s.Put(context.Background(), sampleSnapshot())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, weather.ErrCacheMiss)
}

func TestRedisStoreMissingTimeIsMiss(t *testing.T) {
	mr, s := setupRedis(t)
	require.NoError(t, mr.Set(s.bodyKey(), string(sampleBody)))

	_, err := s.Get(context.Background())
	assert.ErrorIs(t, err, weather.ErrCacheMiss)
}

func TestRedisStoreUnavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })
	s := NewRedisStore(client, "")

	_, err := s.Get(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, weather.ErrCacheMiss)
}

func TestNew(t *testing.T) {
	s, err := New(Options{Backend: BackendFile, Dir: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &FileStore{}, s)

	s, err = New(Options{Backend: BackendMemory})
	require.NoError(t, err)
	assert.IsType(t, &MemoryStore{}, s)

	s, err = New(Options{Backend: BackendRedis, Redis: &redis.Options{Addr: miniredis.RunT(t).Addr()}})
	require.NoError(t, err)
	assert.IsType(t, &RedisStore{}, s)

	_, err = New(Options{Backend: "sqlite"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
