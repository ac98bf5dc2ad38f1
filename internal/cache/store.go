package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Entry is a cached payload with the time it was written.
type Entry struct {
	Key       string          `json:"-"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"` // epoch millis
	Version   int             `json:"version"`
}

// WrittenAt returns the write time of the entry.
func (e Entry) WrittenAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// Age returns how long ago the entry was written.
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.WrittenAt())
}

// Fresh reports whether the entry is younger than ttl.
func (e Entry) Fresh(now time.Time, ttl time.Duration) bool {
	return now.UnixMilli()-e.Timestamp < ttl.Milliseconds()
}

// Info describes a stored entry without its payload.
type Info struct {
	Key       string
	Timestamp int64
	Version   int
	Size      int
}

// Store is a durable key to entry map. Freshness is the caller's policy:
// Read returns raw entries regardless of age.
type Store interface {
	// Read never fails; a missing, unparseable, or foreign-version entry is
	// reported as absent.
	Read(ctx context.Context, key string) (Entry, bool)
	// Write overwrites the entry under key. It returns once the entry is
	// durable in the backing medium.
	Write(ctx context.Context, key string, data json.RawMessage) error
	List(ctx context.Context) ([]Info, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Key builds the storage key for a category at a schema version.
func Key(category string, version int) string {
	return fmt.Sprintf("%s_v%d", category, version)
}

// DefaultSchemaVersion is bumped whenever a cached payload shape changes.
const DefaultSchemaVersion = 3

type options struct {
	now     func() time.Time
	logger  *zap.Logger
	version int
}

// Option configures a Store.
type Option func(*options)

// WithClock replaces time.Now for write timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the logger used for discarded entries.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSchemaVersion sets the version stamped on writes and required on reads.
func WithSchemaVersion(v int) Option {
	return func(o *options) {
		if v > 0 {
			o.version = v
		}
	}
}

func buildOptions(opts []Option) options {
	o := options{
		now:     time.Now,
		logger:  zap.NewNop(),
		version: DefaultSchemaVersion,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// accept applies the shared read-side validation to a decoded entry.
func (o options) accept(e Entry) bool {
	if e.Version != o.version {
		o.logger.Debug("discarding cache entry from another schema version",
			zap.String("key", e.Key), zap.Int("version", e.Version), zap.Int("want", o.version))
		return false
	}
	if len(e.Data) == 0 || !json.Valid(e.Data) {
		o.logger.Debug("discarding unparseable cache entry", zap.String("key", e.Key))
		return false
	}
	return true
}

// Open selects a backend by name.
func Open(ctx context.Context, backend, target string, memorySize int, opts ...Option) (Store, error) {
	var (
		s   Store
		err error
	)
	switch backend {
	case "", "sqlite":
		s, err = OpenSQLite(target, opts...)
	case "redis":
		s, err = OpenRedis(ctx, target, opts...)
	case "memory":
		s, err = NewMemory(memorySize, opts...)
	default:
		return nil, fmt.Errorf("unknown cache backend: %q (valid: sqlite, redis, memory)", backend)
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}
