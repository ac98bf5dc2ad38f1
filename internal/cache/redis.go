package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisPrefix = "techpulse:"

// writeScript keeps the larger of the stored and the new timestamp.
var writeScript = redis.NewScript(`
local cur = redis.call('HGET', KEYS[1], 'timestamp')
local ts = ARGV[2]
if cur and tonumber(cur) > tonumber(ts) then
	ts = cur
end
redis.call('HSET', KEYS[1], 'data', ARGV[1], 'timestamp', ts, 'version', ARGV[3])
return ts
`)

// Redis is a Store backed by one hash per entry.
type Redis struct {
	client *redis.Client
	opts   options
}

// OpenRedis connects to the server at url and verifies it answers.
func OpenRedis(ctx context.Context, url string, opts ...Option) (*Redis, error) {
	ro, err := redis.ParseURL(url)
	if err != nil {
		return nil, errors.Wrap(err, "parsing redis url")
	}
	client := redis.NewClient(ro)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrap(err, "connecting to redis")
	}
	return NewRedis(client, opts...), nil
}

// NewRedis wraps an existing client.
func NewRedis(client *redis.Client, opts ...Option) *Redis {
	return &Redis{client: client, opts: buildOptions(opts)}
}

func (r *Redis) Close() error {
	return r.client.Close()
}

func (r *Redis) Read(ctx context.Context, key string) (Entry, bool) {
	fields, err := r.client.HGetAll(ctx, redisPrefix+key).Result()
	if err != nil {
		r.opts.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		return Entry{}, false
	}
	if len(fields) == 0 {
		return Entry{}, false
	}
	e, ok := decodeHash(key, fields)
	if !ok {
		r.opts.logger.Debug("discarding malformed cache hash", zap.String("key", key))
		return Entry{}, false
	}
	if !r.opts.accept(e) {
		return Entry{}, false
	}
	return e, true
}

func decodeHash(key string, fields map[string]string) (Entry, bool) {
	ts, err := strconv.ParseInt(fields["timestamp"], 10, 64)
	if err != nil {
		return Entry{}, false
	}
	v, err := strconv.Atoi(fields["version"])
	if err != nil {
		return Entry{}, false
	}
	return Entry{Key: key, Data: json.RawMessage(fields["data"]), Timestamp: ts, Version: v}, true
}

// Write stores data under key. The stored timestamp never moves backwards.
func (r *Redis) Write(ctx context.Context, key string, data json.RawMessage) error {
	if !json.Valid(data) {
		return errors.Errorf("refusing to cache invalid JSON under %q", key)
	}
	ts := strconv.FormatInt(r.opts.now().UnixMilli(), 10)
	err := writeScript.Run(ctx, r.client, []string{redisPrefix + key},
		string(data), ts, strconv.Itoa(r.opts.version)).Err()
	if err != nil {
		return errors.Wrapf(err, "writing cache entry %s", key)
	}
	return nil
}

func (r *Redis) List(ctx context.Context) ([]Info, error) {
	var out []Info
	iter := r.client.Scan(ctx, 0, redisPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		full := iter.Val()
		key := strings.TrimPrefix(full, redisPrefix)
		fields, err := r.client.HGetAll(ctx, full).Result()
		if err != nil {
			return nil, errors.Wrapf(err, "reading %s", key)
		}
		e, ok := decodeHash(key, fields)
		if !ok {
			continue
		}
		out = append(out, Info{Key: key, Timestamp: e.Timestamp, Version: e.Version, Size: len(e.Data)})
	}
	if err := iter.Err(); err != nil {
		return nil, errors.Wrap(err, "listing cache entries")
	}
	sortInfos(out)
	return out, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, redisPrefix+key).Err(); err != nil {
		return errors.Wrapf(err, "deleting cache entry %s", key)
	}
	return nil
}
