// Package fetch coordinates the cache, the AI gateway and the normalizer.
package fetch

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/matheuskafuri/techpulse/internal/ai"
	"github.com/matheuskafuri/techpulse/internal/cache"
	"github.com/matheuskafuri/techpulse/internal/domain"
	"github.com/matheuskafuri/techpulse/internal/normalize"
)

// DefaultTTL bounds how long a cached category is served without a refetch.
const DefaultTTL = 6 * time.Hour

// ErrEmptyQuery is returned before any network call when user input is blank.
var ErrEmptyQuery = errors.New("query is empty")

// Completer is the gateway contract the orchestrator depends on.
type Completer interface {
	Complete(ctx context.Context, req ai.Request) (json.RawMessage, error)
}

// Orchestrator serves the four user-facing operations. It is safe for
// concurrent use; concurrent misses on one category are not deduplicated
// and the last write wins.
type Orchestrator struct {
	gateway Completer
	store   cache.Store
	ttl     time.Duration
	version int
	now     func() time.Time
	logger  *zap.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

func WithTTL(d time.Duration) Option {
	return func(o *Orchestrator) {
		if d > 0 {
			o.ttl = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithSchemaVersion selects the cache key generation.
func WithSchemaVersion(v int) Option {
	return func(o *Orchestrator) {
		if v > 0 {
			o.version = v
		}
	}
}

func New(gateway Completer, store cache.Store, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		gateway: gateway,
		store:   store,
		ttl:     DefaultTTL,
		version: cache.DefaultSchemaVersion,
		now:     time.Now,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// CacheKey returns the storage key used for a category.
func (o *Orchestrator) CacheKey(c domain.Category) string {
	return cache.Key(string(c), o.version)
}

// FetchCategory returns the record for a cacheable category. A fresh cache
// entry is returned without a network call unless forceRefresh is set. A
// failed fetch leaves any existing entry in place.
func (o *Orchestrator) FetchCategory(ctx context.Context, c domain.Category, forceRefresh bool) (domain.Record, error) {
	req, err := categoryRequest(c, o.now())
	if err != nil {
		return nil, err
	}
	key := o.CacheKey(c)
	log := o.logger.With(zap.String("category", string(c)), zap.Bool("force", forceRefresh))

	if !forceRefresh {
		if e, ok := o.store.Read(ctx, key); ok && e.Fresh(o.now(), o.ttl) {
			rec, err := normalize.Normalize(c.Kind(), e.Data)
			if err == nil {
				log.Debug("cache hit", zap.Duration("age", e.Age(o.now())))
				return rec, nil
			}
			log.Warn("cached entry no longer normalizes; refetching", zap.Error(err))
		}
	}

	log.Info("fetching from AI backend")
	raw, err := o.gateway.Complete(ctx, req)
	if err != nil {
		log.Warn("fetch failed", zap.Error(err))
		return nil, errors.Wrapf(err, "fetching %s", c)
	}
	rec, err := normalize.Normalize(c.Kind(), raw)
	if err != nil {
		log.Warn("normalize failed", zap.Error(err))
		return nil, errors.Wrapf(err, "normalizing %s", c)
	}

	if err := o.store.Write(ctx, key, raw); err != nil {
		// The record is still good; it just will not be served from cache.
		log.Error("cache write failed", zap.Error(err))
	}
	return rec, nil
}

// Compare asks the backend for a row-by-row comparison of two phones.
func (o *Orchestrator) Compare(ctx context.Context, phone1, phone2 string) (domain.ComparisonResult, error) {
	phone1, phone2 = strings.TrimSpace(phone1), strings.TrimSpace(phone2)
	if phone1 == "" || phone2 == "" {
		return domain.ComparisonResult{}, ErrEmptyQuery
	}

	o.logger.Info("comparing phones", zap.String("phone1", phone1), zap.String("phone2", phone2))
	raw, err := o.gateway.Complete(ctx, compareRequest(phone1, phone2, o.now()))
	if err != nil {
		return domain.ComparisonResult{}, errors.Wrap(err, "comparing phones")
	}
	res, err := normalize.Comparison(raw, phone1, phone2)
	if err != nil {
		return domain.ComparisonResult{}, errors.Wrap(err, "normalizing comparison")
	}
	return res, nil
}

// SearchPhone returns the spec sheet of the phone named by query.
func (o *Orchestrator) SearchPhone(ctx context.Context, query string) (domain.PhoneSpecSheet, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.PhoneSpecSheet{}, ErrEmptyQuery
	}

	o.logger.Info("searching phone", zap.String("query", query))
	raw, err := o.gateway.Complete(ctx, searchRequest(query, o.now()))
	if err != nil {
		return domain.PhoneSpecSheet{}, errors.Wrap(err, "searching phone")
	}
	sheet, err := normalize.SpecSheet(domain.KindPhoneSearchResult, raw)
	if err != nil {
		return domain.PhoneSpecSheet{}, errors.Wrap(err, "normalizing search result")
	}
	if sheet.Name == "" {
		sheet.Name = query
	}
	return sheet, nil
}

// QueryStats returns market statistics for the phone named by query.
func (o *Orchestrator) QueryStats(ctx context.Context, query string) (domain.StatsResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return domain.StatsResult{}, ErrEmptyQuery
	}

	o.logger.Info("querying stats", zap.String("query", query))
	raw, err := o.gateway.Complete(ctx, statsRequest(query, o.now()))
	if err != nil {
		return domain.StatsResult{}, errors.Wrap(err, "querying stats")
	}
	res, err := normalize.Stats(raw, query)
	if err != nil {
		return domain.StatsResult{}, errors.Wrap(err, "normalizing stats")
	}
	return res, nil
}

// WarmAll fetches every cacheable category concurrently. Records that
// succeeded are returned even when another category failed.
func (o *Orchestrator) WarmAll(ctx context.Context, forceRefresh bool) (map[domain.Category]domain.Record, error) {
	var (
		mu  sync.Mutex
		g   errgroup.Group
		out = make(map[domain.Category]domain.Record, len(domain.Categories))
	)
	for _, c := range domain.Categories {
		g.Go(func() error {
			rec, err := o.FetchCategory(ctx, c, forceRefresh)
			if err != nil {
				return err
			}
			mu.Lock()
			out[c] = rec
			mu.Unlock()
			return nil
		})
	}
	return out, g.Wait()
}
