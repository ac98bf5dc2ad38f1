package cache

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/pkg/errors"
)

// Memory is a process-local Store. Entries are lost on exit and the least
// recently used key is evicted once size is reached.
type Memory struct {
	mu    sync.Mutex
	items *lru.Cache[string, Entry]
	opts  options
}

func NewMemory(size int, opts ...Option) (*Memory, error) {
	if size <= 0 {
		size = 64
	}
	items, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, errors.Wrap(err, "creating lru")
	}
	return &Memory{items: items, opts: buildOptions(opts)}, nil
}

func (m *Memory) Read(_ context.Context, key string) (Entry, bool) {
	e, ok := m.items.Get(key)
	if !ok || !m.opts.accept(e) {
		return Entry{}, false
	}
	return e, true
}

func (m *Memory) Write(_ context.Context, key string, data json.RawMessage) error {
	if !json.Valid(data) {
		return errors.Errorf("refusing to cache invalid JSON under %q", key)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	ts := m.opts.now().UnixMilli()
	if prev, ok := m.items.Peek(key); ok && prev.Timestamp > ts {
		ts = prev.Timestamp
	}
	// Copy so later mutation of the caller's slice cannot leak in.
	buf := append(json.RawMessage(nil), data...)
	m.items.Add(key, Entry{Key: key, Data: buf, Timestamp: ts, Version: m.opts.version})
	return nil
}

func (m *Memory) List(_ context.Context) ([]Info, error) {
	var out []Info
	for _, k := range m.items.Keys() {
		if e, ok := m.items.Peek(k); ok {
			out = append(out, Info{Key: k, Timestamp: e.Timestamp, Version: e.Version, Size: len(e.Data)})
		}
	}
	sortInfos(out)
	return out, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.items.Remove(key)
	return nil
}

func (m *Memory) Close() error {
	m.items.Purge()
	return nil
}

func sortInfos(infos []Info) {
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
}
