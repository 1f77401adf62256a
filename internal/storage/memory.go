package storage

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// publishHistory is how many messages are retained per channel.
	publishHistory = 16
	sweepInterval  = time.Minute
)

// MemoryClient is a single-process RedisClient used when no Redis server is
// reachable and in tests. The last few published messages are kept per
// channel; expired keys are swept at most once per sweepInterval on writes.
type MemoryClient struct {
	mu        sync.Mutex
	values    map[string]string
	sets      map[string]map[string]float64
	expires   map[string]time.Time
	published map[string][]string
	lastSweep time.Time
	now       func() time.Time
}

func NewMemoryClient() *MemoryClient {
	return &MemoryClient{
		values:    make(map[string]string),
		sets:      make(map[string]map[string]float64),
		expires:   make(map[string]time.Time),
		published: make(map[string][]string),
		now:       time.Now,
	}
}

func (m *MemoryClient) expireLocked(key string) {
	if at, ok := m.expires[key]; ok && !m.now().Before(at) {
		delete(m.values, key)
		delete(m.sets, key)
		delete(m.expires, key)
	}
}

// sweepLocked drops every expired key.
func (m *MemoryClient) sweepLocked() {
	now := m.now()
	if now.Sub(m.lastSweep) < sweepInterval {
		return
	}
	m.lastSweep = now

	for key, at := range m.expires {
		if !now.Before(at) {
			delete(m.values, key)
			delete(m.sets, key)
			delete(m.expires, key)
		}
	}
}

func (m *MemoryClient) Set(_ context.Context, key string, value interface{}, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()

	switch v := value.(type) {
	case string:
		m.values[key] = v
	case []byte:
		m.values[key] = string(v)
	default:
		m.values[key] = fmt.Sprint(v)
	}
	delete(m.expires, key)
	if expiration > 0 {
		m.expires[key] = m.now().Add(expiration)
	}
	return nil
}

func (m *MemoryClient) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked(key)
	v, ok := m.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (m *MemoryClient) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, k := range keys {
		delete(m.values, k)
		delete(m.sets, k)
		delete(m.expires, k)
	}
	return nil
}

func (m *MemoryClient) Incr(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()
	m.expireLocked(key)
	n := int64(0)
	if v, ok := m.values[key]; ok {
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("value at %s is not an integer", key)
		}
		n = parsed
	}
	n++
	m.values[key] = strconv.FormatInt(n, 10)
	return n, nil
}

func (m *MemoryClient) Expire(_ context.Context, key string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()
	m.expires[key] = m.now().Add(expiration)
	return nil
}

func (m *MemoryClient) ZAdd(_ context.Context, key string, members ...redis.Z) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sweepLocked()
	m.expireLocked(key)
	set, ok := m.sets[key]
	if !ok {
		set = make(map[string]float64)
		m.sets[key] = set
	}
	for _, z := range members {
		set[fmt.Sprint(z.Member)] = z.Score
	}
	return nil
}

func (m *MemoryClient) ZRemRangeByScore(_ context.Context, key, min, max string) error {
	lo, err := parseScore(min)
	if err != nil {
		return err
	}
	hi, err := parseScore(max)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.sets[key]
	if !ok {
		return nil
	}
	for member, score := range set {
		if score >= lo && score <= hi {
			delete(set, member)
		}
	}
	if len(set) == 0 {
		delete(m.sets, key)
		delete(m.expires, key)
	}
	return nil
}

func (m *MemoryClient) ZCard(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.expireLocked(key)
	return int64(len(m.sets[key])), nil
}

func (m *MemoryClient) Publish(_ context.Context, channel string, message interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var text string
	switch v := message.(type) {
	case []byte:
		text = string(v)
	default:
		text = fmt.Sprint(v)
	}

	history := append(m.published[channel], text)
	if len(history) > publishHistory {
		history = append([]string(nil), history[len(history)-publishHistory:]...)
	}
	m.published[channel] = history
	return nil
}

// Published returns the most recent messages published on channel.
func (m *MemoryClient) Published(channel string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, len(m.published[channel]))
	copy(out, m.published[channel])
	return out
}

// Keys returns the number of live string and sorted-set keys.
func (m *MemoryClient) Keys() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.values) + len(m.sets)
}

func (m *MemoryClient) Ping(context.Context) error { return nil }

func (m *MemoryClient) Close() error { return nil }

func parseScore(s string) (float64, error) {
	switch s {
	case "-inf":
		return -1 << 62, nil
	case "+inf", "inf":
		return 1 << 62, nil
	}
	return strconv.ParseFloat(s, 64)
}
