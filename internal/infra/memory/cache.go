package infra_memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/Klaiveft/What2Watch/internal/model"
	usecase_movie "github.com/Klaiveft/What2Watch/internal/usecase/movie"
)

type entry[V any] struct {
	value   V
	expires time.Time
}

// ttlMap is a mutex guarded map whose entries vanish after their ttl.
// A zero ttl keeps the entry forever.
type ttlMap[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	now     func() time.Time
}

func newTTLMap[V any]() *ttlMap[V] {
	return &ttlMap[V]{
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

func (m *ttlMap[V]) alive(e entry[V]) bool {
	return e.expires.IsZero() || m.now().Before(e.expires)
}

func (m *ttlMap[V]) deadline(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return m.now().Add(ttl)
}

func (m *ttlMap[V]) get(key string) (V, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || !m.alive(e) {
		delete(m.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

func (m *ttlMap[V]) set(key string, value V, ttl time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = entry[V]{value: value, expires: m.deadline(ttl)}
}

// setNX stores value only when key is absent or expired.
func (m *ttlMap[V]) setNX(key string, value V, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if e, ok := m.entries[key]; ok && m.alive(e) {
		return false
	}
	m.entries[key] = entry[V]{value: value, expires: m.deadline(ttl)}
	return true
}

func (m *ttlMap[V]) touch(key string, ttl time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok || !m.alive(e) {
		return false
	}
	e.expires = m.deadline(ttl)
	m.entries[key] = e
	return true
}

func (m *ttlMap[V]) del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
}

// Sessions maps anonymous tokens to user ids.
type Sessions struct {
	m *ttlMap[string]
}

func NewSessions() *Sessions {
	return &Sessions{m: newTTLMap[string]()}
}

func (s *Sessions) Set(key string, value string, ttl time.Duration) error {
	s.m.set(key, value, ttl)
	return nil
}

// Get returns "" for unknown or expired tokens.
func (s *Sessions) Get(key string) (string, error) {
	v, _ := s.m.get(key)
	return v, nil
}

func (s *Sessions) Touch(key string, ttl time.Duration) error {
	s.m.touch(key, ttl)
	return nil
}

// Details caches movie metadata by tmdb id.
type Details struct {
	m   *ttlMap[model.MovieDetails]
	ttl time.Duration
}

func NewDetails(ttl time.Duration) *Details {
	return &Details{m: newTTLMap[model.MovieDetails](), ttl: ttl}
}

func (d *Details) Get(_ context.Context, tmdbID int64) (model.MovieDetails, error) {
	v, ok := d.m.get(detailsKey(tmdbID))
	if !ok {
		return model.MovieDetails{}, usecase_movie.ErrCacheMiss
	}
	return v, nil
}

func (d *Details) Set(_ context.Context, details model.MovieDetails) error {
	d.m.set(detailsKey(details.TMDBID), details, d.ttl)
	return nil
}

// Codes tracks room codes that are in use.
type Codes struct {
	m   *ttlMap[struct{}]
	ttl time.Duration
}

func NewCodes(ttl time.Duration) *Codes {
	return &Codes{m: newTTLMap[struct{}](), ttl: ttl}
}

func (c *Codes) Reserve(_ context.Context, code string) (bool, error) {
	return c.m.setNX(code, struct{}{}, c.ttl), nil
}

func (c *Codes) Release(_ context.Context, code string) error {
	c.m.del(code)
	return nil
}

func detailsKey(tmdbID int64) string {
	return strconv.FormatInt(tmdbID, 10)
}
