// Package session persists the signed-in viewer between dashboard runs.
package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/csongph/SMART-VILLAGE-MANAGEMENT-PROJECT/internal/models"
)

// ErrNoSession is returned by Load when nothing is stored or the stored
// profile has expired.
var ErrNoSession = errors.New("no active session")

// Profile is the viewer snapshot kept while signed in.
type Profile struct {
	Viewer   models.Viewer `json:"viewer"`
	Name     string        `json:"name"`
	Username string        `json:"username"`
	Token    string        `json:"token"`
	SavedAt  time.Time     `json:"saved_at"`
}

// Store keeps one profile per key with a time to live.
type Store interface {
	Save(ctx context.Context, key string, p Profile) error
	Load(ctx context.Context, key string) (Profile, error)
	Clear(ctx context.Context, key string) error
}

// MemoryStore is a process-local Store.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu       sync.Mutex
	profiles map[string]Profile
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates a store whose profiles expire after ttl.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now, profiles: make(map[string]Profile)}
}

func (s *MemoryStore) Save(_ context.Context, key string, p Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.SavedAt = s.now()
	s.profiles[key] = p
	return nil
}

func (s *MemoryStore) Load(_ context.Context, key string) (Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[key]
	if !ok {
		return Profile{}, ErrNoSession
	}
	if s.ttl > 0 && s.now().Sub(p.SavedAt) >= s.ttl {
		delete(s.profiles, key)
		return Profile{}, ErrNoSession
	}
	return p, nil
}

func (s *MemoryStore) Clear(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.profiles, key)
	return nil
}
