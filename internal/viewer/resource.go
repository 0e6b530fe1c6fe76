package viewer

import (
	"errors"
	"path"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrStoreClosed is returned by Create after Close.
var ErrStoreClosed = errors.New("resource store is closed")

// Resource is a transient, locally addressable handle to decoded bytes. It
// stays valid until revoked.
type Resource struct {
	ID        string    `json:"id"`
	URL       string    `json:"url"`
	MimeType  string    `json:"mimeType"`
	Size      int       `json:"size"`
	CreatedAt time.Time `json:"createdAt"`
}

// Stats summarises a ResourceStore.
type Stats struct {
	Live      int    `json:"live"`
	LiveBytes int    `json:"liveBytes"`
	Created   uint64 `json:"created"`
	Revoked   uint64 `json:"revoked"`
}

type entry struct {
	resource Resource
	data     []byte
}

// ResourceStore hands out transient resources and serves their bytes until
// they are revoked.
type ResourceStore struct {
	prefix string

	mu      sync.RWMutex
	entries map[string]entry
	created uint64
	revoked uint64
	closed  bool
}

// NewResourceStore creates a store whose resource URLs live under prefix.
func NewResourceStore(prefix string) *ResourceStore {
	return &ResourceStore{
		prefix:  prefix,
		entries: make(map[string]entry),
	}
}

// Create registers data under a new resource. The store keeps data as is;
// callers must not modify it afterwards.
func (s *ResourceStore) Create(mimeType string, data []byte) (Resource, error) {
	id := uuid.NewString()
	res := Resource{
		ID:        id,
		URL:       path.Join(s.prefix, id),
		MimeType:  mimeType,
		Size:      len(data),
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Resource{}, ErrStoreClosed
	}

	s.entries[id] = entry{resource: res, data: data}
	s.created++
	return res, nil
}

// Open returns a live resource and its bytes. The bytes are shared and must
// be treated as read-only.
func (s *ResourceStore) Open(id string) (Resource, []byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[id]
	if !ok {
		return Resource{}, nil, false
	}
	return e.resource, e.data, true
}

// Revoke releases a resource. It reports true only for the call that
// actually released it.
func (s *ResourceStore) Revoke(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[id]; !ok {
		return false
	}
	delete(s.entries, id)
	s.revoked++
	return true
}

// Len returns the number of live resources.
func (s *ResourceStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *ResourceStore) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	st := Stats{
		Live:    len(s.entries),
		Created: s.created,
		Revoked: s.revoked,
	}
	for _, e := range s.entries {
		st.LiveBytes += len(e.data)
	}
	return st
}

// Close revokes every live resource and refuses new ones.
func (s *ResourceStore) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.revoked += uint64(len(s.entries))
	s.entries = make(map[string]entry)
	s.closed = true
}
