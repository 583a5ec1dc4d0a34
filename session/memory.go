package session

import (
	"container/heap"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"net/http"
	"sync"
	"time"
)

type memoryEntry struct {
	values    map[string]string
	expiresAt time.Time
}

type expirationEntry struct {
	id        string
	expiresAt time.Time
}

type expirationHeap []expirationEntry

func (h expirationHeap) Len() int {
	return len(h)
}

func (h expirationHeap) Less(i, j int) bool {
	return h[i].expiresAt.Before(h[j].expiresAt)
}

func (h expirationHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
}

func (h *expirationHeap) Push(x any) {
	*h = append(*h, x.(expirationEntry))
}

func (h *expirationHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// MemoryStore keeps sessions in process memory behind a random ID cookie.
type MemoryStore struct {
	CookieOptions
	TTL time.Duration

	mu          sync.RWMutex
	sessions    map[string]memoryEntry
	expirations expirationHeap
	now         func() time.Time
}

// MemoryOption configures a MemoryStore.
type MemoryOption func(*MemoryStore)

// WithCookieOptions replaces the cookie attributes.
func WithCookieOptions(options CookieOptions) MemoryOption {
	return func(store *MemoryStore) {
		if options.Name == "" {
			options.Name = store.Name
		}
		store.CookieOptions = options
	}
}

// WithSessionSecure sets the session cookie Secure flag.
func WithSessionSecure(enabled bool) MemoryOption {
	return func(store *MemoryStore) {
		store.Secure = enabled
	}
}

// NewMemoryStore creates an in-memory store.
func NewMemoryStore(name string, ttl time.Duration, options ...MemoryOption) *MemoryStore {
	store := &MemoryStore{
		CookieOptions: DefaultCookieOptions(name),
		TTL:           ttl,
		sessions:      map[string]memoryEntry{},
		now:           time.Now,
	}
	store.MaxAge = ttl
	for _, opt := range options {
		opt(store)
	}
	return store
}

// Get loads a session from the request.
func (s *MemoryStore) Get(r *http.Request) (*Session, error) {
	now := s.now()
	s.maybeCleanup(now)

	cookie, err := r.Cookie(s.Name)
	if err != nil || cookie.Value == "" {
		return s.fresh()
	}

	id := cookie.Value
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok || s.isExpired(entry, now) {
		if ok {
			s.mu.Lock()
			entry, ok = s.sessions[id]
			if ok && s.isExpired(entry, now) {
				delete(s.sessions, id)
			}
			s.mu.Unlock()
		}
		return s.fresh()
	}

	return &Session{ID: id, Values: copyValues(entry.values), store: s}, nil
}

func (s *MemoryStore) fresh() (*Session, error) {
	id, err := newSessionID()
	if err != nil {
		return nil, err
	}
	return &Session{ID: id, Values: map[string]string{}, store: s, isNew: true}, nil
}

// Save persists a session.
func (s *MemoryStore) Save(w http.ResponseWriter, session *Session) error {
	if session == nil {
		return errors.New("session missing")
	}
	id := session.ID
	if id == "" {
		newID, err := newSessionID()
		if err != nil {
			return err
		}
		id = newID
	}

	now := s.now()
	entry := memoryEntry{values: session.Snapshot()}
	s.mu.Lock()
	s.cleanupExpiredLocked(now)
	if s.TTL > 0 {
		entry.expiresAt = now.Add(s.TTL)
		heap.Push(&s.expirations, expirationEntry{id: id, expiresAt: entry.expiresAt})
	}
	s.sessions[id] = entry
	s.mu.Unlock()

	s.set(w, id, now)
	session.markSaved(id)
	return nil
}

// Clear removes a session.
func (s *MemoryStore) Clear(w http.ResponseWriter, session *Session) {
	if session != nil && session.ID != "" {
		s.mu.Lock()
		delete(s.sessions, session.ID)
		s.mu.Unlock()
	}

	s.clear(w)
	if session != nil {
		session.reset()
	}
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemoryStore) maybeCleanup(now time.Time) {
	if s.TTL <= 0 {
		return
	}
	s.mu.RLock()
	needsCleanup := len(s.expirations) > 0 && !s.expirations[0].expiresAt.After(now)
	s.mu.RUnlock()
	if !needsCleanup {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cleanupExpiredLocked(now)
}

func (s *MemoryStore) cleanupExpiredLocked(now time.Time) {
	if s.TTL <= 0 {
		return
	}
	for len(s.expirations) > 0 {
		entry := s.expirations[0]
		if entry.expiresAt.After(now) {
			break
		}
		heap.Pop(&s.expirations)
		stored, ok := s.sessions[entry.id]
		if !ok {
			continue
		}
		if !stored.expiresAt.Equal(entry.expiresAt) {
			continue
		}
		if s.isExpired(stored, now) {
			delete(s.sessions, entry.id)
		}
	}
}

func (s *MemoryStore) isExpired(entry memoryEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}

func newSessionID() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func copyValues(values map[string]string) map[string]string {
	out := make(map[string]string, len(values))
	for key, value := range values {
		out[key] = value
	}
	return out
}
