// Package session persists per-browser state, chiefly the authenticated
// principal, across requests.
package session

import (
	"errors"
	"net/http"
	"sync"
	"time"
)

var (
	// ErrInvalidCookie indicates an invalid or tampered session cookie.
	ErrInvalidCookie = errors.New("invalid session cookie")
	// ErrNoStore is returned when saving a detached session.
	ErrNoStore = errors.New("session store missing")
)

// Store loads and persists sessions for HTTP requests.
type Store interface {
	Get(r *http.Request) (*Session, error)
	Save(w http.ResponseWriter, session *Session) error
	Clear(w http.ResponseWriter, session *Session)
}

// Session holds string values for one client.
type Session struct {
	ID     string
	Values map[string]string

	mu    sync.RWMutex
	store Store
	isNew bool
}

// New returns a detached session that lives only in process memory. The
// desktop shell and CLI use it as their session holder.
func New() *Session {
	return &Session{Values: map[string]string{}, isNew: true}
}

// IsNew reports whether the session has never been saved.
func (s *Session) IsNew() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isNew
}

// Set sets a key value.
func (s *Session) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Values[key] = value
}

// Get returns a value.
func (s *Session) Get(key string) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.Values[key]
}

// Delete removes a key.
func (s *Session) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.Values, key)
}

// Snapshot returns a copy of all values.
func (s *Session) Snapshot() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyValues(s.Values)
}

// Save persists the session through its store.
func (s *Session) Save(w http.ResponseWriter) error {
	if s.store == nil {
		return ErrNoStore
	}
	return s.store.Save(w, s)
}

// Clear removes the session from its store. Detached sessions are emptied.
func (s *Session) Clear(w http.ResponseWriter) {
	if s.store == nil {
		s.reset()
		return
	}
	s.store.Clear(w, s)
}

// Renew drops the stored session and keeps its values; the next Save
// issues a fresh id. Call it whenever the principal changes.
func (s *Session) Renew(w http.ResponseWriter) {
	values := s.Snapshot()
	s.Clear(w)
	s.mu.Lock()
	s.Values = values
	s.mu.Unlock()
}

func (s *Session) reset() {
	s.mu.Lock()
	s.Values = map[string]string{}
	s.ID = ""
	s.isNew = true
	s.mu.Unlock()
}

func (s *Session) markSaved(id string) {
	s.mu.Lock()
	s.ID = id
	s.isNew = false
	s.mu.Unlock()
}

// CookieOptions are the cookie attributes shared by all stores.
type CookieOptions struct {
	Name     string
	Path     string
	MaxAge   time.Duration
	Secure   bool
	HTTPOnly bool
	SameSite http.SameSite
}

// DefaultCookieOptions returns HttpOnly, Lax, path "/" options.
func DefaultCookieOptions(name string) CookieOptions {
	if name == "" {
		name = "pmboard_session"
	}
	return CookieOptions{
		Name:     name,
		Path:     "/",
		HTTPOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func (o CookieOptions) set(w http.ResponseWriter, value string, now time.Time) {
	cookie := &http.Cookie{
		Name:     o.Name,
		Value:    value,
		Path:     o.Path,
		Secure:   o.Secure,
		HttpOnly: o.HTTPOnly,
		SameSite: o.SameSite,
	}
	if o.MaxAge > 0 {
		cookie.MaxAge = int(o.MaxAge.Seconds())
		cookie.Expires = now.Add(o.MaxAge)
	}
	http.SetCookie(w, cookie)
}

func (o CookieOptions) clear(w http.ResponseWriter) {
	if w == nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     o.Name,
		Value:    "",
		Path:     o.Path,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   o.Secure,
		HttpOnly: o.HTTPOnly,
		SameSite: o.SameSite,
	})
}
