package session

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"golang.org/x/crypto/hkdf"
	"golang.org/x/crypto/nacl/secretbox"
)

const (
	keySize   = 32
	nonceSize = 24
)

var cookieKeyInfo = []byte("pmboard session cookie v1")

// CookieStore keeps the whole session inside an encrypted cookie.
//
// The first secret seals new cookies; every secret is tried when opening,
// so old secrets can be kept around during rotation.
type CookieStore struct {
	CookieOptions

	keys [][keySize]byte
	now  func() time.Time
}

// NewCookieStore derives sealing keys from the given secrets.
func NewCookieStore(name string, secret []byte, oldSecrets ...[]byte) (*CookieStore, error) {
	if len(secret) == 0 {
		return nil, errors.New("session secret required")
	}
	store := &CookieStore{CookieOptions: DefaultCookieOptions(name), now: time.Now}
	for _, raw := range append([][]byte{secret}, oldSecrets...) {
		if len(raw) == 0 {
			continue
		}
		key, err := deriveKey(raw)
		if err != nil {
			return nil, err
		}
		store.keys = append(store.keys, key)
	}
	return store, nil
}

// Get loads a session from the request.
func (s *CookieStore) Get(r *http.Request) (*Session, error) {
	sess := &Session{Values: map[string]string{}, store: s, isNew: true}
	cookie, err := r.Cookie(s.Name)
	if err != nil || cookie.Value == "" {
		return sess, nil
	}

	values, err := s.open(cookie.Value)
	if err != nil {
		return sess, ErrInvalidCookie
	}
	sess.Values = values
	sess.isNew = false
	return sess, nil
}

// Save writes the sealed session cookie.
func (s *CookieStore) Save(w http.ResponseWriter, session *Session) error {
	if session == nil {
		return errors.New("session missing")
	}
	value, err := s.seal(session.Snapshot())
	if err != nil {
		return err
	}
	s.set(w, value, s.now())
	session.markSaved("")
	return nil
}

// Clear expires the session cookie.
func (s *CookieStore) Clear(w http.ResponseWriter, session *Session) {
	s.clear(w)
	if session != nil {
		session.reset()
	}
}

func (s *CookieStore) seal(values map[string]string) (string, error) {
	if len(s.keys) == 0 {
		return "", errors.New("session key required")
	}
	payload, err := json.Marshal(values)
	if err != nil {
		return "", err
	}

	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	sealed := secretbox.Seal(nonce[:], payload, &nonce, &s.keys[0])
	return base64.RawURLEncoding.EncodeToString(sealed), nil
}

func (s *CookieStore) open(value string) (map[string]string, error) {
	raw, err := base64.RawURLEncoding.DecodeString(value)
	if err != nil || len(raw) < nonceSize+secretbox.Overhead {
		return nil, ErrInvalidCookie
	}

	var nonce [nonceSize]byte
	copy(nonce[:], raw[:nonceSize])
	for i := range s.keys {
		payload, ok := secretbox.Open(nil, raw[nonceSize:], &nonce, &s.keys[i])
		if !ok {
			continue
		}
		values := map[string]string{}
		if err := json.Unmarshal(payload, &values); err != nil {
			return nil, ErrInvalidCookie
		}
		return values, nil
	}
	return nil, ErrInvalidCookie
}

func deriveKey(secret []byte) ([keySize]byte, error) {
	var key [keySize]byte
	reader := hkdf.New(sha256.New, secret, nil, cookieKeyInfo)
	if _, err := io.ReadFull(reader, key[:]); err != nil {
		return key, err
	}
	return key, nil
}
