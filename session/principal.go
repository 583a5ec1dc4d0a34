package session

import (
	"strconv"

	"github.com/devmarvs/pmboard/auth"
)

// Keys under which the principal is stored.
const (
	KeyToken = "token"
	KeyRole  = "role"
	KeyName  = "name"
	KeyID    = "id"
)

var principalKeys = []string{KeyToken, KeyRole, KeyName, KeyID}

// SetPrincipal writes all four principal fields. A partial principal is
// rejected and leaves the session untouched.
func (s *Session) SetPrincipal(principal auth.Principal) error {
	if err := principal.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Values[KeyToken] = principal.Token
	s.Values[KeyRole] = string(principal.Role)
	s.Values[KeyName] = principal.Name
	s.Values[KeyID] = strconv.FormatInt(principal.ID, 10)
	return nil
}

// Principal returns the stored principal, or false when any field is
// missing or malformed.
func (s *Session) Principal() (*auth.Principal, bool) {
	s.mu.RLock()
	token := s.Values[KeyToken]
	role := s.Values[KeyRole]
	name := s.Values[KeyName]
	rawID := s.Values[KeyID]
	s.mu.RUnlock()

	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		return nil, false
	}
	parsedRole, err := auth.ParseRole(role)
	if err != nil {
		return nil, false
	}
	principal := auth.Principal{Token: token, Role: parsedRole, Name: name, ID: id}
	if principal.Validate() != nil {
		return nil, false
	}
	return &principal, true
}

// ClearPrincipal removes all principal fields and leaves other values.
func (s *Session) ClearPrincipal() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range principalKeys {
		delete(s.Values, key)
	}
}

// HasRole reports whether the stored principal has role.
func (s *Session) HasRole(role auth.Role) bool {
	principal, ok := s.Principal()
	return ok && auth.HasRole(principal, role)
}
