package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/auth"
	"github.com/devmarvs/pmboard/session"
	"github.com/devmarvs/pmboard/testutil"
)

type stubSessionStore struct {
	session *session.Session
	err     error
	cleared bool
}

func (s *stubSessionStore) Get(*http.Request) (*session.Session, error) {
	return s.session, s.err
}

func (s *stubSessionStore) Save(http.ResponseWriter, *session.Session) error {
	return nil
}

func (s *stubSessionStore) Clear(http.ResponseWriter, *session.Session) {
	s.cleared = true
}

func TestSessionMiddlewareStoresSession(t *testing.T) {
	store := &stubSessionStore{session: session.New()}

	_, err := testutil.RunMiddleware(t, []pmboard.Middleware{Session(store)}, func(ctx *pmboard.Context) error {
		sess, ok := SessionFromContext(ctx)
		if !ok || sess == nil {
			t.Fatalf("expected session on context")
		}
		if _, ok := pmboard.PrincipalFromContext(ctx); ok {
			t.Fatalf("empty session must not yield a principal")
		}
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
}

func TestSessionMiddlewareLoadsPrincipal(t *testing.T) {
	store := session.NewMemoryStore("pmboard_session", time.Minute)
	sess, _ := store.Get(httptest.NewRequest(http.MethodGet, "/", nil))
	if err := sess.SetPrincipal(auth.Principal{Token: "tok", Role: auth.RoleAdmin, Name: "Ada", ID: 1}); err != nil {
		t.Fatalf("set principal: %v", err)
	}
	rec := httptest.NewRecorder()
	if err := sess.Save(rec); err != nil {
		t.Fatalf("save: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(rec.Result().Cookies()[0])
	_, err := testutil.RunMiddleware(t, []pmboard.Middleware{Session(store)}, func(ctx *pmboard.Context) error {
		principal, ok := pmboard.PrincipalFromContext(ctx)
		if !ok || principal.Name != "Ada" {
			t.Fatalf("expected principal from session, got %+v", principal)
		}
		return nil
	}, req)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
}

func TestSessionMiddlewareClearsInvalidCookie(t *testing.T) {
	store := &stubSessionStore{
		session: session.New(),
		err:     session.ErrInvalidCookie,
	}

	_, err := testutil.RunMiddleware(t, []pmboard.Middleware{Session(store)}, func(*pmboard.Context) error {
		return nil
	}, nil)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if !store.cleared {
		t.Fatalf("expected invalid cookie to be cleared")
	}
}

func TestSessionMiddlewareKeepsInvalidCookieWhenDisabled(t *testing.T) {
	store := &stubSessionStore{
		session: session.New(),
		err:     session.ErrInvalidCookie,
	}

	_, err := testutil.RunMiddleware(t, []pmboard.Middleware{Session(store, SessionClearInvalid(false))}, nil, nil)
	if err != nil {
		t.Fatalf("middleware error: %v", err)
	}
	if store.cleared {
		t.Fatalf("expected invalid cookie to be kept")
	}
}
