package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/auth"
	"github.com/devmarvs/pmboard/testutil"
)

func withPrincipal(principal *auth.Principal) pmboard.Middleware {
	return func(next pmboard.Handler) pmboard.Handler {
		return func(ctx *pmboard.Context) error {
			if principal != nil {
				pmboard.SetPrincipal(ctx, principal)
			}
			return next(ctx)
		}
	}
}

func TestGateDecisions(t *testing.T) {
	manager := &auth.Principal{Token: "tok", Role: auth.RoleManager, Name: "Mia", ID: 2}

	browser := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		req.Header.Set("Accept", "text/html")
		return req
	}

	testutil.RunMiddlewareCases(t, []testutil.MiddlewareCase{
		{
			Name:       "allow",
			Middleware: []pmboard.Middleware{withPrincipal(manager), Gate(auth.RoleManager)},
			Handler: func(ctx *pmboard.Context) error {
				return ctx.Text(http.StatusOK, "ok")
			},
			Assert: func(t *testing.T, rec *httptest.ResponseRecorder, err error) {
				if err != nil || rec.Code != http.StatusOK {
					t.Fatalf("expected handler to run, got %d %v", rec.Code, err)
				}
			},
		},
		{
			Name:       "browser without session",
			Middleware: []pmboard.Middleware{withPrincipal(nil), Gate(auth.RoleAdmin)},
			Request:    browser(),
			Handler:    failIfCalled(t),
			Assert: func(t *testing.T, rec *httptest.ResponseRecorder, err error) {
				if err != nil || rec.Code != http.StatusFound || rec.Header().Get("Location") != "/" {
					t.Fatalf("expected redirect to login, got %d %q %v", rec.Code, rec.Header().Get("Location"), err)
				}
			},
		},
		{
			Name:       "browser wrong role",
			Middleware: []pmboard.Middleware{withPrincipal(manager), Gate(auth.RoleAdmin)},
			Request:    browser(),
			Handler:    failIfCalled(t),
			Assert: func(t *testing.T, rec *httptest.ResponseRecorder, err error) {
				if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/unauthorized" {
					t.Fatalf("expected redirect to unauthorized, got %d %q", rec.Code, rec.Header().Get("Location"))
				}
			},
		},
		{
			Name:       "json without session",
			Middleware: []pmboard.Middleware{withPrincipal(nil), Gate(auth.RoleAdmin)},
			Handler:    failIfCalled(t),
			Assert: func(t *testing.T, rec *httptest.ResponseRecorder, err error) {
				if !apperr.Is(err, apperr.CodeUnauthorized) {
					t.Fatalf("expected unauthorized error, got %v", err)
				}
				testutil.MustHeader(t, rec, RedirectHeader, "/")
			},
		},
		{
			Name:       "json wrong role",
			Middleware: []pmboard.Middleware{withPrincipal(manager), Gate(auth.RoleDeveloper)},
			Handler:    failIfCalled(t),
			Assert: func(t *testing.T, rec *httptest.ResponseRecorder, err error) {
				if !apperr.Is(err, apperr.CodeForbidden) {
					t.Fatalf("expected forbidden error, got %v", err)
				}
				testutil.MustHeader(t, rec, RedirectHeader, "/unauthorized")
			},
		},
		{
			Name:       "any listed role",
			Middleware: []pmboard.Middleware{withPrincipal(manager), Gate(auth.RoleAdmin, auth.RoleManager)},
			Assert: func(t *testing.T, _ *httptest.ResponseRecorder, err error) {
				if err != nil {
					t.Fatalf("expected access, got %v", err)
				}
			},
		},
	})
}

func failIfCalled(t *testing.T) pmboard.Handler {
	return func(*pmboard.Context) error {
		t.Errorf("handler must not run when the gate denies access")
		return nil
	}
}
