package middleware

import (
	"errors"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/session"
)

const sessionKey = "pmboard.session"

type sessionConfig struct {
	clearInvalid bool
}

// SessionOption customizes session middleware behavior.
type SessionOption func(*sessionConfig)

// SessionClearInvalid clears invalid session cookies when enabled.
func SessionClearInvalid(enabled bool) SessionOption {
	return func(cfg *sessionConfig) {
		cfg.clearInvalid = enabled
	}
}

// Session loads the session, stores it on the request context and exposes
// its principal through pmboard.PrincipalFromContext.
func Session(store session.Store, options ...SessionOption) pmboard.Middleware {
	cfg := sessionConfig{clearInvalid: true}
	for _, opt := range options {
		opt(&cfg)
	}

	return func(next pmboard.Handler) pmboard.Handler {
		return func(ctx *pmboard.Context) error {
			if store == nil {
				return apperr.Internal("session store not configured", nil)
			}

			sess, err := store.Get(ctx.Request)
			if err != nil && !errors.Is(err, session.ErrInvalidCookie) {
				return apperr.Internal("session load failed", err)
			}
			if sess == nil {
				return apperr.Internal("session store returned no session", err)
			}
			if err != nil && cfg.clearInvalid {
				ctx.Logger().Debug("invalid session cookie cleared")
				store.Clear(ctx.ResponseWriter, sess)
			}

			ctx.Set(sessionKey, sess)
			if principal, ok := sess.Principal(); ok {
				pmboard.SetPrincipal(ctx, principal)
			}
			return next(ctx)
		}
	}
}

// SessionFromContext returns the loaded session.
func SessionFromContext(ctx *pmboard.Context) (*session.Session, bool) {
	value, ok := ctx.Get(sessionKey)
	if !ok {
		return nil, false
	}
	sess, ok := value.(*session.Session)
	return sess, ok && sess != nil
}

// SetSession stores a session in context for downstream handlers.
func SetSession(ctx *pmboard.Context, sess *session.Session) {
	ctx.Set(sessionKey, sess)
}
