package middleware

import (
	"log/slog"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/auth"
)

// RedirectHeader carries the gate's redirect target on JSON responses so an
// SPA can navigate without parsing the body.
const RedirectHeader = "X-Redirect-To"

// Gate consults auth.Decide before the handler runs, so a denied request
// never reaches a data fetch. Browsers get a 302 to the login or
// unauthorized page; JSON clients get 401 or 403.
//
// Session must run earlier in the chain.
func Gate(roles ...auth.Role) pmboard.Middleware {
	allowed := auth.Roles(roles...)
	return func(next pmboard.Handler) pmboard.Handler {
		return func(ctx *pmboard.Context) error {
			principal, _ := pmboard.PrincipalFromContext(ctx)
			decision := auth.Decide(principal, allowed)
			if decision == auth.Allow {
				return next(ctx)
			}

			ctx.Logger().Debug("access denied",
				slog.String("decision", decision.String()),
				slog.String("path", ctx.Request.URL.Path),
			)

			if !pmboard.WantsJSON(ctx.Request) {
				return ctx.Redirect(decision.Location())
			}
			ctx.ResponseWriter.Header().Set(RedirectHeader, decision.Location())
			if decision == auth.RedirectLogin {
				return apperr.Unauthorized("login required", nil)
			}
			return apperr.Forbidden("Unauthorized Access", nil)
		}
	}
}
