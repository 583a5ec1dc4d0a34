package pmboard

import "github.com/devmarvs/pmboard/auth"

const principalKey = "pmboard.principal"

// PrincipalFromContext extracts the principal loaded for this request.
func PrincipalFromContext(ctx *Context) (*auth.Principal, bool) {
	value, ok := ctx.Get(principalKey)
	if !ok {
		return nil, false
	}
	principal, ok := value.(*auth.Principal)
	return principal, ok && principal != nil
}

// SetPrincipal stores the principal in context storage.
func SetPrincipal(ctx *Context, principal *auth.Principal) {
	ctx.Set(principalKey, principal)
}
