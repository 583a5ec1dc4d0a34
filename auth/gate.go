package auth

// Decision is the routing outcome of the access gate.
type Decision int

const (
	Allow Decision = iota
	RedirectLogin
	RedirectUnauthorized
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case RedirectLogin:
		return "redirect_login"
	case RedirectUnauthorized:
		return "redirect_unauthorized"
	default:
		return "unknown"
	}
}

// Location returns the redirect target, or "" for Allow.
func (d Decision) Location() string {
	switch d {
	case RedirectLogin:
		return LoginPath
	case RedirectUnauthorized:
		return UnauthorizedPath
	default:
		return ""
	}
}

// Decide is the access gate. It is pure and total and must run before a
// protected view performs any data fetch.
func Decide(principal *Principal, allowed RoleSet) Decision {
	if principal == nil {
		return RedirectLogin
	}
	if !HasAnyRole(principal, allowed...) {
		return RedirectUnauthorized
	}
	return Allow
}
