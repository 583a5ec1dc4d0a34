package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/auth"
	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/flash"
)

// MsgLoginFailed is shown when the backend gives no reason.
const MsgLoginFailed = "Something went wrong. Please try again."

type loginResponse struct {
	Message  string         `json:"message"`
	Redirect string         `json:"redirect"`
	User     auth.Principal `json:"user"`
}

type sessionResponse struct {
	Authenticated bool            `json:"authenticated"`
	User          *auth.Principal `json:"user,omitempty"`
	Home          string          `json:"home"`
}

func (s *Server) healthz(ctx *pmboard.Context) error {
	s.health.Handler().ServeHTTP(ctx.ResponseWriter, ctx.Request)
	return nil
}

func (s *Server) readyz(ctx *pmboard.Context) error {
	s.health.ReadyHandler().ServeHTTP(ctx.ResponseWriter, ctx.Request)
	return nil
}

// landing is the login page target. A logged-in browser is sent home.
func (s *Server) landing(ctx *pmboard.Context) error {
	principal, ok := pmboard.PrincipalFromContext(ctx)
	if ok && !pmboard.WantsJSON(ctx.Request) {
		return ctx.Redirect(principal.Role.HomePath())
	}
	return s.currentSession(ctx)
}

func (s *Server) login(ctx *pmboard.Context) error {
	sess, err := sessionOf(ctx)
	if err != nil {
		return err
	}
	var creds backend.Credentials
	if err := ctx.BindJSON(&creds); err != nil {
		return err
	}

	result, err := s.backend.Login(ctx.Request.Context(), creds)
	if err != nil {
		ctx.Logger().Info("login refused", slog.String("error", err.Error()))
		return s.fail(ctx, err, MsgLoginFailed)
	}

	// A new identity gets a new session id; the old one is dropped.
	sess.Renew(ctx.ResponseWriter)
	sess.ClearPrincipal()
	if err := sess.SetPrincipal(result.Principal); err != nil {
		return apperr.Internal("session update failed", err)
	}
	if err := flash.Success(ctx.ResponseWriter, sess, result.Message); err != nil {
		return apperr.Internal("session save failed", err)
	}
	return ctx.JSON(http.StatusOK, loginResponse{
		Message:  result.Message,
		Redirect: result.Principal.Role.HomePath(),
		User:     result.Principal.Public(),
	})
}

func (s *Server) logout(ctx *pmboard.Context) error {
	sess, err := sessionOf(ctx)
	if err != nil {
		return err
	}
	sess.Clear(ctx.ResponseWriter)
	if !pmboard.WantsJSON(ctx.Request) {
		return ctx.Redirect(auth.LoginPath)
	}
	return ctx.JSON(http.StatusOK, map[string]string{"redirect": auth.LoginPath})
}

func (s *Server) currentSession(ctx *pmboard.Context) error {
	principal, ok := pmboard.PrincipalFromContext(ctx)
	if !ok {
		return ctx.JSON(http.StatusOK, sessionResponse{Home: auth.LoginPath})
	}
	public := principal.Public()
	return ctx.JSON(http.StatusOK, sessionResponse{
		Authenticated: true,
		User:          &public,
		Home:          principal.Role.HomePath(),
	})
}

func (s *Server) me(ctx *pmboard.Context) error {
	principal, err := principalOf(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, principal.Public())
}

func (s *Server) notifications(ctx *pmboard.Context) error {
	sess, err := sessionOf(ctx)
	if err != nil {
		return err
	}
	messages, err := flash.Pop(ctx.ResponseWriter, sess)
	if err != nil {
		return apperr.Internal("flash read failed", err)
	}
	return ctx.JSON(http.StatusOK, map[string]any{"messages": messages})
}

func (s *Server) unauthorized(ctx *pmboard.Context) error {
	return ctx.JSON(http.StatusForbidden, map[string]string{
		"message": "Unauthorized Access",
		"home":    homeOf(ctx),
	})
}

func homeOf(ctx *pmboard.Context) string {
	if principal, ok := pmboard.PrincipalFromContext(ctx); ok {
		return principal.Role.HomePath()
	}
	return auth.LoginPath
}
