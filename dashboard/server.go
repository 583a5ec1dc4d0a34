// Package dashboard serves the admin, manager and developer views as JSON.
// Every view is gated by a static role set before it fetches anything, and
// list views run through listquery so stale or failed loads surface as view
// state instead of errors.
package dashboard

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/auth"
	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/config"
	"github.com/devmarvs/pmboard/flash"
	"github.com/devmarvs/pmboard/health"
	"github.com/devmarvs/pmboard/listquery"
	"github.com/devmarvs/pmboard/logging"
	"github.com/devmarvs/pmboard/middleware"
	"github.com/devmarvs/pmboard/session"
	"github.com/devmarvs/pmboard/suggest"
)

// Deps are the collaborators of a Server.
type Deps struct {
	Config   config.Config
	Backend  *backend.Client
	Sessions session.Store
	Lookup   *suggest.Lookup
	Health   *health.Registry
	// Tracer enables request spans when set.
	Tracer middleware.Tracer
	Logger *slog.Logger
}

// Server holds the dashboard handlers.
type Server struct {
	cfg      config.Config
	backend  *backend.Client
	sessions session.Store
	lookup   *suggest.Lookup
	health   *health.Registry
	tracer   middleware.Tracer
	logger   *slog.Logger
}

// New validates deps and builds a Server.
func New(deps Deps) (*Server, error) {
	if deps.Backend == nil {
		return nil, errors.New("dashboard: backend client is required")
	}
	if deps.Sessions == nil {
		return nil, errors.New("dashboard: session store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	lookup := deps.Lookup
	if lookup == nil {
		var err error
		lookup, err = suggest.NewLookup(deps.Backend, deps.Config.SuggestionCacheSize, logger)
		if err != nil {
			return nil, err
		}
	}
	registry := deps.Health
	if registry == nil {
		registry = health.New(health.WithService("pmboard"))
	}
	cfg := deps.Config
	if cfg.PageSize <= 0 {
		cfg.PageSize = listquery.DefaultPageSize
	}
	if cfg.TaskPageSize <= 0 {
		cfg.TaskPageSize = listquery.TaskPageSize
	}
	return &Server{
		cfg:      cfg,
		backend:  deps.Backend,
		sessions: deps.Sessions,
		lookup:   lookup,
		health:   registry,
		tracer:   deps.Tracer,
		logger:   logger,
	}, nil
}

// NewApp builds the gateway: global middleware, CORS and every route.
func NewApp(deps Deps) (*pmboard.App, error) {
	server, err := New(deps)
	if err != nil {
		return nil, err
	}
	app := pmboard.New(pmboard.WithConfig(server.cfg), pmboard.WithLogger(server.logger))
	server.Mount(app)
	return app, nil
}

// Mount installs middleware and routes on app. It must be called before
// any other route is registered.
func (s *Server) Mount(app *pmboard.App) {
	app.UseHTTP(middleware.CORS(s.cfg.CORSOrigins))
	app.Use(middleware.RequestID(), middleware.Recover(), middleware.Logger())
	if s.tracer != nil {
		app.Use(middleware.Trace(s.tracer))
	}
	app.Use(middleware.Session(s.sessions))

	for _, route := range s.routes() {
		var mw []pmboard.Middleware
		if len(route.Roles) > 0 {
			mw = append(mw, middleware.Gate(route.Roles...))
		}
		app.Handle(route.Method, route.Path, route.handler, mw...)
	}
}

// sessionOf returns the request session loaded by middleware.Session.
func sessionOf(ctx *pmboard.Context) (*session.Session, error) {
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok {
		return nil, apperr.Internal("session not loaded", nil)
	}
	return sess, nil
}

// principalOf returns the gated principal.
func principalOf(ctx *pmboard.Context) (*auth.Principal, error) {
	principal, ok := pmboard.PrincipalFromContext(ctx)
	if !ok {
		return nil, apperr.Unauthorized("login required", nil)
	}
	return principal, nil
}

// notify queues a toast; a failure to queue never fails the request.
func (s *Server) notify(ctx *pmboard.Context, kind, text string) {
	sess, ok := middleware.SessionFromContext(ctx)
	if !ok || text == "" {
		return
	}
	if err := flash.Add(ctx.ResponseWriter, sess, flash.Message{Type: kind, Text: text}); err != nil {
		ctx.Logger().Debug("flash not saved", slog.String("error", err.Error()))
	}
}

// fail reports a failed upstream call as a toast and maps it to an HTTP
// error. Validation errors are returned as they are.
func (s *Server) fail(ctx *pmboard.Context, err error, fallback string) error {
	if apperr.Is(err, apperr.CodeValidation) {
		s.notify(ctx, flash.TypeWarning, apperr.As(err).Message)
		return err
	}
	s.notify(ctx, flash.TypeError, backend.UserMessage(err, fallback))
	return backend.AppError(err, fallback)
}

// listResponse is a list view snapshot plus view-specific extras.
type listResponse[T any] struct {
	listquery.Snapshot[T]
	Message  string           `json:"message,omitempty"`
	Projects []string         `json:"projects,omitempty"`
	Profile  *backend.Profile `json:"profile,omitempty"`
}

// failureText picks the toast for a failed list load.
type failureText func(error) string

func always(message string) failureText {
	return func(error) string { return message }
}

// byKind separates a backend refusal from a failure to reach it.
func byKind(rejected, transport string) failureText {
	return func(err error) string {
		if backend.IsKind(err, backend.KindServerRejected) {
			return rejected
		}
		return transport
	}
}

// serveList loads one page through view and renders its snapshot. A
// failed load still renders the snapshot, in the failed state, with the
// status of the mapped error.
func serveList[T any](s *Server, ctx *pmboard.Context, view *listquery.View[T], page int, failure failureText, decorate func(*listResponse[T])) error {
	defer view.Close()

	err := view.Load(ctx.Request.Context(), page)
	resp := listResponse[T]{Snapshot: view.Snapshot()}
	if decorate != nil {
		decorate(&resp)
	}
	if err == nil {
		return ctx.JSON(http.StatusOK, resp)
	}
	if apperr.Is(err, apperr.CodeValidation) {
		return err
	}

	message := failure(err)
	ctx.Logger().Warn("list load failed", slog.String("path", ctx.Request.URL.Path), slog.String("error", err.Error()))
	s.notify(ctx, flash.TypeError, message)
	resp.Message = message
	status := http.StatusBadGateway
	if appErr := apperr.As(backend.AppError(err, message)); appErr != nil {
		status = appErr.Status
	}
	return ctx.JSON(status, resp)
}

// pagination reads page and page_size query parameters.
func pagination(ctx *pmboard.Context, defaultSize int) (listquery.Pagination, error) {
	page, err := ctx.QueryInt("page", 1)
	if err != nil {
		return listquery.Pagination{}, err
	}
	size, err := ctx.QueryInt("page_size", defaultSize)
	if err != nil {
		return listquery.Pagination{}, err
	}
	return listquery.Pagination{Page: page, Size: size}.Normalize(), nil
}
