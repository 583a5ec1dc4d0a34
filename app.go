// Package pmboard is the HTTP framework of the dashboard gateway: a chi-backed
// App with error-returning handlers, request-scoped logging and principals.
package pmboard

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/devmarvs/pmboard/apperr"
	"github.com/devmarvs/pmboard/config"
	"github.com/devmarvs/pmboard/logging"
)

// Handler handles a request and returns an error for centralized handling.
type Handler func(*Context) error

// Middleware wraps a handler with additional behavior.
type Middleware func(Handler) Handler

// ErrorHandler processes errors returned by handlers.
type ErrorHandler func(*Context, error)

// App is the main framework entrypoint.
type App struct {
	mux          chi.Router
	middleware   []Middleware
	logger       *slog.Logger
	config       config.Config
	errorHandler ErrorHandler
}

// Option customizes the app instance.
type Option func(*App)

// New creates a new App with defaults.
func New(options ...Option) *App {
	app := &App{
		mux:          chi.NewRouter(),
		config:       config.Default(),
		errorHandler: defaultErrorHandler,
	}

	for _, opt := range options {
		opt(app)
	}

	if app.logger == nil {
		app.logger = logging.NewLogger(logging.Options{Level: app.config.LogLevel, Format: app.config.LogFormat})
	}

	app.mux.NotFound(app.wrap(func(*Context) error {
		return apperr.NotFound("not found", nil)
	}, nil))
	app.mux.MethodNotAllowed(app.wrap(func(*Context) error {
		return apperr.New(apperr.CodeMethodNotAllowed, http.StatusMethodNotAllowed, "method not allowed", nil)
	}, nil))

	return app
}

// WithConfig overrides the default config.
func WithConfig(cfg config.Config) Option {
	return func(app *App) {
		app.config = cfg
	}
}

// WithLogger uses a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(app *App) {
		app.logger = logger
	}
}

// WithErrorHandler overrides the default error handler.
func WithErrorHandler(handler ErrorHandler) Option {
	return func(app *App) {
		app.errorHandler = handler
	}
}

// Config returns the app configuration.
func (a *App) Config() config.Config {
	return a.config
}

// Logger returns the base logger.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

// Use registers global middleware. Global middleware runs for every request,
// including unmatched ones, regardless of registration order.
func (a *App) Use(middleware ...Middleware) {
	a.middleware = append(a.middleware, middleware...)
}

// UseHTTP registers plain net/http middleware on the underlying router. It
// must be called before any route is registered.
func (a *App) UseHTTP(middleware ...func(http.Handler) http.Handler) {
	a.mux.Use(middleware...)
}

// GET registers a GET route.
func (a *App) GET(path string, handler Handler, middleware ...Middleware) {
	a.Handle(http.MethodGet, path, handler, middleware...)
}

// POST registers a POST route.
func (a *App) POST(path string, handler Handler, middleware ...Middleware) {
	a.Handle(http.MethodPost, path, handler, middleware...)
}

// PUT registers a PUT route.
func (a *App) PUT(path string, handler Handler, middleware ...Middleware) {
	a.Handle(http.MethodPut, path, handler, middleware...)
}

// DELETE registers a DELETE route.
func (a *App) DELETE(path string, handler Handler, middleware ...Middleware) {
	a.Handle(http.MethodDelete, path, handler, middleware...)
}

// Handle registers a route for an arbitrary method. Patterns use chi syntax,
// e.g. /developers/{id}.
func (a *App) Handle(method, path string, handler Handler, middleware ...Middleware) {
	a.mux.Method(method, path, a.wrap(handler, middleware))
}

func (a *App) wrap(handler Handler, middleware []Middleware) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := NewContext(w, r, a)

		h := handler
		for i := len(middleware) - 1; i >= 0; i-- {
			h = middleware[i](h)
		}
		for i := len(a.middleware) - 1; i >= 0; i-- {
			h = a.middleware[i](h)
		}

		if err := h(ctx); err != nil {
			a.errorHandler(ctx, err)
		}
	}
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

// Run starts the server and shuts down when the context is canceled.
func (a *App) Run(ctx context.Context) error {
	server := a.newServer()
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("server starting", slog.String("address", a.config.Address))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.config.ShutdownTimeout)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
		err := <-errCh
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		a.logger.Info("server stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// RunWithSignals starts the server and handles SIGINT/SIGTERM for shutdown.
func (a *App) RunWithSignals() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.Run(ctx)
}

func defaultErrorHandler(ctx *Context, err error) {
	appErr := apperr.As(err)
	status := http.StatusInternalServerError
	code := apperr.CodeInternal
	message := "internal server error"

	if appErr != nil {
		status = appErr.Status
		code = appErr.Code
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		ctx.Logger().Error("request failed", slog.String("code", code), slog.String("error", err.Error()))
	} else {
		ctx.Logger().Debug("request rejected", slog.String("code", code), slog.String("error", err.Error()))
	}

	if WantsJSON(ctx.Request) {
		body := map[string]any{"code": code, "message": message}
		if fields := fieldErrors(err); fields != nil {
			body["fields"] = fields
		}
		_ = ctx.JSON(status, map[string]any{"error": body})
		return
	}

	_ = ctx.Text(status, message)
}

// WantsJSON reports whether the client prefers JSON responses. Requests
// without an Accept header are treated as API clients.
func WantsJSON(r *http.Request) bool {
	accept := strings.ToLower(r.Header.Get("Accept"))
	if accept == "" || strings.Contains(accept, "application/json") {
		return true
	}
	return !strings.Contains(accept, "text/html")
}

// ShutdownTimeout returns the configured graceful shutdown timeout.
func (a *App) ShutdownTimeout() time.Duration {
	return a.config.ShutdownTimeout
}

func (a *App) newServer() *http.Server {
	return &http.Server{
		Addr:              a.config.Address,
		Handler:           a,
		ReadTimeout:       a.config.ReadTimeout,
		WriteTimeout:      a.config.WriteTimeout,
		IdleTimeout:       a.config.IdleTimeout,
		ReadHeaderTimeout: a.config.ReadHeaderTimeout,
		MaxHeaderBytes:    a.config.MaxHeaderBytes,
	}
}
