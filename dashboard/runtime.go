package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/devmarvs/pmboard"
	"github.com/devmarvs/pmboard/backend"
	"github.com/devmarvs/pmboard/config"
	"github.com/devmarvs/pmboard/health"
	"github.com/devmarvs/pmboard/httpclient"
	"github.com/devmarvs/pmboard/logging"
	"github.com/devmarvs/pmboard/otel"
	"github.com/devmarvs/pmboard/session"
	"github.com/devmarvs/pmboard/suggest"

	gootel "go.opentelemetry.io/otel"
)

// Runtime is a gateway wired from configuration.
type Runtime struct {
	App     *pmboard.App
	Backend *backend.Client
	Health  *health.Registry

	closers []func()
}

// Bootstrap builds the upstream client, the session store and the app.
// Close releases what it opened.
func Bootstrap(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Runtime, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = logging.Discard()
	}

	scheme, err := httpclient.ParseScheme(cfg.AuthScheme)
	if err != nil {
		return nil, err
	}
	clientOptions := httpclient.DefaultClientOptions()
	clientOptions.AuthScheme = scheme
	clientOptions.Timeout = cfg.RequestTimeout

	var tracer *otel.Tracer
	if cfg.Tracing {
		otel.Setup()
		provider := gootel.GetTracerProvider()
		clientOptions.TracerProvider = provider
		clientOptions.Propagator = otel.Propagator()
		tracer = otel.NewTracer(provider)
	}
	httpClient := httpclient.NewClient(clientOptions)

	client, err := backend.New(backend.Options{BaseURL: cfg.BackendURL, HTTPClient: httpClient, Logger: logger})
	if err != nil {
		return nil, err
	}

	rt := &Runtime{Backend: client}
	registry := health.New(health.WithService("pmboard"), health.WithTimeout(2*time.Second), health.WithLogger(logger))
	registry.Add("process", func(context.Context) error { return nil })
	registry.AddReady("backend", health.Upstream(httpClient, client.BaseURL()))
	rt.Health = registry

	store, err := rt.openStore(ctx, cfg, registry, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}

	lookup, err := suggest.NewLookup(client, cfg.SuggestionCacheSize, logger)
	if err != nil {
		rt.Close()
		return nil, err
	}

	deps := Deps{
		Config:   cfg,
		Backend:  client,
		Sessions: store,
		Lookup:   lookup,
		Health:   registry,
		Logger:   logger,
	}
	if tracer != nil {
		deps.Tracer = tracer
	}
	app, err := NewApp(deps)
	if err != nil {
		rt.Close()
		return nil, err
	}
	rt.App = app
	return rt, nil
}

func (rt *Runtime) openStore(ctx context.Context, cfg config.Config, registry *health.Registry, logger *slog.Logger) (session.Store, error) {
	switch strings.ToLower(cfg.SessionStore) {
	case "", config.SessionMemory:
		return session.NewMemoryStore(cfg.SessionName, cfg.SessionTTL, session.WithSessionSecure(cfg.SecureCookies)), nil
	case config.SessionCookie:
		store, err := session.NewCookieStore(cfg.SessionName, []byte(cfg.SessionKey))
		if err != nil {
			return nil, err
		}
		store.Secure = cfg.SecureCookies
		store.MaxAge = cfg.SessionTTL
		return store, nil
	case config.SessionPostgres:
		pool, err := session.OpenPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("session database: %w", err)
		}
		rt.closers = append(rt.closers, pool.Close)
		store, err := session.NewPostgresStore(session.PostgresOptions{
			DB:      pool,
			Name:    cfg.SessionName,
			TTL:     cfg.SessionTTL,
			Timeout: 5 * time.Second,
			Secure:  cfg.SecureCookies,
		})
		if err != nil {
			return nil, err
		}
		if err := store.EnsureTable(ctx); err != nil {
			return nil, fmt.Errorf("session table: %w", err)
		}
		if removed, err := store.Cleanup(ctx); err != nil {
			logger.Warn("expired session sweep failed", slog.String("error", err.Error()))
		} else if removed > 0 {
			logger.Info("expired sessions removed", slog.Int64("count", removed))
		}
		registry.AddReady("sessions", health.Ping(pool))
		return store, nil
	default:
		return nil, errors.New("unknown session store " + cfg.SessionStore)
	}
}

// Run serves until ctx is cancelled.
func (rt *Runtime) Run(ctx context.Context) error {
	return rt.App.Run(ctx)
}

// Close releases the session database, if any.
func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		rt.closers[i]()
	}
	rt.closers = nil
}
