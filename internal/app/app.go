// Package app initializes and holds the long-lived application services.
package app

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/pageparse/crawler/internal/api"
	"github.com/pageparse/crawler/internal/backend"
	"github.com/pageparse/crawler/internal/config"
	"github.com/pageparse/crawler/internal/sites/amazon"
)

// App wires configuration, the backend handle factory and the HTTP surface.
type App struct {
	logger *zap.Logger
	cfg    config.Config
	server *api.Server
}

// New builds the application. The configured backend profile becomes the
// factory behind every registered site provider, so the first session of a
// type pays the connection cost and the rest share the handle.
func New(cfg config.Config, logger *zap.Logger) *App {
	factory := backendFactory(cfg, logger)
	amazon.Provider.Factory = factory

	sites := map[string]api.SessionFactory{
		"amazon_book": amazon.Book,
	}

	return &App{
		logger: logger,
		cfg:    cfg,
		server: api.NewServer(logger, sites),
	}
}

// Handler returns the HTTP handler for the service.
func (a *App) Handler() http.Handler {
	return a.server.Handler()
}

// Logger returns the shared logger.
func (a *App) Logger() *zap.Logger {
	return a.logger
}

// backendFactory maps the configured profile name onto one of the named
// backend constructors. Each profile is its own construction path so a
// crawler type can swap the factory wholesale.
func backendFactory(cfg config.Config, logger *zap.Logger) func() backend.Handle {
	addr := cfg.Backend.Addr
	port := cfg.Backend.Port
	switch cfg.Backend.Profile {
	case config.ProfileVisible:
		return func() backend.Handle { return backend.NewRemoteChrome(addr, port, logger) }
	case config.ProfileNoScript:
		return func() backend.Handle { return backend.NewRemoteChromeNoScript(addr, port, logger) }
	case config.ProfileHeadlessNoScript:
		return func() backend.Handle { return backend.NewRemoteChromeHeadlessNoScript(addr, port, logger) }
	default:
		return func() backend.Handle { return backend.NewRemoteChromeHeadless(addr, port, logger) }
	}
}
