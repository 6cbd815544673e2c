package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/routing"
)

// RouterService is the name the router is resolved under.
const RouterService = "router"

// shutdownTimeout bounds graceful shutdown in Run.
const shutdownTimeout = 10 * time.Second

// Application is the built container plus its providers. The embedded
// container makes app.Get, app.Factory() and friends available directly.
type Application struct {
	*container.Container
	Providers *ProviderRegistry
}

// New runs the providers' Register phase against b, builds the container and
// returns the application. Call Boot (or Run) afterwards.
//
//	application, err := app.New(app.NewBuilder(classes), &providers.RoutingServiceProvider{})
func New(b *Builder, providers ...ServiceProvider) (*Application, error) {
	registry := NewProviderRegistry()
	registry.Add(providers...)
	if err := registry.Register(b); err != nil {
		return nil, fmt.Errorf("app: registering providers: %w", err)
	}

	c, err := b.Build()
	if err != nil {
		return nil, err
	}
	return &Application{Container: c, Providers: registry}, nil
}

// Boot runs the Boot phase on all providers.
func (a *Application) Boot() error {
	return a.Providers.Boot(a.Container)
}

// Config resolves *config.Config from the container.
func (a *Application) Config() *config.Config {
	return container.MustResolve[*config.Config](a.Container, ConfigService)
}

// Logger resolves the application logger.
func (a *Application) Logger() *zap.Logger {
	return container.MustResolve[*zap.Logger](a.Container, LogService)
}

// Router resolves *routing.Router from the container.
func (a *Application) Router() (*routing.Router, error) {
	return container.Resolve[*routing.Router](a.Container, RouterService)
}

// Run boots the application (if needed) and serves HTTP on APP_PORT until ctx
// is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if !a.Providers.Booted() {
		if err := a.Boot(); err != nil {
			return err
		}
	}
	router, err := a.Router()
	if err != nil {
		return err
	}
	cfg := a.Config()
	logger := a.Logger()

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	logger.Info("server started",
		zap.String("app", cfg.App.Name),
		zap.String("addr", srv.Addr),
		zap.String("env", cfg.App.Env),
	)

	select {
	case err := <-errc:
		return fmt.Errorf("app: server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	_ = logger.Sync()
	return nil
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config().App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config().App.Debug }
