package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/routing"
)

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider registers the HTTP router and lets the application
// declare its routes once the container is built.
//
// Services:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	// Routes declares routes at boot.
	Routes func(r *routing.Router) error
}

func (p *RoutingServiceProvider) Register(b *app.Builder) error {
	b.Loader(app.RouterService, container.LoaderFunc(func(r container.Resolver) (*routing.Router, error) {
		logger, err := container.Resolve[*zap.Logger](r, app.LogService)
		if err != nil {
			return nil, err
		}
		return routing.New(r.Container(), logger), nil
	}))
	return nil
}

func (p *RoutingServiceProvider) Boot(c *container.Container) error {
	if p.Routes == nil {
		return nil
	}
	router, err := container.Resolve[*routing.Router](c, app.RouterService)
	if err != nil {
		return err
	}
	return p.Routes(router)
}

// ── MetricsServiceProvider ────────────────────────────────────────────────────

// MetricsServiceProvider records container metrics on a dedicated registry
// and serves them on Path. It must be added after RoutingServiceProvider.
//
// Services:
//   - "metrics" → *prometheus.Registry
type MetricsServiceProvider struct {
	Path string // default: "/metrics"

	registry *prometheus.Registry
}

func (p *MetricsServiceProvider) Register(b *app.Builder) error {
	p.registry = prometheus.NewRegistry()
	p.registry.MustRegister(collectors.NewGoCollector())
	b.WithMetrics(p.registry).Instance("metrics", p.registry)
	return nil
}

func (p *MetricsServiceProvider) Boot(c *container.Container) error {
	router, err := container.Resolve[*routing.Router](c, app.RouterService)
	if err != nil {
		return err
	}
	path := p.Path
	if path == "" {
		path = "/metrics"
	}
	router.Get(path, promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{}).ServeHTTP)
	return nil
}
