package providers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/config"
	"github.com/km-arc/go-container/framework/container"
	"github.com/km-arc/go-container/framework/providers"
	"github.com/km-arc/go-container/framework/routing"
)

func builder(t *testing.T) *app.Builder {
	t.Helper()
	cfg := &config.Config{
		App:     config.AppConfig{Name: "test", Env: "testing"},
		Storage: config.StorageConfig{DataDir: t.TempDir()},
	}
	return app.NewBuilder(nil).WithConfig(cfg).WithLogger(zap.NewNop())
}

func TestRoutingServiceProvider(t *testing.T) {
	var declared *routing.Router
	p := &providers.RoutingServiceProvider{
		Routes: func(r *routing.Router) error {
			declared = r
			r.Get("/ping", func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte("pong"))
			})
			return nil
		},
	}

	application, err := app.New(builder(t), p)
	require.NoError(t, err)
	assert.Nil(t, declared, "routes are declared at boot")

	require.NoError(t, application.Boot())
	router, err := application.Router()
	require.NoError(t, err)
	assert.Same(t, router, declared)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong", rec.Body.String())
}

func TestMetricsServiceProvider_ServesContainerMetrics(t *testing.T) {
	application, err := app.New(builder(t),
		&providers.RoutingServiceProvider{},
		&providers.MetricsServiceProvider{},
	)
	require.NoError(t, err)
	require.NoError(t, application.Boot())

	reg := container.MustResolve[*prometheus.Registry](application, "metrics")
	require.NotNil(t, reg)
	router, err := application.Router()
	require.NoError(t, err)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
	assert.Contains(t, rec.Body.String(), "container_services_resolved_total")
}

func TestMetricsServiceProvider_NeedsRouter(t *testing.T) {
	application, err := app.New(builder(t), &providers.MetricsServiceProvider{Path: "/m"})
	require.NoError(t, err)
	assert.ErrorIs(t, application.Boot(), container.ErrServiceNotFound)
}
