package container

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "container"

// metrics counts resolutions. A nil *metrics records nothing.
type metrics struct {
	resolved *prometheus.CounterVec
	created  *prometheus.CounterVec
	failures *prometheus.CounterVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	m := &metrics{
		resolved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "services_resolved_total",
			Help:      "Services constructed and cached, by service name.",
		}, []string{"service"}),
		created: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "objects_created_total",
			Help:      "Objects built by the injectable factory, by class.",
		}, []string{"class"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "resolution_errors_total",
			Help:      "Failed top-level resolutions, by error kind.",
		}, []string{"kind"}),
	}

	var err error
	if m.resolved, err = register(reg, m.resolved); err != nil {
		return nil, err
	}
	if m.created, err = register(reg, m.created); err != nil {
		return nil, err
	}
	if m.failures, err = register(reg, m.failures); err != nil {
		return nil, err
	}
	return m, nil
}

// register reuses an identical collector when several containers share a
// registerer.
func register(reg prometheus.Registerer, cv *prometheus.CounterVec) (*prometheus.CounterVec, error) {
	if err := reg.Register(cv); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
		}
		return nil, err
	}
	return cv, nil
}

func (m *metrics) serviceResolved(name string) {
	if m != nil {
		m.resolved.WithLabelValues(name).Inc()
	}
}

func (m *metrics) objectCreated(className string) {
	if m != nil {
		m.created.WithLabelValues(className).Inc()
	}
}

func (m *metrics) failed(err error) {
	if m != nil {
		m.failures.WithLabelValues(errorKind(err)).Inc()
	}
}
