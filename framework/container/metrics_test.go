package container

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/class"
)

type widget struct{}

func TestMetrics_CountsResolutions(t *testing.T) {
	reg := prometheus.NewRegistry()
	classes := class.NewRegistry(class.MustNew("Widget", func() *widget { return &widget{} }))
	c, err := New(classes,
		WithMetrics(reg),
		WithConfiguration(Definitions{"widget": {ClassName: "Widget"}}),
	)
	require.NoError(t, err)

	for range 3 {
		_, err := c.Get("widget")
		require.NoError(t, err)
	}
	_, err = c.Factory().Create("Widget")
	require.NoError(t, err)
	_, err = c.Get("missing")
	require.Error(t, err)

	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.resolved.WithLabelValues("widget")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.metrics.created.WithLabelValues("Widget")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.metrics.failures.WithLabelValues("service_not_found")))
}

func TestMetrics_SharedRegisterer(t *testing.T) {
	reg := prometheus.NewRegistry()

	a, err := New(nil, WithMetrics(reg))
	require.NoError(t, err)
	b, err := New(nil, WithMetrics(reg))
	require.NoError(t, err)

	assert.Same(t, a.metrics.resolved, b.metrics.resolved)
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *metrics
	assert.NotPanics(t, func() {
		m.serviceResolved("x")
		m.objectCreated("X")
		m.failed(errors.New("x"))
	})
}

func TestErrorKind(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&CyclicDependencyError{Path: []string{"service:a"}}, "cyclic_dependency"},
		{&DependencyResolutionError{Param: "p", Cause: &CyclicDependencyError{}}, "cyclic_dependency"},
		{&DependencyResolutionError{Param: "p", Cause: &ServiceNotFoundError{Name: "x"}}, "dependency_resolution"},
		{&ServiceNotFoundError{Name: "x"}, "service_not_found"},
		{&NotSettableError{Name: "x"}, "not_settable"},
		{errors.New("boom"), "construction"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, errorKind(tt.err), tt.err.Error())
	}
}

func TestResolution_DetectsRepeat(t *testing.T) {
	r := newResolution()
	require.NoError(t, r.enter(serviceKey("a")))
	require.NoError(t, r.enter(classKey("A")))

	err := r.enter(serviceKey("a"))

	var cyc *CyclicDependencyError
	require.ErrorAs(t, err, &cyc)
	assert.Equal(t, []string{"service:a", "class:A", "service:a"}, cyc.Path)

	r.leave()
	r.leave()
	assert.Zero(t, r.depth())
}
