package container_test

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/binding"
	"github.com/km-arc/go-container/framework/class"
	"github.com/km-arc/go-container/framework/container"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type Logger interface{ Log(msg string) }

type memLogger struct {
	name  string
	lines []string
}

func (l *memLogger) Log(msg string) { l.lines = append(l.lines, msg) }

func newMemLogger() *memLogger { return &memLogger{name: "mem"} }

type Greeter struct {
	Logger   Logger
	Greeting string
}

func NewGreeter(logger Logger, greeting string) *Greeter {
	return &Greeter{Logger: logger, Greeting: greeting}
}

func (g *Greeter) Greet(name string) string {
	msg := g.Greeting + ", " + name
	g.Logger.Log(msg)
	return msg
}

type Clock struct{ Zone string }

func NewClock() *Clock { return &Clock{Zone: "UTC"} }

type Scheduler struct {
	Clock *Clock
}

func NewScheduler(clock *Clock) *Scheduler { return &Scheduler{Clock: clock} }

type Mailer struct {
	Logger Logger
	Host   string
}

func NewMailer(logger Logger, host string) *Mailer { return &Mailer{Logger: logger, Host: host} }

type Pool struct{ Size int }

type PoolLoader struct {
	Size int
}

func NewPoolLoader(size int) *PoolLoader { return &PoolLoader{Size: size} }

func (l *PoolLoader) Load() (*Pool, error) { return &Pool{Size: l.Size}, nil }

// classes returns the registry shared by most tests.
func classes() *class.Registry {
	return class.NewRegistry(
		class.MustNew("MemLogger", newMemLogger),
		class.MustNew("Greeter", NewGreeter,
			class.Arg("logger"),
			class.Arg("greeting", class.Default("Hello")),
		),
		class.MustNew("Clock", NewClock),
		class.MustNew("Scheduler", NewScheduler, class.Arg("clock")),
		class.MustNew("Mailer", NewMailer, class.Arg("logger"), class.Arg("host", class.Default("localhost"))),
		class.MustNew("PoolLoader", NewPoolLoader, class.Arg("size", class.Default(8))),
	)
}

// counter builds a class whose constructor counts its calls.
func counter(name string, calls *atomic.Int64) *class.Class {
	return class.MustNew(name, func() *Clock {
		calls.Add(1)
		return &Clock{Zone: name}
	})
}

func newContainer(t *testing.T, reg *class.Registry, opts ...container.Option) *container.Container {
	t.Helper()
	if reg == nil {
		reg = classes()
	}
	c, err := container.New(reg, opts...)
	require.NoError(t, err)
	return c
}

func bindings(t *testing.T, fn func(b *binding.Builder)) *binding.Registry {
	t.Helper()
	b := binding.NewBuilder()
	fn(b)
	reg, err := b.Build()
	require.NoError(t, err)
	return reg
}

var errBoom = errors.New("boom")
