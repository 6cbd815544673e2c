package class_test

import (
	"errors"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-container/framework/class"
)

// ── fixtures ──────────────────────────────────────────────────────────────────

type Logger interface{ Log(string) }

type Greeter struct {
	Logger   Logger
	Greeting string
	Retries  int
}

func NewGreeter(logger Logger, greeting string, retries int) *Greeter {
	return &Greeter{Logger: logger, Greeting: greeting, Retries: retries}
}

type Pool struct{ size int }

type PoolLoader struct{}

func (l *PoolLoader) Load() (*Pool, error) { return &Pool{size: 4}, nil }

type brokenLoader struct{}

func (brokenLoader) Load(n int) *Pool { return nil }

// ── Func / New ────────────────────────────────────────────────────────────────

func TestNew_DescribesParameters(t *testing.T) {
	c, err := class.New("Greeter", NewGreeter,
		class.Arg("logger", class.Nullable()),
		class.Arg("greeting", class.Default("Hello")),
		class.Arg("retries"),
	)
	require.NoError(t, err)

	assert.Equal(t, "Greeter", c.Name())
	assert.Equal(t, reflect.TypeOf(&Greeter{}), c.Type())

	params := c.Params()
	require.Len(t, params, 3)
	assert.Equal(t, "logger", params[0].Name)
	assert.True(t, params[0].Nullable)
	assert.True(t, class.IsConcrete(params[0].Type))
	assert.True(t, params[1].HasDefault)
	assert.Equal(t, "Hello", params[1].Default)
	assert.False(t, class.IsConcrete(params[2].Type))
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name string
		ctor any
		args []class.ParamSpec
	}{
		{"not a function", 42, nil},
		{"missing names", NewGreeter, []class.ParamSpec{class.Arg("logger")}},
		{"duplicate names", NewGreeter, []class.ParamSpec{class.Arg("a"), class.Arg("a"), class.Arg("b")}},
		{"empty name", NewGreeter, []class.ParamSpec{class.Arg(""), class.Arg("b"), class.Arg("c")}},
		{"bad default", NewGreeter, []class.ParamSpec{class.Arg("a"), class.Arg("b", class.Default(3)), class.Arg("c")}},
		{"nullable scalar", NewGreeter, []class.ParamSpec{class.Arg("a"), class.Arg("b"), class.Arg("c", class.Nullable())}},
		{"no result", func() {}, nil},
		{"second result not error", func() (int, int) { return 0, 0 }, nil},
		{"variadic", func(xs ...int) int { return 0 }, []class.ParamSpec{class.Arg("xs")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := class.New("X", tt.ctor, tt.args...)
			assert.Error(t, err)
		})
	}
}

func TestNew_EmptyClassName(t *testing.T) {
	_, err := class.New("", func() int { return 1 })
	assert.Error(t, err)
}

func TestMustNew_Panics(t *testing.T) {
	assert.Panics(t, func() { class.MustNew("X", "nope") })
}

// ── Call ──────────────────────────────────────────────────────────────────────

func TestCall_ConvertsNumericsAndNil(t *testing.T) {
	c := class.MustNew("Greeter", NewGreeter, class.Arg("logger"), class.Arg("greeting"), class.Arg("retries"))

	got, err := c.Call([]any{nil, "Hi", int64(3)})
	require.NoError(t, err)

	g := got.(*Greeter)
	assert.Nil(t, g.Logger)
	assert.Equal(t, "Hi", g.Greeting)
	assert.Equal(t, 3, g.Retries)

	sizes := class.MustFunc(func(size uint8, ratio int, scale float32) []any {
		return []any{size, ratio, scale}
	}, class.Arg("size"), class.Arg("ratio"), class.Arg("scale"))

	tests := []struct {
		name string
		args []any
		want []any
		bad  string
	}{
		{"exact", []any{200, 2.0, 0.5}, []any{uint8(200), 2, float32(0.5)}, ""},
		{"widening", []any{int8(7), uint16(9), 3}, []any{uint8(7), 9, float32(3)}, ""},
		{"overflow", []any{300, 1, 1.0}, nil, "size"},
		{"negative to unsigned", []any{-1, 1, 1.0}, nil, "size"},
		{"fraction to int", []any{1, 2.9, 1.0}, nil, "ratio"},
		{"float overflow", []any{1, 1, 1e300}, nil, "scale"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sizes.Call(tt.args)
			if tt.bad == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
				return
			}
			var argErr *class.ArgumentError
			require.ErrorAs(t, err, &argErr)
			assert.Equal(t, tt.bad, argErr.Name)
		})
	}
}

func TestCall_ArgumentError(t *testing.T) {
	c := class.MustNew("Greeter", NewGreeter, class.Arg("logger"), class.Arg("greeting"), class.Arg("retries"))

	_, err := c.Call([]any{nil, 12, 1})

	var argErr *class.ArgumentError
	require.ErrorAs(t, err, &argErr)
	assert.Equal(t, "greeting", argErr.Name)
	assert.Equal(t, 1, argErr.Index)
}

func TestCall_WrongArity(t *testing.T) {
	c := class.MustNew("Greeter", NewGreeter, class.Arg("logger"), class.Arg("greeting"), class.Arg("retries"))
	_, err := c.Call([]any{nil})
	assert.Error(t, err)
}

func TestCall_PropagatesConstructorError(t *testing.T) {
	boom := errors.New("boom")
	c := class.MustNew("Failing", func() (*Pool, error) { return nil, boom })

	_, err := c.Call(nil)
	assert.ErrorIs(t, err, boom)
}

// ── Param helpers ─────────────────────────────────────────────────────────────

func TestParam_Untyped(t *testing.T) {
	cb := class.MustFunc(func(a any, b any, c Logger) int { return 0 },
		class.Arg("a"), class.Arg("b", class.Of("Greeter")), class.Arg("c"))

	p := cb.Params()
	assert.True(t, p[0].Untyped())
	assert.False(t, p[1].Untyped())
	assert.Equal(t, "Greeter", p[1].ClassRef)
	assert.False(t, p[2].Untyped())

	found, ok := cb.Param("b")
	require.True(t, ok)
	assert.Equal(t, 1, found.Index)
	_, ok = cb.Param("missing")
	assert.False(t, ok)
}

func TestIsConcrete(t *testing.T) {
	tests := []struct {
		typ  reflect.Type
		want bool
	}{
		{reflect.TypeOf(&Greeter{}), true},
		{reflect.TypeOf(Greeter{}), true},
		{reflect.TypeOf((*Logger)(nil)).Elem(), true},
		{reflect.TypeOf((*any)(nil)).Elem(), false},
		{reflect.TypeOf(""), false},
		{reflect.TypeOf(new(int)), false},
		{reflect.TypeOf([]string{}), false},
		{nil, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, class.IsConcrete(tt.typ), "%v", tt.typ)
	}
}

// ── Producers ─────────────────────────────────────────────────────────────────

func TestProducerType(t *testing.T) {
	got, err := class.ProducerType(reflect.TypeOf(&PoolLoader{}), "Load")
	require.NoError(t, err)
	assert.Equal(t, reflect.TypeOf(&Pool{}), got)

	_, err = class.ProducerType(reflect.TypeOf(brokenLoader{}), "Load")
	assert.Error(t, err)

	_, err = class.ProducerType(reflect.TypeOf(&Pool{}), "Load")
	assert.Error(t, err)
}

func TestCallProducer(t *testing.T) {
	got, err := class.CallProducer(&PoolLoader{}, "Load")
	require.NoError(t, err)
	assert.Equal(t, 4, got.(*Pool).size)

	_, err = class.CallProducer(nil, "Load")
	assert.Error(t, err)
}
