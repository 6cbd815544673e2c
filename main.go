package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/app"
	"github.com/km-arc/go-container/framework/cache"
	"github.com/km-arc/go-container/framework/class"
	gohttp "github.com/km-arc/go-container/framework/http"
	"github.com/km-arc/go-container/framework/providers"
	"github.com/km-arc/go-container/framework/routing"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	classes := class.NewRegistry(
		class.MustNew("Greeter", NewGreeter, class.Arg("greeting", class.Default("Hi"))),
		class.MustNew("VisitCounter", NewVisitCounter, class.Arg("dataCache")),
		class.MustNew("GreetController", NewGreetController,
			class.Arg("greeter"),
			class.Arg("visits"),
			class.Arg(routing.RequestParam),
		),
	)

	application, err := app.New(
		app.NewBuilder(classes).WithEnvFiles(".env"),
		&providers.RoutingServiceProvider{Routes: routes},
		&providers.MetricsServiceProvider{},
	)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return application.Run(ctx)
}

func routes(r *routing.Router) error {
	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		gohttp.NewResponse(w).Success(map[string]any{"message": "Welcome to go-container!"})
	})
	return r.Controller(http.MethodGet, "/greet/{name}", "GreetController", "Show")
}

// ── Demo classes ──────────────────────────────────────────────────────────────

type Greeter struct {
	greeting string
}

func NewGreeter(greeting string) *Greeter { return &Greeter{greeting: greeting} }

func (g *Greeter) Greet(name string) string { return g.greeting + ", " + name + "!" }

// VisitCounter keeps per-name visit counts in the data cache.
type VisitCounter struct {
	cache *cache.DataCache
}

func NewVisitCounter(dataCache *cache.DataCache) *VisitCounter {
	return &VisitCounter{cache: dataCache}
}

func (v *VisitCounter) Visit(name string) (int, error) {
	var n int
	if _, err := v.cache.Get("visits-"+name, &n); err != nil {
		return 0, err
	}
	n++
	return n, v.cache.Store("visits-"+name, n)
}

// GreetController is built per request. The logger arrives through SetLog.
type GreetController struct {
	greeter *Greeter
	visits  *VisitCounter
	request *http.Request
	log     *zap.Logger
}

func NewGreetController(greeter *Greeter, visits *VisitCounter, request *http.Request) *GreetController {
	return &GreetController{greeter: greeter, visits: visits, request: request}
}

func (c *GreetController) SetLog(l *zap.Logger) { c.log = l }

func (c *GreetController) Show(w http.ResponseWriter, r *http.Request) {
	res := gohttp.NewResponse(w)
	name := routing.Param(r, "name")

	n, err := c.visits.Visit(name)
	if err != nil {
		c.log.Error("counting visit", zap.Error(err))
		res.ServerError()
		return
	}
	res.Success(map[string]any{
		"message": c.greeter.Greet(name),
		"visits":  n,
		"agent":   c.request.UserAgent(),
	})
}
