package routing

import (
	"fmt"
	"net/http"
	"reflect"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-container/framework/container"
	gohttp "github.com/km-arc/go-container/framework/http"
)

// RequestParam is the constructor parameter a controller declares to receive
// the current *http.Request.
const RequestParam = "request"

// Router wraps chi.Router and builds controllers through the container.
type Router struct {
	mux       chi.Router
	container *container.Container
	logger    *zap.Logger
}

// New creates a Router with request ids, recovery and request logging.
func New(c *container.Container, logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))
	return &Router{mux: r, container: c, logger: logger}
}

// ── HTTP verbs ───────────────────────────────────────────────────────────────

func (r *Router) Get(pattern string, h http.HandlerFunc)    { r.mux.Get(pattern, h) }
func (r *Router) Post(pattern string, h http.HandlerFunc)   { r.mux.Post(pattern, h) }
func (r *Router) Put(pattern string, h http.HandlerFunc)    { r.mux.Put(pattern, h) }
func (r *Router) Patch(pattern string, h http.HandlerFunc)  { r.mux.Patch(pattern, h) }
func (r *Router) Delete(pattern string, h http.HandlerFunc) { r.mux.Delete(pattern, h) }

// ── Groups & Prefixes ────────────────────────────────────────────────────────

// Group creates an inline group sharing middleware.
func (r *Router) Group(fn func(r *Router)) {
	r.mux.Group(func(mx chi.Router) {
		fn(&Router{mux: mx, container: r.container, logger: r.logger})
	})
}

// Prefix creates a sub-router mounted at pattern.
func (r *Router) Prefix(pattern string, fn func(r *Router)) {
	r.mux.Route(pattern, func(mx chi.Router) {
		fn(&Router{mux: mx, container: r.container, logger: r.logger})
	})
}

// Middleware adds one or more middleware to the router.
func (r *Router) Middleware(mw ...func(http.Handler) http.Handler) {
	r.mux.Use(mw...)
}

// ── Controllers ──────────────────────────────────────────────────────────────

var (
	responseWriterType = reflect.TypeOf((*http.ResponseWriter)(nil)).Elem()
	requestType        = reflect.TypeOf((*http.Request)(nil))
)

// Controller routes method+pattern to action on a fresh instance of
// className, built by the injectable factory for every request. A constructor
// parameter named "request" receives the *http.Request.
//
//	router.Controller(http.MethodGet, "/greet/{name}", "GreetController", "Show")
func (r *Router) Controller(method, pattern, className, action string) error {
	cls, err := r.container.Classes().Get(className)
	if err != nil {
		return fmt.Errorf("routing: %w", err)
	}
	if err := checkAction(cls.Type(), action); err != nil {
		return fmt.Errorf("routing: %s.%s: %w", className, action, err)
	}

	factory := r.container.Factory()
	r.mux.Method(method, pattern, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		inst, err := factory.CreateWith(className, map[string]any{RequestParam: req})
		if err != nil {
			r.logger.Error("controller construction failed",
				zap.String("controller", className),
				zap.String("requestID", middleware.GetReqID(req.Context())),
				zap.Error(err),
			)
			gohttp.NewResponse(w).ServerError()
			return
		}
		handler := reflect.ValueOf(inst).MethodByName(action).Interface().(func(http.ResponseWriter, *http.Request))
		handler(w, req)
	}))
	return nil
}

// checkAction verifies that t has action(http.ResponseWriter, *http.Request).
func checkAction(t reflect.Type, action string) error {
	m, ok := t.MethodByName(action)
	if !ok {
		return fmt.Errorf("no method %s on %v", action, t)
	}
	in := 0
	if t.Kind() != reflect.Interface {
		in = 1 // receiver
	}
	mt := m.Type
	if mt.NumIn() != in+2 || mt.In(in) != responseWriterType || mt.In(in+1) != requestType || mt.NumOut() != 0 {
		return fmt.Errorf("%v is not func(http.ResponseWriter, *http.Request)", mt)
	}
	return nil
}

// ── Params ───────────────────────────────────────────────────────────────────

// Param extracts a URL route parameter.
func Param(r *http.Request, key string) string {
	return chi.URLParam(r, key)
}

// ── Serve ────────────────────────────────────────────────────────────────────

// ServeHTTP implements http.Handler.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Handler returns the underlying http.Handler (for testing etc.).
func (r *Router) Handler() http.Handler {
	return r.mux
}

func requestLogger(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestID", middleware.GetReqID(r.Context())),
			)
		})
	}
}
