package router

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/relayhttp/relay/core/handler"
	"github.com/relayhttp/relay/core/response"
)

// knownMethods lists the methods Method accepts. OPTIONS is absent on
// purpose: the dispatcher answers it before route lookup, so an OPTIONS
// registration could never be reached and is rejected at setup time.
var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodDelete:  true,
	http.MethodPatch:   true,
	http.MethodHead:    true,
	http.MethodConnect: true,
	http.MethodTrace:   true,
}

// mux is the private implementation of Router interface. It owns the
// dispatch sequence: normalize, lookup, validate, run the pipeline,
// normalize the result, and funnel errors. No request-time error is
// allowed to escape ServeHTTP.
type mux[C handler.Context] struct {
	registry          *Registry[C]
	middlewares       []handler.Middleware[C]
	errorHandler      handler.ErrorHandler[C]
	newContext        ContextFactory[C]
	logger            *slog.Logger
	securityHeaders   map[string]string
	securityOverwrite bool
	sealed            bool // set once the first route is registered
}

// newMux creates a new router instance.
func newMux[C handler.Context](opts ...Option[C]) *mux[C] {
	m := &mux[C]{
		registry:     NewRegistry[C](),
		errorHandler: defaultErrorHandler[C],
		logger:       slog.New(slog.NewTextHandler(io.Discard, nil)), // No-op logger by default
	}

	for _, opt := range opts {
		opt(m)
	}

	if m.newContext == nil {
		m.newContext = func(w http.ResponseWriter, r *http.Request, match Match) (C, error) {
			// Only the default *Context type is supported without a
			// factory; custom context types must provide one.
			var zero C
			if _, ok := any(zero).(*Context); ok {
				return any(newContext(w, r, match)).(C), nil
			}
			return zero, ErrNoContextFactory
		}
	}

	return m
}

// ServeHTTP implements http.Handler.
func (m *mux[C]) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ww := newResponseWriter(w, m.securityHeaders, m.securityOverwrite)

	method := strings.ToUpper(r.Method)
	path := r.URL.Path
	if r.URL.RawPath != "" {
		path = r.URL.RawPath
	}
	if path == "" {
		path = "/"
	}
	// Strip a single trailing slash so /users/ and /users address the
	// same route; the root path stays as is.
	if len(path) > 1 {
		path = strings.TrimSuffix(path, "/")
	}

	// Preflight and capability probes never reach route lookup.
	if method == http.MethodOptions {
		h := ww.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, HEAD, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "*")
		ww.WriteHeader(http.StatusNoContent)
		return
	}

	rt, params, captures, found := m.registry.lookup(method, path)
	if !found {
		// Recoverable miss: plain diagnostic, custom error handler is
		// not consulted.
		http.Error(ww, fmt.Sprintf("%s: %s %s", ErrNotFound, method, path), http.StatusNotFound)
		return
	}

	ctx, err := m.newContext(ww, r, Match{Params: params, Segments: captures})
	if err != nil {
		http.Error(ww, fmt.Sprintf("failed to construct request context: %v", err), http.StatusInternalServerError)
		return
	}

	// Recover from panics to prevent server crashes.
	defer func() {
		if p := recover(); p != nil {
			panicErr := &panicError{
				value: p,
				stack: debug.Stack(),
			}

			if ww.Written() {
				m.logger.Error("panic after response written",
					"value", panicErr.value,
					"stack", string(panicErr.stack),
					"path", r.URL.Path,
					"method", r.Method,
					"status", ww.Status(),
				)
			} else {
				m.fail(ctx, ww, panicErr)
			}
		}
	}()

	if !m.validate(ctx, ww, rt, r) {
		return
	}

	fn := rt.handler
	stack := m.middlewares
	if len(rt.middlewares) > 0 {
		stack = append(append([]handler.Middleware[C]{}, stack...), rt.middlewares...)
	}
	fn = compose(stack, fn)

	resp := fn(ctx)
	if resp == nil {
		// A short-circuiting middleware may have written directly; that
		// response stands. Otherwise a nil result is an empty 204.
		if !ww.Written() {
			ww.WriteHeader(http.StatusNoContent)
		}
		return
	}

	if err := resp(ww, r); err != nil {
		m.fail(ctx, ww, err)
	}
}

// validate runs the route's body/query validators before any middleware.
// It reports whether dispatch should continue.
func (m *mux[C]) validate(ctx C, ww *responseWriter, rt *route[C], r *http.Request) bool {
	if rt.bodyValidator != nil {
		raw, err := io.ReadAll(r.Body)
		if err != nil {
			m.fail(ctx, ww, fmt.Errorf("reading request body: %w", err))
			return false
		}
		r.Body = io.NopCloser(bytes.NewReader(raw))

		val, issues := rt.bodyValidator.SafeParse(raw)
		if len(issues) > 0 {
			m.renderValidationError(ww, issues)
			return false
		}
		ctx.SetValue(ValidatedBodyKey{}, val)
	}

	if rt.queryValidator != nil {
		val, issues := rt.queryValidator.SafeParse([]byte(r.URL.RawQuery))
		if len(issues) > 0 {
			m.renderValidationError(ww, issues)
			return false
		}
		ctx.SetValue(ValidatedQueryKey{}, val)
	}

	return true
}

func (m *mux[C]) renderValidationError(ww *responseWriter, issues []Issue) {
	body := validationError{Error: "validation failed", Issues: issues}
	resp := response.JSONWithStatus(body, http.StatusBadRequest)
	if err := resp(ww, nil); err != nil {
		m.logger.Error("failed to render validation error", "error", err)
	}
}

// fail funnels a request-time error through the configured error
// handler. If the handler declines to write anything, the canonical
// JSON error response is rendered instead.
func (m *mux[C]) fail(ctx C, ww *responseWriter, err error) {
	m.errorHandler(ctx, err)
	if !ww.Written() {
		response.JSONErrorHandler(ctx, err)
	}
}

// defaultErrorHandler leaves rendering to the canonical JSON fallback.
func defaultErrorHandler[C handler.Context](ctx C, err error) {}

// Get registers a handler for GET requests.
func (m *mux[C]) Get(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C]) {
	m.handle(http.MethodGet, pattern, h, opts...)
}

// Post registers a handler for POST requests.
func (m *mux[C]) Post(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C]) {
	m.handle(http.MethodPost, pattern, h, opts...)
}

// Put registers a handler for PUT requests.
func (m *mux[C]) Put(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C]) {
	m.handle(http.MethodPut, pattern, h, opts...)
}

// Delete registers a handler for DELETE requests.
func (m *mux[C]) Delete(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C]) {
	m.handle(http.MethodDelete, pattern, h, opts...)
}

// Patch registers a handler for PATCH requests.
func (m *mux[C]) Patch(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C]) {
	m.handle(http.MethodPatch, pattern, h, opts...)
}

// Head registers a handler for HEAD requests.
func (m *mux[C]) Head(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C]) {
	m.handle(http.MethodHead, pattern, h, opts...)
}

// Method registers a handler for one or more specific HTTP methods.
func (m *mux[C]) Method(pattern string, h handler.HandlerFunc[C], methods []string, opts ...RouteOption[C]) {
	if len(methods) == 0 {
		panic(fmt.Errorf("%w: no methods provided", ErrInvalidMethod))
	}

	seen := make(map[string]bool)
	for _, method := range methods {
		method = strings.ToUpper(method)
		if !knownMethods[method] {
			panic(fmt.Errorf("%w: %s", ErrInvalidMethod, method))
		}
		if seen[method] {
			continue
		}
		seen[method] = true
		m.handle(method, pattern, h, opts...)
	}
}

// Use appends global middleware to the router.
func (m *mux[C]) Use(middlewares ...handler.Middleware[C]) {
	if m.sealed {
		panic("relay: all global middlewares must be defined before routes")
	}
	m.middlewares = append(m.middlewares, middlewares...)
}

// Route creates a new sub-router, populates it via fn, and mounts it
// under the given prefix.
func (m *mux[C]) Route(prefix string, fn func(r Router[C])) Router[C] {
	if fn == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilSubrouter, prefix))
	}
	sub := newMux[C]()
	sub.errorHandler = m.errorHandler
	sub.newContext = m.newContext
	sub.logger = m.logger

	fn(sub)
	m.Mount(prefix, sub)
	return sub
}

// Mount copies every route of the sub-router into this router's table
// with the prefix prepended, normalizing slashes at the seam. Relative
// registration order and per-route middleware are preserved, and the
// sub-router's global middleware is carried along as route-scoped
// middleware on every copied route, running after this router's own
// globals. The sub-router keeps its own routes untouched.
func (m *mux[C]) Mount(prefix string, sub Router[C]) {
	if sub == nil {
		panic(fmt.Errorf("%w on '%s'", ErrNilRouter, prefix))
	}
	subMux, ok := sub.(*mux[C])
	if !ok {
		panic("relay: can only mount routers created by New")
	}
	m.registry.mount(prefix, subMux.registry, subMux.middlewares)
	m.sealed = true
}

// Routes returns all registered routes.
func (m *mux[C]) Routes() []Route {
	return m.registry.list()
}

// Clear drops every registered route.
func (m *mux[C]) Clear() {
	m.registry.clear()
	m.sealed = false
}

// handle registers a handler in the route table.
func (m *mux[C]) handle(method, pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C]) {
	m.registry.add(method, pattern, h, opts...)
	m.sealed = true
}
