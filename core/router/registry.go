package router

import (
	"fmt"
	"strings"

	"github.com/relayhttp/relay/core/handler"
)

// route is a single registered route: method, compiled pattern, handler,
// and the route-scoped middleware/validator configuration. Routes are
// immutable after registration; mounting copies them with rewritten
// patterns instead of mutating the originals.
type route[C handler.Context] struct {
	method         string
	pattern        *pattern
	handler        handler.HandlerFunc[C]
	middlewares    []handler.Middleware[C]
	bodyValidator  Validator
	queryValidator Validator
}

// RouteOption configures a route at registration time.
type RouteOption[C handler.Context] func(*route[C])

// WithMiddlewares attaches route-scoped middleware, executed after the
// router's global middleware in the order given.
func WithMiddlewares[C handler.Context](middlewares ...handler.Middleware[C]) RouteOption[C] {
	return func(rt *route[C]) {
		rt.middlewares = append(rt.middlewares, middlewares...)
	}
}

// WithBodyValidator runs the validator against the raw request body
// before any middleware executes. Failures produce a 400 response and
// the pipeline never runs.
func WithBodyValidator[C handler.Context](v Validator) RouteOption[C] {
	return func(rt *route[C]) {
		rt.bodyValidator = v
	}
}

// WithQueryValidator runs the validator against the raw query string
// before any middleware executes.
func WithQueryValidator[C handler.Context](v Validator) RouteOption[C] {
	return func(rt *route[C]) {
		rt.queryValidator = v
	}
}

// Registry is an ordered route table: per HTTP method, routes are kept
// in registration order and the first matching pattern wins. A Registry
// may be shared between multiple routers via WithRegistry; it must not
// be mutated once requests are being served.
type Registry[C handler.Context] struct {
	routes map[string][]*route[C]
}

// NewRegistry creates an empty route table.
func NewRegistry[C handler.Context]() *Registry[C] {
	return &Registry[C]{routes: make(map[string][]*route[C])}
}

// add compiles the pattern and appends the route. Pattern errors are
// programmer errors and panic, failing fast at setup time.
func (reg *Registry[C]) add(method, rawPattern string, h handler.HandlerFunc[C], opts ...RouteOption[C]) {
	if h == nil {
		panic(fmt.Errorf("%w: %s %q", ErrNilHandler, method, rawPattern))
	}
	p, err := compilePattern(rawPattern)
	if err != nil {
		panic(err)
	}

	rt := &route[C]{
		method:  method,
		pattern: p,
		handler: h,
	}
	for _, opt := range opts {
		opt(rt)
	}
	reg.routes[method] = append(reg.routes[method], rt)
}

// lookup returns the first route registered for the method whose
// pattern matches the path, along with its bound params and wildcard
// captures. Registration order decides ties; there is no specificity
// ranking.
func (reg *Registry[C]) lookup(method, path string) (*route[C], map[string]string, map[string][]string, bool) {
	for _, rt := range reg.routes[method] {
		if params, captures, ok := rt.pattern.match(path); ok {
			return rt, params, captures, true
		}
	}
	return nil, nil, nil, false
}

// mount copies every route of the sub-registry into this one with the
// prefix prepended, preserving relative order. The sub-router's global
// middlewares are folded into each copied route ahead of its own
// route-scoped ones, so they keep running for mounted routes. The
// sub-registry and its routes are left untouched.
func (reg *Registry[C]) mount(prefix string, sub *Registry[C], middlewares []handler.Middleware[C]) {
	for method, routes := range sub.routes {
		for _, rt := range routes {
			mounted := *rt
			p, err := compilePattern(joinPattern(prefix, rt.pattern.raw))
			if err != nil {
				panic(err)
			}
			mounted.pattern = p
			if len(middlewares) > 0 {
				mws := make([]handler.Middleware[C], 0, len(middlewares)+len(rt.middlewares))
				mws = append(mws, middlewares...)
				mws = append(mws, rt.middlewares...)
				mounted.middlewares = mws
			}
			reg.routes[method] = append(reg.routes[method], &mounted)
		}
	}
}

// clear removes every registered route.
func (reg *Registry[C]) clear() {
	reg.routes = make(map[string][]*route[C])
}

// list returns method/pattern pairs for introspection.
func (reg *Registry[C]) list() []Route {
	var out []Route
	for method, routes := range reg.routes {
		for _, rt := range routes {
			out = append(out, Route{Method: method, Pattern: rt.pattern.raw})
		}
	}
	return out
}

// joinPattern concatenates a mount prefix and a route pattern,
// normalizing duplicate or missing slashes at the seam.
func joinPattern(prefix, suffix string) string {
	prefix = strings.Trim(prefix, "/")
	suffix = strings.TrimPrefix(suffix, "/")
	switch {
	case prefix == "" && suffix == "":
		return "/"
	case prefix == "":
		return "/" + suffix
	case suffix == "":
		return "/" + prefix
	default:
		return "/" + prefix + "/" + suffix
	}
}
