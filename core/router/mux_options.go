package router

import (
	"log/slog"
	"maps"

	"github.com/relayhttp/relay/core/handler"
)

// Option configures a Router during creation.
type Option[C handler.Context] func(*mux[C])

// WithErrorHandler sets a custom error handler for the router. The
// handler receives every request-time error the pipeline produced; if
// it writes nothing, the router falls back to the canonical JSON error
// response.
func WithErrorHandler[C handler.Context](h handler.ErrorHandler[C]) Option[C] {
	return func(m *mux[C]) {
		if h != nil {
			m.errorHandler = h
		}
	}
}

// WithMiddleware adds global middleware to the router.
func WithMiddleware[C handler.Context](middlewares ...handler.Middleware[C]) Option[C] {
	return func(m *mux[C]) {
		m.middlewares = append(m.middlewares, middlewares...)
	}
}

// WithContextFactory sets a custom context factory for the router.
// A factory error aborts dispatch with a 500 response.
func WithContextFactory[C handler.Context](f ContextFactory[C]) Option[C] {
	return func(m *mux[C]) {
		m.newContext = f
	}
}

// WithLogger sets a custom logger for the router.
func WithLogger[C handler.Context](logger *slog.Logger) Option[C] {
	return func(m *mux[C]) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRegistry makes the router serve routes from a shared route table
// instead of an owned one. Several routers may point at the same
// Registry; registration through any of them is visible to all.
func WithRegistry[C handler.Context](reg *Registry[C]) Option[C] {
	return func(m *mux[C]) {
		if reg != nil {
			m.registry = reg
		}
	}
}

// WithSecurityHeaders merges the given headers into every response at
// first write. Headers already present are left untouched unless
// WithSecurityHeadersOverwrite is also set.
func WithSecurityHeaders[C handler.Context](headers map[string]string) Option[C] {
	return func(m *mux[C]) {
		if m.securityHeaders == nil {
			m.securityHeaders = make(map[string]string, len(headers))
		}
		maps.Copy(m.securityHeaders, headers)
	}
}

// WithSecurityHeadersOverwrite makes configured security headers win
// over values set by handlers or middleware.
func WithSecurityHeadersOverwrite[C handler.Context]() Option[C] {
	return func(m *mux[C]) {
		m.securityOverwrite = true
	}
}
