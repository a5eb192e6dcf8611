package router

import (
	"net/http"

	"github.com/relayhttp/relay/core/handler"
)

// Router is the main routing interface for handling HTTP requests.
// It supports middleware chaining, route grouping, and sub-router
// mounting under a path prefix.
type Router[C handler.Context] interface {
	http.Handler
	Routes

	// HTTP method handlers. There is no Options variant: the dispatcher
	// answers every OPTIONS request itself, before route lookup.
	Get(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C])
	Post(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C])
	Put(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C])
	Delete(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C])
	Patch(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C])
	Head(pattern string, h handler.HandlerFunc[C], opts ...RouteOption[C])

	// Generic registration for one or many methods
	Method(pattern string, h handler.HandlerFunc[C], methods []string, opts ...RouteOption[C])

	// Middleware
	Use(middlewares ...handler.Middleware[C])

	// Grouping and mounting
	Route(prefix string, fn func(r Router[C])) Router[C]
	Mount(prefix string, sub Router[C])

	// Clear drops every registered route from the underlying table.
	Clear()
}

// Routes provides route introspection capabilities for debugging and monitoring.
type Routes interface {
	Routes() []Route
}

// Route describes a single route in the router with its HTTP method and pattern.
type Route struct {
	Method  string
	Pattern string
}

// Match carries the metadata bound by a successful pattern match.
type Match struct {
	Params   map[string]string
	Segments map[string][]string
}

// ContextFactory builds the request context handed to validators,
// middleware, and the handler.
type ContextFactory[C handler.Context] func(w http.ResponseWriter, r *http.Request, m Match) (C, error)

// New creates a new router with the given options.
// The router supports generic context types for type-safe request handling.
func New[C handler.Context](opts ...Option[C]) Router[C] {
	return newMux[C](opts...)
}
