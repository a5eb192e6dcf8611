package router

import (
	"github.com/relayhttp/relay/core/handler"
	"github.com/relayhttp/relay/core/response"
)

// compose builds a single handler from a middleware stack and endpoint.
// The chain is dispatched with a per-invocation index guard: each stage
// receives a continuation bound to the following stage, and the
// continuation may advance the chain at most once. A stage that invokes
// it again, or re-invokes it after a later stage already advanced, gets
// ErrNextCalledTwice as its result instead of re-running anything. A
// stage that never invokes its continuation short-circuits the rest of
// the chain.
func compose[C handler.Context](middlewares []handler.Middleware[C], endpoint handler.HandlerFunc[C]) handler.HandlerFunc[C] {
	if len(middlewares) == 0 {
		return endpoint
	}

	return func(ctx C) handler.Response {
		index := -1
		var dispatch func(i int, ctx C) handler.Response
		dispatch = func(i int, ctx C) handler.Response {
			if i <= index {
				return response.Error(ErrNextCalledTwice)
			}
			index = i
			if i == len(middlewares) {
				return endpoint(ctx)
			}
			next := handler.HandlerFunc[C](func(c C) handler.Response {
				return dispatch(i+1, c)
			})
			return middlewares[i](next)(ctx)
		}
		return dispatch(0, ctx)
	}
}
