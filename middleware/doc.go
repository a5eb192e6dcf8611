// Package middleware provides reusable HTTP middleware built on the
// router's pipeline contract: request IDs, structured request logging,
// security headers, CORS, and rate limiting.
//
// Each middleware follows the same conventions: a zero-config
// constructor with sensible defaults, a WithConfig variant for
// customization, and an optional Skip predicate to bypass specific
// requests:
//
//	r := router.New[*router.Context](
//		router.WithMiddleware(
//			middleware.RequestID[*router.Context](),
//			middleware.Logging[*router.Context](logger),
//		),
//	)
package middleware
