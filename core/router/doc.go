// Package router provides HTTP request routing with an ordered route
// table, a wildcard pattern language, and a strict single-pass
// middleware pipeline.
//
// Routes are matched in registration order per HTTP method; the first
// pattern that fully matches the path wins. The pattern language
// supports literals, named parameters with forbidden values, and
// bounded or unbounded wildcards:
//
//	r := router.New[*router.Context]()
//	r.Get("/users/:id", getUser)            // params: id
//	r.Get("/users/:id!new", getUser)        // rejects /users/new
//	r.Get("/files/*1-3:parts/meta", meta)   // 1..3 segments into parts
//	r.Get("/assets/*:rest", serveAsset)     // catch-all into rest
//
// Counted wildcards backtrack: each count from the minimum up is tried
// until the rest of the pattern matches the rest of the path. A bare
// "*" consumes the remainder of the path outright.
//
// Middleware executes global-first, then route-scoped, each stage
// receiving a continuation bound to the next stage. The continuation
// may be invoked at most once per stage; skipping it short-circuits the
// chain. Handler results are normalized into one canonical response and
// every request-time error is converted to a response before ServeHTTP
// returns.
//
// Sub-routers can be populated independently and mounted under a path
// prefix:
//
//	api := router.New[*router.Context]()
//	api.Get("/ping", ping)
//	r.Mount("/api", api) // serves /api/ping
package router
