// Package resolver provides a keyed lazy-loading cache with
// at-most-one-concurrent-load-per-key semantics.
//
// Entries are registered as static values or lazy producers:
//
//	cache := resolver.New()
//	cache.Add(resolver.Static("limits", defaultLimits))
//	cache.Add(resolver.Lazy("tenants", loadTenants,
//		resolver.WithAdapter(indexByID),
//		resolver.WithPurge(func(v any) bool { return v.(*tenantIndex).stale() }),
//	))
//
// The first Get for a lazy key runs the producer in the caller's
// goroutine; concurrent Gets and Reloads for the same key await that
// single invocation and observe its result. An adapter wraps each
// freshly produced value exactly once before caching. A purge predicate
// marks the cached value stale, triggering one reload on the next Get.
// Delete and Clear drop the registration; loads already in flight keep
// serving their waiters but are never cached.
package resolver
