// Package tenant provides tenant identification for multi-tenant applications.
//
// The central piece is the Resolver, which converts the identity hints a
// request carries (an explicit identifier, a metadata header, the
// originating host) into exactly one Resolution using a fixed precedence
// order: explicit > header > domain > default. Resolution is a pure
// function over its inputs, performs no I/O, and is total: the configured
// default tenant terminates every lookup, so there is no failure path.
// The chosen Source is always part of the result so callers can audit why
// a tenant was picked.
//
// Around the resolver the package offers the usual request plumbing:
// a Provider interface for loading tenant records, context helpers,
// pluggable caching (in-memory LRU and Redis), and HTTP middleware that
// wires everything together.
//
// # Usage
//
//	resolver := tenant.NewResolver("platform",
//		tenant.WithDomainMapping(map[string]string{
//			"shop.example.com": "acme",
//		}),
//	)
//
//	mw := tenant.Middleware(resolver, provider,
//		tenant.WithCacheTTL(10*time.Minute),
//		tenant.WithSkipPaths([]string{"/health"}),
//	)
//	router.Use(mw)
//
//	func handler(w http.ResponseWriter, r *http.Request) {
//		t := tenant.MustFromContext(r.Context())
//		// ...
//	}
//
// For non-HTTP transports use Resolve, ResolveHeaders or ResolveHost
// directly; they accept plain values and generic header carriers.
package tenant
