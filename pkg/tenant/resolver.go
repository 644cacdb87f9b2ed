package tenant

import (
	"fmt"
	"net/http"
	"strings"
)

// Source records which identity hint produced a resolution result.
// It exists for audit and debugging only and never affects subsequent logic.
type Source string

const (
	// SourceExplicit means the caller passed a tenant identifier directly.
	SourceExplicit Source = "explicit"
	// SourceHeader means the identifier was carried in request metadata.
	SourceHeader Source = "header"
	// SourceDomain means the identifier was derived from the originating host.
	SourceDomain Source = "domain"
	// SourceDefault means the configured fallback tenant was used.
	SourceDefault Source = "default"
)

// DefaultHeaderName is the request header consulted when no explicit
// identifier is supplied.
const DefaultHeaderName = "X-Tenant-ID"

// Resolution is the immutable outcome of tenant resolution, produced once
// per request. Exactly one Source is attached to every result.
type Resolution struct {
	TenantID string `json:"tenant_id"`
	Source   Source `json:"source"`
	// Domain is set only when Source is SourceDomain and holds the
	// normalized host that matched.
	Domain string `json:"domain,omitempty"`
}

// ResolveOptions carries the identity hints a request may provide.
// Zero values mean "hint absent".
type ResolveOptions struct {
	Explicit string // identifier passed programmatically by the caller
	Header   string // identifier from per-call metadata
	Host     string // originating host, port suffix allowed
}

// HeaderLookup is the minimal carrier interface for header-based resolution.
// http.Header satisfies it.
type HeaderLookup interface {
	Get(key string) string
}

// HeaderMap adapts a plain map to HeaderLookup. Lookup tries the exact key
// first, then the lower-cased key.
type HeaderMap map[string]string

// Get returns the value for key, trying exact-case then lower-case.
func (m HeaderMap) Get(key string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return m[strings.ToLower(key)]
}

// Resolver converts ambiguous request context into a single canonical tenant
// identity. Resolution is deterministic, side-effect-free, and total: the
// configured default tenant terminates every lookup, so Resolve never fails.
//
// Precedence, first match wins: explicit > header > domain > default.
// A hint that fails sanitation falls through to the next source.
type Resolver struct {
	defaultID string
	domains   map[string]string
	header    string
}

// ResolverOption configures a Resolver.
type ResolverOption func(*Resolver)

// WithDomainMapping sets the host to tenant mapping used by the domain
// source. Hosts are normalized and tenant ids sanitized on the way in;
// entries that fail sanitation are dropped.
func WithDomainMapping(domains map[string]string) ResolverOption {
	return func(r *Resolver) {
		for host, id := range domains {
			host = NormalizeHost(host)
			id = SanitizeID(id)
			if host == "" || id == "" {
				continue
			}
			r.domains[host] = id
		}
	}
}

// WithHeaderName overrides the header consulted by ResolveHeaders and
// ResolveRequest. Empty names are ignored.
func WithHeaderName(name string) ResolverOption {
	return func(r *Resolver) {
		if name != "" {
			r.header = name
		}
	}
}

// NewResolver creates a Resolver with the given fallback tenant id.
// Panics if the default id does not survive sanitation: a resolver without
// a usable terminal branch cannot honor the totality contract, and that is
// a startup misconfiguration rather than a runtime condition.
func NewResolver(defaultID string, opts ...ResolverOption) *Resolver {
	id := SanitizeID(defaultID)
	if id == "" {
		panic(fmt.Sprintf("tenant: invalid default tenant id %q", defaultID))
	}

	r := &Resolver{
		defaultID: id,
		domains:   make(map[string]string),
		header:    DefaultHeaderName,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// DefaultID returns the configured fallback tenant id.
func (r *Resolver) DefaultID() string {
	return r.defaultID
}

// Resolve produces exactly one Resolution from the given hints.
func (r *Resolver) Resolve(opts ResolveOptions) Resolution {
	if id := SanitizeID(opts.Explicit); id != "" {
		return Resolution{TenantID: id, Source: SourceExplicit}
	}

	if id := SanitizeID(opts.Header); id != "" {
		return Resolution{TenantID: id, Source: SourceHeader}
	}

	if host := NormalizeHost(opts.Host); host != "" {
		if id, ok := r.domains[host]; ok {
			return Resolution{TenantID: id, Source: SourceDomain, Domain: host}
		}
	}

	return Resolution{TenantID: r.defaultID, Source: SourceDefault}
}

// ResolveHeaders resolves from a generic header carrier plus the
// originating host. Useful for transports that are not *http.Request.
func (r *Resolver) ResolveHeaders(h HeaderLookup, host string) Resolution {
	opts := ResolveOptions{Host: host}
	if h != nil {
		opts.Header = h.Get(r.header)
	}
	return r.Resolve(opts)
}

// ResolveRequest resolves from an HTTP request using the configured header
// and the request host.
func (r *Resolver) ResolveRequest(req *http.Request) Resolution {
	return r.ResolveHeaders(req.Header, req.Host)
}

// ResolveHost resolves for client-initiated calls that carry no explicit or
// header hints, only the current location host.
func (r *Resolver) ResolveHost(host string) Resolution {
	return r.Resolve(ResolveOptions{Host: host})
}

// NormalizeHost strips any port suffix and lowercases the remainder.
// Returns empty string for empty input.
func NormalizeHost(host string) string {
	host = strings.TrimSpace(host)
	// Strip ":port" but leave bare IPv6 literals alone.
	if idx := strings.LastIndex(host, ":"); idx != -1 && !strings.Contains(host[idx:], "]") {
		host = host[:idx]
	}
	host = strings.Trim(host, "[]")
	return strings.ToLower(host)
}

// maxIDLength bounds tenant identifiers to keep them index- and URL-friendly.
const maxIDLength = 64

// SanitizeID canonicalizes a tenant identifier: trims whitespace, lowercases,
// and validates the charset. Returns empty string instead of an unsanitized
// value when the input is empty, whitespace-only, or malformed.
//
// Valid identifiers start and end with a letter or digit and may contain
// '-', '_' and '.' in between.
func SanitizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" || len(id) > maxIDLength {
		return ""
	}

	for i, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9':
		case c == '-' || c == '_' || c == '.':
			if i == 0 || i == len(id)-1 {
				return ""
			}
		default:
			return ""
		}
	}
	return id
}
