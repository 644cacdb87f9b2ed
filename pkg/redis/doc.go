// Package redis provides Redis connection management: a retrying Connect
// and a health probe. The tenant package uses it for its shared cache.
package redis
