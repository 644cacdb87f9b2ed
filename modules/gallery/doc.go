// Package gallery exposes the quota-guarded mutation endpoints for event
// photos and shares. It is the reference caller of the quota package:
// tenant resolution happens in middleware, admission and write happen
// together through the store's Reserve methods, and the quota error
// taxonomy is mapped onto HTTP status codes.
package gallery
