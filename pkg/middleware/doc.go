// Package middleware provides the HTTP middleware chain for the engine:
// the route guard that enforces access decisions from the route matcher,
// per-endpoint permission and admin-module gates, a Redis-backed rate
// limiter for the public credential endpoints, and request-id plumbing.
package middleware
