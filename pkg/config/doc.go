// Package config loads service configuration from GATEKEEPER_-prefixed
// environment variables. Missing identity-provider credentials are not a
// startup error: the service surfaces a distinct unconfigured state
// instead of refusing to boot.
package config
