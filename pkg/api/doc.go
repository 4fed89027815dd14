// Package api exposes the engine over HTTP: credential and OAuth sign-in
// flows, session state, the current identity snapshot, and access-decision
// queries that answer exactly what the navigation guard enforces.
package api
