// Package session tracks the current credential pair and derives its
// expiry state on demand.
//
// The Monitor never caches derived fields: ExpiresIn, Expired, and
// ExpiringSoon are functions of the wall clock and are recomputed on every
// read. Refreshing is delegated to the identity provider, with overlapping
// refresh calls collapsed through singleflight so they cannot race.
package session
