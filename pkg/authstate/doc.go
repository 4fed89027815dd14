// Package authstate holds the single authority for authentication state:
// the live session, the resolved profile chain, and the permission-bearing
// identity derived from them.
//
// The store subscribes to identity.Provider session events and re-runs an
// explicit resolution state machine for each one: fetch the primary
// profile, branch into the vendor or staff sub-profile by role, then build
// the access.Identity. Staff permission overrides supersede role defaults
// at this point. Primary fetch failure is terminal for the run; sub-profile
// failure is logged and skipped.
//
// Each run carries the generation current when its event arrived. A newer
// event bumps the generation, so a slow older run finds itself stale at its
// next apply and is discarded without touching state. Readers take
// Snapshot copies and are never exposed to a half-applied resolution.
package authstate
