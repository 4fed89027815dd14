// Package identity defines the external contracts the authorization
// engine consumes, the identity Provider and the ProfileStore, together
// with their production adapters.
//
// The Provider authenticates credentials, owns token persistence, and
// emits session change events in delivery order. OIDCProvider implements
// it against any OpenID Connect issuer; account-management flows the
// protocol does not standardize (sign-up, password reset/update) are
// delegated to configurable provider REST endpoints and fail with typed
// "unsupported" errors when absent.
//
// The ProfileStore fetches the primary profile and the role-specific
// vendor/staff sub-profiles. PGStore backs it with Postgres;
// CachingStore layers an in-process LRU and an optional Redis tier on
// top, invalidated wholesale on every session change. Record absence is
// always reported as ErrNotFound, which callers must treat as a normal
// outcome rather than a failure.
package identity
