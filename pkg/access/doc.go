// Package access implements the pure permission evaluator.
//
// All functions here are total and side-effect free given the catalog: the
// same identity and permission inputs always produce the same answer. The
// Identity type is an immutable projection built by the auth state store;
// nothing in this package ever mutates one.
//
// The module-access check is deliberately split into two named operations,
// ModuleAccessibleWithPermissions for a raw permission list and
// IdentityCanAccessModule for a full identity, rather than a single
// argument-sniffing entry point.
package access
