// Package client contains the client-side transport of Orbit.
//
// # Overview
//
// The package provides:
//  1. A transport-agnostic API contract (see the Client interface) for the
//     Orbit backend: authentication, user metadata, projects, tasks,
//     members and realtime change subscriptions.
//  2. A concrete gRPC implementation (see GRPCClient) that manages a
//     connection, injects an access token via interceptors, transparently
//     refreshes expired tokens, and maps gRPC status codes to sentinel errors.
//  3. Local persistence bootstrap utilities (InitDatabase, RunMigrations) for
//     the CLI, wiring an SQLite database and applying embedded goose migrations.
//
// # Error Handling
//
// Transport conditions are exposed as sentinel errors that callers can match
// with errors.Is: ErrUnavailable, ErrUnauthorized, ErrNoSession. Server-side
// domain errors arrive as the matching internal/common sentinels
// (ErrorNotFound, ErrorForbidden, ErrorValidation, ...).
//
// # Token refresh
//
// When a call fails with an expired access token the unary interceptor
// exchanges the refresh token once and retries the call. Listeners
// registered with OnTokensRefreshed observe the new session, or nil when the
// refresh token itself was rejected.
package client
