// Package middleware exposes net/http adapters for route protection on top of
// goSession.Engine.
//
//   - [Guard] verifies the access token (bearer header or access cookie) with
//     Engine.ValidateAccess and stores the claims in the request context.
//   - [RequireRole] is a separate predicate over those claims.
//
// # What this package must NOT do
//
//   - Parse or create JWTs directly (delegates to Engine).
//   - Touch the refresh store.
package middleware
