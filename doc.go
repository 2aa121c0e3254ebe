// Package goSession is a session manager for web backends: it checks a
// password, issues a short-lived access token and a long-lived refresh
// token, keeps the one live refresh token per subject in a [refresh.Store],
// and implements refresh rotation and logout on top of it.
//
// Engine methods are safe to call from multiple goroutines after
// [Builder.Build]. Concurrent refreshes with the same token have exactly one
// winner, because the store's Rotate is a compare-and-overwrite.
//
// # Architecture boundaries
//
// goSession is the public surface: [Engine], [Builder], [Config] and value
// types. Flow orchestration, audit dispatch and metric storage live under
// internal/. Token signing (jwt), hashing (password), refresh storage
// (refresh) and user records (users) are separate packages with no
// dependency on this one.
//
// # What this package must NOT do
//
//   - Tell a caller why a credential was rejected. Unknown e-mail and wrong
//     password look the same; so do expired, forged and superseded refresh
//     tokens.
//   - Write cookies before the refresh record is stored.
//   - Read configuration from the environment inside an operation.
package goSession
