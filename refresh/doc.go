// Package refresh persists the one live refresh credential each subject may
// hold and performs the compare-and-overwrite used by token rotation.
//
// Two backends implement [Store]:
//
//   - [RedisStore] keeps the raw token under "<prefix>:<subject>" with a TTL and
//     rotates with a Lua compare-and-set script.
//   - [FieldStore] keeps an argon2id hash of the token on the user row and
//     rotates with a conditional UPDATE on the previous hash.
//
// # What this package must NOT do
//
//   - Verify token signatures or expiry (the jwt package does that first).
//   - Decide the public error a caller sees; the engine collapses ErrNotFound
//     and ErrMismatch into one invalid-token result.
package refresh
