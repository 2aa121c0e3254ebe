// Package jwt mints and verifies the signed access and refresh tokens issued
// by the session engine.
//
// A [Manager] is bound to one token [Kind] with its own key and TTL; the engine
// builds two. Verification checks signature, expiry and kind without any I/O,
// so callers can reject stale or forged tokens before touching a store.
package jwt
