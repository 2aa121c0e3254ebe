// Package password implements credential hashing and verification.
//
// # Output format
//
// New hashes are argon2id in PHC string format:
//
//	$argon2id$v=19$m=<memory>,t=<time>,p=<threads>$<salt>$<hash>
//
// [Verifier] also accepts bcrypt hashes ($2a$, $2b$, $2y$) written by older
// deployments, and [Verifier.NeedsUpgrade] flags them so the caller can rehash
// on the next successful login. The same verifier compares presented refresh
// tokens against the hash kept on the user row.
//
// # What this package must NOT do
//
//   - Store or retrieve credentials. Callers supply plaintext and receive hashes.
//   - Enforce password policy such as minimum length; the engine does that.
//   - Log plaintext secrets or hash parameters at runtime.
package password
