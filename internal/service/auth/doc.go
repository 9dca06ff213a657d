// Package auth implements session tokens, the revocation contract and the
// role policy used by the authorization gate.
//
// Tokens are HS256 JWTs whose payload carries the subject id ("id"), a
// unique token id ("jti"), a purpose and the issue/expiry times. Verification
// is CPU-only. Revocation is delegated to a RevocationStore backed by an
// external key-value store with native TTLs.
package auth
