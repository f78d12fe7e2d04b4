// Package auth implements the authentication and authorization core of the
// sustainable market backend: bcrypt credential hashing, signed expiring
// tokens with a per-user revocation blocklist, email verification, the
// password reset lifecycle, and role-gated request authorization.
//
// The package owns the rules by which tokens are issued, accepted, and
// revoked. User storage, mail delivery, and request routing are
// collaborators expressed as small interfaces (UserStore, Mailer,
// router middleware) so the core stays framework-free.
package auth
