// Package auth implements user accounts and token-based authentication.
//
// It covers email/password signup and login, Google sign-in, refresh
// token rotation, and the HTTP middleware that guards protected route
// prefixes. Tokens are HMAC-SHA256 JWTs carrying the user id, email,
// and a token type claim separating access tokens from refresh tokens.
package auth
