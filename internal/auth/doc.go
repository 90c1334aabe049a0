// Package auth issues and validates the bearer tokens that guard unit state
// changes and the live state stream.
//
// Tokens are HS256-signed JWTs carrying a subject (the client the operator
// issued the token to) and a scope. There is no user store: an operator
// issues tokens with "irclimate token" and the daemon checks the signature,
// issuer, expiry and scope on each request.
package auth
