// Package security provides security support for the IndieAuth client:
// per-host outbound rate limiting and audit logging of security
// rejections (confirmation mismatches, issuer mismatches).
package security
