// Package rosapi provides a client session for the RouterOS control-plane
// API on top of the rosproto wire layer.
//
// A Session owns exactly one transport connection (plain TCP or TLS) and
// drives the protocol strictly sequentially: login with the MD5
// challenge-response handshake, then one command/reply exchange at a time.
// Replies stream to the caller as they arrive, so a command producing many
// records can be processed incrementally.
//
// Session Lifecycle:
//   - Open establishes the transport and starts the receiver.
//   - Login authenticates; failure is an ordinary result, not an error.
//   - SendCommand / Run issue commands while the session is ready.
//   - Close shuts the transport down; it is idempotent.
//
// Sessions are not shared across concurrent callers. Each logical request
// opens a dedicated Session and closes it afterwards; there is no pooling,
// retry, or command pipelining in this package.
//
// TLS connections skip peer-certificate verification by default because the
// devices this package talks to commonly present self-signed certificates.
// This is a deliberate, documented trade-off; callers that provision proper
// certificates override it with WithTLSConfig.
package rosapi
