package rosapi

import "errors"

var (
	// ErrClientConfigNil indicates that a nil ClientConfig was provided.
	ErrClientConfigNil = errors.New("client config is nil")

	// ErrSessionClosed indicates that the session transport has been closed.
	ErrSessionClosed = errors.New("session closed")

	// ErrNotReady indicates that a command was issued while the session was
	// not in the ready state (not yet logged in, failed, or closed).
	ErrNotReady = errors.New("session is not ready")

	// ErrAlreadyLoggedIn indicates that Login was called on a session that
	// already completed the login handshake.
	ErrAlreadyLoggedIn = errors.New("session already logged in")

	// ErrBadChallenge indicates that the device sent a login challenge that
	// is not valid hex.
	ErrBadChallenge = errors.New("malformed login challenge")
)

// RemoteError reports a failure the device itself returned during a
// post-login command exchange ("!trap" or "!fatal"). It is an ordinary
// business outcome: a trap leaves the session usable and the caller decides
// whether to continue issuing commands.
type RemoteError struct {
	// Message is the device-supplied "message" attribute, possibly empty.
	Message string

	// Fatal is true when the device reported "!fatal" and closed the
	// connection afterwards.
	Fatal bool
}

func (e *RemoteError) Error() string {
	if e.Message == "" {
		return "device reported failure"
	}
	return "device reported failure: " + e.Message
}
