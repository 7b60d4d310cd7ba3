package rosapi

// SessionState represents the lifecycle stage of a Session.
type SessionState uint32

// Session lifecycle states. A session moves Connected -> Authenticating ->
// Ready -> Closed; Failed is reachable from any non-terminal state on a
// transport or protocol error. Closed is terminal.
const (
	// StateConnected indicates the transport is established but the session
	// has not started authenticating.
	StateConnected SessionState = iota
	// StateAuthenticating indicates a login exchange is in flight.
	StateAuthenticating
	// StateReady indicates login succeeded and commands may be issued.
	StateReady
	// StateFailed indicates a transport or protocol error aborted the
	// session; only Close is meaningful from here.
	StateFailed
	// StateClosed indicates the session transport has been shut down.
	StateClosed
)

// IsReady returns true if the session can accept commands.
func (st SessionState) IsReady() bool { return st == StateReady }

// IsTerminal returns true for the closed state.
func (st SessionState) IsTerminal() bool { return st == StateClosed }

// String returns a string representation of the current state.
func (st SessionState) String() string {
	switch st {
	case StateConnected:
		return "connected"
	case StateAuthenticating:
		return "authenticating"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
