package rosapi

import (
	"context"
	"crypto/md5" //nolint:gosec // the device protocol mandates MD5 for its challenge-response
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"

	"github.com/ispgear/rosbridge/logger"
	"github.com/ispgear/rosbridge/rosproto"
)

// ReplyHandler processes one parsed reply of a command exchange.
// Returning a non-nil error stops delivery; the session still drains the
// exchange to its terminal reply to keep the protocol synchronized.
type ReplyHandler func(*rosproto.Reply) error

// Session owns one transport connection to a device and drives the
// control-plane protocol over it: login, then strictly sequential
// command/reply exchanges. See the package documentation for the lifecycle.
//
// A Session must not be shared across concurrent callers.
type Session struct {
	cfg    *ClientConfig
	logger logger.Logger

	conn   net.Conn
	stream *rosproto.ByteStream
	reader *rosproto.SentenceReader
	writer *rosproto.SentenceWriter

	state     atomic.Uint32
	closeOnce sync.Once
	closeErr  error

	metrics SessionMetrics
}

// Open dials the device described by cfg and returns a connected session.
// The caller must Close the session when done with it.
func Open(ctx context.Context, cfg *ClientConfig) (*Session, error) {
	if cfg == nil {
		return nil, ErrClientConfigNil
	}

	conn, err := dial(ctx, cfg)
	if err != nil {
		return nil, err
	}

	return newSession(conn, cfg), nil
}

// NewSession wraps an already-established transport in a Session and starts
// the receiver goroutine. Most callers use Open; NewSession exists for
// custom transports and in-memory testing.
func NewSession(conn net.Conn, cfg *ClientConfig) *Session {
	return newSession(conn, cfg)
}

func newSession(conn net.Conn, cfg *ClientConfig) *Session {
	s := &Session{
		cfg:    cfg,
		logger: cfg.logger.With("device", cfg.host),
		conn:   conn,
		stream: rosproto.NewByteStream(),
	}
	s.reader = rosproto.NewSentenceReader(s.stream)
	s.writer = rosproto.NewSentenceWriter(conn)
	s.state.Store(uint32(StateConnected))

	go s.receiverTask()

	return s
}

// State returns the current session state.
func (s *Session) State() SessionState {
	return SessionState(s.state.Load())
}

// Metrics returns the session metrics.
func (s *Session) Metrics() *SessionMetrics {
	return &s.metrics
}

// receiverTask pumps raw chunks from the transport into the byte stream.
// The decoder's exact-size reads resolve as chunks arrive, independent of
// how the transport fragmented them.
func (s *Session) receiverTask() {
	buf := make([]byte, s.cfg.readBufferSize)

	for {
		n, err := s.conn.Read(buf)
		if n > 0 {
			s.stream.Feed(buf[:n])
		}

		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, io.EOF):
			s.stream.End()
		case errors.Is(err, net.ErrClosed):
			s.stream.Fail(ErrSessionClosed)
		default:
			s.logger.Debug("transport read failed", "method", "receiverTask", "error", err)
			s.stream.Fail(err)
		}

		return
	}
}

// Login authenticates the session with the given credentials.
//
// The first exchange sends the plaintext password. If the device answers
// with a "ret" challenge attribute, a second exchange sends the MD5
// challenge-response (a 0x00 byte, the password, and the decoded challenge
// hashed together, hex-encoded behind a literal "00" prefix).
//
// A rejected login is an ordinary outcome: Login returns false with a nil
// error and the session is safe to close and discard. The returned error is
// non-nil only for transport or protocol failures.
func (s *Session) Login(user, password string) (bool, error) {
	if !s.state.CompareAndSwap(uint32(StateConnected), uint32(StateAuthenticating)) {
		if s.State() == StateReady {
			return false, ErrAlreadyLoggedIn
		}
		return false, ErrNotReady
	}

	cmd := rosproto.NewCommand("/login").
		Attr("name", user).
		Attr("password", password)

	replies, err := s.exchange(cmd.Words())
	if err != nil {
		if isRemoteReject(err) {
			s.metrics.incLoginFailCount()
			return false, nil
		}
		return false, err
	}

	if anyErrorReply(replies) {
		s.metrics.incLoginFailCount()
		s.logger.Warn("login rejected", "method", "Login", "user", user)

		return false, nil
	}

	challenge, hasChallenge, err := findChallenge(replies)
	if err != nil {
		s.fail(err)
		return false, err
	}
	if hasChallenge {
		ok, err := s.loginChallenge(user, password, challenge)
		if err != nil || !ok {
			return false, err
		}
	}

	s.state.Store(uint32(StateReady))
	s.logger.Debug("login succeeded", "method", "Login", "user", user)

	return true, nil
}

// loginChallenge performs the second login exchange of the
// challenge-response handshake.
func (s *Session) loginChallenge(user, password string, challenge []byte) (bool, error) {
	cmd := rosproto.NewCommand("/login").
		Attr("name", user).
		Attr("response", challengeResponse(password, challenge))

	replies, err := s.exchange(cmd.Words())
	if err != nil {
		if isRemoteReject(err) {
			s.metrics.incLoginFailCount()
			return false, nil
		}
		return false, err
	}

	if anyErrorReply(replies) {
		s.metrics.incLoginFailCount()
		s.logger.Warn("login challenge rejected", "method", "loginChallenge", "user", user)

		return false, nil
	}

	return true, nil
}

// isRemoteReject reports whether err is a device-reported failure, which
// during a login exchange counts as a rejected login rather than a
// transport error.
func isRemoteReject(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr)
}

// challengeResponse computes the login response parameter: the literal "00"
// prefix followed by the hex digest of MD5(0x00 || password || challenge).
func challengeResponse(password string, challenge []byte) string {
	h := md5.New() //nolint:gosec // mandated by the wire protocol
	h.Write([]byte{0})
	h.Write([]byte(password))
	h.Write(challenge)

	return "00" + hex.EncodeToString(h.Sum(nil))
}

// findChallenge extracts and decodes the hex "ret" challenge attribute from
// a login exchange, if the device sent one.
func findChallenge(replies []*rosproto.Reply) ([]byte, bool, error) {
	for _, r := range replies {
		if v, ok := r.Attr("ret"); ok {
			decoded, err := hex.DecodeString(v)
			if err != nil {
				return nil, false, fmt.Errorf("%w: %q", ErrBadChallenge, v)
			}
			return decoded, true, nil
		}
	}

	return nil, false, nil
}

func anyErrorReply(replies []*rosproto.Reply) bool {
	for _, r := range replies {
		if r.Type.IsError() {
			return true
		}
	}

	return false
}

// SendCommand sends one command and streams its replies to handler as they
// arrive, in the order the device sent them. The exchange ends after a
// terminal reply ("!done" or "!empty"); no further reads are attempted for
// the command. Empty intermediate sentences are skipped silently.
//
// Error-type replies ("!trap") are delivered to handler like any other reply
// and do not abort the exchange or the session; the caller decides how to
// react. A "!fatal" reply ends the exchange and fails the session, because
// the device closes the connection after sending it.
//
// SendCommand is only valid in the ready state. Transport and framing errors
// transition the session to the failed state and are returned to the caller.
func (s *Session) SendCommand(cmd *rosproto.Command, handler ReplyHandler) error {
	if st := s.State(); !st.IsReady() {
		return fmt.Errorf("%w: state %s", ErrNotReady, st)
	}

	return s.exchangeStream(cmd.Words(), handler)
}

// Run sends one command and collects every reply of the exchange.
//
// When the device reports a failure, Run returns the collected replies
// together with a *RemoteError carrying the device-supplied message. Other
// errors follow the SendCommand contract.
func (s *Session) Run(cmd *rosproto.Command) ([]*rosproto.Reply, error) {
	var replies []*rosproto.Reply

	err := s.SendCommand(cmd, func(r *rosproto.Reply) error {
		replies = append(replies, r)
		return nil
	})
	if err != nil {
		return replies, err
	}

	for _, r := range replies {
		if r.Type.IsError() {
			return replies, &RemoteError{
				Message: r.Message(),
				Fatal:   r.Type == rosproto.FatalReply,
			}
		}
	}

	return replies, nil
}

// exchange performs one command/reply exchange and collects the replies.
// Used by the login handshake, which inspects the whole exchange at once.
func (s *Session) exchange(words []string) ([]*rosproto.Reply, error) {
	var replies []*rosproto.Reply

	err := s.exchangeStream(words, func(r *rosproto.Reply) error {
		replies = append(replies, r)
		return nil
	})
	if err != nil {
		return nil, err
	}

	return replies, nil
}

// exchangeStream writes one sentence and surfaces each parsed reply to
// handler until a terminal reply arrives.
func (s *Session) exchangeStream(words []string, handler ReplyHandler) error {
	if _, err := s.writer.WriteSentence(words); err != nil {
		s.fail(err)
		return fmt.Errorf("send command: %w", err)
	}
	s.metrics.incSentenceSentCount()

	var handlerErr error

	for {
		sentence, err := s.reader.ReadSentence()
		if err != nil {
			s.fail(err)
			return fmt.Errorf("read reply: %w", err)
		}
		s.metrics.incSentenceRecvCount()

		reply := rosproto.ParseReply(sentence)
		if reply == nil {
			// empty no-op frame
			continue
		}

		s.metrics.incReplyRecvCount()
		if reply.Type.IsError() {
			s.metrics.incTrapCount()
		}

		if handlerErr == nil {
			handlerErr = handler(reply)
		}

		if reply.Type.IsTerminal() {
			return handlerErr
		}

		if reply.Type == rosproto.FatalReply {
			// the device closes the connection after !fatal
			s.fail(&RemoteError{Message: reply.Message(), Fatal: true})

			if handlerErr != nil {
				return handlerErr
			}
			return &RemoteError{Message: reply.Message(), Fatal: true}
		}
	}
}

// fail transitions the session to the failed state. Terminal states stick.
func (s *Session) fail(err error) {
	for {
		cur := s.state.Load()
		if SessionState(cur) == StateClosed || SessionState(cur) == StateFailed {
			return
		}
		if s.state.CompareAndSwap(cur, uint32(StateFailed)) {
			s.logger.Debug("session failed", "method", "fail", "error", err, "prev_state", SessionState(cur))
			return
		}
	}
}

// Close shuts the session transport down for reading and writing. It is
// idempotent and safe to call from any state; pending reads fail promptly
// rather than hang.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.state.Store(uint32(StateClosed))
		s.stream.Fail(ErrSessionClosed)
		s.closeErr = s.conn.Close()
	})

	return s.closeErr
}
