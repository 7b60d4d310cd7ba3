package netops

import (
	"net"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ispgear/rosbridge/logger"
	"github.com/ispgear/rosbridge/rosapi"
	"github.com/ispgear/rosbridge/rosproto"
)

// scriptedDevice answers each received command with canned reply sentences
// and records the commands it saw.
type scriptedDevice struct {
	mu       sync.Mutex
	commands [][]string
	handler  func(words []string) [][]string
}

func (d *scriptedDevice) serve(conn net.Conn) {
	stream := rosproto.NewByteStream()
	reader := rosproto.NewSentenceReader(stream)
	writer := rosproto.NewSentenceWriter(conn)

	go func() {
		buf := make([]byte, 1024)
		for {
			n, err := conn.Read(buf)
			if n > 0 {
				stream.Feed(buf[:n])
			}
			if err != nil {
				stream.End()
				return
			}
		}
	}()

	for {
		words, err := reader.ReadSentence()
		if err != nil {
			return
		}

		d.mu.Lock()
		d.commands = append(d.commands, words)
		d.mu.Unlock()

		for _, sentence := range d.handler(words) {
			if _, err := writer.WriteSentence(sentence); err != nil {
				return
			}
		}
	}
}

func (d *scriptedDevice) seen() [][]string {
	d.mu.Lock()
	defer d.mu.Unlock()

	out := make([][]string, len(d.commands))
	copy(out, d.commands)

	return out
}

// newReadySession connects a logged-in session to a scripted device.
func newReadySession(t *testing.T, handler func(words []string) [][]string) (*rosapi.Session, *scriptedDevice) {
	t.Helper()

	clientConn, peerConn := net.Pipe()

	device := &scriptedDevice{
		handler: func(words []string) [][]string {
			if words[0] == "/login" {
				return [][]string{{"!done"}}
			}
			return handler(words)
		},
	}
	go device.serve(peerConn)
	t.Cleanup(func() { _ = peerConn.Close() })

	cfg, err := rosapi.NewClientConfig("192.0.2.1", rosapi.WithLogger(logger.NewNop()))
	require.NoError(t, err)

	sess := rosapi.NewSession(clientConn, cfg)
	t.Cleanup(func() { _ = sess.Close() })

	ok, err := sess.Login("coa", "s3cret")
	require.NoError(t, err)
	require.True(t, ok)

	return sess, device
}

func TestQueueSetExisting(t *testing.T) {
	require := require.New(t)

	sess, device := newReadySession(t, func(words []string) [][]string {
		switch words[0] {
		case "/queue/simple/print":
			return [][]string{
				{"!re", "=.id=*1A", "=name=cust-42", "=max-limit=5M/5M"},
				{"!done"},
			}
		case "/queue/simple/set":
			return [][]string{{"!done"}}
		default:
			return [][]string{{"!trap", "=message=unexpected command"}, {"!done"}}
		}
	})

	require.NoError(QueueSet(sess, "cust-42", "10.1.2.3/32", "10M/10M"))

	seen := device.seen()
	require.Len(seen, 3) // login, print, set
	require.Equal([]string{"/queue/simple/print", "?name=cust-42"}, seen[1])
	require.Equal([]string{
		"/queue/simple/set",
		"=.id=*1A",
		"=target=10.1.2.3/32",
		"=max-limit=10M/10M",
	}, seen[2])
}

func TestQueueSetAbsent(t *testing.T) {
	require := require.New(t)

	sess, device := newReadySession(t, func(words []string) [][]string {
		switch words[0] {
		case "/queue/simple/print":
			return [][]string{{"!done"}}
		case "/queue/simple/add":
			return [][]string{{"!done", "=ret=*2B"}}
		default:
			return [][]string{{"!trap", "=message=unexpected command"}, {"!done"}}
		}
	})

	require.NoError(QueueSet(sess, "cust-42", "10.1.2.3/32", "10M/10M"))

	seen := device.seen()
	require.Len(seen, 3) // login, print, add
	require.Equal([]string{
		"/queue/simple/add",
		"=name=cust-42",
		"=target=10.1.2.3/32",
		"=max-limit=10M/10M",
	}, seen[2])
}

func TestQueueRemoveAbsent(t *testing.T) {
	require := require.New(t)

	sess, device := newReadySession(t, func(words []string) [][]string {
		return [][]string{{"!done"}}
	})

	// removing a queue that does not exist is a no-op success
	require.NoError(QueueRemove(sess, "cust-42"))
	require.Len(device.seen(), 2) // login, print
}

func TestLeaseRemove(t *testing.T) {
	require := require.New(t)

	sess, device := newReadySession(t, func(words []string) [][]string {
		switch words[0] {
		case "/ip/dhcp-server/lease/print":
			return [][]string{
				{"!re", "=.id=*10", "=address=10.1.2.3"},
				{"!re", "=.id=*11", "=address=10.1.2.3"},
				{"!done"},
			}
		case "/ip/dhcp-server/lease/remove":
			return [][]string{{"!done"}}
		default:
			return [][]string{{"!trap", "=message=unexpected command"}, {"!done"}}
		}
	})

	require.NoError(LeaseRemove(sess, "10.1.2.3"))

	seen := device.seen()
	require.Len(seen, 4) // login, print, remove, remove
	require.Equal([]string{"/ip/dhcp-server/lease/remove", "=.id=*10"}, seen[2])
	require.Equal([]string{"/ip/dhcp-server/lease/remove", "=.id=*11"}, seen[3])
}

func TestQueueSetTrap(t *testing.T) {
	require := require.New(t)

	sess, _ := newReadySession(t, func(words []string) [][]string {
		return [][]string{{"!trap", "=message=not enough permissions"}, {"!done"}}
	})

	err := QueueSet(sess, "cust-42", "10.1.2.3/32", "10M/10M")
	require.Error(err)

	var remoteErr *rosapi.RemoteError
	require.ErrorAs(err, &remoteErr)
	require.Equal("not enough permissions", remoteErr.Message)
}
